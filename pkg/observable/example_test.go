package observable_test

import (
	"fmt"

	"github.com/go-drift/nexus/pkg/nexus"
	"github.com/go-drift/nexus/pkg/observable"
)

func ExampleNewValue() {
	m := nexus.NewManager()

	count, _ := observable.NewValue(m, 0, observable.WithValidation(func(n int) (bool, string) {
		if n < 0 {
			return false, "count cannot be negative"
		}
		return true, ""
	}))
	count.AddListener(func(n int) {
		fmt.Println("count:", n)
	})

	count.Set(3)
	if ok, reason := count.Set(-1); !ok {
		fmt.Println("rejected:", reason)
	}
	fmt.Println("final:", count.Get())
	// Output:
	// count: 3
	// rejected: count cannot be negative
	// final: 3
}

func ExampleValue_Bind() {
	m := nexus.NewManager()
	a, _ := observable.NewValue(m, "draft")
	b, _ := observable.NewValue(m, "")

	a.Bind(b, nexus.UseCallerValue)
	b.Set("published")

	fmt.Println(a.Get(), b.Get())
	// Output: published published
}

func ExampleNewComputed() {
	m := nexus.NewManager()
	width, _ := observable.NewValue(m, 3)
	height, _ := observable.NewValue(m, 4)

	area, _ := observable.NewComputed(m, func(in []any) int {
		return in[0].(int) * in[1].(int)
	}, width, height)

	fmt.Println("area:", area.Get())
	width.Set(10)
	fmt.Println("area:", area.Get())
	// Output:
	// area: 12
	// area: 40
}
