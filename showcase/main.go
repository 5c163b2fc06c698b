// Command showcase walks through the nexus feature set: validated values,
// bound groups, derived values and custom consumer callbacks, all committed
// through one transaction protocol.
package main

import (
	"fmt"

	"github.com/go-drift/nexus/pkg/nexus"
	"github.com/go-drift/nexus/pkg/observable"
)

func main() {
	demoValues()
	demoBinding()
	demoComputed()
	demoOrderForm()
}

func demoValues() {
	fmt.Println("== validated values ==")
	m := nexus.NewManager()

	temp, err := observable.NewValue(m, 20.0, observable.WithValidation(func(c float64) (bool, string) {
		if c < -40 || c > 60 {
			return false, "out of sensor range"
		}
		return true, ""
	}))
	if err != nil {
		panic(err)
	}
	temp.AddListener(func(c float64) {
		fmt.Printf("temperature is now %.1f\n", c)
	})

	if ok, _ := temp.Set(23.5); ok {
		fmt.Println("accepted 23.5")
	}
	if ok, reason := temp.Set(900); !ok {
		fmt.Printf("rejected 900: %s\n", reason)
	}
	fmt.Printf("final: %.1f\n\n", temp.Get())
}

func demoBinding() {
	fmt.Println("== bound values ==")
	m := nexus.NewManager()

	celsiusA, _ := observable.NewValue(m, 20.0)
	celsiusB, _ := observable.NewValue(m, 0.0)

	// After binding, both names refer to one canonical value.
	if err := celsiusA.Bind(celsiusB, nexus.UseCallerValue); err != nil {
		panic(err)
	}
	celsiusB.Set(31.0)
	fmt.Printf("a=%.1f b=%.1f (one group)\n", celsiusA.Get(), celsiusB.Get())

	celsiusA.Unbind()
	celsiusB.Set(5.0)
	fmt.Printf("a=%.1f b=%.1f (split again)\n\n", celsiusA.Get(), celsiusB.Get())
}

func demoComputed() {
	fmt.Println("== derived values ==")
	m := nexus.NewManager()

	qty, _ := observable.NewValue(m, 2)
	price, _ := observable.NewValue(m, 30)

	total, err := observable.NewComputed(m, func(in []any) int {
		return in[0].(int) * in[1].(int)
	}, qty, price)
	if err != nil {
		panic(err)
	}
	total.AddListener(func(t int) {
		fmt.Printf("total recomputed: %d\n", t)
	})

	fmt.Printf("initial total: %d\n", total.Get())
	qty.Set(5)
	price.Set(25)
	fmt.Println()
}

// orderForm is a consumer with hooks of its own. Its callbacks run inside
// every transaction touching one of its hooks, so the subtotal stays
// consistent with quantity and unit price at all times.
type orderForm struct {
	qty      *nexus.Hook[int]
	price    *nexus.Hook[int]
	subtotal *nexus.Hook[int]
}

func (f *orderForm) ValuesToUpdate(candidate map[string]any) map[string]any {
	return map[string]any{
		"subtotal": candidate["qty"].(int) * candidate["price"].(int),
	}
}

func (f *orderForm) ValidateValues(candidate map[string]any) (bool, string) {
	if candidate["qty"].(int) < 0 {
		return false, "quantity cannot be negative"
	}
	return true, ""
}

func (f *orderForm) OnInvalidated() {
	fmt.Printf("form changed: %d x %d = %d\n", f.mustGet(f.qty), f.mustGet(f.price), f.mustGet(f.subtotal))
}

func (f *orderForm) mustGet(h *nexus.Hook[int]) int {
	v, err := h.Value()
	if err != nil {
		panic(err)
	}
	return v
}

func demoOrderForm() {
	fmt.Println("== consumer callbacks ==")
	m := nexus.NewManager()

	form := &orderForm{}
	var err error
	if form.qty, err = nexus.New(m, form, "qty", 1); err != nil {
		panic(err)
	}
	if form.price, err = nexus.New(m, form, "price", 10); err != nil {
		panic(err)
	}
	if form.subtotal, err = nexus.New(m, form, "subtotal", 10, nexus.ReadOnly()); err != nil {
		panic(err)
	}

	if err := form.qty.Set(3); err != nil {
		panic(err)
	}
	if err := form.price.Set(12); err != nil {
		panic(err)
	}
	if err := form.qty.Set(-1); err != nil {
		fmt.Printf("rejected: %v\n", err)
	}
	fmt.Printf("final subtotal: %d\n", form.mustGet(form.subtotal))
}
