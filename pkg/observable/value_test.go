package observable

import (
	stderrors "errors"
	"testing"

	nexuserrors "github.com/go-drift/nexus/pkg/errors"
	"github.com/go-drift/nexus/pkg/nexus"
)

func newValue[T any](t *testing.T, m *nexus.Manager, initial T, opts ...ValueOption[T]) *Value[T] {
	t.Helper()
	v, err := NewValue(m, initial, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestValueGetSet(t *testing.T) {
	m := nexus.NewManager()
	v := newValue(t, m, 1)

	if got := v.Get(); got != 1 {
		t.Errorf("Get = %d, want 1", got)
	}
	ok, reason := v.Set(2)
	if !ok || reason != "" {
		t.Fatalf("Set = (%t, %q)", ok, reason)
	}
	if got := v.Get(); got != 2 {
		t.Errorf("Get = %d, want 2", got)
	}
}

func TestValueValidationRejects(t *testing.T) {
	m := nexus.NewManager()
	v := newValue(t, m, 5, WithValidation(func(n int) (bool, string) {
		if n < 0 {
			return false, "must be non-negative"
		}
		return true, ""
	}))

	ok, reason := v.Set(-1)
	if ok {
		t.Fatal("negative value should be rejected")
	}
	if reason != "must be non-negative" {
		t.Errorf("reason = %q", reason)
	}
	if got := v.Get(); got != 5 {
		t.Errorf("Get = %d, want untouched 5", got)
	}
}

func TestValueCheckDoesNotCommit(t *testing.T) {
	m := nexus.NewManager()
	v := newValue(t, m, 5, WithValidation(func(n int) (bool, string) {
		return n < 100, "too large"
	}))

	if ok, _ := v.Check(50); !ok {
		t.Error("50 should pass")
	}
	if ok, reason := v.Check(200); ok || reason != "too large" {
		t.Errorf("Check(200) = (%t, %q)", ok, reason)
	}
	if got := v.Get(); got != 5 {
		t.Errorf("Check must not commit; Get = %d", got)
	}
}

func TestValueMustSet(t *testing.T) {
	m := nexus.NewManager()
	v := newValue(t, m, 5, WithValidation(func(n int) (bool, string) {
		return n >= 0, "must be non-negative"
	}))

	if err := v.MustSet(9); err != nil {
		t.Fatal(err)
	}
	err := v.MustSet(-1)
	var se *nexuserrors.SubmitError
	if !stderrors.As(err, &se) {
		t.Fatalf("error = %v, want SubmitError", err)
	}
	if se.Value != -1 || se.Reason != "must be non-negative" {
		t.Errorf("SubmitError = {%v %q}", se.Value, se.Reason)
	}
}

func TestValueBindSharesState(t *testing.T) {
	m := nexus.NewManager()
	a := newValue(t, m, 1)
	b := newValue(t, m, 2)

	if err := a.Bind(b, nexus.UseCallerValue); err != nil {
		t.Fatal(err)
	}
	if got := b.Get(); got != 1 {
		t.Errorf("bound target = %d, want caller's 1", got)
	}
	if ok, _ := a.Set(10); !ok {
		t.Fatal("Set should succeed")
	}
	if got := b.Get(); got != 10 {
		t.Errorf("bound target = %d, want 10", got)
	}
}

func TestValueBindConsultsTargetValidation(t *testing.T) {
	m := nexus.NewManager()
	a := newValue(t, m, 1)
	b := newValue(t, m, 2, WithValidation(func(n int) (bool, string) {
		return n <= 10, "over limit"
	}))
	if err := a.Bind(b, nexus.UseCallerValue); err != nil {
		t.Fatal(err)
	}

	// A change proposed through a must satisfy b's validator too.
	ok, reason := a.Set(50)
	if ok {
		t.Fatal("bound validator should see and reject the change")
	}
	if reason != "over limit" {
		t.Errorf("reason = %q", reason)
	}
	if a.Get() != 1 || b.Get() != 1 {
		t.Errorf("values = (%d, %d), want both untouched", a.Get(), b.Get())
	}
}

func TestValueBindVetoUnwindsBind(t *testing.T) {
	m := nexus.NewManager()
	a := newValue(t, m, 50)
	b := newValue(t, m, 2, WithValidation(func(n int) (bool, string) {
		return n <= 10, "over limit"
	}))

	if err := a.Bind(b, nexus.UseCallerValue); err == nil {
		t.Fatal("bind adopting a rejected value should fail")
	}
	if ok, _ := b.Set(3); !ok {
		t.Fatal("b should still be independently settable")
	}
	if got := a.Get(); got != 50 {
		t.Errorf("a = %d, want unchanged 50", got)
	}
}

func TestValueUnbind(t *testing.T) {
	m := nexus.NewManager()
	a := newValue(t, m, 1)
	b := newValue(t, m, 2)
	if err := a.Bind(b, nexus.UseCallerValue); err != nil {
		t.Fatal(err)
	}
	if err := a.Unbind(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := b.Set(99); !ok {
		t.Fatal("Set should succeed")
	}
	if got := a.Get(); got != 1 {
		t.Errorf("unbound value = %d, want 1", got)
	}
}

func TestValueAddListener(t *testing.T) {
	m := nexus.NewManager()
	v := newValue(t, m, 1)
	var seen []int
	remove := v.AddListener(func(n int) { seen = append(seen, n) })

	v.Set(2)
	v.Set(2) // no change, no notification
	v.Set(3)
	remove()
	v.Set(4)

	if len(seen) != 2 || seen[0] != 2 || seen[1] != 3 {
		t.Errorf("seen = %v, want [2 3]", seen)
	}
}
