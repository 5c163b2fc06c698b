package immutable

import (
	"errors"
	"strings"
	"testing"
)

func TestFreezeScalars(t *testing.T) {
	values := []any{nil, true, 42, int8(1), uint64(9), 3.14, complex(1, 2), "hello", 'x'}
	for _, v := range values {
		got, err := Freeze(v, nil)
		if err != nil {
			t.Fatalf("Freeze(%v) returned error: %v", v, err)
		}
		if got != v {
			t.Errorf("Freeze(%v) = %v, want value unchanged", v, got)
		}
	}
}

func TestFreezeStringNotTreatedAsSequence(t *testing.T) {
	got, err := Freeze("abc", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, isList := got.(List); isList {
		t.Error("strings must stay atomic, not become Lists")
	}
	if got != "abc" {
		t.Errorf("Freeze(\"abc\") = %v", got)
	}
}

func TestFreezeSlice(t *testing.T) {
	got, err := Freeze([]int{1, 2, 3}, nil)
	if err != nil {
		t.Fatal(err)
	}
	l, isList := got.(List)
	if !isList {
		t.Fatalf("Freeze([]int) = %T, want List", got)
	}
	if l.Len() != 3 || l.At(0) != 1 || l.At(2) != 3 {
		t.Errorf("unexpected List contents: %v", l)
	}
}

func TestFreezeNestedSlice(t *testing.T) {
	got, err := Freeze([][]string{{"a"}, {"b", "c"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	outer := got.(List)
	inner, isList := outer.At(1).(List)
	if !isList {
		t.Fatalf("inner element is %T, want List", outer.At(1))
	}
	if inner.Len() != 2 || inner.At(0) != "b" {
		t.Errorf("unexpected inner List: %v", inner)
	}
}

func TestFreezeBytes(t *testing.T) {
	src := []byte("abc")
	got, err := Freeze(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, isBytes := got.(Bytes)
	if !isBytes {
		t.Fatalf("Freeze([]byte) = %T, want Bytes", got)
	}
	src[0] = 'z' // mutating the source must not affect the frozen copy
	if b.At(0) != 'a' {
		t.Error("Bytes should hold a defensive copy")
	}
}

func TestFreezeMap(t *testing.T) {
	got, err := Freeze(map[string]int{"a": 1, "b": 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	m, isMap := got.(Map)
	if !isMap {
		t.Fatalf("Freeze(map) = %T, want Map", got)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
	if v, present := m.Get("a"); !present || v != 1 {
		t.Errorf("Get(a) = %v, %t", v, present)
	}
}

func TestFreezeSet(t *testing.T) {
	got, err := Freeze(map[string]struct{}{"x": {}, "y": {}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, isSet := got.(Set)
	if !isSet {
		t.Fatalf("Freeze(map[T]struct{}) = %T, want Set", got)
	}
	if !s.Has("x") || !s.Has("y") || s.Has("z") {
		t.Errorf("unexpected Set contents: %v", s)
	}
}

func TestFreezeIdempotent(t *testing.T) {
	first, err := Freeze([]int{1, 2}, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Freeze(first, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(first, second) {
		t.Errorf("Freeze(Freeze(x)) = %v, want %v", second, first)
	}
}

func TestFreezeRejectsPointer(t *testing.T) {
	x := 5
	_, err := Freeze(&x, nil)
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("Freeze(*int) error = %v, want UnsupportedTypeError", err)
	}
	if !strings.Contains(ute.Error(), "*int") {
		t.Errorf("error %q should name the offending type", ute.Error())
	}
}

func TestFreezeRejectsChannelAndFunc(t *testing.T) {
	if _, err := Freeze(make(chan int), nil); err == nil {
		t.Error("expected error for chan")
	}
	if _, err := Freeze(func() {}, nil); err == nil {
		t.Error("expected error for func")
	}
}

func TestFreezeRejectsMutableStruct(t *testing.T) {
	type holder struct {
		Items []int
	}
	_, err := Freeze(holder{Items: []int{1}}, nil)
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("error = %v, want UnsupportedTypeError", err)
	}
}

func TestFreezeAcceptsImmutableStruct(t *testing.T) {
	type point struct {
		X, Y int
	}
	p := point{1, 2}
	got, err := Freeze(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("Freeze(%v) = %v, want identity", p, got)
	}
}

func TestFreezeRegisteredTypeIdentity(t *testing.T) {
	type path struct {
		p *string // mutable without registration
	}
	reg := NewRegistry(TypeFor[path]())
	s := "/tmp"
	v := path{p: &s}
	got, err := Freeze(map[string]any{"p": v}, reg)
	if err != nil {
		t.Fatal(err)
	}
	m := got.(Map)
	entry, _ := m.Get("p")
	if entry != v {
		t.Error("registered type should pass through by identity")
	}
}

func TestFreezeNestedElementError(t *testing.T) {
	x := 1
	_, err := Freeze([]any{1, &x}, nil)
	if err == nil {
		t.Fatal("expected error for mutable nested element")
	}
}

func TestFreezeComparableInterfaceKey(t *testing.T) {
	got, err := Freeze(map[any]int{1: 1, "a": 2}, nil)
	if err != nil {
		t.Fatalf("comparable keys should freeze: %v", err)
	}
	m := got.(Map)
	if v, _ := m.Get("a"); v != 2 {
		t.Errorf("Get(a) = %v, want 2", v)
	}
}

func TestNonComparableFrozenKeyRejected(t *testing.T) {
	// A slice element freezes into a List, which cannot serve as a set
	// member; this must be an error, not a runtime panic.
	_, err := NewSet(nil, []int{1})
	var ute *UnsupportedTypeError
	if !errors.As(err, &ute) {
		t.Fatalf("error = %v, want UnsupportedTypeError", err)
	}
}

func TestFreezeArrayOfMutableElements(t *testing.T) {
	got, err := Freeze([2][]int{{1}, {2}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	l, isList := got.(List)
	if !isList {
		t.Fatalf("got %T, want List", got)
	}
	if _, isInner := l.At(0).(List); !isInner {
		t.Errorf("array elements should be frozen recursively, got %T", l.At(0))
	}
}

func TestEqual(t *testing.T) {
	a, _ := Freeze([]int{1, 2}, nil)
	b, _ := Freeze([]int{1, 2}, nil)
	c, _ := Freeze([]int{1, 3}, nil)
	if !Equal(a, b) {
		t.Error("equal frozen values should compare equal")
	}
	if Equal(a, c) {
		t.Error("different frozen values should not compare equal")
	}
}
