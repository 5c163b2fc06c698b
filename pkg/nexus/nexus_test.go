package nexus

import (
	"strings"
	"testing"
)

func TestNexusRefValueAndSize(t *testing.T) {
	m := NewManager()
	a := newTestHook(t, m, &plainOwner{"a"}, "v", 7)
	b := newTestHook(t, m, &plainOwner{"b"}, "v", 8)

	ref := a.Nexus()
	if v, err := ref.Value(); err != nil || v != any(7) {
		t.Errorf("Value = (%v, %v), want 7", v, err)
	}
	if size, err := ref.Size(); err != nil || size != 1 {
		t.Errorf("Size = (%d, %v), want 1", size, err)
	}
	if ref.Manager() != m {
		t.Error("Manager should return the owning manager")
	}

	if err := a.Connect(b, UseCallerValue); err != nil {
		t.Fatal(err)
	}
	ref = a.Nexus()
	if size, err := ref.Size(); err != nil || size != 2 {
		t.Errorf("Size after merge = (%d, %v), want 2", size, err)
	}
}

func TestNexusRefComparable(t *testing.T) {
	m := NewManager()
	a := newTestHook(t, m, &plainOwner{"a"}, "v", 1)
	b := newTestHook(t, m, &plainOwner{"b"}, "v", 2)

	if a.Nexus() == b.Nexus() {
		t.Error("distinct groups should compare unequal")
	}
	if a.Nexus() != a.Nexus() {
		t.Error("a hook's ref should be stable between calls")
	}
}

func TestZeroNexusRef(t *testing.T) {
	var ref NexusRef
	if _, err := ref.Value(); err == nil {
		t.Error("zero ref Value should fail")
	}
	if _, err := ref.Size(); err == nil {
		t.Error("zero ref Size should fail")
	}
}

func TestNexusRefString(t *testing.T) {
	m := NewManager()
	a := newTestHook(t, m, &plainOwner{"a"}, "v", 1)
	if s := a.Nexus().String(); !strings.HasPrefix(s, "nexus(") {
		t.Errorf("String = %q", s)
	}
}
