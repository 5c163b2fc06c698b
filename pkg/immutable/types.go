package immutable

import (
	"fmt"
	"sort"
	"strings"
)

// List is a fixed-length immutable sequence. A List is only constructed by
// [Freeze] or [NewList]; its elements are themselves frozen.
type List struct {
	items []any
}

// NewList freezes each item and returns the resulting List.
func NewList(reg *Registry, items ...any) (List, error) {
	frozen := make([]any, len(items))
	for i, item := range items {
		fv, err := Freeze(item, reg)
		if err != nil {
			return List{}, err
		}
		frozen[i] = fv
	}
	return List{items: frozen}, nil
}

// Len returns the number of elements.
func (l List) Len() int { return len(l.items) }

// At returns the element at index i. It panics if i is out of range.
func (l List) At(i int) any { return l.items[i] }

// Values returns a copy of the elements.
func (l List) Values() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

func (l List) String() string {
	parts := make([]string, len(l.items))
	for i, item := range l.items {
		parts[i] = fmt.Sprint(item)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Map is an immutable key-value mapping. Keys and values are frozen; keys
// are guaranteed comparable.
type Map struct {
	entries map[any]any
}

// NewMap freezes every key and value of entries and returns the resulting
// Map. Keys that are not comparable after freezing are rejected.
func NewMap(reg *Registry, entries map[any]any) (Map, error) {
	out := make(map[any]any, len(entries))
	for k, v := range entries {
		fk, err := freezeKey(k, reg)
		if err != nil {
			return Map{}, err
		}
		fv, err := Freeze(v, reg)
		if err != nil {
			return Map{}, err
		}
		out[fk] = fv
	}
	return Map{entries: out}, nil
}

// Len returns the number of entries.
func (m Map) Len() int { return len(m.entries) }

// Get returns the value stored under key and whether it is present.
func (m Map) Get(key any) (any, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Keys returns a copy of the keys in unspecified order.
func (m Map) Keys() []any {
	keys := make([]any, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

func (m Map) String() string {
	parts := make([]string, 0, len(m.entries))
	for k, v := range m.entries {
		parts = append(parts, fmt.Sprintf("%v:%v", k, v))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, " ") + "}"
}

// Set is an immutable membership set. Elements are frozen and comparable.
type Set struct {
	elems map[any]struct{}
}

// NewSet freezes each element and returns the resulting Set.
func NewSet(reg *Registry, elems ...any) (Set, error) {
	out := make(map[any]struct{}, len(elems))
	for _, e := range elems {
		fe, err := freezeKey(e, reg)
		if err != nil {
			return Set{}, err
		}
		out[fe] = struct{}{}
	}
	return Set{elems: out}, nil
}

// Len returns the number of elements.
func (s Set) Len() int { return len(s.elems) }

// Has reports whether elem is a member.
func (s Set) Has(elem any) bool {
	_, ok := s.elems[elem]
	return ok
}

// Values returns a copy of the elements in unspecified order.
func (s Set) Values() []any {
	out := make([]any, 0, len(s.elems))
	for e := range s.elems {
		out = append(out, e)
	}
	return out
}

func (s Set) String() string {
	parts := make([]string, 0, len(s.elems))
	for e := range s.elems {
		parts = append(parts, fmt.Sprint(e))
	}
	sort.Strings(parts)
	return "#{" + strings.Join(parts, " ") + "}"
}

// Bytes is an immutable byte string.
type Bytes struct {
	b string
}

// NewBytes copies b into an immutable byte string.
func NewBytes(b []byte) Bytes { return Bytes{b: string(b)} }

// Len returns the number of bytes.
func (b Bytes) Len() int { return len(b.b) }

// At returns the byte at index i. It panics if i is out of range.
func (b Bytes) At(i int) byte { return b.b[i] }

// Bytes returns a copy of the underlying bytes.
func (b Bytes) Bytes() []byte { return []byte(b.b) }

func (b Bytes) String() string { return fmt.Sprintf("%q", b.b) }
