package immutable

import (
	"fmt"
	"reflect"
)

// UnsupportedTypeError reports a value that is mutable and cannot be
// converted to an immutable form.
type UnsupportedTypeError struct {
	// Type is the offending dynamic type.
	Type reflect.Type
	// Reason optionally narrows down why the type was rejected.
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("immutable: cannot freeze value of type %v: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("immutable: cannot freeze value of type %v", e.Type)
}

var (
	listType  = reflect.TypeOf(List{})
	mapType   = reflect.TypeOf(Map{})
	setType   = reflect.TypeOf(Set{})
	bytesType = reflect.TypeOf(Bytes{})
)

// Freeze checks v and converts it to an immutable form, or reports an
// [UnsupportedTypeError] if it cannot.
//
//   - nil, booleans, numbers and strings pass through unchanged.
//   - Values whose dynamic type the registry accepts pass through by
//     identity, without copying. reg may be nil (empty registry).
//   - Already-frozen [List], [Map], [Set] and [Bytes] values pass through
//     by identity, so Freeze is idempotent.
//   - Values of structurally immutable types (arrays and structs whose
//     every field type is itself immutable) pass through unchanged.
//   - []byte becomes [Bytes]; other slices become [List]; maps with
//     struct{} values become [Set]; other maps become [Map]. Elements,
//     keys and values are frozen recursively.
//   - Everything else (pointers, channels, funcs, structs holding mutable
//     fields) is rejected.
func Freeze(v any, reg *Registry) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128:
		return v, nil
	case List, Map, Set, Bytes:
		return v, nil
	}

	t := reflect.TypeOf(v)
	if reg.Accepts(t) {
		return v, nil
	}
	if isImmutableType(t, reg) {
		return v, nil
	}

	switch t.Kind() {
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return NewBytes(reflect.ValueOf(v).Bytes()), nil
		}
		return freezeSequence(reflect.ValueOf(v), reg)
	case reflect.Array:
		return freezeSequence(reflect.ValueOf(v), reg)
	case reflect.Map:
		if t.Elem() == reflect.TypeOf(struct{}{}) {
			return freezeSet(reflect.ValueOf(v), reg)
		}
		return freezeMap(reflect.ValueOf(v), reg)
	}
	return nil, &UnsupportedTypeError{Type: t}
}

// Equal reports whether two frozen values are equal. Values produced by
// [Freeze] contain no cycles, so deep comparison terminates.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func freezeSequence(rv reflect.Value, reg *Registry) (any, error) {
	items := make([]any, rv.Len())
	for i := range items {
		fv, err := Freeze(rv.Index(i).Interface(), reg)
		if err != nil {
			return nil, err
		}
		items[i] = fv
	}
	return List{items: items}, nil
}

func freezeSet(rv reflect.Value, reg *Registry) (any, error) {
	elems := make(map[any]struct{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		fe, err := freezeKey(iter.Key().Interface(), reg)
		if err != nil {
			return nil, err
		}
		elems[fe] = struct{}{}
	}
	return Set{elems: elems}, nil
}

func freezeMap(rv reflect.Value, reg *Registry) (any, error) {
	entries := make(map[any]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		fk, err := freezeKey(iter.Key().Interface(), reg)
		if err != nil {
			return nil, err
		}
		fv, err := Freeze(iter.Value().Interface(), reg)
		if err != nil {
			return nil, err
		}
		entries[fk] = fv
	}
	return Map{entries: entries}, nil
}

// freezeKey freezes a map key or set element. The frozen form must be
// comparable so it can serve as a Go map key.
func freezeKey(k any, reg *Registry) (any, error) {
	fk, err := Freeze(k, reg)
	if err != nil {
		return nil, err
	}
	if fk != nil && !reflect.TypeOf(fk).Comparable() {
		return nil, &UnsupportedTypeError{
			Type:   reflect.TypeOf(fk),
			Reason: "key is not comparable after conversion",
		}
	}
	return fk, nil
}

// isImmutableType reports whether every value of type t is immutable by
// construction: scalars, arrays of immutable element types, and structs
// whose every field type is immutable. Pointer, slice, map, chan, func and
// interface types are never structurally immutable; register them instead.
func isImmutableType(t reflect.Type, reg *Registry) bool {
	switch t {
	case listType, mapType, setType, bytesType:
		return true
	}
	if reg.Accepts(t) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return isImmutableType(t.Elem(), reg)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !isImmutableType(t.Field(i).Type, reg) {
				return false
			}
		}
		return true
	}
	return false
}
