package immutable

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry records types that are considered immutable by construction.
// Values whose dynamic type is accepted by the registry pass through
// [Freeze] by identity, without copying.
//
// A Registry is safe for concurrent use. Each nexus manager owns one
// Registry; there is no process-global instance.
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]struct{}
	// ifaces caches the registered interface types for subtype matching.
	ifaces []reflect.Type
}

// NewRegistry returns a Registry pre-populated with the given types.
// It panics if a type is registered twice, since the initial set is
// programmer-supplied.
func NewRegistry(types ...reflect.Type) *Registry {
	r := &Registry{entries: make(map[reflect.Type]struct{})}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// TypeFor returns the reflect.Type of T, including interface types.
// Use it to name types for registration:
//
//	reg.Register(immutable.TypeFor[netip.Addr]())
//	reg.Register(immutable.TypeFor[fmt.Stringer]())
func TypeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register adds t to the registry. Registering an interface type accepts
// every implementation of that interface. Returns an error if t is nil or
// already registered.
func (r *Registry) Register(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("immutable: cannot register nil type")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[t]; ok {
		return fmt.Errorf("immutable: type %v already registered", t)
	}
	r.entries[t] = struct{}{}
	if t.Kind() == reflect.Interface {
		r.ifaces = append(r.ifaces, t)
	}
	return nil
}

// Unregister removes t from the registry. Returns an error if t was not
// registered.
func (r *Registry) Unregister(t reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[t]; !ok {
		return fmt.Errorf("immutable: type %v is not registered", t)
	}
	delete(r.entries, t)
	if t.Kind() == reflect.Interface {
		for i, it := range r.ifaces {
			if it == t {
				r.ifaces = append(r.ifaces[:i], r.ifaces[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Registered reports whether exactly t has been registered. It does not
// consider subtype relationships; use [Registry.Accepts] for that.
func (r *Registry) Registered(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[t]
	return ok
}

// Accepts reports whether values of dynamic type t are considered immutable
// by the registry: either t itself is registered, or t implements a
// registered interface type.
func (r *Registry) Accepts(t reflect.Type) bool {
	if r == nil || t == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.entries[t]; ok {
		return true
	}
	for _, it := range r.ifaces {
		if t != it && t.Implements(it) {
			return true
		}
	}
	return false
}
