package observable

import (
	stderrors "errors"

	nexuserrors "github.com/go-drift/nexus/pkg/errors"
	"github.com/go-drift/nexus/pkg/nexus"
)

// Value holds a single reactive value backed by a hook. Values bound
// together through [Value.Bind] share one canonical value; setting any of
// them updates all of them atomically.
//
// Value is safe for concurrent use; its operations delegate to the
// manager's transaction protocol.
type Value[T any] struct {
	hook       *nexus.Hook[T]
	validateFn func(T) (bool, string)
}

// ValueOption configures Value construction.
type ValueOption[T any] func(*Value[T])

// WithValidation attaches a validation predicate. Every transaction that
// would change the value (including changes arriving through bound Values)
// consults it; a (false, reason) result aborts the whole transaction.
func WithValidation[T any](fn func(T) (bool, string)) ValueOption[T] {
	return func(v *Value[T]) { v.validateFn = fn }
}

// NewValue creates a Value holding initial.
func NewValue[T any](m *nexus.Manager, initial T, opts ...ValueOption[T]) (*Value[T], error) {
	v := &Value[T]{}
	for _, opt := range opts {
		opt(v)
	}
	h, err := nexus.New(m, v, "value", initial)
	if err != nil {
		return nil, err
	}
	v.hook = h
	return v, nil
}

// ValidateValues implements [nexus.Validator] for the manager's isolation
// check.
func (v *Value[T]) ValidateValues(candidate map[string]any) (bool, string) {
	if v.validateFn == nil {
		return true, ""
	}
	raw, present := candidate["value"]
	if !present {
		return true, ""
	}
	tv, assignable := raw.(T)
	if !assignable {
		return true, ""
	}
	return v.validateFn(tv)
}

// Get returns the current value. It panics on programmer misuse, such as
// reading a released Value.
func (v *Value[T]) Get() T {
	val, err := v.hook.Value()
	if err != nil {
		panic(err)
	}
	return val
}

// Set proposes a new value and reports the validation outcome. A false
// result means some validator rejected the change and nothing was
// mutated. Listener panics during notification are reported through the
// errors package and do not affect the result; programmer errors panic.
func (v *Value[T]) Set(value T) (ok bool, reason string) {
	ok, reason, err := v.hook.Manager().SubmitValues(map[nexus.NexusRef]any{
		v.hook.Nexus(): value,
	})
	if err != nil {
		var le *nexuserrors.ListenerError
		if !stderrors.As(err, &le) {
			panic(err)
		}
	}
	return ok, reason
}

// MustSet proposes a new value with raise-on-failure semantics: a
// validation rejection comes back as a *errors.SubmitError carrying the
// rejected value.
func (v *Value[T]) MustSet(value T) error {
	return v.hook.Set(value)
}

// Validate attaches or replaces the validation predicate. It must be
// called before the Value is shared across goroutines; predicates are not
// hot-swappable under concurrent transactions.
func (v *Value[T]) Validate(fn func(T) (bool, string)) {
	v.validateFn = fn
}

// Check reports whether value would be accepted, without committing
// anything.
func (v *Value[T]) Check(value T) (ok bool, reason string) {
	ok, reason, err := v.hook.Manager().ValidateValues(map[nexus.NexusRef]any{
		v.hook.Nexus(): value,
	})
	if err != nil {
		panic(err)
	}
	return ok, reason
}

// Bind merges this Value's group with other's group. mode selects whose
// current value survives.
func (v *Value[T]) Bind(other *Value[T], mode nexus.SyncMode) error {
	return v.hook.Connect(other.hook, mode)
}

// Unbind splits this Value back into its own group, keeping the last
// committed value.
func (v *Value[T]) Unbind() error {
	return v.hook.Disconnect()
}

// AddListener registers fn to run with the new value after each committed
// change. The returned function removes the listener.
func (v *Value[T]) AddListener(fn func(T)) (remove func()) {
	return v.hook.AddListener(func() {
		fn(v.Get())
	})
}

// Hook exposes the backing hook for direct engine access.
func (v *Value[T]) Hook() *nexus.Hook[T] { return v.hook }
