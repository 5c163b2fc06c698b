package nexus

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Readable is the read capability of a hook: it can provide the group's
// current value and report changes to it.
type Readable[T any] interface {
	Value() (T, error)
	AddListener(fn func()) (remove func())
}

// Writable is the write capability of a hook: it can propose a new value
// for the group.
type Writable[T any] interface {
	Set(value T) error
}

// hook is the type-erased core of a Hook. It is always a member of exactly
// one nexus. Structural fields (nexus membership, activation) are written
// under the manager lock and additionally guarded by mu so diagnostic reads
// do not need a full transaction.
type hook struct {
	id    uuid.UUID
	mgr   *Manager
	owner any
	key   string

	mu        sync.RWMutex
	nexusID   uint64
	active    bool
	readable  bool
	writable  bool
	listeners map[uint64]func()
	nextLID   uint64
}

// snapshotListeners copies the current listener set for invocation outside
// the hook lock.
func (h *hook) snapshotListeners() []func() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.listeners) == 0 {
		return nil
	}
	fns := make([]func(), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// Hook is a typed slot into a shared value slot. Every hook belongs to
// exactly one nexus (hook group); all members of a group observe the same
// canonical value at any externally visible instant.
//
// The canonical value is stored frozen (see package immutable). T should be
// a type that freezes to itself: a scalar, one of the immutable wrapper
// types, or a type registered with the manager's registry. Composite
// mutable types are converted on commit and can no longer be read back
// through the typed accessor.
type Hook[T any] struct {
	c *hook
}

// HookOption configures hook construction.
type HookOption func(*hookConfig)

type hookConfig struct {
	readable bool
	writable bool
	active   bool
}

// ReadOnly removes the hook's write capability.
func ReadOnly() HookOption {
	return func(c *hookConfig) { c.writable = false }
}

// WriteOnly removes the hook's read capability.
func WriteOnly() HookOption {
	return func(c *hookConfig) { c.readable = false }
}

// Inactive creates the hook deactivated; it rejects get and set until
// Activate is called.
func Inactive() HookOption {
	return func(c *hookConfig) { c.active = false }
}

// New creates a hook owned by owner under the given key, as the sole member
// of a fresh nexus holding initial. The (owner, key) pair must be unique
// within the manager; the key names the hook in the owner's consumer
// callbacks (see Deriver and Validator).
func New[T any](m *Manager, owner any, key string, initial T, opts ...HookOption) (*Hook[T], error) {
	cfg := hookConfig{readable: true, writable: true, active: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	c, err := m.newHook(owner, key, initial, cfg)
	if err != nil {
		return nil, err
	}
	return &Hook[T]{c: c}, nil
}

// NewBound creates a hook pre-bound to other's nexus. The bind-time value
// is chosen by mode exactly as in [Hook.Connect]; the caller's current
// value is the zero value of T.
func NewBound[T any](owner any, key string, other *Hook[T], mode SyncMode, opts ...HookOption) (*Hook[T], error) {
	const op = "nexus.NewBound"
	if other == nil || other.c == nil {
		return nil, usageError(op, fmt.Errorf("target hook is nil"))
	}
	var zero T
	h, err := New(other.c.mgr, owner, key, zero, opts...)
	if err != nil {
		return nil, err
	}
	if err := h.Connect(other, mode); err != nil {
		h.c.mgr.removeHook(h.c)
		return nil, err
	}
	return h, nil
}

// ID returns the hook's unique identity, used in diagnostics.
func (h *Hook[T]) ID() uuid.UUID { return h.c.id }

// Key returns the key the hook was registered under.
func (h *Hook[T]) Key() string { return h.c.key }

// Owner returns the consumer that created the hook.
func (h *Hook[T]) Owner() any { return h.c.owner }

// Manager returns the manager coordinating the hook's nexus.
func (h *Hook[T]) Manager() *Manager { return h.c.mgr }

// Active reports whether the hook currently participates in get and set.
func (h *Hook[T]) Active() bool {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return h.c.active
}

// Nexus returns a handle to the hook's current group.
func (h *Hook[T]) Nexus() NexusRef {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return NexusRef{m: h.c.mgr, id: h.c.nexusID}
}

// Value returns the group's canonical value. It fails with a usage error
// if the hook has no read capability, is deactivated, or the canonical
// value's frozen form is not a T.
func (h *Hook[T]) Value() (T, error) {
	const op = "nexus.Hook.Value"
	var zero T
	h.c.mu.RLock()
	active, readable := h.c.active, h.c.readable
	h.c.mu.RUnlock()
	if !readable {
		return zero, usageError(op, ErrNotReadable)
	}
	if !active {
		return zero, usageError(op, ErrDeactivated)
	}
	v, err := h.Nexus().Value()
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	tv, ok := v.(T)
	if !ok {
		return zero, usageError(op, fmt.Errorf("canonical value %T is not assignable to hook type", v))
	}
	return tv, nil
}

// Set proposes value for the hook's group through the manager's submit
// protocol. It fails with a usage error if the hook has no write capability
// or is deactivated, and with a *errors.SubmitError if validation rejects
// the value.
func (h *Hook[T]) Set(value T) error {
	const op = "nexus.Hook.Set"
	h.c.mu.RLock()
	active, writable := h.c.active, h.c.writable
	h.c.mu.RUnlock()
	if !writable {
		return usageError(op, ErrNotWritable)
	}
	if !active {
		return usageError(op, ErrDeactivated)
	}
	return h.c.mgr.submitHook(op, h.c, value)
}

// Connect merges this hook's nexus with other's nexus. mode selects whose
// current value the merged group adopts. The surviving value is routed
// through the full submit protocol, so dependent values recompute and
// validators may veto the merge, in which case the membership change is
// unwound and the reason returned as an error.
func (h *Hook[T]) Connect(other *Hook[T], mode SyncMode) error {
	const op = "nexus.Hook.Connect"
	if other == nil || other.c == nil {
		return usageError(op, fmt.Errorf("target hook is nil"))
	}
	return h.c.mgr.connect(op, h.c, other.c, mode)
}

// Disconnect removes the hook from its current nexus into a fresh
// singleton nexus retaining the group's last committed value. Calling it
// on an already-disconnected hook is a usage error, not a silent no-op.
func (h *Hook[T]) Disconnect() error {
	const op = "nexus.Hook.Disconnect"
	return h.c.mgr.disconnect(op, h.c)
}

// Activate re-enables get and set and proposes initial for the hook's
// group through the submit protocol.
func (h *Hook[T]) Activate(initial T) error {
	const op = "nexus.Hook.Activate"
	h.c.mu.Lock()
	h.c.active = true
	h.c.mu.Unlock()
	return h.c.mgr.submitHook(op, h.c, initial)
}

// Deactivate disables get and set. It is safe to call concurrently with
// in-flight reads elsewhere in the same nexus.
func (h *Hook[T]) Deactivate() {
	h.c.mu.Lock()
	h.c.active = false
	h.c.mu.Unlock()
}

// Release detaches the hook from its group and unregisters it from its
// owner, ending its lifecycle. Further operations on the hook report
// usage errors.
func (h *Hook[T]) Release() {
	h.c.mgr.removeHook(h.c)
	h.Deactivate()
}

// AddListener registers fn to run after a transaction commits a new value
// observed by this hook. The returned function removes the listener.
func (h *Hook[T]) AddListener(fn func()) (remove func()) {
	if fn == nil {
		return func() {}
	}
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	if h.c.listeners == nil {
		h.c.listeners = make(map[uint64]func())
	}
	id := h.c.nextLID
	h.c.nextLID++
	h.c.listeners[id] = fn
	return func() {
		h.c.mu.Lock()
		defer h.c.mu.Unlock()
		delete(h.c.listeners, id)
	}
}

func (h *Hook[T]) String() string {
	h.c.mu.RLock()
	defer h.c.mu.RUnlock()
	return fmt.Sprintf("hook(%s key=%q nexus=%d active=%t)", h.c.id, h.c.key, h.c.nexusID, h.c.active)
}
