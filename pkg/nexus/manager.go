package nexus

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	nexuserrors "github.com/go-drift/nexus/pkg/errors"
	"github.com/go-drift/nexus/pkg/immutable"
)

// maxDerivationRounds bounds the derivation closure. A consumer whose
// callbacks keep proposing new values past this point is oscillating, not
// converging.
const maxDerivationRounds = 1000

// Manager orchestrates atomic transactions over one or more nexuses: the
// derivation closure, isolation validation, commit, listener notification,
// reentrancy guarding and value freezing. One manager instance is shared by
// every hook that must be transactionally consistent with the others;
// hooks under different managers never contend and can never be connected.
//
// All mutation runs under one mutex per manager. Transactions are strictly
// serialized: a concurrent submitter on another goroutine blocks, while a
// nested submission from the same goroutine (typically from a notification
// callback) panics with a usage error rather than deadlocking.
type Manager struct {
	mu    sync.Mutex
	txGID atomic.Uint64 // goroutine id of the open transaction, 0 if none

	nextID  uint64
	nexuses map[uint64]*nexus
	owners  map[any]map[string]*hook

	registry *immutable.Registry
}

// ManagerOption configures manager construction.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	types []reflect.Type
}

// WithImmutableTypes pre-registers types in the manager's immutability
// registry. Values of these types pass through freezing by identity.
func WithImmutableTypes(types ...reflect.Type) ManagerOption {
	return func(c *managerConfig) { c.types = append(c.types, types...) }
}

// NewManager creates an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	var cfg managerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{
		nextID:   1,
		nexuses:  make(map[uint64]*nexus),
		owners:   make(map[any]map[string]*hook),
		registry: immutable.NewRegistry(cfg.types...),
	}
}

// Registry returns the manager's immutability registry. Types may be
// registered and unregistered at any time; registration affects values
// frozen by later transactions.
func (m *Manager) Registry() *immutable.Registry { return m.registry }

// begin opens a transaction: it rejects same-goroutine reentry, then takes
// the manager lock. The returned func closes the transaction; call it with
// defer so the lock clears even on a panic.
func (m *Manager) begin(op string) func() {
	g := gid()
	if g != 0 && m.txGID.Load() == g {
		panic(usageError(op, ErrReentrantSubmission))
	}
	m.mu.Lock()
	m.txGID.Store(g)
	return func() {
		m.txGID.Store(0)
		m.mu.Unlock()
	}
}

// rlock takes the manager lock for a read unless the current goroutine
// already holds it inside an open transaction, which lets notification
// callbacks read committed state without deadlocking.
func (m *Manager) rlock() func() {
	if g := gid(); g != 0 && m.txGID.Load() == g {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// SubmitValues runs the full two-phase protocol over the proposed changes:
// derivation closure, isolation validation, freeze-and-commit, listener
// notification.
//
// The returned ok and reason carry the validation outcome; a validation
// failure is routine and leaves every nexus untouched. err reports fatal
// conditions: programmer errors, unfreezable values, callback panics, and
// listener panics (which arrive after the commit already happened and do
// not roll it back). An empty change set is a trivial success.
func (m *Manager) SubmitValues(changes map[NexusRef]any) (ok bool, reason string, err error) {
	const op = "nexus.Manager.SubmitValues"
	return m.submit(op, changes, true)
}

// ValidateValues runs only the derivation closure and isolation validation
// over the proposed changes. It never mutates state, so consumers can
// pre-check a change without side effects.
func (m *Manager) ValidateValues(changes map[NexusRef]any) (ok bool, reason string, err error) {
	const op = "nexus.Manager.ValidateValues"
	return m.submit(op, changes, false)
}

func (m *Manager) submit(op string, changes map[NexusRef]any, commit bool) (bool, string, error) {
	if len(changes) == 0 {
		return true, "", nil
	}
	done := m.begin(op)
	defer done()

	proposals := make(map[uint64]any, len(changes))
	for ref, v := range changes {
		if ref.m != m {
			return false, "", usageError(op, ErrDisjointNexus)
		}
		if _, exists := m.nexuses[ref.id]; !exists {
			return false, "", usageError(op, ErrStaleRef)
		}
		proposals[ref.id] = v
	}
	ok, reason, _, err := m.submitLocked(op, proposals, nil, commit)
	return ok, reason, err
}

// submitHook proposes a single value for h's nexus with raise-on-failure
// semantics: a validation rejection comes back as a *errors.SubmitError
// carrying the rejected value.
func (m *Manager) submitHook(op string, h *hook, value any) error {
	done := m.begin(op)
	defer done()
	n, exists := m.nexuses[h.nexusID]
	if !exists {
		return usageError(op, ErrStaleRef)
	}
	ok, reason, _, err := m.submitLocked(op, map[uint64]any{n.id: value}, nil, true)
	if err != nil {
		return err
	}
	if !ok {
		return &nexuserrors.SubmitError{Value: value, Reason: reason}
	}
	return nil
}

// submitLocked is the transaction core. The manager lock must be held.
//
// proposals maps nexus ids to raw proposed values; seed names owners whose
// derivation callbacks must run even when no proposal touches their hooks
// (used by merges, where membership itself changed). When commit is false
// the candidate state is validated and discarded.
//
// The returned changed map is non-nil exactly when the commit phase was
// reached; it maps the written nexus ids to their new frozen values (empty
// when the candidate collapsed to a no-op). A non-nil err alongside a
// non-nil changed map is a listener panic: the commit stands.
func (m *Manager) submitLocked(op string, proposals map[uint64]any, seed map[any]struct{}, commit bool) (ok bool, reason string, changed map[uint64]any, err error) {
	candidate := make(map[uint64]any, len(proposals))
	for nid, v := range proposals {
		fv, ferr := immutable.Freeze(v, m.registry)
		if ferr != nil {
			return false, "", nil, immutabilityError(op, ferr)
		}
		if !immutable.Equal(m.nexuses[nid].value, fv) {
			candidate[nid] = fv
		}
	}

	// Phase 1: derivation closure. Keep consulting affected owners until
	// no callback proposes a change the candidate does not already hold.
	for round := 0; ; round++ {
		if round >= maxDerivationRounds {
			return false, "", nil, usageError(op, fmt.Errorf("derivation closure did not converge after %d rounds", maxDerivationRounds))
		}
		progress := false
		for owner := range m.affectedOwners(candidate, seed) {
			d, isDeriver := owner.(Deriver)
			if !isDeriver {
				continue
			}
			additions, derr := safeDerive(op, d, m.ownerView(owner, candidate))
			if derr != nil {
				return false, "", nil, derr
			}
			for key, val := range additions {
				h := m.lookupHook(owner, key)
				if h == nil {
					return false, "", nil, usageError(op, fmt.Errorf("values-to-update callback proposed unknown key %q", key))
				}
				fv, ferr := immutable.Freeze(val, m.registry)
				if ferr != nil {
					return false, "", nil, immutabilityError(op, ferr)
				}
				nid := h.nexusID
				if cur, in := candidate[nid]; in {
					if !immutable.Equal(cur, fv) {
						candidate[nid] = fv
						progress = true
					}
				} else if !immutable.Equal(m.nexuses[nid].value, fv) {
					candidate[nid] = fv
					progress = true
				}
			}
		}
		if !progress {
			break
		}
	}

	// Phase 2: isolation validation over the fully-merged candidate.
	for owner := range m.affectedOwners(candidate, seed) {
		v, isValidator := owner.(Validator)
		if !isValidator {
			continue
		}
		vok, vreason, verr := safeValidate(op, v, m.ownerView(owner, candidate))
		if verr != nil {
			return false, "", nil, verr
		}
		if !vok {
			return false, vreason, nil, nil
		}
	}

	if !commit || len(candidate) == 0 {
		if commit {
			// Nothing changed; a committed no-op still succeeds but
			// must not notify anyone.
			return true, "", candidate, nil
		}
		return true, "", nil, nil
	}

	// Phase 3: commit. Values were frozen on the way into the candidate,
	// so no write can fail here.
	for nid, fv := range candidate {
		m.nexuses[nid].value = fv
	}

	// Phase 4: notification.
	err = m.notifyLocked(op, candidate)
	return true, "", candidate, err
}

// affectedOwners returns the owners touched by the candidate state plus
// the seed owners.
func (m *Manager) affectedOwners(candidate map[uint64]any, seed map[any]struct{}) map[any]struct{} {
	owners := make(map[any]struct{}, len(seed))
	for owner := range seed {
		owners[owner] = struct{}{}
	}
	for nid := range candidate {
		for h := range m.nexuses[nid].hooks {
			owners[h.owner] = struct{}{}
		}
	}
	return owners
}

// ownerView assembles the owner's full key set: committed values overlaid
// with the candidate's pending changes.
func (m *Manager) ownerView(owner any, candidate map[uint64]any) map[string]any {
	byKey := m.owners[owner]
	view := make(map[string]any, len(byKey))
	for key, h := range byKey {
		if v, in := candidate[h.nexusID]; in {
			view[key] = v
		} else {
			view[key] = m.nexuses[h.nexusID].value
		}
	}
	return view
}

func (m *Manager) lookupHook(owner any, key string) *hook {
	if byKey, exists := m.owners[owner]; exists {
		return byKey[key]
	}
	return nil
}

// notifyLocked invokes per-hook listeners of every changed nexus and then
// the OnInvalidated callback of every affected owner. Panics are recovered
// and reported; the first becomes the returned error. Programmer-error
// panics (reentrant submission) propagate instead.
func (m *Manager) notifyLocked(op string, changed map[uint64]any) error {
	nids := make([]uint64, 0, len(changed))
	for nid := range changed {
		nids = append(nids, nid)
	}
	sort.Slice(nids, func(i, j int) bool { return nids[i] < nids[j] })

	var first error
	owners := make(map[any]struct{})
	for _, nid := range nids {
		for h := range m.nexuses[nid].hooks {
			owners[h.owner] = struct{}{}
			for _, fn := range h.snapshotListeners() {
				if err := m.runCallback(op, fn); err != nil && first == nil {
					first = err
				}
			}
		}
	}
	for owner := range owners {
		inv, isInvalidated := owner.(Invalidated)
		if !isInvalidated {
			continue
		}
		if err := m.runCallback(op, inv.OnInvalidated); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// notifyHooksLocked notifies just the given hooks, for membership changes
// that adopted a value without writing one.
func (m *Manager) notifyHooksLocked(op string, hooks []*hook) error {
	var first error
	owners := make(map[any]struct{})
	for _, h := range hooks {
		owners[h.owner] = struct{}{}
		for _, fn := range h.snapshotListeners() {
			if err := m.runCallback(op, fn); err != nil && first == nil {
				first = err
			}
		}
	}
	for owner := range owners {
		if inv, isInvalidated := owner.(Invalidated); isInvalidated {
			if err := m.runCallback(op, inv.OnInvalidated); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// runCallback invokes a post-commit callback, converting panics into
// reported ListenerErrors. NexusError panics are programmer errors (for
// example a reentrant submission from inside the callback) and propagate
// to the submitter unchanged.
func (m *Manager) runCallback(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ne, isNexusError := r.(*nexuserrors.NexusError); isNexusError {
				panic(ne)
			}
			le := &nexuserrors.ListenerError{
				Op:         op,
				Recovered:  r,
				StackTrace: nexuserrors.CaptureStack(),
			}
			nexuserrors.ReportListener(le)
			err = le
		}
	}()
	fn()
	return nil
}

// safeDerive calls a values-to-update callback, treating a panic as an
// unrecoverable inconsistency that aborts the transaction.
func safeDerive(op string, d Deriver, view map[string]any) (additions map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ne, isNexusError := r.(*nexuserrors.NexusError); isNexusError {
				panic(ne)
			}
			additions = nil
			err = usageError(op, fmt.Errorf("values-to-update callback panicked: %v", r))
		}
	}()
	return d.ValuesToUpdate(view), nil
}

// safeValidate calls a validation callback, treating a panic as an
// unrecoverable inconsistency that aborts the transaction.
func safeValidate(op string, v Validator, view map[string]any) (ok bool, reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ne, isNexusError := r.(*nexuserrors.NexusError); isNexusError {
				panic(ne)
			}
			ok, reason = false, ""
			err = usageError(op, fmt.Errorf("validation callback panicked: %v", r))
		}
	}()
	ok, reason = v.ValidateValues(view)
	return ok, reason, nil
}

// immutabilityError wraps a freeze failure.
func immutabilityError(op string, err error) error {
	return &nexuserrors.NexusError{Op: op, Kind: nexuserrors.KindImmutability, Err: err}
}

// newHook creates a hook as the sole member of a fresh nexus holding the
// frozen initial value and registers it under (owner, key).
func (m *Manager) newHook(owner any, key string, initial any, cfg hookConfig) (*hook, error) {
	const op = "nexus.New"
	if owner == nil {
		return nil, usageError(op, fmt.Errorf("hook owner is nil"))
	}
	if key == "" {
		return nil, usageError(op, fmt.Errorf("hook key is empty"))
	}
	fv, err := immutable.Freeze(initial, m.registry)
	if err != nil {
		return nil, immutabilityError(op, err)
	}

	done := m.begin(op)
	defer done()
	if m.lookupHook(owner, key) != nil {
		return nil, usageError(op, fmt.Errorf("owner already has a hook under key %q", key))
	}
	h := &hook{
		id:       uuid.New(),
		mgr:      m,
		owner:    owner,
		key:      key,
		active:   cfg.active,
		readable: cfg.readable,
		writable: cfg.writable,
	}
	id := m.nextID
	m.nextID++
	m.nexuses[id] = &nexus{id: id, value: fv, hooks: map[*hook]struct{}{h: {}}}
	h.nexusID = id
	byKey := m.owners[owner]
	if byKey == nil {
		byKey = make(map[string]*hook)
		m.owners[owner] = byKey
	}
	byKey[key] = h
	return h, nil
}

// removeHook detaches h from its nexus and unregisters it from its owner.
// The hook's nexus id becomes stale; further use reports usage errors.
func (m *Manager) removeHook(h *hook) {
	const op = "nexus.Hook.Release"
	done := m.begin(op)
	defer done()
	if n, exists := m.nexuses[h.nexusID]; exists {
		delete(n.hooks, h)
		if len(n.hooks) == 0 {
			delete(m.nexuses, n.id)
		}
	}
	if byKey, exists := m.owners[h.owner]; exists {
		delete(byKey, h.key)
		if len(byKey) == 0 {
			delete(m.owners, h.owner)
		}
	}
}

// connect merges a's nexus with b's. The winning side's nexus survives;
// the losing side's hooks are re-pointed at it and its arena entry is
// discarded. The surviving value is then routed through the submit
// protocol so dependent values recompute atomically; a validation failure
// unwinds the membership change.
func (m *Manager) connect(op string, a, b *hook, mode SyncMode) error {
	if a.mgr != b.mgr {
		return usageError(op, ErrDisjointNexus)
	}
	if !mode.valid() {
		return usageError(op, fmt.Errorf("invalid sync mode %d", int(mode)))
	}
	if mode == PushToTarget {
		b.mu.RLock()
		writable := b.writable
		b.mu.RUnlock()
		if !writable {
			return usageError(op, fmt.Errorf("push-to-target requires a writable target: %w", ErrNotWritable))
		}
	}
	if mode == PullFromTarget {
		a.mu.RLock()
		writable := a.writable
		a.mu.RUnlock()
		if !writable {
			return usageError(op, fmt.Errorf("pull-from-target requires a writable caller: %w", ErrNotWritable))
		}
	}

	done := m.begin(op)
	defer done()
	na, nb := m.nexuses[a.nexusID], m.nexuses[b.nexusID]
	if na == nb {
		return usageError(op, ErrAlreadyConnected)
	}
	survivor, absorbed := na, nb
	if !mode.callerWins() {
		survivor, absorbed = nb, na
	}
	winner := survivor.value
	absorbedID, absorbedValue := absorbed.id, absorbed.value

	moved := make([]*hook, 0, len(absorbed.hooks))
	for h := range absorbed.hooks {
		moved = append(moved, h)
		survivor.hooks[h] = struct{}{}
		h.mu.Lock()
		h.nexusID = survivor.id
		h.mu.Unlock()
	}
	delete(m.nexuses, absorbedID)

	unwind := func() {
		restored := &nexus{id: absorbedID, value: absorbedValue, hooks: make(map[*hook]struct{}, len(moved))}
		for _, h := range moved {
			delete(survivor.hooks, h)
			restored.hooks[h] = struct{}{}
			h.mu.Lock()
			h.nexusID = absorbedID
			h.mu.Unlock()
		}
		m.nexuses[absorbedID] = restored
	}

	// Both sides' owners may hold derived values over the merged group, so
	// seed the closure with all of them even though no value was proposed.
	seed := make(map[any]struct{}, len(survivor.hooks))
	for h := range survivor.hooks {
		seed[h.owner] = struct{}{}
	}
	ok, reason, changed, err := m.submitLocked(op, nil, seed, true)
	if err != nil && changed == nil {
		unwind()
		return err
	}
	if !ok {
		unwind()
		return &nexuserrors.SubmitError{Value: winner, Reason: reason}
	}

	// The moved hooks adopted the surviving value by membership alone. If
	// the submit protocol did not already notify the surviving nexus,
	// notify them here, but only when their observed value actually
	// changed: merging equal values is a silent no-op.
	var listenerErr error
	if _, notified := changed[survivor.id]; !notified && !immutable.Equal(absorbedValue, winner) {
		listenerErr = m.notifyHooksLocked(op, moved)
	}
	if err != nil {
		return err
	}
	return listenerErr
}

// disconnect splits h into a fresh singleton nexus preserving the group's
// last committed value. The remaining group is unaffected.
func (m *Manager) disconnect(op string, h *hook) error {
	done := m.begin(op)
	defer done()
	n, exists := m.nexuses[h.nexusID]
	if !exists {
		return usageError(op, ErrStaleRef)
	}
	if len(n.hooks) <= 1 {
		return usageError(op, ErrNotConnected)
	}
	delete(n.hooks, h)
	id := m.nextID
	m.nextID++
	m.nexuses[id] = &nexus{id: id, value: n.value, hooks: map[*hook]struct{}{h: {}}}
	h.mu.Lock()
	h.nexusID = id
	h.mu.Unlock()
	return nil
}
