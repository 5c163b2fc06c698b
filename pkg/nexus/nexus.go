package nexus

import (
	"fmt"

	nexuserrors "github.com/go-drift/nexus/pkg/errors"
)

// nexus is one arena node: the set of hooks currently sharing a canonical
// value. Nodes live in the manager's arena map and are addressed by their
// stable id; merging re-points member hooks at the surviving node rather
// than moving live object graphs.
//
// All fields are guarded by the owning manager's lock.
type nexus struct {
	id    uint64
	value any // frozen
	hooks map[*hook]struct{}
}

// NexusRef is a stable, comparable handle to a hook group. Use it to key
// change sets for [Manager.SubmitValues] and [Manager.ValidateValues].
//
// A ref taken before a merge may become stale once its group is absorbed
// into another; stale refs are rejected with a usage error.
type NexusRef struct {
	m  *Manager
	id uint64
}

// Manager returns the manager that owns the referenced nexus.
func (r NexusRef) Manager() *Manager { return r.m }

// Value returns the canonical committed value of the referenced nexus.
// The value is frozen; callers may share it freely.
func (r NexusRef) Value() (any, error) {
	const op = "nexus.NexusRef.Value"
	if r.m == nil {
		return nil, usageError(op, fmt.Errorf("zero NexusRef"))
	}
	unlock := r.m.rlock()
	defer unlock()
	n, ok := r.m.nexuses[r.id]
	if !ok {
		return nil, usageError(op, ErrStaleRef)
	}
	return n.value, nil
}

// Size returns the current number of member hooks.
func (r NexusRef) Size() (int, error) {
	const op = "nexus.NexusRef.Size"
	if r.m == nil {
		return 0, usageError(op, fmt.Errorf("zero NexusRef"))
	}
	unlock := r.m.rlock()
	defer unlock()
	n, ok := r.m.nexuses[r.id]
	if !ok {
		return 0, usageError(op, ErrStaleRef)
	}
	return len(n.hooks), nil
}

func (r NexusRef) String() string {
	return fmt.Sprintf("nexus(%d)", r.id)
}

// usageError wraps err as a programmer-error NexusError.
func usageError(op string, err error) error {
	return &nexuserrors.NexusError{Op: op, Kind: nexuserrors.KindUsage, Err: err}
}
