package nexus

import "errors"

// Sentinel errors reported inside *errors.NexusError values. Match them
// with errors.Is.
var (
	// ErrReentrantSubmission is raised (as a panic) when a transaction is
	// opened on a manager that already has one in flight on the same
	// goroutine, typically from inside a notification callback.
	ErrReentrantSubmission = errors.New("reentrant submission on the same manager")

	// ErrDisjointNexus reports an operation spanning two different
	// managers. Consistency transactions only span one manager.
	ErrDisjointNexus = errors.New("hooks belong to disjoint nexus managers")

	// ErrAlreadyConnected reports a connect between hooks that already
	// share a nexus.
	ErrAlreadyConnected = errors.New("hooks are already members of the same nexus")

	// ErrNotConnected reports a disconnect of a hook that is already the
	// sole member of its nexus.
	ErrNotConnected = errors.New("hook is already disconnected")

	// ErrDeactivated reports a get or set on a deactivated hook.
	ErrDeactivated = errors.New("hook is deactivated")

	// ErrNotReadable reports a get on a hook without read capability.
	ErrNotReadable = errors.New("hook has no read capability")

	// ErrNotWritable reports a set on a hook without write capability.
	ErrNotWritable = errors.New("hook has no write capability")

	// ErrStaleRef reports a NexusRef whose nexus no longer exists, for
	// example after the group was merged away.
	ErrStaleRef = errors.New("nexus reference is stale")
)
