// Package errors provides structured error handling for the nexus library.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindUsage indicates a programmer error: invalid hook or key
	// references, cross-manager operations, double disconnect, reentrant
	// submission, malformed synchronization modes.
	KindUsage
	// KindImmutability indicates a value that could not be proven immutable.
	KindImmutability
	// KindSubmission indicates a value rejected by validation under strict
	// submit semantics.
	KindSubmission
	// KindListener indicates a panic recovered from a post-commit listener.
	KindListener
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindImmutability:
		return "immutability"
	case KindSubmission:
		return "submission"
	case KindListener:
		return "listener"
	default:
		return "unknown"
	}
}

// NexusError represents a structured error in the nexus library.
type NexusError struct {
	// Op is the operation that failed (e.g., "nexus.Manager.SubmitValues").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *NexusError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *NexusError) Unwrap() error {
	return e.Err
}

// SubmitError represents a value rejected by isolation validation when the
// caller asked for raise-on-failure semantics.
type SubmitError struct {
	// Value is the rejected value.
	Value any
	// Reason is the validation failure reason.
	Reason string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("value %v rejected: %s", e.Value, e.Reason)
}

// ListenerError represents a panic recovered from a change listener during
// post-commit notification. The commit it follows is never rolled back.
type ListenerError struct {
	// Op is the operation that was notifying (e.g., "nexus.Manager.SubmitValues").
	Op string
	// Recovered is the value passed to panic().
	Recovered any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *ListenerError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in listener during %s: %v", e.Op, e.Recovered)
	}
	return fmt.Sprintf("panic in listener: %v", e.Recovered)
}
