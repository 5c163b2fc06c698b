package errors

import (
	"fmt"
	"os"
)

// LogHandler is an ErrorHandler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

// HandleError logs a NexusError to stderr.
func (h *LogHandler) HandleError(err *NexusError) {
	if err == nil {
		return
	}
	if h.Verbose {
		fmt.Fprintf(os.Stderr, "[nexus error] %s [%s]: %v\n", err.Op, err.Kind, err.Err)
	} else {
		fmt.Fprintf(os.Stderr, "[nexus error] %s: %v\n", err.Op, err.Err)
	}
}

// HandleListenerPanic logs a ListenerError to stderr.
func (h *LogHandler) HandleListenerPanic(err *ListenerError) {
	if err == nil {
		return
	}
	if err.Op != "" {
		fmt.Fprintf(os.Stderr, "[nexus panic] listener during %s: %v\n", err.Op, err.Recovered)
	} else {
		fmt.Fprintf(os.Stderr, "[nexus panic] listener: %v\n", err.Recovered)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", err.StackTrace)
	}
}
