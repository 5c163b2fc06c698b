package nexus

import (
	"bytes"
	"runtime"
	"strconv"
)

// gid returns the current goroutine's id. The manager uses it to tell a
// reentrant submission (same goroutine, transaction already open) apart
// from ordinary contention (different goroutine, which just blocks on the
// lock).
func gid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// The first line is "goroutine <id> [<state>]:".
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
