package nexus

// SyncMode selects which side's value survives when two hook groups merge.
type SyncMode int

const (
	// UseCallerValue adopts the connecting hook's current value for the
	// merged group.
	UseCallerValue SyncMode = iota
	// UseTargetValue adopts the target hook's current value for the
	// merged group.
	UseTargetValue
	// PushToTarget adopts the caller's value and requires the target hook
	// to be writable. Used for one-way derived hooks that feed a
	// downstream group.
	PushToTarget
	// PullFromTarget adopts the target's value and requires the caller
	// hook to be writable. Used for one-way derived hooks that track an
	// upstream group.
	PullFromTarget
)

func (m SyncMode) String() string {
	switch m {
	case UseCallerValue:
		return "use-caller-value"
	case UseTargetValue:
		return "use-target-value"
	case PushToTarget:
		return "push-to-target"
	case PullFromTarget:
		return "pull-from-target"
	default:
		return "invalid"
	}
}

// valid reports whether m is a recognized discriminator.
func (m SyncMode) valid() bool {
	return m >= UseCallerValue && m <= PullFromTarget
}

// callerWins reports whether the caller's current value survives the merge.
func (m SyncMode) callerWins() bool {
	return m == UseCallerValue || m == PushToTarget
}
