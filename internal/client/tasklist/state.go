package tasklist

// State is where a task stands in the optimistic update lifecycle.
//
//	absent  -> OptimisticallyCreated -> ConfirmedPresent | RolledBack
//	present -> OptimisticallyToggled -> ConfirmedPresent | RolledBack
//	present -> OptimisticallyRemoved -> ConfirmedAbsent  | RolledBack
//
// RolledBack always means the local view was replaced by a reload (or, for
// a failed create, that the placeholder was dropped).
type State int

const (
	ConfirmedPresent State = iota
	OptimisticallyCreated
	OptimisticallyToggled
	OptimisticallyRemoved
	ConfirmedAbsent
	RolledBack
)

func (s State) String() string {
	switch s {
	case ConfirmedPresent:
		return "confirmed-present"
	case OptimisticallyCreated:
		return "optimistically-created"
	case OptimisticallyToggled:
		return "optimistically-toggled"
	case OptimisticallyRemoved:
		return "optimistically-removed"
	case ConfirmedAbsent:
		return "confirmed-absent"
	case RolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Pending reports whether a request for the task is still in flight.
func (s State) Pending() bool {
	return s == OptimisticallyCreated || s == OptimisticallyToggled || s == OptimisticallyRemoved
}

var transitions = map[State][]State{
	OptimisticallyCreated: {ConfirmedPresent, RolledBack},
	OptimisticallyToggled: {ConfirmedPresent, RolledBack},
	OptimisticallyRemoved: {ConfirmedAbsent, RolledBack},
}

// canSettle reports whether an in-flight state may resolve to next.
func canSettle(from, next State) bool {
	for _, s := range transitions[from] {
		if s == next {
			return true
		}
	}
	return false
}
