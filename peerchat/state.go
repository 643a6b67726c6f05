package peerchat

// SessionState represents the current room-membership state of the engine.
type SessionState int

const (
	// StateIdle means no room is joined and no join is pending.
	StateIdle SessionState = iota

	// StateJoining means a join call is in flight.
	StateJoining

	// StateActive means a session is established and background loops run.
	StateActive

	// StateLeaving means teardown is in progress.
	StateLeaving

	// StateClosed means the engine has been disposed and accepts no joins.
	StateClosed
)

// String returns the string representation of a SessionState.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateJoining:
		return "joining"
	case StateActive:
		return "active"
	case StateLeaving:
		return "leaving"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateEvent represents a session state change.
type StateEvent struct {
	OldState SessionState
	NewState SessionState
	Session  *Session // nil unless a session exists in the new state
}
