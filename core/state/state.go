// Package state defines the page-load state machine for a browsing session.
package state

import "fmt"

// PageState represents the load state of the main frame.
type PageState int

const (
	// StateIdle is the initial state before any navigation is requested.
	StateIdle PageState = iota
	// StateLoading indicates a load cycle is in flight.
	StateLoading
	// StateLoaded indicates the last load cycle completed successfully.
	StateLoaded
	// StateFailed indicates the last load cycle failed.
	StateFailed
	// StateClosed indicates the session has been torn down.
	StateClosed
)

// String returns the string representation of the state.
func (s PageState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateLoaded:
		return "Loaded"
	case StateFailed:
		return "Failed"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
// Key is the current state, value is a list of valid target states.
var validTransitions = map[PageState][]PageState{
	StateIdle:    {StateLoading, StateClosed},
	StateLoading: {StateLoaded, StateFailed, StateClosed},
	StateLoaded:  {StateLoading, StateClosed},
	StateFailed:  {StateLoading, StateClosed},
	StateClosed:  {}, // Terminal state, no transitions allowed
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s PageState) CanTransitionTo(target PageState) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the list of valid target states from the current state.
func (s PageState) ValidTransitions() []PageState {
	return validTransitions[s]
}

// IsTerminal returns true if the state is a terminal state (no further transitions).
func (s PageState) IsTerminal() bool {
	return s == StateClosed
}

// HasPage returns true if at least one load cycle has completed.
func (s PageState) HasPage() bool {
	return s == StateLoaded || s == StateFailed
}

// CanAcceptOperations returns true if page operations may be issued in this state.
// Loading is included: operations triggered from callbacks may race a navigation.
func (s PageState) CanAcceptOperations() bool {
	return s != StateClosed
}

// CanNavigate returns true if a new load cycle may be started in this state.
func (s PageState) CanNavigate() bool {
	return s == StateIdle || s == StateLoaded || s == StateFailed
}

// TransitionError represents an invalid state transition attempt.
type TransitionError struct {
	From   PageState
	To     PageState
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid page state transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid page state transition from %s to %s", e.From, e.To)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(from, to PageState, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason}
}
