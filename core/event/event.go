// Package event defines all events that can be published by a browsing session.
// Events represent engine callbacks and operation milestones and are consumed
// by subscribers such as the coordinator or the resource archive.
package event

// Event is the base interface for all events.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// SessionEvent is an event that originates from a specific session.
type SessionEvent interface {
	Event
	// SessionID returns the source session ID
	SessionID() string
}

// baseSessionEvent provides common implementation for session events.
type baseSessionEvent struct {
	sessionID string
}

func (e *baseSessionEvent) SessionID() string {
	return e.sessionID
}

// SessionStarted is published when a session's browser has started.
type SessionStarted struct {
	baseSessionEvent
}

func NewSessionStarted(sessionID string) *SessionStarted {
	return &SessionStarted{baseSessionEvent: baseSessionEvent{sessionID: sessionID}}
}

func (e *SessionStarted) EventName() string {
	return "SessionStarted"
}

// SessionClosed is published when a session is torn down.
type SessionClosed struct {
	baseSessionEvent
	Error error // nil if closed normally
}

func NewSessionClosed(sessionID string, err error) *SessionClosed {
	return &SessionClosed{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Error:            err,
	}
}

func (e *SessionClosed) EventName() string {
	return "SessionClosed"
}
