package session

import (
	"fmt"
	"time"
)

// TimeoutError is returned when a wait operation exceeds its deadline.
type TimeoutError struct {
	Message string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s (timed out after %s)", e.Message, e.Timeout)
}

// ElementNotFoundError is returned when a selector matches no element.
type ElementNotFoundError struct {
	Selector string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("can't find element matching %q", e.Selector)
}

// LoadError is returned when a load cycle completes with a failure.
type LoadError struct {
	URL    string
	Reason string
}

func (e *LoadError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("failed to load %s: %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("failed to load %s", e.URL)
}

// FieldError is returned when a form field cannot be set.
type FieldError struct {
	Selector string
	Reason   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("can't set field %q: %s", e.Selector, e.Reason)
}
