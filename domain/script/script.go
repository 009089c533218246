// Package script defines automation script types: ordered sequences of page
// operations loaded from YAML and executed against a browsing session.
package script

import (
	"fmt"
	"time"
)

// OpType identifies a script step operation.
type OpType string

const (
	OpOpen         OpType = "open"
	OpClick        OpType = "click"
	OpFill         OpType = "fill"
	OpSetField     OpType = "set_field"
	OpEvaluate     OpType = "evaluate"
	OpWaitSelector OpType = "wait_selector"
	OpWaitText     OpType = "wait_text"
	OpCapture      OpType = "capture"
	OpPDF          OpType = "pdf"
	OpSleep        OpType = "sleep"
)

// Script represents an automation script with metadata and execution steps.
type Script struct {
	// Name is the unique identifier for this script
	Name string

	// Description provides a human-readable explanation of what the script does
	Description string

	// Version is the script version for compatibility tracking
	Version string

	// Author is the script creator
	Author string

	// Steps are the ordered execution steps
	Steps []Step
}

// Step represents a single step in script execution.
type Step struct {
	// Op is the operation to perform
	Op OpType

	// URL is the navigation target (open)
	URL string

	// Selector targets an element (click, set_field, wait_selector, capture)
	Selector string

	// Value is the value to fill in (set_field)
	Value string

	// Values maps field names to values (fill)
	Values map[string]string

	// Script is the JavaScript to evaluate (evaluate)
	Script string

	// Text is the text to wait for (wait_text)
	Text string

	// Path is the output file path (capture, pdf)
	Path string

	// Duration is the sleep duration (sleep)
	Duration time.Duration

	// Timeout overrides the session wait timeout for this step
	Timeout time.Duration

	// ExpectLoading waits for a page load cycle triggered by this step
	ExpectLoading bool

	// ContinueOnFailure determines if execution continues when this step fails
	ContinueOnFailure bool
}

// Validate checks that a script is well formed.
func (s *Script) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("script has no name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("script %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("script %q step %d: %w", s.Name, i, err)
		}
	}
	return nil
}

func (s *Step) validate() error {
	switch s.Op {
	case OpOpen:
		if s.URL == "" {
			return fmt.Errorf("open step requires a url")
		}
	case OpClick, OpWaitSelector:
		if s.Selector == "" {
			return fmt.Errorf("%s step requires a selector", s.Op)
		}
	case OpFill:
		if s.Selector == "" || len(s.Values) == 0 {
			return fmt.Errorf("fill step requires a selector and values")
		}
	case OpSetField:
		if s.Selector == "" {
			return fmt.Errorf("set_field step requires a selector")
		}
	case OpEvaluate:
		if s.Script == "" {
			return fmt.Errorf("evaluate step requires a script")
		}
	case OpWaitText:
		if s.Text == "" {
			return fmt.Errorf("wait_text step requires text")
		}
	case OpCapture, OpPDF:
		if s.Path == "" {
			return fmt.Errorf("%s step requires a path", s.Op)
		}
	case OpSleep:
		if s.Duration <= 0 {
			return fmt.Errorf("sleep step requires a positive duration")
		}
	default:
		return fmt.Errorf("unknown operation %q", s.Op)
	}
	return nil
}
