package session

import (
	"context"
	"testing"
	"time"

	"wraith-go/domain/script"
)

func TestScriptRunner_Run(t *testing.T) {
	driver := newMockDriver()
	driver.existsResult = true
	s := newTestSession(driver)
	runner := NewScriptRunner(s, nil)

	sc := &script.Script{
		Name: "smoke",
		Steps: []script.Step{
			{Op: script.OpEvaluate, Script: "document.title"},
			{Op: script.OpSleep, Duration: 5 * time.Millisecond},
			{Op: script.OpWaitSelector, Selector: "#main"},
		},
	}

	if err := runner.Run(context.Background(), sc); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if driver.evalCount == 0 {
		t.Error("evaluate step never reached the driver")
	}
	if runner.IsRunning() {
		t.Error("IsRunning() = true after Run returned")
	}
}

func TestScriptRunner_Run_StepFailureAborts(t *testing.T) {
	driver := newMockDriver()
	driver.existsResult = false
	s := newTestSession(driver)
	runner := NewScriptRunner(s, nil)

	sc := &script.Script{
		Name: "failing",
		Steps: []script.Step{
			{Op: script.OpClick, Selector: "#missing"},
			{Op: script.OpEvaluate, Script: "1"},
		},
	}

	if err := runner.Run(context.Background(), sc); err == nil {
		t.Fatal("Run() succeeded, want step failure")
	}
	if driver.evalCount != 0 {
		t.Error("step after failure was executed")
	}
}

func TestScriptRunner_Run_ContinueOnFailure(t *testing.T) {
	driver := newMockDriver()
	driver.existsResult = false
	s := newTestSession(driver)
	runner := NewScriptRunner(s, nil)

	sc := &script.Script{
		Name: "tolerant",
		Steps: []script.Step{
			{Op: script.OpClick, Selector: "#missing", ContinueOnFailure: true},
			{Op: script.OpEvaluate, Script: "1"},
		},
	}

	if err := runner.Run(context.Background(), sc); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if driver.evalCount != 1 {
		t.Errorf("evalCount = %v, want 1", driver.evalCount)
	}
}

func TestScriptRunner_Stop(t *testing.T) {
	driver := newMockDriver()
	s := newTestSession(driver)
	runner := NewScriptRunner(s, nil)

	sc := &script.Script{
		Name: "sleeper",
		Steps: []script.Step{
			{Op: script.OpSleep, Duration: 10 * time.Second},
		},
	}

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(context.Background(), sc)
	}()

	// Give the run a moment to enter the sleep step.
	time.Sleep(20 * time.Millisecond)
	runner.Stop()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Run() returned nil after Stop, want cancellation error")
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
