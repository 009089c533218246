package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wraith-go/core/event"
	"wraith-go/domain/script"
)

// ScriptRunner executes automation scripts against a session, one at a time.
type ScriptRunner struct {
	session *Session
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewScriptRunner creates a runner bound to a session.
func NewScriptRunner(s *Session, logger *slog.Logger) *ScriptRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScriptRunner{
		session: s,
		logger:  logger.With("session_id", s.ID()),
	}
}

// IsRunning reports whether a script is currently executing.
func (r *ScriptRunner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Stop cancels the running script, if any.
func (r *ScriptRunner) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
}

// Run executes the script step by step. A failing step aborts the run unless
// it is marked continue-on-failure. Step outcomes are published on the bus.
func (r *ScriptRunner) Run(ctx context.Context, sc *script.Script) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("a script is already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.running = true
	r.cancel = cancel
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		r.running = false
		r.cancel = nil
		r.mu.Unlock()
	}()

	r.logger.Info("Script started", "script", sc.Name, "steps", len(sc.Steps))
	r.session.publishEvent(event.NewScriptStarted(r.session.ID(), sc.Name))

	var runErr error
	for i, step := range sc.Steps {
		if err := runCtx.Err(); err != nil {
			runErr = err
			break
		}

		stepErr := r.executeStep(runCtx, &step)
		r.session.publishEvent(event.NewScriptStepCompleted(r.session.ID(), sc.Name, i, string(step.Op), stepErr))

		if stepErr != nil {
			if step.ContinueOnFailure {
				r.logger.Warn("Script step failed, continuing",
					"script", sc.Name, "step", i, "op", step.Op, "error", stepErr)
				continue
			}
			runErr = fmt.Errorf("step %d (%s): %w", i, step.Op, stepErr)
			break
		}

		r.logger.Debug("Script step completed", "script", sc.Name, "step", i, "op", step.Op)
	}

	r.session.publishEvent(event.NewScriptFinished(r.session.ID(), sc.Name, runErr))
	if runErr != nil {
		r.logger.Error("Script failed", "script", sc.Name, "error", runErr)
	} else {
		r.logger.Info("Script finished", "script", sc.Name)
	}
	return runErr
}

// executeStep dispatches one script step to the session.
func (r *ScriptRunner) executeStep(ctx context.Context, step *script.Step) error {
	opOpts := r.opOptions(step)

	switch step.Op {
	case script.OpOpen:
		var openOpts []OpenOption
		if step.Timeout > 0 {
			openOpts = append(openOpts, WithOpenTimeout(step.Timeout))
		}
		_, _, err := r.session.Open(ctx, step.URL, openOpts...)
		return err

	case script.OpClick:
		_, err := r.session.Click(ctx, step.Selector, opOpts...)
		return err

	case script.OpFill:
		_, err := r.session.Fill(ctx, step.Selector, step.Values, opOpts...)
		return err

	case script.OpSetField:
		_, err := r.session.SetFieldValue(ctx, step.Selector, step.Value, opOpts...)
		return err

	case script.OpEvaluate:
		_, err := r.session.Evaluate(ctx, step.Script, nil, opOpts...)
		return err

	case script.OpWaitSelector:
		return r.session.WaitForSelector(ctx, step.Selector)

	case script.OpWaitText:
		return r.session.WaitForText(ctx, step.Text)

	case script.OpCapture:
		var capOpts []CaptureOption
		if step.Selector != "" {
			capOpts = append(capOpts, WithSelectorRegion(step.Selector))
		}
		return r.session.CaptureTo(ctx, step.Path, capOpts...)

	case script.OpPDF:
		return r.session.PrintToPDF(ctx, step.Path)

	case script.OpSleep:
		timer := time.NewTimer(step.Duration)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}

	default:
		return fmt.Errorf("unknown operation %q", step.Op)
	}
}

// opOptions builds the operation options shared by DOM steps.
func (r *ScriptRunner) opOptions(step *script.Step) []OpOption {
	var opts []OpOption
	if step.ExpectLoading {
		opts = append(opts, ExpectLoading())
	}
	if step.Timeout > 0 {
		opts = append(opts, WithTimeout(step.Timeout))
	}
	return opts
}
