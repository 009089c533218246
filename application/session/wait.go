package session

import (
	"context"
	"fmt"
	"time"

	"wraith-go/core/state"
)

// waitFor blocks until cond holds, re-checking on every poll tick, or fails
// with a TimeoutError carrying msg once the timeout elapses. The configured
// WaitCallback runs on each iteration.
func (s *Session) waitFor(ctx context.Context, timeout time.Duration, msg string, cond func(context.Context) (bool, error)) error {
	if timeout <= 0 {
		timeout = s.config.WaitTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		if s.config.WaitCallback != nil {
			s.config.WaitCallback()
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			return &TimeoutError{Message: msg, Timeout: timeout}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// waitLoadComplete blocks until a load cycle beyond sinceSeq completes.
// It reports whether the cycle succeeded.
func (s *Session) waitLoadComplete(ctx context.Context, sinceSeq uint64, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.config.WaitTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		s.stateMu.RLock()
		seq := s.loadSeq
		st := s.pageState
		errText := s.loadErr
		target := s.targetURL
		notify := s.loadNotify
		s.stateMu.RUnlock()

		if st == state.StateClosed {
			return fmt.Errorf("session %s is closed", s.id)
		}
		if seq > sinceSeq {
			if st == state.StateFailed {
				return &LoadError{URL: target, Reason: errText}
			}
			return nil
		}

		if s.config.WaitCallback != nil {
			s.config.WaitCallback()
		}

		select {
		case <-notify:
		case <-deadline.C:
			return &TimeoutError{Message: "Unable to load requested page", Timeout: timeout}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// WaitForPageLoaded blocks until the in-flight load cycle completes. With no
// cycle in flight it returns the outcome of the last one, or waits for the
// next cycle when none has run yet.
func (s *Session) WaitForPageLoaded(ctx context.Context) error {
	if err := s.checkOperational(); err != nil {
		return err
	}

	s.stateMu.RLock()
	st := s.pageState
	seq := s.loadSeq
	errText := s.loadErr
	target := s.targetURL
	s.stateMu.RUnlock()

	switch st {
	case state.StateLoaded:
		return nil
	case state.StateFailed:
		return &LoadError{URL: target, Reason: errText}
	}

	// Loading or Idle: wait for the next completion.
	return s.waitLoadComplete(ctx, seq, 0)
}

// WaitForSelector blocks until the selector matches an element.
func (s *Session) WaitForSelector(ctx context.Context, selector string) error {
	if err := s.checkOperational(); err != nil {
		return err
	}
	msg := fmt.Sprintf("Can't find element matching %q", selector)
	return s.waitFor(ctx, 0, msg, func(ctx context.Context) (bool, error) {
		return s.driver.Exists(ctx, selector)
	})
}

// WaitForText blocks until the page's text content contains text.
func (s *Session) WaitForText(ctx context.Context, text string) error {
	if err := s.checkOperational(); err != nil {
		return err
	}
	expr := fmt.Sprintf(
		"document.documentElement !== null && document.documentElement.textContent.indexOf(%s) !== -1",
		jsString(text))
	msg := fmt.Sprintf("Can't find %q in current frame", text)
	return s.waitFor(ctx, 0, msg, func(ctx context.Context) (bool, error) {
		var found bool
		if err := s.driver.Evaluate(ctx, expr, &found); err != nil {
			return false, err
		}
		return found, nil
	})
}

// WaitForAlert blocks until the page raises an alert and returns its message.
func (s *Session) WaitForAlert(ctx context.Context) (string, error) {
	if err := s.checkOperational(); err != nil {
		return "", err
	}

	timeout := s.config.WaitTimeout
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		if msg, ok := s.interceptor.TakeAlert(); ok {
			return msg, nil
		}

		if s.config.WaitCallback != nil {
			s.config.WaitCallback()
		}

		select {
		case <-s.alertCh:
		case <-ticker.C:
		case <-deadline.C:
			return "", &TimeoutError{Message: "User has not been alerted", Timeout: timeout}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}
