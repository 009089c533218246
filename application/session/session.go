// Package session implements the synchronous scripting surface over a
// browser driver: navigation, DOM operations, waits, dialog expectations,
// capture and resource collection.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wraith-go/core/event"
	"wraith-go/core/eventbus"
	"wraith-go/core/state"
	"wraith-go/domain/dialog"
	"wraith-go/domain/resource"
	"wraith-go/infrastructure/browser"
	"wraith-go/infrastructure/display"
)

// Default timing parameters, matching the historical defaults of the tool
// this layer descends from.
const (
	DefaultWaitTimeout  = 8 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Config holds configuration for creating a new Session.
type Config struct {
	// ID identifies the session; the coordinator assigns a UUID.
	ID string

	// Driver is the browser driver the session operates.
	Driver browser.Driver

	// EventBus receives session events. Optional.
	EventBus eventbus.EventBus

	// WaitTimeout bounds every wait operation.
	WaitTimeout time.Duration

	// PollInterval is the DOM-condition re-check interval for waits.
	PollInterval time.Duration

	// WaitCallback, when set, is invoked on every wait iteration.
	WaitCallback func()

	// Headless disables the virtual display. When false and the host has no
	// DISPLAY, an Xvfb server is spawned for the lifetime of the session.
	Headless bool

	// DisplayConfig configures the virtual display when Headless is false.
	DisplayConfig *display.Config

	// Logger is the session logger. Optional.
	Logger *slog.Logger
}

// Session drives a single browser instance. All operations are synchronous:
// they return once the engine has settled, or fail with a timeout.
type Session struct {
	id     string
	config *Config

	driver      browser.Driver
	eventBus    eventbus.EventBus
	interceptor *dialog.Interceptor
	collector   *collector
	disp        *display.Manager
	logger      *slog.Logger

	stateMu    sync.RWMutex
	pageState  state.PageState
	loadSeq    uint64        // completed load cycles
	loadNotify chan struct{} // closed and replaced on every completion
	loadErr    string        // engine error text of the last failed cycle
	targetURL  string        // last requested navigation target

	alertCh chan struct{} // pinged when an alert is recorded

	closeOnce sync.Once
	closeErr  error
}

// New creates a new Session. Call Start before issuing operations.
func New(cfg *Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = DefaultWaitTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	s := &Session{
		id:          cfg.ID,
		config:      cfg,
		driver:      cfg.Driver,
		eventBus:    cfg.EventBus,
		interceptor: dialog.NewInterceptor(),
		logger:      cfg.Logger.With("session_id", cfg.ID),
		pageState:   state.StateIdle,
		loadNotify:  make(chan struct{}),
		alertCh:     make(chan struct{}, 1),
	}

	s.collector = newCollector(resource.NewBuffer(), s.driver.ResponseBody, func(r *resource.Resource) {
		s.publishEvent(event.NewResourceCaptured(s.id, r.URL, r.Status))
	}, s.logger)

	return s
}

// Start launches the browser, spawning a virtual display first when the
// session is configured to run a visible browser.
func (s *Session) Start(ctx context.Context) error {
	if !s.config.Headless {
		disp, err := display.Ensure(s.config.DisplayConfig, s.logger)
		if err != nil {
			return err
		}
		s.disp = disp
	}

	s.driver.Subscribe(s.handlePageEvent)

	if err := s.driver.Start(ctx); err != nil {
		if s.disp != nil {
			_ = s.disp.Stop()
		}
		return fmt.Errorf("failed to start session: %w", err)
	}

	s.publishEvent(event.NewSessionStarted(s.id))
	s.logger.Info("Session started")
	return nil
}

// Close tears down the browser and releases the virtual display.
// Close is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.transitionTo(state.StateClosed)

		if s.driver != nil && s.driver.IsRunning() {
			if err := s.driver.Stop(); err != nil {
				s.logger.Error("Failed to stop browser", "error", err)
				s.closeErr = err
			}
		}
		if s.disp != nil {
			if err := s.disp.Stop(); err != nil {
				s.logger.Error("Failed to stop display", "error", err)
				if s.closeErr == nil {
					s.closeErr = err
				}
			}
		}

		s.publishEvent(event.NewSessionClosed(s.id, s.closeErr))
		s.logger.Info("Session closed")
	})
	return s.closeErr
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// State returns the current page-load state.
func (s *Session) State() state.PageState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.pageState
}

// Location returns the current main-frame URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	if err := s.checkOperational(); err != nil {
		return "", err
	}
	return s.driver.Location(ctx)
}

// Content returns the current main-frame HTML.
func (s *Session) Content(ctx context.Context) (string, error) {
	if err := s.checkOperational(); err != nil {
		return "", err
	}
	return s.driver.Content(ctx)
}

// checkOperational fails when the session can no longer accept operations,
// and surfaces any dialog protocol error recorded since the last operation.
func (s *Session) checkOperational() error {
	if !s.State().CanAcceptOperations() {
		return fmt.Errorf("session %s is closed", s.id)
	}
	if err := s.interceptor.TakeError(); err != nil {
		return err
	}
	return nil
}

// loadSnapshot returns the current load sequence number.
func (s *Session) loadSnapshot() uint64 {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.loadSeq
}

// handlePageEvent translates driver events into session state changes and
// bus events. It runs on the driver's event goroutine and must not block.
func (s *Session) handlePageEvent(ev browser.PageEvent) {
	switch e := ev.(type) {
	case *browser.LoadStarted:
		s.onLoadStarted()

	case *browser.LoadFinished:
		s.onLoadComplete(true, "")

	case *browser.LoadFailed:
		s.onLoadComplete(false, e.Error)

	case *browser.DialogOpening:
		// Answering a dialog must not run on the event goroutine; the
		// engine blocks until the dialog is handled.
		go s.answerDialog(e)

	case *browser.ResponseReceived:
		s.collector.onResponse(e)

	case *browser.RequestFinished:
		s.collector.onFinished(e)

	case *browser.RequestFailed:
		s.collector.onFailed(e)

	case *browser.ConsoleMessage:
		s.publishEvent(event.NewConsoleMessage(s.id, e.Kind, 0, e.Text))
	}
}

func (s *Session) onLoadStarted() {
	s.stateMu.Lock()
	if !s.pageState.CanTransitionTo(state.StateLoading) {
		s.stateMu.Unlock()
		return
	}
	s.pageState = state.StateLoading
	target := s.targetURL
	s.stateMu.Unlock()

	s.publishEvent(event.NewPageLoadStarted(s.id, target))
	s.logger.Debug("Page load started", "url", target)
}

func (s *Session) onLoadComplete(ok bool, errText string) {
	next := state.StateLoaded
	if !ok {
		next = state.StateFailed
	}

	s.stateMu.Lock()
	if s.pageState == state.StateClosed {
		s.stateMu.Unlock()
		return
	}
	// A completion can arrive without an observed start (e.g. a reload
	// settled before the start event was delivered); force the cycle.
	s.pageState = next
	s.loadErr = errText
	s.loadSeq++
	notify := s.loadNotify
	s.loadNotify = make(chan struct{})
	target := s.targetURL
	s.stateMu.Unlock()

	close(notify)
	s.publishEvent(event.NewPageLoadFinished(s.id, target, ok))
	if ok {
		s.logger.Debug("Page load finished", "url", target)
	} else {
		s.logger.Warn("Page load failed", "url", target, "error", errText)
	}
}

// answerDialog resolves a JavaScript dialog against the armed expectations
// and replies to the engine.
func (s *Session) answerDialog(e *browser.DialogOpening) {
	var kind dialog.Kind
	switch e.Kind {
	case "alert":
		kind = dialog.KindAlert
	case "confirm":
		kind = dialog.KindConfirm
	case "prompt":
		kind = dialog.KindPrompt
	case "beforeunload":
		// Always allow navigation away.
		if err := s.driver.HandleDialog(true, ""); err != nil {
			s.logger.Error("Failed to answer beforeunload dialog", "error", err)
		}
		return
	default:
		s.logger.Warn("Unknown dialog kind", "kind", e.Kind)
		if err := s.driver.HandleDialog(false, ""); err != nil {
			s.logger.Error("Failed to dismiss dialog", "error", err)
		}
		return
	}

	answer, err := s.interceptor.Resolve(kind, e.Message, e.DefaultPrompt)
	if err != nil {
		s.logger.Warn("Unexpected dialog", "kind", e.Kind, "message", e.Message)
	}

	if err := s.driver.HandleDialog(answer.Accept, answer.Text); err != nil {
		s.logger.Error("Failed to answer dialog", "kind", e.Kind, "error", err)
		return
	}

	if kind == dialog.KindAlert {
		// Wake any WaitForAlert.
		select {
		case s.alertCh <- struct{}{}:
		default:
		}
	}

	s.publishEvent(event.NewDialogOpened(s.id, e.Kind, e.Message))
	s.logger.Debug("Dialog answered", "kind", e.Kind, "accept", answer.Accept)
}

func (s *Session) transitionTo(newState state.PageState) {
	s.stateMu.Lock()
	old := s.pageState
	if !old.CanTransitionTo(newState) && old != newState {
		s.stateMu.Unlock()
		return
	}
	s.pageState = newState
	notify := s.loadNotify
	s.loadNotify = make(chan struct{})
	s.stateMu.Unlock()

	// Release any waiter stuck on a load cycle.
	close(notify)

	if old != newState {
		s.logger.Debug("Page state changed", "from", old, "to", newState)
	}
}

func (s *Session) setTarget(url string) {
	s.stateMu.Lock()
	s.targetURL = url
	s.stateMu.Unlock()
}

func (s *Session) publishEvent(e event.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(e)
	}
}

// drainResources returns the exchanges captured since the previous drain.
func (s *Session) drainResources() []*resource.Resource {
	return s.collector.drain()
}
