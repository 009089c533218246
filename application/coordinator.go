// Package application provides the application layer for orchestrating
// browsing sessions.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"wraith-go/application/session"
	"wraith-go/core/event"
	"wraith-go/core/eventbus"
	"wraith-go/domain/resource"
	domainscript "wraith-go/domain/script"
	"wraith-go/infrastructure/browser"
)

// DriverFactory creates browser drivers.
type DriverFactory func() browser.Driver

// Coordinator manages multiple concurrent sessions: creation, lookup,
// teardown, and the fan-in of session events. When an archive is configured,
// every captured resource batch is persisted under its session ID.
type Coordinator struct {
	sessions   map[string]*session.Session
	sessionsMu sync.RWMutex

	eventBus       eventbus.EventBus
	scriptRegistry *domainscript.Registry
	driverFactory  DriverFactory
	archive        resource.Archive
	sessionConfig  session.Config
	logger         *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// CoordinatorConfig holds configuration for the Coordinator.
type CoordinatorConfig struct {
	EventBus       eventbus.EventBus
	ScriptRegistry *domainscript.Registry
	DriverFactory  DriverFactory

	// Archive, when set, receives drained resource batches. Optional.
	Archive resource.Archive

	// SessionTemplate provides the per-session defaults (timeouts, headless
	// mode, display config). ID and Driver are filled per session.
	SessionTemplate session.Config

	Logger *slog.Logger
}

// NewCoordinator creates a new session coordinator.
func NewCoordinator(cfg *CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		sessions:       make(map[string]*session.Session),
		eventBus:       cfg.EventBus,
		scriptRegistry: cfg.ScriptRegistry,
		driverFactory:  cfg.DriverFactory,
		archive:        cfg.Archive,
		sessionConfig:  cfg.SessionTemplate,
		logger:         cfg.Logger,
		ctx:            ctx,
		cancel:         cancel,
	}

	if c.eventBus != nil {
		c.eventBus.Subscribe(c.handleEvent)
	}

	return c
}

// CreateSession creates and starts a new session, returning its ID.
func (c *Coordinator) CreateSession(ctx context.Context) (*session.Session, error) {
	cfg := c.sessionConfig
	cfg.ID = uuid.NewString()
	cfg.Driver = c.driverFactory()
	cfg.EventBus = c.eventBus
	if cfg.Logger == nil {
		cfg.Logger = c.logger
	}

	s := session.New(&cfg)
	if err := s.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	c.sessionsMu.Lock()
	c.sessions[s.ID()] = s
	c.sessionsMu.Unlock()

	c.logger.Info("Session created", "session_id", s.ID())
	return s, nil
}

// Session looks up a session by ID.
func (c *Coordinator) Session(id string) (*session.Session, bool) {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()
	s, ok := c.sessions[id]
	return s, ok
}

// SessionIDs returns the IDs of all active sessions.
func (c *Coordinator) SessionIDs() []string {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	return ids
}

// CloseSession tears down a session by ID.
func (c *Coordinator) CloseSession(id string) error {
	c.sessionsMu.Lock()
	s, ok := c.sessions[id]
	delete(c.sessions, id)
	c.sessionsMu.Unlock()

	if !ok {
		return fmt.Errorf("no session with ID %s", id)
	}
	return s.Close()
}

// RunScript executes a registered script on the given session.
func (c *Coordinator) RunScript(ctx context.Context, sessionID, scriptName string) error {
	s, ok := c.Session(sessionID)
	if !ok {
		return fmt.Errorf("no session with ID %s", sessionID)
	}
	if c.scriptRegistry == nil {
		return fmt.Errorf("no script registry configured")
	}
	sc := c.scriptRegistry.Get(scriptName)
	if sc == nil {
		return fmt.Errorf("no script named %q", scriptName)
	}

	runner := session.NewScriptRunner(s, c.logger)
	return runner.Run(ctx, sc)
}

// ArchiveResources persists a drained resource batch for a session.
func (c *Coordinator) ArchiveResources(ctx context.Context, sessionID string, batch []*resource.Resource) error {
	if c.archive == nil || len(batch) == 0 {
		return nil
	}
	return c.archive.SaveBatch(ctx, sessionID, batch)
}

// Stop shuts down the coordinator and closes all sessions.
func (c *Coordinator) Stop() {
	c.cancel()

	c.sessionsMu.Lock()
	sessions := make([]*session.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.sessions = make(map[string]*session.Session)
	c.sessionsMu.Unlock()

	// Close all sessions in parallel
	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(sess *session.Session) {
			defer wg.Done()
			if err := sess.Close(); err != nil {
				c.logger.Error("Failed to close session", "session_id", sess.ID(), "error", err)
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		c.logger.Warn("Coordinator stop timeout, some sessions may not have stopped cleanly")
	}

	c.logger.Info("Coordinator stopped")
}

// handleEvent observes session events for logging and cleanup.
func (c *Coordinator) handleEvent(e event.Event) {
	switch ev := e.(type) {
	case *event.SessionClosed:
		c.sessionsMu.Lock()
		delete(c.sessions, ev.SessionID())
		c.sessionsMu.Unlock()

	case *event.ScriptFinished:
		if ev.Error != nil {
			c.logger.Warn("Script finished with error",
				"session_id", ev.SessionID(), "script", ev.ScriptName, "error", ev.Error)
		}
	}
}
