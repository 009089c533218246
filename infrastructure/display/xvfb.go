// Package display manages a virtual X display for running a visible browser
// on hosts without a physical display.
package display

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// Manager owns an optional Xvfb subprocess. When the host already has a
// display (or does not use X at all), the manager is a no-op.
type Manager struct {
	logger  *slog.Logger
	display string
	cmd     *exec.Cmd
	spawned bool
}

// Config holds virtual display options.
type Config struct {
	// Number is the X display number to spawn Xvfb on (":<Number>").
	Number int
	// StartupWait is how long to wait after spawning before assuming the
	// server is accepting connections.
	StartupWait time.Duration
}

// DefaultConfig returns the default virtual display configuration.
func DefaultConfig() *Config {
	return &Config{
		Number:      99,
		StartupWait: 200 * time.Millisecond,
	}
}

// Addr formats the X display address for the configured number.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Number)
}

// Ensure makes sure a display is available. If DISPLAY is already set, or the
// platform does not use X displays, nothing is spawned. Otherwise Xvfb is
// started on the configured display number and DISPLAY is exported.
// A missing Xvfb binary is an environment error.
func Ensure(cfg *Config, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{logger: logger}

	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return m, nil
	}
	if d := os.Getenv("DISPLAY"); d != "" {
		m.display = d
		return m, nil
	}

	addr := cfg.Addr()
	cmd := exec.Command("Xvfb", addr)
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("Xvfb is required to run a visible browser outside an X instance: %w", err)
		}
		return nil, fmt.Errorf("failed to start Xvfb on %s: %w", addr, err)
	}

	if err := os.Setenv("DISPLAY", addr); err != nil {
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("failed to set DISPLAY: %w", err)
	}

	// Xvfb has no readiness signal; give it a moment to create the socket.
	time.Sleep(cfg.StartupWait)

	m.display = addr
	m.cmd = cmd
	m.spawned = true
	logger.Info("Started virtual display", "display", addr, "pid", cmd.Process.Pid)

	return m, nil
}

// Display returns the display address in use, or empty when none is needed.
func (m *Manager) Display() string {
	return m.display
}

// Spawned reports whether this manager owns an Xvfb subprocess.
func (m *Manager) Spawned() bool {
	return m.spawned
}

// Stop terminates the Xvfb subprocess if this manager spawned one.
func (m *Manager) Stop() error {
	if !m.spawned || m.cmd == nil || m.cmd.Process == nil {
		return nil
	}

	if err := m.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to stop Xvfb: %w", err)
	}
	_ = m.cmd.Wait()
	m.spawned = false
	m.logger.Info("Stopped virtual display", "display", m.display)
	return nil
}
