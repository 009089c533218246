package display

import (
	"runtime"
	"testing"
)

func TestConfig_Addr(t *testing.T) {
	tests := []struct {
		number   int
		expected string
	}{
		{99, ":99"},
		{0, ":0"},
		{120, ":120"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			cfg := &Config{Number: tt.number}
			if got := cfg.Addr(); got != tt.expected {
				t.Errorf("Addr() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEnsure_ExistingDisplay(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("platform does not use X displays")
	}

	t.Setenv("DISPLAY", ":7")

	m, err := Ensure(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if m.Spawned() {
		t.Error("Spawned() = true with DISPLAY already set")
	}
	if m.Display() != ":7" {
		t.Errorf("Display() = %v, want :7", m.Display())
	}

	// Stop on a non-spawned manager is a no-op.
	if err := m.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
