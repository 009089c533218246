package browser

import (
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
)

func TestDefaultDriverConfig(t *testing.T) {
	cfg := DefaultDriverConfig()

	if !cfg.Headless {
		t.Error("Headless = false, want true")
	}
	if cfg.WindowWidth != 1024 || cfg.WindowHeight != 768 {
		t.Errorf("window = %dx%d, want 1024x768", cfg.WindowWidth, cfg.WindowHeight)
	}
	if cfg.ViewportWidth != 800 || cfg.ViewportHeight != 600 {
		t.Errorf("viewport = %dx%d, want 800x600", cfg.ViewportWidth, cfg.ViewportHeight)
	}
	if !cfg.LoadImages {
		t.Error("LoadImages = false, want true")
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent is empty")
	}
}

func TestDefaultPDFOptions(t *testing.T) {
	opts := DefaultPDFOptions()

	if opts.PaperWidth != 8.5 || opts.PaperHeight != 11.0 {
		t.Errorf("paper = %gx%g, want 8.5x11", opts.PaperWidth, opts.PaperHeight)
	}
	if opts.Scale != 1.0 {
		t.Errorf("Scale = %g, want 1", opts.Scale)
	}
	if opts.Landscape {
		t.Error("Landscape = true, want false")
	}
}

func TestChromeDPDriver_IframeLoadStartIgnored(t *testing.T) {
	d := NewChromeDPDriver(nil)
	var events []PageEvent
	d.Subscribe(func(ev PageEvent) { events = append(events, ev) })

	// Before any navigation the main frame is unknown; load starts pass.
	d.translateEvent(&page.EventFrameStartedLoading{FrameID: "early"})
	if len(events) != 1 {
		t.Fatalf("got %d events before first navigation, want 1", len(events))
	}

	d.translateEvent(&page.EventFrameNavigated{Frame: &cdp.Frame{ID: "top"}})

	// An iframe starting to load must not restart the page load cycle.
	d.translateEvent(&page.EventFrameStartedLoading{FrameID: "child"})
	if len(events) != 1 {
		t.Fatalf("iframe load start leaked through, events = %v", events)
	}

	d.translateEvent(&page.EventFrameStartedLoading{FrameID: "top"})
	if len(events) != 2 {
		t.Fatalf("got %d events after main-frame load start, want 2", len(events))
	}
	if _, ok := events[1].(*LoadStarted); !ok {
		t.Errorf("events[1] = %T, want *LoadStarted", events[1])
	}

	// A child frame navigation must not displace the tracked main frame.
	d.translateEvent(&page.EventFrameNavigated{Frame: &cdp.Frame{ID: "child", ParentID: "top"}})
	if !d.isMainFrame("top") {
		t.Error("main frame changed after a child frame navigation")
	}
}

func TestJSString(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{`plain`, `"plain"`},
		{`with "quotes"`, `"with \"quotes\""`},
		{"line\nbreak", `"line\nbreak"`},
	}

	for _, tt := range tests {
		if got := jsString(tt.in); got != tt.expected {
			t.Errorf("jsString(%q) = %s, want %s", tt.in, got, tt.expected)
		}
	}
}
