// Package browser provides browser automation infrastructure.
package browser

import (
	"context"
)

// Driver defines the interface for browser automation.
// This abstraction allows for different engine implementations (ChromeDP,
// Playwright, etc.) and makes the session layer testable without a browser.
type Driver interface {
	// Start initializes the browser instance.
	Start(ctx context.Context) error

	// Stop closes the browser and releases resources.
	Stop() error

	// IsRunning returns true if the browser is active.
	IsRunning() bool

	// Subscribe registers the handler that receives page events.
	// Must be called before Start; only one handler is supported.
	Subscribe(handler EventHandler)

	// Navigate starts a load cycle for the given request.
	// It returns once the navigation is issued; load completion is
	// observed through page events.
	Navigate(ctx context.Context, req NavigationRequest) error

	// Reload refreshes the current page.
	Reload(ctx context.Context) error

	// Location returns the current main-frame URL.
	Location(ctx context.Context) (string, error)

	// Content returns the current main-frame HTML.
	Content(ctx context.Context) (string, error)

	// Exists reports whether the selector matches an element.
	Exists(ctx context.Context, selector string) (bool, error)

	// Evaluate runs JavaScript in the main frame. When out is non-nil the
	// JSON-serialized result is unmarshaled into it.
	Evaluate(ctx context.Context, expression string, out any) error

	// Click clicks the element matched by the selector.
	Click(ctx context.Context, selector string) error

	// SendKeys sends keystrokes to the element matched by the selector.
	SendKeys(ctx context.Context, selector, text string) error

	// SetUploadFiles sets the files of a file input element.
	SetUploadFiles(ctx context.Context, selector string, files []string) error

	// ElementRegion returns the bounding box of the matched element in
	// viewport coordinates.
	ElementRegion(ctx context.Context, selector string) (Region, error)

	// CaptureScreenshot captures the viewport, or the given clip region,
	// as PNG bytes.
	CaptureScreenshot(ctx context.Context, clip *Region) ([]byte, error)

	// PrintToPDF renders the current page as PDF bytes.
	PrintToPDF(ctx context.Context, opts PDFOptions) ([]byte, error)

	// GetCookies retrieves all browser cookies.
	GetCookies(ctx context.Context) ([]Cookie, error)

	// SetCookies sets browser cookies.
	SetCookies(ctx context.Context, cookies []Cookie) error

	// ClearCookies deletes all browser cookies.
	ClearCookies(ctx context.Context) error

	// SetViewport sets the browser viewport size.
	SetViewport(ctx context.Context, width, height int) error

	// SetExtraHeaders adds headers to every outgoing request.
	SetExtraHeaders(ctx context.Context, headers map[string]string) error

	// HandleDialog answers the currently open JavaScript dialog.
	HandleDialog(accept bool, promptText string) error

	// ResponseBody fetches the body of a completed exchange by request ID.
	ResponseBody(ctx context.Context, requestID string) ([]byte, error)
}

// EventHandler receives normalized page events from the engine.
// Handlers run on the engine's event goroutine and must not block.
type EventHandler func(ev PageEvent)

// NavigationRequest describes a navigation to perform.
type NavigationRequest struct {
	URL     string
	Method  string // "GET" (default) or "POST"
	Headers map[string]string
	Body    string // urlencoded payload for POST navigations
	// Optional HTTP basic auth.
	Username string
	Password string
}

// Region is a rectangle in viewport pixel coordinates.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// PDFOptions control PDF rendering. Paper dimensions and margins are in inches.
type PDFOptions struct {
	PaperWidth   float64
	PaperHeight  float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	Landscape    bool
	Scale        float64
}

// DefaultPDFOptions returns US-Letter paper with no margins at scale 1.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PaperWidth:  8.5,
		PaperHeight: 11.0,
		Scale:       1.0,
	}
}

// Cookie represents a browser cookie.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	HTTPOnly bool
	Secure   bool
}

// PageEvent is a normalized engine event delivered to the subscribed handler.
type PageEvent interface {
	pageEvent()
}

// LoadStarted signals that the main frame began a load cycle.
type LoadStarted struct{}

// LoadFinished signals that the main frame finished loading.
type LoadFinished struct{}

// LoadFailed signals that the main document failed to load.
type LoadFailed struct {
	Error string
}

// DialogOpening signals that the page raised a JavaScript dialog.
type DialogOpening struct {
	Kind          string // "alert", "confirm", "prompt" or "beforeunload"
	Message       string
	DefaultPrompt string
	URL           string
}

// ResponseReceived carries the response metadata of a network exchange.
type ResponseReceived struct {
	RequestID  string
	URL        string
	Status     int64
	StatusText string
	Headers    map[string]string
	MimeType   string
	FromCache  bool
}

// RequestFinished signals that an exchange's body is complete.
type RequestFinished struct {
	RequestID string
}

// RequestFailed signals that an exchange failed or was canceled.
type RequestFailed struct {
	RequestID string
	Error     string
	Canceled  bool
}

// ConsoleMessage carries a JavaScript console call.
type ConsoleMessage struct {
	Kind string
	Text string
}

func (*LoadStarted) pageEvent()      {}
func (*LoadFinished) pageEvent()     {}
func (*LoadFailed) pageEvent()       {}
func (*DialogOpening) pageEvent()    {}
func (*ResponseReceived) pageEvent() {}
func (*RequestFinished) pageEvent()  {}
func (*RequestFailed) pageEvent()    {}
func (*ConsoleMessage) pageEvent()   {}

// DriverConfig holds configuration for browser drivers.
type DriverConfig struct {
	// Headless runs the browser without a visible window.
	Headless bool

	// UserAgent overrides the browser's User-Agent header.
	UserAgent string

	// WindowWidth is the browser window width.
	WindowWidth int

	// WindowHeight is the browser window height.
	WindowHeight int

	// ViewportWidth is the viewport width.
	ViewportWidth int

	// ViewportHeight is the viewport height.
	ViewportHeight int

	// IgnoreTLSErrors silently accepts invalid certificates.
	IgnoreTLSErrors bool

	// LoadImages toggles image downloading.
	LoadImages bool

	// DisableGPU disables GPU acceleration.
	DisableGPU bool

	// MuteAudio mutes browser audio.
	MuteAudio bool

	// HideScrollbars hides scrollbars.
	HideScrollbars bool

	// UserDataDir specifies a custom user data directory.
	UserDataDir string

	// ExecPath specifies a custom browser binary.
	ExecPath string
}

// DefaultDriverConfig returns default browser configuration.
func DefaultDriverConfig() *DriverConfig {
	return &DriverConfig{
		Headless:        true,
		UserAgent:       DefaultUserAgent,
		WindowWidth:     1024,
		WindowHeight:    768,
		ViewportWidth:   800,
		ViewportHeight:  600,
		IgnoreTLSErrors: true,
		LoadImages:      true,
		MuteAudio:       true,
		HideScrollbars:  true,
	}
}

// DefaultUserAgent is the User-Agent header sent when none is configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
