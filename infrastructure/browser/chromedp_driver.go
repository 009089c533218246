package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// ChromeDPDriver implements Driver using chromedp.
type ChromeDPDriver struct {
	config      *DriverConfig
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.Mutex
	running     bool
	handler     EventHandler
	mainFrame   cdp.FrameID
}

// NewChromeDPDriver creates a new ChromeDP-based browser driver.
func NewChromeDPDriver(config *DriverConfig) *ChromeDPDriver {
	if config == nil {
		config = DefaultDriverConfig()
	}
	return &ChromeDPDriver{
		config: config,
	}
}

// buildExecAllocatorOptions builds chromedp options from config.
func (d *ChromeDPDriver) buildExecAllocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.config.Headless),
		chromedp.Flag("hide-scrollbars", d.config.HideScrollbars),
		chromedp.Flag("mute-audio", d.config.MuteAudio),
		chromedp.Flag("disable-gpu", d.config.DisableGPU),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(d.config.WindowWidth, d.config.WindowHeight),
	)

	if d.config.IgnoreTLSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}
	if !d.config.LoadImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}
	if d.config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(d.config.UserAgent))
	}
	if d.config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(d.config.UserDataDir))
	}
	if d.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.config.ExecPath))
	}

	return opts
}

// Subscribe registers the page event handler. Must be called before Start.
func (d *ChromeDPDriver) Subscribe(handler EventHandler) {
	d.mu.Lock()
	d.handler = handler
	d.mu.Unlock()
}

// Start initializes the browser instance.
func (d *ChromeDPDriver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("browser already running")
	}

	// Create allocator context from context.Background() to ensure browser
	// lifecycle is independent of the caller's context
	d.allocCtx, d.allocCancel = chromedp.NewExecAllocator(
		context.Background(),
		d.buildExecAllocatorOptions()...,
	)

	// Create browser context
	d.ctx, d.cancel = chromedp.NewContext(d.allocCtx)

	// Register the event listener before the first Run so no engine
	// callback is missed.
	chromedp.ListenTarget(d.ctx, d.translateEvent)

	// Launch the browser and enable the domains the session depends on.
	if err := chromedp.Run(d.ctx,
		network.Enable(),
		chromedp.EmulateViewport(int64(d.config.ViewportWidth), int64(d.config.ViewportHeight)),
	); err != nil {
		d.cleanupLocked()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	d.running = true
	return nil
}

// translateEvent converts raw CDP events into normalized page events.
func (d *ChromeDPDriver) translateEvent(ev interface{}) {
	d.mu.Lock()
	handler := d.handler
	d.mu.Unlock()
	if handler == nil {
		return
	}

	switch e := ev.(type) {
	case *page.EventFrameNavigated:
		// A frame without a parent is the main frame.
		if e.Frame != nil && e.Frame.ParentID == "" {
			d.mu.Lock()
			d.mainFrame = e.Frame.ID
			d.mu.Unlock()
		}

	case *page.EventFrameStartedLoading:
		// Frame lifecycle events fire for iframes too, but loadEventFired
		// only covers the main frame; without this filter an iframe load
		// start would never see a matching completion.
		if !d.isMainFrame(e.FrameID) {
			return
		}
		handler(&LoadStarted{})

	case *page.EventLoadEventFired:
		handler(&LoadFinished{})

	case *page.EventJavascriptDialogOpening:
		handler(&DialogOpening{
			Kind:          string(e.Type),
			Message:       e.Message,
			DefaultPrompt: e.DefaultPrompt,
			URL:           e.URL,
		})

	case *network.EventResponseReceived:
		headers := make(map[string]string, len(e.Response.Headers))
		for k, v := range e.Response.Headers {
			headers[k] = fmt.Sprintf("%v", v)
		}
		handler(&ResponseReceived{
			RequestID:  string(e.RequestID),
			URL:        e.Response.URL,
			Status:     e.Response.Status,
			StatusText: e.Response.StatusText,
			Headers:    headers,
			MimeType:   e.Response.MimeType,
			FromCache:  e.Response.FromDiskCache,
		})

	case *network.EventLoadingFinished:
		handler(&RequestFinished{RequestID: string(e.RequestID)})

	case *network.EventLoadingFailed:
		if e.Type == network.ResourceTypeDocument && !e.Canceled {
			handler(&LoadFailed{Error: e.ErrorText})
		}
		handler(&RequestFailed{
			RequestID: string(e.RequestID),
			Error:     e.ErrorText,
			Canceled:  e.Canceled,
		})

	case *cdpruntime.EventConsoleAPICalled:
		parts := make([]string, 0, len(e.Args))
		for _, arg := range e.Args {
			if len(arg.Value) > 0 {
				parts = append(parts, strings.Trim(string(arg.Value), `"`))
			} else if arg.Description != "" {
				parts = append(parts, arg.Description)
			}
		}
		handler(&ConsoleMessage{
			Kind: string(e.Type),
			Text: strings.Join(parts, " "),
		})
	}
}

// isMainFrame reports whether the frame ID belongs to the main frame. Before
// the first main-frame navigation is observed, any frame is assumed to be it.
func (d *ChromeDPDriver) isMainFrame(id cdp.FrameID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mainFrame == "" || d.mainFrame == id
}

// Stop closes the browser and releases resources.
func (d *ChromeDPDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	d.cleanupLocked()
	return nil
}

func (d *ChromeDPDriver) cleanupLocked() {
	d.running = false
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.allocCancel != nil {
		d.allocCancel()
		d.allocCancel = nil
	}
	d.ctx = nil
	d.allocCtx = nil
}

// IsRunning returns true if the browser is active.
func (d *ChromeDPDriver) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// run executes chromedp actions against the browser context, honoring the
// caller's deadline and cancellation.
func (d *ChromeDPDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	d.mu.Lock()
	browserCtx := d.ctx
	running := d.running
	d.mu.Unlock()

	if !running || browserCtx == nil {
		return fmt.Errorf("browser not running")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	execCtx := browserCtx
	if deadline, ok := ctx.Deadline(); ok {
		timeout := time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(browserCtx, timeout)
		defer cancel()
	}

	// Run in a goroutine so we can also monitor the provided context for
	// cancellation.
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(execCtx, actions...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// jsString encodes a Go string as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Navigate starts a load cycle for the given request.
func (d *ChromeDPDriver) Navigate(ctx context.Context, req NavigationRequest) error {
	headers := make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[k] = v
	}
	if req.Username != "" || req.Password != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(req.Username + ":" + req.Password))
		headers["Authorization"] = "Basic " + cred
	}
	if len(headers) > 0 {
		if err := d.SetExtraHeaders(ctx, headers); err != nil {
			return err
		}
	}

	method := strings.ToUpper(req.Method)
	switch method {
	case "", "GET":
		return d.run(ctx, chromedp.Navigate(req.URL))
	case "POST":
		// CDP cannot issue a POST navigation directly; submit a synthetic
		// form carrying the urlencoded payload.
		expr := fmt.Sprintf(postNavigateJS, jsString(req.URL), jsString(req.Body))
		return d.run(ctx, chromedp.Evaluate(expr, nil))
	default:
		return fmt.Errorf("unsupported navigation method %q", req.Method)
	}
}

const postNavigateJS = `(function(action, body) {
	var form = document.createElement('form');
	form.method = 'POST';
	form.action = action;
	new URLSearchParams(body).forEach(function(value, key) {
		var input = document.createElement('input');
		input.type = 'hidden';
		input.name = key;
		input.value = value;
		form.appendChild(input);
	});
	(document.body || document.documentElement).appendChild(form);
	form.submit();
})(%s, %s)`

// Reload refreshes the current page.
func (d *ChromeDPDriver) Reload(ctx context.Context) error {
	return d.run(ctx, chromedp.Reload())
}

// Location returns the current main-frame URL.
func (d *ChromeDPDriver) Location(ctx context.Context) (string, error) {
	var urlstr string
	if err := d.run(ctx, chromedp.Location(&urlstr)); err != nil {
		return "", err
	}
	return urlstr, nil
}

// Content returns the current main-frame HTML.
func (d *ChromeDPDriver) Content(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Exists reports whether the selector matches an element.
func (d *ChromeDPDriver) Exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	expr := fmt.Sprintf("document.querySelector(%s) !== null", jsString(selector))
	if err := d.run(ctx, chromedp.Evaluate(expr, &found)); err != nil {
		return false, err
	}
	return found, nil
}

// Evaluate runs JavaScript in the main frame.
func (d *ChromeDPDriver) Evaluate(ctx context.Context, expression string, out any) error {
	return d.run(ctx, chromedp.Evaluate(expression, out))
}

// Click clicks the element matched by the selector.
func (d *ChromeDPDriver) Click(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// SendKeys sends keystrokes to the element matched by the selector.
func (d *ChromeDPDriver) SendKeys(ctx context.Context, selector, text string) error {
	return d.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery))
}

// SetUploadFiles sets the files of a file input element.
func (d *ChromeDPDriver) SetUploadFiles(ctx context.Context, selector string, files []string) error {
	return d.run(ctx, chromedp.SetUploadFiles(selector, files, chromedp.ByQuery))
}

// ElementRegion returns the bounding box of the matched element.
func (d *ChromeDPDriver) ElementRegion(ctx context.Context, selector string) (Region, error) {
	var box struct {
		Found  bool    `json:"found"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	expr := fmt.Sprintf(`(function(sel) {
		var el = document.querySelector(sel);
		if (!el) return {found: false};
		var r = el.getBoundingClientRect();
		return {found: true, x: r.x, y: r.y, width: r.width, height: r.height};
	})(%s)`, jsString(selector))

	if err := d.run(ctx, chromedp.Evaluate(expr, &box)); err != nil {
		return Region{}, err
	}
	if !box.Found {
		return Region{}, fmt.Errorf("no element matches selector %q", selector)
	}
	return Region{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

// CaptureScreenshot captures the viewport, or the given clip region, as PNG bytes.
func (d *ChromeDPDriver) CaptureScreenshot(ctx context.Context, clip *Region) ([]byte, error) {
	var buf []byte
	if clip == nil {
		if err := d.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
			return nil, fmt.Errorf("failed to capture screenshot: %w", err)
		}
		return buf, nil
	}

	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithClip(&page.Viewport{
				X:      clip.X,
				Y:      clip.Y,
				Width:  clip.Width,
				Height: clip.Height,
				Scale:  1,
			}).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// PrintToPDF renders the current page as PDF bytes.
func (d *ChromeDPDriver) PrintToPDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}

	var buf []byte
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPaperWidth(opts.PaperWidth).
			WithPaperHeight(opts.PaperHeight).
			WithMarginTop(opts.MarginTop).
			WithMarginBottom(opts.MarginBottom).
			WithMarginLeft(opts.MarginLeft).
			WithMarginRight(opts.MarginRight).
			WithLandscape(opts.Landscape).
			WithScale(opts.Scale).
			WithPrintBackground(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to print to PDF: %w", err)
	}
	return buf, nil
}

// GetCookies retrieves all browser cookies.
func (d *ChromeDPDriver) GetCookies(ctx context.Context) ([]Cookie, error) {
	var networkCookies []*network.Cookie
	if err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		networkCookies, err = storage.GetCookies().Do(ctx)
		return err
	})); err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}

	cookies := make([]Cookie, len(networkCookies))
	for i, nc := range networkCookies {
		cookies[i] = Cookie{
			Name:     nc.Name,
			Value:    nc.Value,
			Domain:   nc.Domain,
			Path:     nc.Path,
			HTTPOnly: nc.HTTPOnly,
			Secure:   nc.Secure,
		}
	}

	return cookies, nil
}

// SetCookies sets browser cookies.
func (d *ChromeDPDriver) SetCookies(ctx context.Context, cookies []Cookie) error {
	actions := make([]chromedp.Action, len(cookies))
	for i, c := range cookies {
		cookie := c // capture for closure
		actions[i] = chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetCookie(cookie.Name, cookie.Value).
				WithDomain(cookie.Domain).
				WithPath(cookie.Path).
				WithHTTPOnly(cookie.HTTPOnly).
				WithSecure(cookie.Secure).
				Do(ctx)
		})
	}

	return d.run(ctx, actions...)
}

// ClearCookies deletes all browser cookies.
func (d *ChromeDPDriver) ClearCookies(ctx context.Context) error {
	return d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.ClearBrowserCookies().Do(ctx)
	}))
}

// SetViewport sets the browser viewport size.
func (d *ChromeDPDriver) SetViewport(ctx context.Context, width, height int) error {
	return d.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

// SetExtraHeaders adds headers to every outgoing request.
func (d *ChromeDPDriver) SetExtraHeaders(ctx context.Context, headers map[string]string) error {
	h := make(network.Headers, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetExtraHTTPHeaders(h).Do(ctx)
	}))
}

// SetUserAgent overrides the User-Agent header at runtime.
func (d *ChromeDPDriver) SetUserAgent(ctx context.Context, userAgent string) error {
	return d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetUserAgentOverride(userAgent).Do(ctx)
	}))
}

// HandleDialog answers the currently open JavaScript dialog.
// Called from the session's dialog responder goroutine; must not be invoked
// synchronously from the event handler.
func (d *ChromeDPDriver) HandleDialog(accept bool, promptText string) error {
	d.mu.Lock()
	browserCtx := d.ctx
	running := d.running
	d.mu.Unlock()

	if !running || browserCtx == nil {
		return fmt.Errorf("browser not running")
	}

	return chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := page.HandleJavaScriptDialog(accept)
		if promptText != "" {
			params = params.WithPromptText(promptText)
		}
		return params.Do(ctx)
	}))
}

// ResponseBody fetches the body of a completed exchange by request ID.
func (d *ChromeDPDriver) ResponseBody(ctx context.Context, requestID string) ([]byte, error) {
	var body []byte
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		body, err = network.GetResponseBody(network.RequestID(requestID)).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Ensure ChromeDPDriver implements Driver
var _ Driver = (*ChromeDPDriver)(nil)
