package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"wraith-go/domain/resource"
	"wraith-go/infrastructure/browser"
)

// OpOption adjusts a single page operation.
type OpOption func(*opSettings)

type opSettings struct {
	expectLoading bool
	timeout       time.Duration
}

// ExpectLoading makes the operation wait for the load cycle it triggers.
func ExpectLoading() OpOption {
	return func(o *opSettings) { o.expectLoading = true }
}

// WithTimeout overrides the session wait timeout for this operation.
func WithTimeout(d time.Duration) OpOption {
	return func(o *opSettings) { o.timeout = d }
}

func applyOpOptions(opts []OpOption) opSettings {
	var set opSettings
	for _, opt := range opts {
		opt(&set)
	}
	return set
}

// OpenOption adjusts a navigation request.
type OpenOption func(*openSettings)

type openSettings struct {
	method   string
	headers  map[string]string
	body     string
	username string
	password string
	timeout  time.Duration
}

// WithMethod sets the HTTP method ("GET" or "POST").
func WithMethod(method string) OpenOption {
	return func(o *openSettings) { o.method = method }
}

// WithHeaders adds extra request headers.
func WithHeaders(headers map[string]string) OpenOption {
	return func(o *openSettings) { o.headers = headers }
}

// WithBody sets the urlencoded request body for POST navigations.
func WithBody(body string) OpenOption {
	return func(o *openSettings) { o.body = body }
}

// WithBasicAuth sets HTTP basic auth credentials.
func WithBasicAuth(username, password string) OpenOption {
	return func(o *openSettings) {
		o.username = username
		o.password = password
	}
}

// WithOpenTimeout overrides the session wait timeout for this navigation.
func WithOpenTimeout(d time.Duration) OpenOption {
	return func(o *openSettings) { o.timeout = d }
}

// jsString encodes a Go string as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// opCtx derives a bounded context for a single page operation.
func (s *Session) opCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = s.config.WaitTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Open navigates to url and blocks until the load cycle completes. It returns
// the page's own resource plus every exchange captured during the load.
func (s *Session) Open(ctx context.Context, url string, opts ...OpenOption) (*resource.Resource, []*resource.Resource, error) {
	if err := s.checkOperational(); err != nil {
		return nil, nil, err
	}

	var set openSettings
	for _, opt := range opts {
		opt(&set)
	}

	// Exchanges from before this navigation belong to the previous drain.
	s.collector.drain()
	s.setTarget(url)
	seq := s.loadSnapshot()

	opCtx, cancel := s.opCtx(ctx, set.timeout)
	defer cancel()

	err := s.driver.Navigate(opCtx, browser.NavigationRequest{
		URL:      url,
		Method:   set.method,
		Headers:  set.headers,
		Body:     set.body,
		Username: set.username,
		Password: set.password,
	})
	if err != nil {
		return nil, s.drainResources(), fmt.Errorf("failed to open %s: %w", url, err)
	}

	if err := s.waitLoadComplete(ctx, seq, set.timeout); err != nil {
		return nil, s.drainResources(), err
	}
	if derr := s.interceptor.TakeError(); derr != nil {
		return nil, s.drainResources(), derr
	}

	location, err := s.driver.Location(opCtx)
	if err != nil {
		location = url
	}

	resources := s.drainResources()
	return matchPageResource(resources, location), resources, nil
}

// matchPageResource finds the resource backing the loaded page: the exchange
// whose URL equals the final location, else the first exchange of the batch.
func matchPageResource(resources []*resource.Resource, location string) *resource.Resource {
	for _, r := range resources {
		if r.URL == location {
			return r
		}
	}
	if len(resources) > 0 {
		return resources[0]
	}
	return nil
}

// Click clicks the element matched by the selector.
func (s *Session) Click(ctx context.Context, selector string, opts ...OpOption) ([]*resource.Resource, error) {
	set := applyOpOptions(opts)
	return s.pageOp(ctx, set, func(opCtx context.Context) error {
		if err := s.requireElement(opCtx, selector); err != nil {
			return err
		}
		return s.driver.Click(opCtx, selector)
	})
}

// FireOn dispatches a DOM event of the given type on the matched element.
func (s *Session) FireOn(ctx context.Context, selector, eventType string, opts ...OpOption) ([]*resource.Resource, error) {
	set := applyOpOptions(opts)
	return s.pageOp(ctx, set, func(opCtx context.Context) error {
		expr := fmt.Sprintf(`(function(sel, type) {
			var el = document.querySelector(sel);
			if (!el) return false;
			var ev = document.createEvent('HTMLEvents');
			ev.initEvent(type, true, true);
			el.dispatchEvent(ev);
			return true;
		})(%s, %s)`, jsString(selector), jsString(eventType))

		var ok bool
		if err := s.driver.Evaluate(opCtx, expr, &ok); err != nil {
			return err
		}
		if !ok {
			return &ElementNotFoundError{Selector: selector}
		}
		return nil
	})
}

// Evaluate runs JavaScript in the page. When out is non-nil the result is
// unmarshaled into it.
func (s *Session) Evaluate(ctx context.Context, expression string, out any, opts ...OpOption) ([]*resource.Resource, error) {
	set := applyOpOptions(opts)
	return s.pageOp(ctx, set, func(opCtx context.Context) error {
		return s.driver.Evaluate(opCtx, expression, out)
	})
}

// EvaluateFile runs the JavaScript contained in the given file.
func (s *Session) EvaluateFile(ctx context.Context, path string, opts ...OpOption) ([]*resource.Resource, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return s.Evaluate(ctx, string(script), nil, opts...)
}

// pageOp runs a page-affecting operation, optionally waiting for the load
// cycle it triggers, and drains the resource buffer.
func (s *Session) pageOp(ctx context.Context, set opSettings, op func(context.Context) error) ([]*resource.Resource, error) {
	if err := s.checkOperational(); err != nil {
		return nil, err
	}

	seq := s.loadSnapshot()

	opCtx, cancel := s.opCtx(ctx, set.timeout)
	err := op(opCtx)
	cancel()
	// The engine blocks the operation until any dialog it raised is
	// answered, so a protocol error is already recorded here; the
	// triggering operation surfaces it.
	if derr := s.interceptor.TakeError(); derr != nil {
		return s.drainResources(), derr
	}
	if err != nil {
		return s.drainResources(), err
	}

	if set.expectLoading {
		if err := s.waitLoadComplete(ctx, seq, set.timeout); err != nil {
			return s.drainResources(), err
		}
		if derr := s.interceptor.TakeError(); derr != nil {
			return s.drainResources(), derr
		}
	}

	return s.drainResources(), nil
}

// requireElement fails with ElementNotFoundError when the selector matches
// nothing.
func (s *Session) requireElement(ctx context.Context, selector string) error {
	found, err := s.driver.Exists(ctx, selector)
	if err != nil {
		return err
	}
	if !found {
		return &ElementNotFoundError{Selector: selector}
	}
	return nil
}

// Exists reports whether the selector matches an element.
func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	if err := s.checkOperational(); err != nil {
		return false, err
	}
	opCtx, cancel := s.opCtx(ctx, 0)
	defer cancel()
	return s.driver.Exists(opCtx, selector)
}

// GlobalExists reports whether a global JavaScript variable is defined.
func (s *Session) GlobalExists(ctx context.Context, name string) (bool, error) {
	if err := s.checkOperational(); err != nil {
		return false, err
	}
	opCtx, cancel := s.opCtx(ctx, 0)
	defer cancel()

	var found bool
	expr := fmt.Sprintf("typeof window[%s] !== 'undefined'", jsString(name))
	if err := s.driver.Evaluate(opCtx, expr, &found); err != nil {
		return false, err
	}
	return found, nil
}

// Fill sets the named fields of the form matched by the selector. Field order
// is deterministic (sorted by name).
func (s *Session) Fill(ctx context.Context, selector string, values map[string]string, opts ...OpOption) ([]*resource.Resource, error) {
	set := applyOpOptions(opts)
	return s.pageOp(ctx, set, func(opCtx context.Context) error {
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fieldSelector := fmt.Sprintf(`%s [name="%s"]`, selector, cssAttrEscape(name))
			if err := s.setFieldValue(opCtx, fieldSelector, values[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

// cssAttrEscape escapes a value for embedding in a double-quoted CSS
// attribute selector.
func cssAttrEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// SetFieldValue sets the value of the form field matched by the selector.
// Accepted value types depend on the field: string for text inputs,
// textareas, selects and radios, bool for checkboxes, string or []string for
// file inputs. Unsupported tags fail.
func (s *Session) SetFieldValue(ctx context.Context, selector string, value any, opts ...OpOption) ([]*resource.Resource, error) {
	set := applyOpOptions(opts)
	return s.pageOp(ctx, set, func(opCtx context.Context) error {
		return s.setFieldValue(opCtx, selector, value)
	})
}

// fieldInfo describes the first element matched by a field selector.
type fieldInfo struct {
	Found bool   `json:"found"`
	Tag   string `json:"tag"`
	Type  string `json:"type"`
}

func (s *Session) setFieldValue(ctx context.Context, selector string, value any) error {
	var info fieldInfo
	expr := fmt.Sprintf(`(function(sel) {
		var el = document.querySelector(sel);
		if (!el) return {found: false};
		return {found: true, tag: el.tagName.toLowerCase(), type: (el.type || '').toLowerCase()};
	})(%s)`, jsString(selector))
	if err := s.driver.Evaluate(ctx, expr, &info); err != nil {
		return err
	}
	if !info.Found {
		return &ElementNotFoundError{Selector: selector}
	}

	switch info.Tag {
	case "textarea", "select":
		return s.setSimpleValue(ctx, selector, value)

	case "input":
		switch info.Type {
		case "checkbox":
			checked, ok := value.(bool)
			if !ok {
				return &FieldError{Selector: selector, Reason: "checkbox requires a bool value"}
			}
			return s.setChecked(ctx, selector, checked)

		case "radio":
			str, ok := value.(string)
			if !ok {
				return &FieldError{Selector: selector, Reason: "radio requires a string value"}
			}
			return s.selectRadio(ctx, selector, str)

		case "file":
			var files []string
			switch v := value.(type) {
			case string:
				files = []string{v}
			case []string:
				files = v
			default:
				return &FieldError{Selector: selector, Reason: "file input requires a string or []string value"}
			}
			return s.driver.SetUploadFiles(ctx, selector, files)

		default:
			// text, password, email, hidden, search, url, number...
			return s.setSimpleValue(ctx, selector, value)
		}

	default:
		return &FieldError{Selector: selector, Reason: fmt.Sprintf("unsupported tag %q", info.Tag)}
	}
}

// setSimpleValue assigns el.value and fires input and change events.
func (s *Session) setSimpleValue(ctx context.Context, selector string, value any) error {
	str, ok := value.(string)
	if !ok {
		str = fmt.Sprint(value)
	}
	expr := fmt.Sprintf(`(function(sel, value) {
		var el = document.querySelector(sel);
		if (!el) return false;
		el.value = value;
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})(%s, %s)`, jsString(selector), jsString(str))

	var ok2 bool
	if err := s.driver.Evaluate(ctx, expr, &ok2); err != nil {
		return err
	}
	if !ok2 {
		return &ElementNotFoundError{Selector: selector}
	}
	return nil
}

func (s *Session) setChecked(ctx context.Context, selector string, checked bool) error {
	expr := fmt.Sprintf(`(function(sel, checked) {
		var el = document.querySelector(sel);
		if (!el) return false;
		el.checked = checked;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})(%s, %t)`, jsString(selector), checked)

	var ok bool
	if err := s.driver.Evaluate(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return &ElementNotFoundError{Selector: selector}
	}
	return nil
}

// selectRadio checks the radio button in the matched group whose value
// attribute equals value.
func (s *Session) selectRadio(ctx context.Context, selector, value string) error {
	expr := fmt.Sprintf(`(function(sel, value) {
		var els = document.querySelectorAll(sel);
		for (var i = 0; i < els.length; i++) {
			if (els[i].value === value) {
				els[i].checked = true;
				els[i].dispatchEvent(new Event('change', {bubbles: true}));
				return true;
			}
		}
		return false;
	})(%s, %s)`, jsString(selector), jsString(value))

	var ok bool
	if err := s.driver.Evaluate(ctx, expr, &ok); err != nil {
		return err
	}
	if !ok {
		return &FieldError{Selector: selector, Reason: fmt.Sprintf("no radio button with value %q", value)}
	}
	return nil
}

// Cookies retrieves all browser cookies.
func (s *Session) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	if err := s.checkOperational(); err != nil {
		return nil, err
	}
	opCtx, cancel := s.opCtx(ctx, 0)
	defer cancel()
	return s.driver.GetCookies(opCtx)
}

// SetCookies sets browser cookies.
func (s *Session) SetCookies(ctx context.Context, cookies []browser.Cookie) error {
	if err := s.checkOperational(); err != nil {
		return err
	}
	opCtx, cancel := s.opCtx(ctx, 0)
	defer cancel()
	return s.driver.SetCookies(opCtx, cookies)
}

// DeleteCookies removes all browser cookies.
func (s *Session) DeleteCookies(ctx context.Context) error {
	if err := s.checkOperational(); err != nil {
		return err
	}
	opCtx, cancel := s.opCtx(ctx, 0)
	defer cancel()
	return s.driver.ClearCookies(opCtx)
}

// SetViewportSize changes the viewport dimensions.
func (s *Session) SetViewportSize(ctx context.Context, width, height int) error {
	if err := s.checkOperational(); err != nil {
		return err
	}
	opCtx, cancel := s.opCtx(ctx, 0)
	defer cancel()
	return s.driver.SetViewport(opCtx, width, height)
}

// SetExtraHeaders adds headers to every outgoing request.
func (s *Session) SetExtraHeaders(ctx context.Context, headers map[string]string) error {
	if err := s.checkOperational(); err != nil {
		return err
	}
	opCtx, cancel := s.opCtx(ctx, 0)
	defer cancel()
	return s.driver.SetExtraHeaders(opCtx, headers)
}

// Reload refreshes the current page and waits for the load cycle.
func (s *Session) Reload(ctx context.Context) ([]*resource.Resource, error) {
	set := opSettings{expectLoading: true}
	return s.pageOp(ctx, set, func(opCtx context.Context) error {
		return s.driver.Reload(opCtx)
	})
}
