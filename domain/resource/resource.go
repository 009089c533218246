// Package resource models the network exchanges captured while driving a page.
// One Resource is recorded per completed (or failed) exchange; resources are
// immutable once constructed and are handed out in arrival order.
package resource

import (
	"strings"
	"time"
)

// Resource represents one completed network exchange.
type Resource struct {
	// URL is the final request URL.
	URL string
	// Status is the HTTP status code, or 0 when the exchange failed before
	// a response was received.
	Status int64
	// StatusText is the HTTP reason phrase.
	StatusText string
	// Headers holds the response headers.
	Headers map[string]string
	// ContentType is the MIME type reported by the engine.
	ContentType string
	// Body is the response body, when it could be retrieved.
	Body []byte
	// RequestID is the engine's identifier for the exchange.
	RequestID string
	// FromCache reports whether the response was served from the disk cache.
	FromCache bool
	// Failed reports whether the exchange completed with a loading error.
	Failed bool
	// Error holds the engine's error text for failed exchanges.
	Error string
	// ReceivedAt is the time the exchange completed.
	ReceivedAt time.Time
}

// HasStatus reports whether the exchange produced an HTTP status code.
func (r *Resource) HasStatus() bool {
	return r.Status != 0
}

// IsHTML reports whether the response carries an HTML document.
func (r *Resource) IsHTML() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "text/html")
}

// Header returns a response header value, matching the name case-insensitively.
func (r *Resource) Header(name string) string {
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
