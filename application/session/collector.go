package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wraith-go/domain/resource"
	"wraith-go/infrastructure/browser"
)

// bodyFetchTimeout bounds the Network.getResponseBody round trip for a
// single exchange.
const bodyFetchTimeout = 5 * time.Second

// bodyFetcher retrieves a response body by request ID.
type bodyFetcher func(ctx context.Context, requestID string) ([]byte, error)

// collector turns network events into Resources. Response metadata arrives
// first and is held pending until the exchange finishes or fails; only then
// is a Resource appended to the buffer.
type collector struct {
	mu       sync.Mutex
	pending  map[string]*browser.ResponseReceived
	inflight int
	idle     *sync.Cond

	buffer     *resource.Buffer
	fetchBody  bodyFetcher
	onCaptured func(*resource.Resource)
	logger     *slog.Logger
}

func newCollector(buffer *resource.Buffer, fetchBody bodyFetcher, onCaptured func(*resource.Resource), logger *slog.Logger) *collector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &collector{
		pending:    make(map[string]*browser.ResponseReceived),
		buffer:     buffer,
		fetchBody:  fetchBody,
		onCaptured: onCaptured,
		logger:     logger,
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

func (c *collector) onResponse(ev *browser.ResponseReceived) {
	c.mu.Lock()
	c.pending[ev.RequestID] = ev
	c.mu.Unlock()
}

func (c *collector) onFinished(ev *browser.RequestFinished) {
	c.mu.Lock()
	meta, ok := c.pending[ev.RequestID]
	delete(c.pending, ev.RequestID)
	if ok {
		c.inflight++
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	// Body retrieval is a protocol round trip; keep it off the event
	// goroutine. drain waits for in-flight captures.
	go func() {
		c.capture(meta)
		c.mu.Lock()
		c.inflight--
		if c.inflight == 0 {
			c.idle.Broadcast()
		}
		c.mu.Unlock()
	}()
}

func (c *collector) onFailed(ev *browser.RequestFailed) {
	c.mu.Lock()
	meta, ok := c.pending[ev.RequestID]
	delete(c.pending, ev.RequestID)
	c.mu.Unlock()

	res := &resource.Resource{
		RequestID:  ev.RequestID,
		Failed:     true,
		Error:      ev.Error,
		ReceivedAt: time.Now(),
	}
	if ok {
		res.URL = meta.URL
		res.Status = meta.Status
		res.StatusText = meta.StatusText
		res.Headers = meta.Headers
		res.ContentType = meta.MimeType
		res.FromCache = meta.FromCache
	} else if ev.Canceled {
		// Canceled before any response arrived; nothing to record.
		return
	}

	c.buffer.Append(res)
	if c.onCaptured != nil {
		c.onCaptured(res)
	}
}

func (c *collector) capture(meta *browser.ResponseReceived) {
	res := &resource.Resource{
		URL:         meta.URL,
		Status:      meta.Status,
		StatusText:  meta.StatusText,
		Headers:     meta.Headers,
		ContentType: meta.MimeType,
		RequestID:   meta.RequestID,
		FromCache:   meta.FromCache,
		ReceivedAt:  time.Now(),
	}

	if c.fetchBody != nil {
		ctx, cancel := context.WithTimeout(context.Background(), bodyFetchTimeout)
		body, err := c.fetchBody(ctx, meta.RequestID)
		cancel()
		if err != nil {
			// Bodies of redirects and some cached entries are not
			// retrievable; keep the resource without one.
			c.logger.Debug("Response body unavailable", "url", meta.URL, "error", err)
		} else {
			res.Body = body
		}
	}

	c.buffer.Append(res)
	if c.onCaptured != nil {
		c.onCaptured(res)
	}
}

// drain returns the resources captured since the previous drain, waiting for
// in-flight body fetches so the batch is complete. The in-flight count is
// guarded by the same mutex new captures take, so captures starting while a
// drain is parked are observed on the next check of the loop.
func (c *collector) drain() []*resource.Resource {
	c.mu.Lock()
	for c.inflight > 0 {
		c.idle.Wait()
	}
	c.mu.Unlock()
	return c.buffer.Drain()
}

// pendingCount reports exchanges with a response but no completion yet.
func (c *collector) pendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
