package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"wraith-go/domain/resource"
	"wraith-go/infrastructure/browser"
)

func TestCollector_CaptureWithBody(t *testing.T) {
	fetch := func(ctx context.Context, requestID string) ([]byte, error) {
		if requestID != "r1" {
			return nil, errors.New("unknown request")
		}
		return []byte("body"), nil
	}

	var captured []*resource.Resource
	c := newCollector(resource.NewBuffer(), fetch, func(r *resource.Resource) {
		captured = append(captured, r)
	}, nil)

	c.onResponse(&browser.ResponseReceived{
		RequestID: "r1",
		URL:       "https://example.com/a.css",
		Status:    200,
		MimeType:  "text/css",
	})
	if c.pendingCount() != 1 {
		t.Errorf("pendingCount() = %v, want 1", c.pendingCount())
	}

	c.onFinished(&browser.RequestFinished{RequestID: "r1"})

	batch := c.drain()
	if len(batch) != 1 {
		t.Fatalf("len(batch) = %v, want 1", len(batch))
	}
	if string(batch[0].Body) != "body" {
		t.Errorf("Body = %q, want body", batch[0].Body)
	}
	if c.pendingCount() != 0 {
		t.Errorf("pendingCount() = %v, want 0", c.pendingCount())
	}
	if len(captured) != 1 {
		t.Errorf("onCaptured fired %v times, want 1", len(captured))
	}

	// A second drain is empty.
	if len(c.drain()) != 0 {
		t.Error("second drain returned resources")
	}
}

// Drains racing against a stream of completing exchanges must neither panic
// nor lose resources.
func TestCollector_DrainDuringStream(t *testing.T) {
	fetch := func(ctx context.Context, requestID string) ([]byte, error) {
		return []byte("x"), nil
	}
	c := newCollector(resource.NewBuffer(), fetch, nil, nil)

	const exchanges = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < exchanges; i++ {
			id := fmt.Sprintf("r%d", i)
			c.onResponse(&browser.ResponseReceived{
				RequestID: id,
				URL:       "https://example.com/" + id,
				Status:    200,
			})
			c.onFinished(&browser.RequestFinished{RequestID: id})
		}
	}()

	total := 0
	for {
		total += len(c.drain())
		select {
		case <-done:
			total += len(c.drain())
			if total != exchanges {
				t.Errorf("drained %v resources, want %v", total, exchanges)
			}
			return
		default:
		}
	}
}

func TestCollector_FailedExchange(t *testing.T) {
	c := newCollector(resource.NewBuffer(), nil, nil, nil)

	c.onResponse(&browser.ResponseReceived{
		RequestID: "r2",
		URL:       "https://example.com/b.js",
		Status:    200,
	})
	c.onFailed(&browser.RequestFailed{RequestID: "r2", Error: "net::ERR_ABORTED"})

	batch := c.drain()
	if len(batch) != 1 {
		t.Fatalf("len(batch) = %v, want 1", len(batch))
	}
	if !batch[0].Failed {
		t.Error("Failed = false, want true")
	}
	if batch[0].Error != "net::ERR_ABORTED" {
		t.Errorf("Error = %q, want net::ERR_ABORTED", batch[0].Error)
	}
}

func TestCollector_CanceledWithoutResponse(t *testing.T) {
	c := newCollector(resource.NewBuffer(), nil, nil, nil)

	c.onFailed(&browser.RequestFailed{RequestID: "r3", Canceled: true})

	if len(c.drain()) != 0 {
		t.Error("canceled exchange without a response was recorded")
	}
}

func TestCollector_FinishedWithoutResponse(t *testing.T) {
	c := newCollector(resource.NewBuffer(), nil, nil, nil)

	c.onFinished(&browser.RequestFinished{RequestID: "r4"})

	if len(c.drain()) != 0 {
		t.Error("completion without a response was recorded")
	}
}
