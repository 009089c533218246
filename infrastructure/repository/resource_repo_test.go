package repository

import (
	"testing"
	"time"

	"wraith-go/domain/resource"
)

func TestDefaultMongoDBConfig(t *testing.T) {
	cfg := DefaultMongoDBConfig()

	if cfg.URI != "mongodb://localhost:27017" {
		t.Errorf("URI = %v, want mongodb://localhost:27017", cfg.URI)
	}
	if cfg.Database != "wraith" {
		t.Errorf("Database = %v, want wraith", cfg.Database)
	}
	if cfg.ConnectTimeout != 10*time.Second {
		t.Errorf("ConnectTimeout = %v, want 10s", cfg.ConnectTimeout)
	}
	if cfg.PingTimeout != 5*time.Second {
		t.Errorf("PingTimeout = %v, want 5s", cfg.PingTimeout)
	}
}

func TestResourceDocumentConversion(t *testing.T) {
	received := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	res := &resource.Resource{
		URL:         "https://example.com/app.js",
		Status:      200,
		StatusText:  "OK",
		Headers:     map[string]string{"Content-Type": "application/javascript"},
		ContentType: "application/javascript",
		Body:        []byte("console.log(1)"),
		RequestID:   "req-42",
		FromCache:   true,
		ReceivedAt:  received,
	}

	doc := resourceToDocument("session-1", res)

	if doc.SessionID != "session-1" {
		t.Errorf("SessionID = %v, want session-1", doc.SessionID)
	}
	if doc.URL != res.URL {
		t.Errorf("URL = %v, want %v", doc.URL, res.URL)
	}
	if doc.Status != 200 {
		t.Errorf("Status = %v, want 200", doc.Status)
	}

	back := documentToResource(doc)

	if back.URL != res.URL {
		t.Errorf("URL = %v, want %v", back.URL, res.URL)
	}
	if back.ContentType != res.ContentType {
		t.Errorf("ContentType = %v, want %v", back.ContentType, res.ContentType)
	}
	if string(back.Body) != string(res.Body) {
		t.Errorf("Body = %q, want %q", back.Body, res.Body)
	}
	if !back.FromCache {
		t.Error("FromCache = false, want true")
	}
	if !back.ReceivedAt.Equal(received) {
		t.Errorf("ReceivedAt = %v, want %v", back.ReceivedAt, received)
	}
}

func TestResourceDocumentConversion_Failed(t *testing.T) {
	res := &resource.Resource{
		URL:       "https://example.com/missing.png",
		RequestID: "req-7",
		Failed:    true,
		Error:     "net::ERR_CONNECTION_REFUSED",
	}

	doc := resourceToDocument("session-2", res)
	back := documentToResource(doc)

	if !back.Failed {
		t.Error("Failed = false, want true")
	}
	if back.Error != res.Error {
		t.Errorf("Error = %v, want %v", back.Error, res.Error)
	}
}
