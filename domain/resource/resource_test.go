package resource

import (
	"fmt"
	"testing"
)

func TestBuffer_DrainReturnsArrivalOrder(t *testing.T) {
	buf := NewBuffer()

	for i := 0; i < 5; i++ {
		buf.Append(&Resource{URL: fmt.Sprintf("http://example.com/%d", i), Status: 200})
	}

	drained := buf.Drain()
	if len(drained) != 5 {
		t.Fatalf("Drain() returned %d resources, want 5", len(drained))
	}
	for i, r := range drained {
		want := fmt.Sprintf("http://example.com/%d", i)
		if r.URL != want {
			t.Errorf("drained[%d].URL = %v, want %v", i, r.URL, want)
		}
	}
}

func TestBuffer_DrainResets(t *testing.T) {
	buf := NewBuffer()
	buf.Append(&Resource{URL: "http://example.com/a"})

	first := buf.Drain()
	if len(first) != 1 {
		t.Fatalf("first Drain() returned %d resources, want 1", len(first))
	}

	second := buf.Drain()
	if len(second) != 0 {
		t.Errorf("second Drain() returned %d resources, want 0", len(second))
	}

	// Exchanges after a drain belong to the next drain only.
	buf.Append(&Resource{URL: "http://example.com/b"})
	third := buf.Drain()
	if len(third) != 1 || third[0].URL != "http://example.com/b" {
		t.Errorf("third Drain() = %+v, want the single post-drain resource", third)
	}
}

func TestBuffer_AppendNil(t *testing.T) {
	buf := NewBuffer()
	buf.Append(nil)
	if buf.Len() != 0 {
		t.Errorf("Len() = %d after nil append, want 0", buf.Len())
	}
}

func TestResource_HasStatus(t *testing.T) {
	tests := []struct {
		name     string
		resource *Resource
		expected bool
	}{
		{"with status", &Resource{Status: 200}, true},
		{"failed before response", &Resource{Failed: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resource.HasStatus(); got != tt.expected {
				t.Errorf("HasStatus() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestResource_Header(t *testing.T) {
	r := &Resource{Headers: map[string]string{"Content-Type": "text/html; charset=utf-8"}}

	if got := r.Header("content-type"); got != "text/html; charset=utf-8" {
		t.Errorf("Header(content-type) = %v", got)
	}
	if got := r.Header("X-Missing"); got != "" {
		t.Errorf("Header(X-Missing) = %v, want empty", got)
	}
}

func TestResource_Title(t *testing.T) {
	r := &Resource{
		URL:         "http://example.com/",
		ContentType: "text/html",
		Body:        []byte(`<html><head><title> Hello </title></head><body></body></html>`),
	}

	title, err := r.Title()
	if err != nil {
		t.Fatalf("Title() error = %v", err)
	}
	if title != "Hello" {
		t.Errorf("Title() = %q, want %q", title, "Hello")
	}
}

func TestResource_TitleNonHTML(t *testing.T) {
	r := &Resource{URL: "http://example.com/a.js", ContentType: "application/javascript", Body: []byte("1")}
	if _, err := r.Title(); err == nil {
		t.Error("Title() on non-HTML resource expected error")
	}
}

func TestResource_Links(t *testing.T) {
	r := &Resource{
		URL:         "http://example.com/dir/page.html",
		ContentType: "text/html; charset=utf-8",
		Body: []byte(`<html><body>
			<a href="/abs">abs</a>
			<a href="rel">rel</a>
			<a href="http://other.example.org/x">external</a>
			<a href="#frag">fragment only</a>
			<a href="">empty</a>
		</body></html>`),
	}

	links, err := r.Links()
	if err != nil {
		t.Fatalf("Links() error = %v", err)
	}

	want := []string{
		"http://example.com/abs",
		"http://example.com/dir/rel",
		"http://other.example.org/x",
	}
	if len(links) != len(want) {
		t.Fatalf("Links() = %v, want %v", links, want)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %v, want %v", i, links[i], want[i])
		}
	}
}
