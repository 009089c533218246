package resource

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document parses the resource body as HTML.
// Fails when the resource has no body or does not carry an HTML document.
func (r *Resource) Document() (*goquery.Document, error) {
	if !r.IsHTML() {
		return nil, fmt.Errorf("resource %s is not HTML (content type %q)", r.URL, r.ContentType)
	}
	if len(r.Body) == 0 {
		return nil, fmt.Errorf("resource %s has no body", r.URL)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for %s: %w", r.URL, err)
	}
	return doc, nil
}

// Title returns the document title of an HTML resource.
func (r *Resource) Title() (string, error) {
	doc, err := r.Document()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

// Links returns all anchor targets of an HTML resource, resolved against the
// resource URL. Fragment-only and unparsable targets are skipped.
func (r *Resource) Links() ([]string, error) {
	doc, err := r.Document()
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URL %q: %w", r.URL, err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})
	return links, nil
}
