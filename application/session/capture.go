package session

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"wraith-go/infrastructure/browser"
)

// CaptureOption narrows a screenshot to a region of the page.
type CaptureOption func(*captureSettings)

type captureSettings struct {
	region   *browser.Region
	selector string
}

// WithRegion captures the given pixel region instead of the full viewport.
func WithRegion(region browser.Region) CaptureOption {
	return func(c *captureSettings) { c.region = &region }
}

// WithSelectorRegion captures the bounding box of the first element matching
// the selector.
func WithSelectorRegion(selector string) CaptureOption {
	return func(c *captureSettings) { c.selector = selector }
}

// resolveClip turns capture options into a concrete clip region, or nil for
// the full viewport.
func (s *Session) resolveClip(ctx context.Context, set captureSettings) (*browser.Region, error) {
	if set.selector != "" {
		region, err := s.driver.ElementRegion(ctx, set.selector)
		if err != nil {
			return nil, err
		}
		return &region, nil
	}
	return set.region, nil
}

// Capture takes a screenshot and returns it as a decoded image.
func (s *Session) Capture(ctx context.Context, opts ...CaptureOption) (image.Image, error) {
	data, err := s.captureBytes(ctx, opts...)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return img, nil
}

// CaptureTo takes a screenshot and writes it as PNG to the given path.
func (s *Session) CaptureTo(ctx context.Context, path string, opts ...CaptureOption) error {
	data, err := s.captureBytes(ctx, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	s.logger.Info("Screenshot saved", "path", path)
	return nil
}

func (s *Session) captureBytes(ctx context.Context, opts ...CaptureOption) ([]byte, error) {
	if err := s.checkOperational(); err != nil {
		return nil, err
	}

	var set captureSettings
	for _, opt := range opts {
		opt(&set)
	}

	opCtx, cancel := s.opCtx(ctx, 0)
	defer cancel()

	clip, err := s.resolveClip(opCtx, set)
	if err != nil {
		return nil, err
	}
	return s.driver.CaptureScreenshot(opCtx, clip)
}

// PDFOption adjusts PDF rendering.
type PDFOption func(*browser.PDFOptions)

// WithPaperSize sets the paper dimensions in inches.
func WithPaperSize(width, height float64) PDFOption {
	return func(o *browser.PDFOptions) {
		o.PaperWidth = width
		o.PaperHeight = height
	}
}

// WithPaperFormat sets the paper size by format name ("A4", "Letter", ...).
// Unknown formats are ignored.
func WithPaperFormat(format string) PDFOption {
	return func(o *browser.PDFOptions) {
		if size, ok := paperFormats[strings.ToLower(format)]; ok {
			o.PaperWidth = size[0]
			o.PaperHeight = size[1]
		}
	}
}

// WithMargins sets all page margins in inches.
func WithMargins(top, bottom, left, right float64) PDFOption {
	return func(o *browser.PDFOptions) {
		o.MarginTop = top
		o.MarginBottom = bottom
		o.MarginLeft = left
		o.MarginRight = right
	}
}

// WithLandscape switches the page orientation.
func WithLandscape() PDFOption {
	return func(o *browser.PDFOptions) { o.Landscape = true }
}

// WithPDFScale sets the rendering zoom factor.
func WithPDFScale(scale float64) PDFOption {
	return func(o *browser.PDFOptions) { o.Scale = scale }
}

// paperFormats maps format names to [width, height] in inches.
var paperFormats = map[string][2]float64{
	"a3":      {11.69, 16.54},
	"a4":      {8.27, 11.69},
	"a5":      {5.83, 8.27},
	"legal":   {8.5, 14},
	"letter":  {8.5, 11},
	"tabloid": {11, 17},
}

// PrintToPDF renders the current page as PDF and writes it to path.
func (s *Session) PrintToPDF(ctx context.Context, path string, opts ...PDFOption) error {
	if err := s.checkOperational(); err != nil {
		return err
	}

	pdfOpts := browser.DefaultPDFOptions()
	for _, opt := range opts {
		opt(&pdfOpts)
	}

	opCtx, cancel := s.opCtx(ctx, 0)
	defer cancel()

	data, err := s.driver.PrintToPDF(opCtx, pdfOpts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	s.logger.Info("PDF saved", "path", path)
	return nil
}
