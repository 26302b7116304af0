//go:build integration

package render

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestConverter_ToPDF_Integration(t *testing.T) {
	c := New(0)
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	html := "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>T</title></head><body><p>Is this <strong>working?</strong></p></body></html>"
	pdf, err := c.ToPDF(ctx, html, &Options{Title: "T", PageNumbers: true})
	if err != nil {
		t.Fatalf("ToPDF() error = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", pdf[:min(len(pdf), 16)])
	}

	// The browser is reused across calls
	if _, err := c.ToPDF(ctx, html, nil); err != nil {
		t.Fatalf("second ToPDF() error = %v", err)
	}
}
