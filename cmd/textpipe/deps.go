package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-textpipe/internal/render"
)

// Dependencies holds injectable dependencies for testability.
type Dependencies struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader // nil when stdin is a terminal

	// NewPDFRenderer creates the PDF backend; nil selects headless Chrome.
	NewPDFRenderer func(timeout time.Duration) pdfRenderer
}

// DefaultDeps returns production dependencies.
// Stdin is only wired when data is piped in.
func DefaultDeps() *Dependencies {
	deps := &Dependencies{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	if stdinPiped() {
		deps.Stdin = os.Stdin
	}
	return deps
}

func (d *Dependencies) newPDFRenderer(timeout time.Duration) pdfRenderer {
	if d.NewPDFRenderer != nil {
		return d.NewPDFRenderer(timeout)
	}
	return render.New(timeout)
}

func stdinPiped() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}
