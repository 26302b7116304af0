package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	textpipe "github.com/alnah/go-textpipe"
	"github.com/alnah/go-textpipe/internal/config"
	"github.com/alnah/go-textpipe/internal/datastore"
	"github.com/alnah/go-textpipe/internal/render"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 5)
		{"browser connect", render.ErrBrowserConnect, ExitBrowser},
		{"page load", render.ErrPageLoad, ExitBrowser},
		{"pdf generation", render.ErrPDFGeneration, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("failed: %w", render.ErrBrowserConnect), ExitBrowser},

		// Resource errors (exit 4)
		{"resource home", textpipe.ErrInvalidResourceHome, ExitResource},
		{"plugin directory", textpipe.ErrPluginDirectory, ExitResource},
		{"unknown resource", textpipe.ErrUnknownResource, ExitResource},
		{"resource init", fmt.Errorf("%w: tokeniser", textpipe.ErrResourceInit), ExitResource},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"document load", textpipe.ErrDocumentLoad, ExitIO},
		{"store open", datastore.ErrOpen, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},

		// Usage/config errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"unsupported grammar", textpipe.ErrUnsupportedGrammar, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"usage", ErrUsage, ExitUsage},
		{"config load error", &configLoadError{name: "x", err: config.ErrConfigNotFound}, ExitUsage},

		// General errors (exit 1)
		{"execution", textpipe.ErrExecution, ExitGeneral},
		{"no corpus", textpipe.ErrNoCorpus, ExitGeneral},
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	codes := []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitResource, ExitBrowser}
	seen := make(map[int]bool)
	for _, c := range codes {
		if c >= 126 {
			t.Errorf("exit code %d collides with shell-reserved codes", c)
		}
		if seen[c] {
			t.Errorf("exit code %d used twice", c)
		}
		seen[c] = true
	}
}

// ---------------------------------------------------------------------------
// TestHintFor - Error to hint mapping
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", fmt.Errorf("render: %w", context.DeadlineExceeded), "--timeout"},
		{"config name", &configLoadError{name: "work", err: config.ErrConfigNotFound}, "work.yaml"},
		{"resource home", textpipe.ErrInvalidResourceHome, "textpipe.yaml"},
		{"plugin", textpipe.ErrPluginDirectory, "builtin:annie"},
		{"unknown resource", textpipe.ErrUnknownResource, "--plugin"},
		{"grammar", textpipe.ErrUnsupportedGrammar, "mediawiki"},
		{"output", ErrWriteOutput, "writable"},
		{"no hint", errors.New("other"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want containing %q", got, tt.want)
			}
		})
	}
}
