package main

import (
	"errors"
	"slices"
	"testing"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-textpipe/internal/config"
	"github.com/alnah/go-textpipe/internal/render"
)

func TestParseAnnotateFlags(t *testing.T) {
	t.Parallel()

	f, docs, err := parseAnnotateFlags([]string{
		"a.txt", "-t", "Person,Location", "--plugin", "builtin:annie",
		"--plugin", "./plugins/extra", "--lists-only", "--store", "c.db", "b.html", "-v",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(docs, []string{"a.txt", "b.html"}) {
		t.Errorf("docs = %v", docs)
	}
	if !slices.Equal(f.types, []string{"Person", "Location"}) {
		t.Errorf("types = %v", f.types)
	}
	if !slices.Equal(f.resources.plugins, []string{"builtin:annie", "./plugins/extra"}) {
		t.Errorf("plugins = %v", f.resources.plugins)
	}
	if !f.listsOnly || f.store != "c.db" || !f.common.verbose {
		t.Errorf("flags = %+v", f)
	}
}

func TestParseMarkupFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
		check   func(t *testing.T, f *markupFlags, rest []string)
	}{
		{
			name: "all flags",
			args: []string{"-g", "markdown", "-f", "pdf", "-o", "out.pdf", "--title", "T", "--page-numbers", "--timeout", "10s", "in.md"},
			check: func(t *testing.T, f *markupFlags, rest []string) {
				if f.grammar != "markdown" || f.format != "pdf" || f.output != "out.pdf" || f.title != "T" {
					t.Errorf("flags = %+v", f)
				}
				if !f.pageNumbers || f.timeout != 10*time.Second {
					t.Errorf("flags = %+v", f)
				}
				if !slices.Equal(rest, []string{"in.md"}) {
					t.Errorf("rest = %v", rest)
				}
			},
		},
		{
			name:    "negative timeout",
			args:    []string{"--timeout", "-1s"},
			wantErr: ErrUsage,
		},
		{
			name:    "unknown flag",
			args:    []string{"--style", "x"},
			wantErr: ErrUsage,
		},
		{
			name:    "help",
			args:    []string{"-h"},
			wantErr: flag.ErrHelp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, rest, err := parseMarkupFlags(tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, f, rest)
		})
	}
}

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flag    time.Duration
		seconds int
		want    time.Duration
	}{
		{"flag wins", 5 * time.Second, 60, 5 * time.Second},
		{"config seconds", 0, 60, time.Minute},
		{"default", 0, 0, render.DefaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			cfg.PDF.Timeout = tt.seconds
			if got := resolveTimeout(tt.flag, cfg); got != tt.want {
				t.Errorf("resolveTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}
