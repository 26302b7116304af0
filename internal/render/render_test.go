package render

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// mockRenderer implements fileRenderer for testing.
type mockRenderer struct {
	Result     []byte
	Err        error
	CalledWith string
	Content    string
	CalledOpts *Options
	Closed     bool
}

func (m *mockRenderer) RenderFromFile(ctx context.Context, filePath string, opts *Options) ([]byte, error) {
	m.CalledWith = filePath
	m.CalledOpts = opts
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	m.Content = string(data)
	return m.Result, m.Err
}

func (m *mockRenderer) Close() error {
	m.Closed = true
	return nil
}

func TestConverter_ToPDF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		html    string
		mock    *mockRenderer
		wantErr bool
	}{
		{
			name: "successful render returns PDF bytes",
			html: "<html><body>Test</body></html>",
			mock: &mockRenderer{Result: []byte("%PDF-1.4 fake pdf content")},
		},
		{
			name:    "renderer error propagates",
			html:    "<html></html>",
			mock:    &mockRenderer{Err: errors.New("browser crashed")},
			wantErr: true,
		},
		{
			name: "empty HTML is valid",
			html: "",
			mock: &mockRenderer{Result: []byte("%PDF-1.4")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &Converter{renderer: tt.mock}
			opts := &Options{Title: "Report"}
			got, err := c.ToPDF(context.Background(), tt.html, opts)

			if tt.wantErr {
				if err == nil {
					t.Fatal("ToPDF() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPDF() unexpected error: %v", err)
			}
			if string(got) != string(tt.mock.Result) {
				t.Errorf("ToPDF() = %q, want %q", got, tt.mock.Result)
			}
			if tt.mock.Content != tt.html {
				t.Errorf("renderer read %q, want %q", tt.mock.Content, tt.html)
			}
			if !strings.HasSuffix(tt.mock.CalledWith, ".html") {
				t.Errorf("temp file %q should have .html extension", tt.mock.CalledWith)
			}
			if tt.mock.CalledOpts != opts {
				t.Error("options not passed through")
			}
			if _, err := os.Stat(tt.mock.CalledWith); !os.IsNotExist(err) {
				t.Errorf("temp file %q should be removed after rendering", tt.mock.CalledWith)
			}
		})
	}
}

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	mock := &mockRenderer{}
	c := &Converter{renderer: mock}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mock.Closed {
		t.Error("Close() should close the renderer")
	}
}

func TestRodRenderer_CloseWithoutBrowser(t *testing.T) {
	t.Parallel()

	r := &rodRenderer{timeout: DefaultTimeout}
	if err := r.Close(); err != nil {
		t.Errorf("Close() on unused renderer error = %v", err)
	}
}

func TestRodRenderer_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &rodRenderer{timeout: DefaultTimeout}
	if _, err := r.RenderFromFile(ctx, "/nonexistent.html", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("RenderFromFile() error = %v, want context.Canceled", err)
	}
	if r.browser != nil {
		t.Error("browser should not start for a cancelled context")
	}
}

// Uses t.Setenv, so it does not run in parallel. Rod turns no-sandbox on by
// itself inside containers, so only "1" has a fixed expectation; other values
// must leave rod's own choice untouched.
func TestNewLauncher_Sandbox(t *testing.T) {
	tests := []struct {
		value     string
		forced bool
	}{
		{"1", true},
		{"", false},
		{"true", false},
		{"0", false},
	}

	for _, tt := range tests {
		t.Run("ROD_NO_SANDBOX="+tt.value, func(t *testing.T) {
			t.Setenv("ROD_NO_SANDBOX", tt.value)
			t.Setenv("ROD_BROWSER_BIN", "")

			want := launcher.New().Has(flags.NoSandbox)
			if tt.forced {
				want = true
			}
			if got := newLauncher().Has(flags.NoSandbox); got != want {
				t.Errorf("no-sandbox flag = %v, want %v", got, want)
			}
		})
	}
}

func TestBuildPDFOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		opts             *Options
		wantFooter       bool
		wantMarginBottom float64
	}{
		{"nil options", nil, false, marginInches},
		{"no decoration", &Options{}, false, marginInches},
		{"page numbers", &Options{PageNumbers: true}, true, marginBottomWithFooter},
		{"title", &Options{Title: "Report"}, true, marginBottomWithFooter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildPDFOptions(tt.opts)
			if got.DisplayHeaderFooter != tt.wantFooter {
				t.Errorf("DisplayHeaderFooter = %v, want %v", got.DisplayHeaderFooter, tt.wantFooter)
			}
			if *got.MarginBottom != tt.wantMarginBottom {
				t.Errorf("MarginBottom = %v, want %v", *got.MarginBottom, tt.wantMarginBottom)
			}
			if *got.PaperWidth != paperWidthInches || *got.PaperHeight != paperHeightInches {
				t.Errorf("paper = %vx%v, want A4", *got.PaperWidth, *got.PaperHeight)
			}
			if !got.PrintBackground {
				t.Error("PrintBackground should be true")
			}
		})
	}
}

func TestBuildFooterTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		opts         *Options
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "nil returns empty span",
			opts:         nil,
			wantContains: []string{"<span></span>"},
		},
		{
			name:         "page numbers",
			opts:         &Options{PageNumbers: true},
			wantContains: []string{`class="pageNumber"`, `class="totalPages"`},
		},
		{
			name:         "title is escaped",
			opts:         &Options{Title: "<b>Q&A</b>"},
			wantContains: []string{"&lt;b&gt;Q&amp;A&lt;/b&gt;"},
			wantNot:      []string{"<b>"},
		},
		{
			name:         "title and page numbers joined",
			opts:         &Options{Title: "Report", PageNumbers: true},
			wantContains: []string{"Report - <span"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildFooterTemplate(tt.opts)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("buildFooterTemplate() should contain %q, got %q", want, got)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(got, notWant) {
					t.Errorf("buildFooterTemplate() should NOT contain %q, got %q", notWant, got)
				}
			}
		})
	}
}
