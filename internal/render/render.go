// Package render prints HTML documents to PDF with headless Chrome (go-rod).
// Rod downloads Chromium on first use if no browser is installed.
package render

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-textpipe/internal/fileutil"
	"github.com/alnah/go-textpipe/internal/process"
)

// Sentinel errors for PDF rendering.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// DefaultTimeout bounds page loading when the context has no deadline.
const DefaultTimeout = 30 * time.Second

// PDF page dimensions in inches (A4).
const (
	paperWidthInches       = 8.27
	paperHeightInches      = 11.69
	marginInches           = 0.5
	marginBottomWithFooter = 0.75
)

// footerFontFamily is the font stack for Chrome's footer template.
const footerFontFamily = "sans-serif"

// Options controls page decoration.
type Options struct {
	// Title is printed in the footer when set.
	Title string

	// PageNumbers prints "n/total" in the footer.
	PageNumbers bool
}

func (o *Options) hasFooter() bool {
	return o != nil && (o.Title != "" || o.PageNumbers)
}

// fileRenderer renders an HTML file to PDF. It is the seam tests replace
// to run without a browser.
type fileRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *Options) ([]byte, error)
	Close() error
}

// Converter converts HTML documents to PDF.
type Converter struct {
	renderer fileRenderer
}

// New creates a Converter backed by one headless Chrome instance, started
// on first use. timeout bounds page loads when the context has no deadline;
// zero selects DefaultTimeout.
func New(timeout time.Duration) *Converter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Converter{renderer: &rodRenderer{timeout: timeout}}
}

// ToPDF renders a complete HTML document to PDF bytes.
func (c *Converter) ToPDF(ctx context.Context, htmlDoc string, opts *Options) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlDoc, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.RenderFromFile(ctx, tmpPath, opts)
}

// Close releases the browser.
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

// BrowserPath returns the Chrome binary rod would launch and whether one was
// found. ROD_BROWSER_BIN takes precedence over the system lookup.
func BrowserPath() (string, bool) {
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		return bin, fileutil.FileExists(bin)
	}
	return launcher.LookPath()
}

// rodRenderer drives one shared headless Chrome. mu serialises page
// rendering and browser start-up.
type rodRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

// newLauncher configures Chrome from ROD_BROWSER_BIN and ROD_NO_SANDBOX.
// Containers and CI runners usually need ROD_NO_SANDBOX=1.
func newLauncher() *launcher.Launcher {
	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}
	return l
}

// start launches the browser unless it is already running. Callers hold mu.
func (r *rodRenderer) start() error {
	if r.browser != nil {
		return nil
	}

	l := newLauncher()
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: launch: %v", ErrBrowserConnect, err)
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: connect: %v", ErrBrowserConnect, err)
	}

	r.launcher, r.browser = l, b
	return nil
}

// Close shuts the browser down and kills the whole Chrome process group.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if b := r.browser; b != nil {
		r.browser = nil
		err = b.Close()
	}
	if l := r.launcher; l != nil {
		r.launcher = nil
		if pid := l.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		l.Kill()
	}
	return err
}

// loadTimeout is the time left on ctx, or the renderer default without a
// deadline.
func (r *rodRenderer) loadTimeout(ctx context.Context) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return left, nil
}

// RenderFromFile loads a local HTML file in a new tab and prints it to PDF.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.start(); err != nil {
		return nil, err
	}

	timeout, err := r.loadTimeout(ctx)
	if err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, filePath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := page.PDF(buildPDFOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	out, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: stream: %v", ErrPDFGeneration, err)
	}
	return out, nil
}

// buildPDFOptions returns A4 print settings. A footer widens the bottom
// margin.
func buildPDFOptions(opts *Options) *proto.PagePrintToPDF {
	inches := func(v float64) *float64 { return &v }

	settings := &proto.PagePrintToPDF{
		PaperWidth:      inches(paperWidthInches),
		PaperHeight:     inches(paperHeightInches),
		MarginTop:       inches(marginInches),
		MarginBottom:    inches(marginInches),
		MarginLeft:      inches(marginInches),
		MarginRight:     inches(marginInches),
		PrintBackground: true,
	}
	if opts.hasFooter() {
		settings.MarginBottom = inches(marginBottomWithFooter)
		settings.DisplayHeaderFooter = true
		settings.HeaderTemplate = emptyTemplate
		settings.FooterTemplate = buildFooterTemplate(opts)
	}
	return settings
}

// emptyTemplate suppresses Chrome's default header or footer.
const emptyTemplate = "<span></span>"

// buildFooterTemplate renders the escaped title and Chrome's page counters,
// right-aligned.
func buildFooterTemplate(opts *Options) string {
	if !opts.hasFooter() {
		return emptyTemplate
	}

	items := make([]string, 0, 2)
	if opts.Title != "" {
		items = append(items, html.EscapeString(opts.Title))
	}
	if opts.PageNumbers {
		items = append(items, `<span class="pageNumber"></span>/<span class="totalPages"></span>`)
	}

	const style = "font-size: 10px; color: #aaa; width: 100%; text-align: right; padding: 0 0.5in;"
	return `<div style="` + style + ` font-family: ` + footerFontFamily + `;">` +
		strings.Join(items, " - ") + `</div>`
}

var _ fileRenderer = (*rodRenderer)(nil)
