package markup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrConversion indicates the markup could not be converted.
var ErrConversion = errors.New("markup conversion failed")

// DefaultTitle is the document title used when none is configured.
const DefaultTitle = "Document"

// htmlTemplate wraps the rendered fragment in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// Converter abstracts markup to HTML conversion.
type Converter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// renderFunc writes the HTML fragment for source.
type renderFunc func(source []byte, w io.Writer) error

// GoldmarkConverter converts one grammar to HTML through goldmark's renderer.
// It holds no per-call state and is safe for concurrent use.
type GoldmarkConverter struct {
	grammar string
	render  renderFunc
	title   string
}

// Option configures a GoldmarkConverter.
type Option func(*GoldmarkConverter)

// WithTitle sets the <title> of generated documents.
func WithTitle(title string) Option {
	return func(c *GoldmarkConverter) {
		if title != "" {
			c.title = title
		}
	}
}

// NewMarkdownConverter creates a converter for Markdown with GFM extensions
// and syntax highlighting.
func NewMarkdownConverter(opts ...Option) *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)
	render := func(source []byte, w io.Writer) error {
		return md.Convert(source, w)
	}
	return newConverter("markdown", render, opts)
}

// NewMediaWikiConverter creates a converter for MediaWiki markup.
func NewMediaWikiConverter(opts ...Option) *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithRendererOptions(
			goldmarkhtml.WithXHTML(),
		),
	)
	r := md.Renderer()
	render := func(source []byte, w io.Writer) error {
		return r.Render(w, source, ParseMediaWiki(source))
	}
	return newConverter("mediawiki", render, opts)
}

func newConverter(grammar string, render renderFunc, opts []Option) *GoldmarkConverter {
	c := &GoldmarkConverter{grammar: grammar, render: render, title: DefaultTitle}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Grammar returns the name of the grammar this converter reads.
func (c *GoldmarkConverter) Grammar() string { return c.grammar }

// ToHTML converts content to a standalone HTML5 document.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("%w: %s: %v", ErrConversion, c.grammar, p)}
			}
		}()

		var buf bytes.Buffer
		if err := c.render([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %s: %v", ErrConversion, c.grammar, err)}
			return
		}
		done <- result{html: fmt.Sprintf(htmlTemplate, html.EscapeString(c.title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Compile-time interface check.
var _ Converter = (*GoldmarkConverter)(nil)
