package textpipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-textpipe/internal/markup"
)

// Grammar names a markup language.
type Grammar string

// Supported grammars.
const (
	GrammarMediaWiki Grammar = "mediawiki"
	GrammarMarkdown  Grammar = "markdown"
)

// DefaultGrammar is used when no grammar is named.
const DefaultGrammar = GrammarMediaWiki

// Grammars lists the supported grammars.
func Grammars() []Grammar {
	return []Grammar{GrammarMediaWiki, GrammarMarkdown}
}

// ParseGrammar maps a name to a Grammar, case-insensitively.
// The empty name selects DefaultGrammar.
func ParseGrammar(name string) (Grammar, error) {
	switch g := Grammar(strings.ToLower(strings.TrimSpace(name))); g {
	case "":
		return DefaultGrammar, nil
	case GrammarMediaWiki, GrammarMarkdown:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedGrammar, name)
	}
}

// MarkupConverter converts markup of one grammar to HTML.
// It holds no per-call state and is safe for concurrent use.
type MarkupConverter struct {
	grammar   Grammar
	converter *markup.GoldmarkConverter
	env       *Environment
}

// MarkupOption configures a MarkupConverter.
type MarkupOption func(*markupConfig)

type markupConfig struct {
	title string
	env   *Environment
}

// WithTitle sets the <title> of generated documents. Defaults to "Document".
func WithTitle(title string) MarkupOption {
	return func(c *markupConfig) {
		c.title = title
	}
}

// WithEnvironment counts conversions in env's metrics.
func WithEnvironment(env *Environment) MarkupOption {
	return func(c *markupConfig) {
		c.env = env
	}
}

// NewMarkupConverter creates a converter for grammar.
// Returns ErrUnsupportedGrammar for unknown grammars.
func NewMarkupConverter(grammar Grammar, opts ...MarkupOption) (*MarkupConverter, error) {
	cfg := &markupConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	mopts := []markup.Option{markup.WithTitle(cfg.title)}

	c := &MarkupConverter{grammar: grammar, env: cfg.env}
	switch grammar {
	case GrammarMediaWiki:
		c.converter = markup.NewMediaWikiConverter(mopts...)
	case GrammarMarkdown:
		c.converter = markup.NewMarkdownConverter(mopts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGrammar, grammar)
	}
	return c, nil
}

// Grammar returns the grammar the converter reads.
func (c *MarkupConverter) Grammar() Grammar { return c.grammar }

// ToHTML converts src to a complete HTML5 document. An empty src yields a
// document with an empty body.
func (c *MarkupConverter) ToHTML(ctx context.Context, src string) (string, error) {
	html, err := c.converter.ToHTML(ctx, src)
	if err != nil && !isContextErr(err) {
		err = fmt.Errorf("%w: %s: %w", ErrMarkupParse, c.grammar, err)
	}
	if c.env != nil {
		c.env.metrics.ObserveConversion(string(c.grammar), err)
	}
	return html, err
}

// ToMarkdown converts src to HTML, then the HTML to Markdown.
func (c *MarkupConverter) ToMarkdown(ctx context.Context, src string) (string, error) {
	html, err := c.ToHTML(ctx, src)
	if err != nil {
		return "", err
	}
	md, err := markup.ToMarkdown(html)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMarkupParse, err)
	}
	return md, nil
}

// ParseToHTML converts src under grammar with default options.
func ParseToHTML(src string, grammar Grammar) (string, error) {
	c, err := NewMarkupConverter(grammar)
	if err != nil {
		return "", err
	}
	return c.ToHTML(context.Background(), src)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
