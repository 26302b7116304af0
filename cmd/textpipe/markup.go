package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	textpipe "github.com/alnah/go-textpipe"
	"github.com/alnah/go-textpipe/internal/config"
	"github.com/alnah/go-textpipe/internal/loader"
	"github.com/alnah/go-textpipe/internal/render"
)

// defaultMarkup is converted when neither a file nor stdin is given.
const defaultMarkup = "Is this '''working?''' Yes it does Jean-Francois!"

// stdinArg reads the markup from stdin.
const stdinArg = "-"

// pdfRenderer converts a complete HTML document to PDF.
type pdfRenderer interface {
	ToPDF(ctx context.Context, htmlDoc string, opts *render.Options) ([]byte, error)
	Close() error
}

// runMarkup converts markup to HTML, Markdown or PDF.
func runMarkup(ctx context.Context, args []string, deps *Dependencies) (err error) {
	flags, inputs, err := parseMarkupFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printMarkupUsage(deps.Stdout)
		return nil
	}
	if err != nil {
		return err
	}
	if len(inputs) > 1 {
		return fmt.Errorf("%w: markup takes at most one input, got %d", ErrUsage, len(inputs))
	}

	cfg, _, err := loadSettings(flags.common.config, deps)
	if err != nil {
		return err
	}
	mergeMarkupFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(&flags.common, cfg.Log, deps.Stderr)

	grammar, err := textpipe.ParseGrammar(cfg.Markup.Grammar)
	if err != nil {
		return err
	}

	src, name, err := readMarkupInput(inputs, deps.Stdin)
	if err != nil {
		return err
	}

	title := cfg.Markup.Title
	if title == "" {
		title = name
	}
	conv, err := textpipe.NewMarkupConverter(grammar, textpipe.WithTitle(title))
	if err != nil {
		return err
	}

	log.WithField("grammar", grammar).WithField("format", cfg.Markup.Format).Debug("converting markup")

	var out []byte
	switch cfg.Markup.Format {
	case "markdown":
		md, err := conv.ToMarkdown(ctx, src)
		if err != nil {
			return err
		}
		out = []byte(md)
	case "pdf":
		htmlDoc, err := conv.ToHTML(ctx, src)
		if err != nil {
			return err
		}
		renderer := deps.newPDFRenderer(resolveTimeout(flags.timeout, cfg))
		defer func() {
			err = errors.Join(err, renderer.Close())
		}()
		out, err = renderer.ToPDF(ctx, htmlDoc, &render.Options{
			Title:       title,
			PageNumbers: cfg.PDF.PageNumbers,
		})
		if err != nil {
			return err
		}
	default:
		htmlDoc, err := conv.ToHTML(ctx, src)
		if err != nil {
			return err
		}
		out = []byte(htmlDoc)
	}

	if err := writeOutput(flags.output, out, deps.Stdout); err != nil {
		return err
	}
	if flags.output != "" {
		log.WithField("output", flags.output).Info("Markup written")
	}
	return nil
}

// mergeMarkupFlags applies explicitly set flags over the config.
func mergeMarkupFlags(flags *markupFlags, cfg *config.Config) {
	if flags.grammar != "" {
		cfg.Markup.Grammar = strings.ToLower(flags.grammar)
	}
	if flags.format != "" {
		cfg.Markup.Format = strings.ToLower(flags.format)
	}
	if flags.title != "" {
		cfg.Markup.Title = flags.title
	}
	if flags.pageNumbers {
		cfg.PDF.PageNumbers = true
	}
}

// resolveTimeout returns the PDF timeout: flag, then config, then default.
func resolveTimeout(flagTimeout time.Duration, cfg *config.Config) time.Duration {
	if flagTimeout > 0 {
		return flagTimeout
	}
	if cfg.PDF.Timeout > 0 {
		return time.Duration(cfg.PDF.Timeout) * time.Second
	}
	return render.DefaultTimeout
}

// readMarkupInput returns the markup source and the input's name.
// Precedence: file argument, piped stdin, defaultMarkup.
func readMarkupInput(inputs []string, stdin io.Reader) (string, string, error) {
	if len(inputs) == 1 && inputs[0] != stdinArg {
		if loader.KindOf(inputs[0]) == loader.KindPDF {
			return "", "", fmt.Errorf("%w: %s: PDF is not a markup grammar", ErrUsage, inputs[0])
		}
		content, err := loader.Load(inputs[0])
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		return content.Text, content.Name, nil
	}

	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		return string(data), "", nil
	}
	if len(inputs) == 1 {
		return "", "", fmt.Errorf("%w: stdin is not piped", ErrReadInput)
	}
	return defaultMarkup, "", nil
}

// writeOutput writes to path, or to stdout when path is empty.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- output is meant to be shared
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
