package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	logJSON bool
}

// resourceFlags selects the resource home and the plugins to register.
type resourceFlags struct {
	home    string
	plugins []string
}

// annotateFlags holds the annotate command's flags.
type annotateFlags struct {
	common    commonFlags
	resources resourceFlags
	types     []string
	listsOnly bool
	store     string
	stats     bool
	yaml      bool
}

// markupFlags holds the markup command's flags.
type markupFlags struct {
	common      commonFlags
	grammar     string
	format      string
	output      string
	title       string
	pageNumbers bool
	timeout     time.Duration
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print debug status lines")
	fs.BoolVar(&f.logJSON, "log-json", false, "print status lines as JSON")
}

func addResourceFlags(fs *flag.FlagSet, f *resourceFlags) {
	fs.StringVar(&f.home, "home", "", "resource home directory (default: built-in)")
	fs.StringArrayVar(&f.plugins, "plugin", nil, "plugin directory, file:// URI or builtin:<name> (repeatable)")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(true)
	return fs
}

// parseAnnotateFlags parses annotate flags and returns the document arguments.
func parseAnnotateFlags(args []string) (*annotateFlags, []string, error) {
	f := &annotateFlags{}
	fs := newFlagSet("annotate")
	addCommonFlags(fs, &f.common)
	addResourceFlags(fs, &f.resources)
	fs.StringSliceVarP(&f.types, "type", "t", nil, "annotation types to print (default: Token)")
	fs.BoolVar(&f.listsOnly, "lists-only", false, "recognise entities from gazetteer lists only")
	fs.StringVar(&f.store, "store", "", "save documents and annotations to a SQLite file")
	fs.BoolVar(&f.stats, "stats", false, "print a metrics summary to stderr")
	fs.BoolVar(&f.yaml, "yaml", false, "print results as YAML")

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseMarkupFlags parses markup flags and returns the input arguments.
func parseMarkupFlags(args []string) (*markupFlags, []string, error) {
	f := &markupFlags{}
	fs := newFlagSet("markup")
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.grammar, "grammar", "g", "", "input grammar: mediawiki, markdown")
	fs.StringVarP(&f.format, "format", "f", "", "output format: html, markdown, pdf")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.StringVar(&f.title, "title", "", "document title")
	fs.BoolVar(&f.pageNumbers, "page-numbers", false, "number PDF pages")
	fs.DurationVar(&f.timeout, "timeout", 0, "PDF rendering timeout")

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	if f.timeout < 0 {
		return nil, nil, fmt.Errorf("%w: --timeout must be positive", ErrUsage)
	}
	return f, fs.Args(), nil
}

// parseFlagSet parses args, passing flag.ErrHelp through unwrapped.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
