package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	textpipe "github.com/alnah/go-textpipe"
	"github.com/alnah/go-textpipe/internal/config"
	"github.com/alnah/go-textpipe/internal/datastore"
	"github.com/alnah/go-textpipe/internal/metrics"
	"github.com/alnah/go-textpipe/internal/yamlutil"
)

// defaultSentence is annotated when no document is given.
const defaultSentence = "My name is John."

// corpusName names the corpus built from the command line.
const corpusName = "cli"

// stdinName names the document read from piped stdin.
const stdinName = "stdin"

// annotateResult is one document's extracted strings, keyed by type.
type annotateResult struct {
	Document string              `yaml:"document"`
	Source   string              `yaml:"source,omitempty"`
	Strings  map[string][]string `yaml:"annotations"`
}

// runAnnotate runs the default pipeline over the given documents and prints
// the strings of the requested annotation types on stdout.
func runAnnotate(ctx context.Context, args []string, deps *Dependencies) error {
	flags, docArgs, err := parseAnnotateFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printAnnotateUsage(deps.Stdout)
		return nil
	}
	if err != nil {
		return err
	}

	cfg, _, err := loadSettings(flags.common.config, deps)
	if err != nil {
		return err
	}
	mergeAnnotateFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(&flags.common, cfg.Log, deps.Stderr)
	started := deps.Now()

	env, err := openEnvironment(cfg.Home, cfg.Plugins, log)
	if err != nil {
		return err
	}

	pipeline, err := buildPipeline(env, cfg.Annotate.ListsOnly)
	if err != nil {
		return err
	}

	corpus, err := buildCorpus(docArgs, deps.Stdin)
	if err != nil {
		return err
	}
	pipeline.SetCorpus(corpus)
	if err := pipeline.Execute(ctx); err != nil {
		return err
	}

	results := collectResults(corpus, cfg.Annotate.Types)
	if flags.yaml {
		if err := printResultsYAML(deps.Stdout, results); err != nil {
			return err
		}
	} else {
		printResults(deps.Stdout, results, cfg.Annotate.Types)
	}

	if cfg.Store.Path != "" {
		if err := storeCorpus(ctx, cfg.Store.Path, corpus, log); err != nil {
			return err
		}
	}

	if cfg.Annotate.Stats {
		if err := printStats(deps.Stderr, env); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"documents": corpus.Len(),
		"elapsed":   deps.Now().Sub(started).Round(time.Millisecond),
	}).Debug("annotate done")
	return nil
}

// mergeAnnotateFlags applies explicitly set flags over the config.
func mergeAnnotateFlags(flags *annotateFlags, cfg *config.Config) {
	if flags.resources.home != "" {
		cfg.Home = flags.resources.home
	}
	if len(flags.resources.plugins) > 0 {
		cfg.Plugins = flags.resources.plugins
	}
	if len(flags.types) > 0 {
		cfg.Annotate.Types = flags.types
	}
	if flags.listsOnly {
		cfg.Annotate.ListsOnly = true
	}
	if flags.store != "" {
		cfg.Store.Path = flags.store
	}
	if flags.stats {
		cfg.Annotate.Stats = true
	}
}

// buildPipeline returns the default pipeline, or the same chain created with
// gazetteer-only entity recognition when listsOnly is set.
func buildPipeline(env *textpipe.Environment, listsOnly bool) (*textpipe.Pipeline, error) {
	if !listsOnly {
		return textpipe.NewDefaultPipeline(env)
	}

	p, err := textpipe.NewPipeline(env, textpipe.DefaultPipelinePrefix+textpipe.GenSym())
	if err != nil {
		return nil, err
	}
	for _, kind := range textpipe.DefaultResourceChain {
		pr, err := env.CreateResource(kind, textpipe.Params{ListsOnly: true})
		if err != nil {
			return nil, err
		}
		p.Add(pr)
	}
	return p, nil
}

// buildCorpus loads every document argument. Without arguments it reads
// piped stdin, then falls back to the default sentence.
func buildCorpus(uris []string, stdin io.Reader) (*textpipe.Corpus, error) {
	if len(uris) > 0 {
		return textpipe.LoadCorpus(corpusName, uris...)
	}

	corpus := textpipe.NewCorpus(corpusName)
	if stdin == nil {
		corpus.Add(textpipe.NewDocument(defaultSentence))
		return corpus, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: stdin: not valid UTF-8", ErrReadInput)
	}
	corpus.Add(textpipe.NewDocument(string(data),
		textpipe.WithDocumentName(stdinName),
		textpipe.WithSource(stdinName),
	))
	return corpus, nil
}

func collectResults(corpus *textpipe.Corpus, types []string) []annotateResult {
	docs := corpus.Documents()
	results := make([]annotateResult, 0, len(docs))
	for _, doc := range docs {
		r := annotateResult{
			Document: doc.Name(),
			Source:   doc.Source(),
			Strings:  make(map[string][]string, len(types)),
		}
		for _, typ := range types {
			r.Strings[typ] = textpipe.ExtractStrings(doc, typ)
		}
		results = append(results, r)
	}
	return results
}

// printResults writes one string per line. With several documents or types
// each line is prefixed by document name and type, tab-separated.
func printResults(w io.Writer, results []annotateResult, types []string) {
	prefixed := len(results) > 1 || len(types) > 1
	for _, r := range results {
		for _, typ := range types {
			for _, s := range r.Strings[typ] {
				s = strings.ReplaceAll(s, "\n", " ")
				if prefixed {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.Document, typ, s)
				} else {
					fmt.Fprintln(w, s)
				}
			}
		}
	}
}

func printResultsYAML(w io.Writer, results []annotateResult) error {
	out, err := yamlutil.Marshal(results)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

func storeCorpus(ctx context.Context, path string, corpus *textpipe.Corpus, log logrus.FieldLogger) (err error) {
	store, err := datastore.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	if err := store.SaveCorpus(ctx, corpus); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"store":     store.Path(),
		"documents": corpus.Len(),
	}).Info("Corpus saved")
	return nil
}

func printStats(w io.Writer, env *textpipe.Environment) error {
	samples, err := metrics.Summarize(env.MetricsRegistry())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Metrics:")
	for _, s := range samples {
		fmt.Fprintf(w, "  %s\n", s)
	}
	return nil
}
