// Package textpipe runs information extraction pipelines over text documents
// and converts lightweight markup to HTML.
//
// # Quick Start
//
// Initialise an environment, register the built-in plugin, run the default
// pipeline over a corpus and extract what it found:
//
//	env, err := textpipe.InitEmbedded()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := env.RegisterPluginDirectory("builtin:annie"); err != nil {
//	    log.Fatal(err)
//	}
//
//	pipeline, err := textpipe.NewDefaultPipeline(env)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	corpus := textpipe.NewCorpus("greetings")
//	corpus.Add(textpipe.NewDocument("My name is John."))
//	pipeline.SetCorpus(corpus)
//	if err := pipeline.Execute(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	names := textpipe.ExtractStrings(corpus.Documents()[0], textpipe.TypePerson)
//	// names == []string{"John"}
//
// # Environment
//
// An Environment is the explicit handle to a resource home and the plugins
// registered on it. Init reads a directory holding a textpipe.yaml manifest;
// InitEmbedded uses the home compiled into the binary. Plugins are
// directories with a creole.yaml manifest naming the processing resources
// they provide and their gazetteer lists. They are registered by path,
// file:// URI or builtin:<name>.
//
// # Default Pipeline
//
// NewDefaultPipeline chains one resource of each kind in DefaultResourceChain:
//
//  1. Document reset (drops annotations of previous runs)
//  2. Tokeniser (Token and SpaceToken, with orth and kind features)
//  3. Gazetteer (Lookup annotations from the plugin lists)
//  4. Sentence splitter (Sentence)
//  5. POS tagger (category feature on tokens)
//  6. Named-entity transducer (Person, Location, Organization)
//  7. Orthographic matcher (co-references between entity mentions)
//
// Pipelines stop at the first failing resource and return it wrapped in
// ErrExecution. The context is checked before each step.
//
// # Documents
//
// Documents hold text and annotation sets. NewHTMLDocument keeps the rendered
// text and records each element in OriginalMarkupsSet. LoadDocument reads
// text, HTML or PDF files by extension.
//
// # Markup
//
// MarkupConverter renders MediaWiki (default) or Markdown to a complete
// HTML5 document, and Markdown through HTML:
//
//	conv, err := textpipe.NewMarkupConverter(textpipe.GrammarMediaWiki)
//	html, err := conv.ToHTML(ctx, "Is this '''working?''' Yes it does Jean-Francois!")
//
// ParseToHTML is the context-free shorthand.
//
// # Logging and Metrics
//
// Status lines ("Initialising textpipe...", "Pipeline complete") go to the
// logrus.FieldLogger given by WithLogger. Each environment owns a Prometheus
// registry (MetricsRegistry) counting resource runs, annotations and
// conversions.
package textpipe
