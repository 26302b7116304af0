package textpipe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	textpipe "github.com/alnah/go-textpipe"
)

// Example runs the default pipeline over one sentence and prints the
// persons it found.
func Example() {
	env, err := textpipe.InitEmbedded()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := env.RegisterPluginDirectory("builtin:annie"); err != nil {
		fmt.Println("error:", err)
		return
	}

	pipeline, err := textpipe.NewDefaultPipeline(env)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	doc := textpipe.NewDocument("My name is John.")
	corpus := textpipe.NewCorpus("example")
	corpus.Add(doc)
	pipeline.SetCorpus(corpus)

	if err := pipeline.Execute(context.Background()); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(textpipe.ExtractStrings(doc, textpipe.TypePerson))
	fmt.Println(textpipe.ExtractStrings(doc, textpipe.TypeToken))
	// Output:
	// [John]
	// [My name is John .]
}

// ExampleExtractCorpus extracts one annotation type from every document.
func ExampleExtractCorpus() {
	env, err := textpipe.InitEmbedded()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := env.RegisterPluginDirectory("builtin:annie"); err != nil {
		fmt.Println("error:", err)
		return
	}
	pipeline, err := textpipe.NewDefaultPipeline(env)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	corpus := textpipe.NewCorpus("letters")
	corpus.Add(
		textpipe.NewDocument("Two words.", textpipe.WithDocumentName("short")),
		textpipe.NewDocument("It rained all day. We stayed at home. The roof held.", textpipe.WithDocumentName("long")),
	)
	pipeline.SetCorpus(corpus)
	if err := pipeline.Execute(context.Background()); err != nil {
		fmt.Println("error:", err)
		return
	}

	sentences := textpipe.ExtractCorpus(corpus, textpipe.TypeSentence)
	fmt.Println(len(sentences["short"]), len(sentences["long"]))
	// Output: 1 3
}

// ExampleParseToHTML converts MediaWiki markup without a context.
func ExampleParseToHTML() {
	html, err := textpipe.ParseToHTML("Is this '''working?''' Yes it does Jean-Francois!", textpipe.GrammarMediaWiki)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	start := strings.Index(html, "<p>")
	end := strings.Index(html, "</p>")
	fmt.Println(html[start : end+len("</p>")])
	// Output: <p>Is this <strong>working?</strong> Yes it does Jean-Francois!</p>
}

// ExampleMarkupConverter_ToMarkdown renders MediaWiki as Markdown.
func ExampleMarkupConverter_ToMarkdown() {
	conv, err := textpipe.NewMarkupConverter(textpipe.GrammarMediaWiki)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	md, err := conv.ToMarkdown(context.Background(), "== Usage ==\nSee [[Main Page|the main page]].")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Print(md)
	// Output:
	// ## Usage
	//
	// See [the main page](/wiki/Main_Page).
}

// ExampleMarkupConverter_concurrent shares one converter between goroutines.
func ExampleMarkupConverter_concurrent() {
	conv, err := textpipe.NewMarkupConverter(textpipe.GrammarMarkdown)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	inputs := []string{"# One", "# Two", "# Three"}
	results := make([]string, len(inputs))

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			html, err := conv.ToHTML(context.Background(), in)
			if err != nil {
				results[i] = "error"
				return
			}
			results[i] = fmt.Sprint(strings.Contains(html, "<h1"))
		}()
	}
	wg.Wait()

	fmt.Println(strings.Join(results, " "))
	// Output: true true true
}
