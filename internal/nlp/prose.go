package nlp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ErrEngine indicates the NLP engine failed to process the text.
var ErrEngine = errors.New("NLP engine failed")

// Span is a piece of text located by byte offsets.
type Span struct {
	Text  string
	Start int
	End   int
}

// TaggedToken is a token with its part-of-speech tag.
type TaggedToken struct {
	Span
	Tag string
}

// Entity is a named entity found by the statistical model.
type Entity struct {
	Span
	Label string // PERSON, GPE
}

// Tokenize splits text into tokens.
func Tokenize(text string) ([]Span, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: tokenizing: %v", ErrEngine, err)
	}

	toks := doc.Tokens()
	words := make([]string, len(toks))
	for i, tok := range toks {
		words[i] = tok.Text
	}
	return Align(text, words), nil
}

// Sentences splits text into sentences.
func Sentences(text string) ([]Span, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: segmenting: %v", ErrEngine, err)
	}

	sents := doc.Sentences()
	parts := make([]string, len(sents))
	for i, s := range sents {
		parts[i] = strings.TrimSpace(s.Text)
	}
	return Align(text, parts), nil
}

// Tag tokenizes text and assigns Penn Treebank part-of-speech tags.
func Tag(text string) ([]TaggedToken, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: tagging: %v", ErrEngine, err)
	}

	toks := doc.Tokens()
	words := make([]string, len(toks))
	for i, tok := range toks {
		words[i] = tok.Text
	}
	spans := Align(text, words)

	out := make([]TaggedToken, len(toks))
	for i, tok := range toks {
		out[i] = TaggedToken{Span: spans[i], Tag: tok.Tag}
	}
	return out, nil
}

// Entities runs the named-entity model over text.
func Entities(text string) ([]Entity, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("%w: extracting entities: %v", ErrEngine, err)
	}

	ents := doc.Entities()
	names := make([]string, len(ents))
	for i, e := range ents {
		names[i] = e.Text
	}
	spans := Align(text, names)

	out := make([]Entity, 0, len(ents))
	for i, e := range ents {
		if spans[i].Start == spans[i].End {
			continue // not locatable in the source text
		}
		out = append(out, Entity{Span: spans[i], Label: e.Label})
	}
	return out, nil
}

// Align locates each part in text, in order, starting after the previous match.
// Parts that cannot be found get an empty span at the current position.
func Align(text string, parts []string) []Span {
	spans := make([]Span, len(parts))
	cursor := 0
	for i, p := range parts {
		if p == "" {
			spans[i] = Span{Start: cursor, End: cursor}
			continue
		}
		idx := strings.Index(text[cursor:], p)
		if idx < 0 {
			spans[i] = Span{Text: p, Start: cursor, End: cursor}
			continue
		}
		start := cursor + idx
		spans[i] = Span{Text: p, Start: start, End: start + len(p)}
		cursor = spans[i].End
	}
	return spans
}
