package textpipe

import (
	"fmt"

	"github.com/alnah/go-textpipe/internal/loader"
)

// LoadDocument reads a document from a path or file:// URI. HTML files
// (.html, .htm) are parsed with their markup recorded in OriginalMarkupsSet,
// PDF files contribute their extracted text and anything else is read as
// UTF-8 text. The document is named after the file unless opts say otherwise.
func LoadDocument(uri string, opts ...DocumentOption) (*Document, error) {
	c, err := loader.Load(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentLoad, err)
	}

	opts = append([]DocumentOption{WithDocumentName(c.Name), WithSource(uri)}, opts...)
	switch c.Kind {
	case loader.KindHTML:
		doc, err := NewHTMLDocument(c.Text, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDocumentLoad, uri, err)
		}
		return doc, nil
	case loader.KindPDF:
		return NewPDFDocument(c.Text, opts...), nil
	default:
		return NewDocument(c.Text, opts...), nil
	}
}

// LoadCorpus loads every uri into a new corpus named name. It stops at the
// first document that fails to load.
func LoadCorpus(name string, uris ...string) (*Corpus, error) {
	c := NewCorpus(name)
	for _, uri := range uris {
		doc, err := LoadDocument(uri)
		if err != nil {
			return nil, err
		}
		c.Add(doc)
	}
	return c, nil
}
