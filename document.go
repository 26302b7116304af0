package textpipe

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alnah/go-textpipe/internal/htmldoc"
)

// MIME types recognised for document content.
const (
	MimeTextPlain = "text/plain"
	MimeTextHTML  = "text/html"
	MimePDF       = "application/pdf"
)

// Document holds text and the annotations produced over it.
type Document struct {
	id       string
	name     string
	source   string
	mimeType string
	text     string

	ids        *idSource
	defaultSet *AnnotationSet
	mu         sync.Mutex
	namedSets  map[string]*AnnotationSet
}

// DocumentOption configures a Document at construction.
type DocumentOption func(*Document)

// WithDocumentName sets a human-readable name.
func WithDocumentName(name string) DocumentOption {
	return func(d *Document) { d.name = name }
}

// WithSource records where the document came from (path or URI).
func WithSource(source string) DocumentOption {
	return func(d *Document) { d.source = source }
}

// WithDocumentID overrides the generated identifier.
func WithDocumentID(id string) DocumentOption {
	return func(d *Document) { d.id = id }
}

// NewDocument creates a plain-text document.
func NewDocument(text string, opts ...DocumentOption) *Document {
	return newDocument(text, MimeTextPlain, opts...)
}

// NewHTMLDocument parses HTML, keeps the rendered text as document content
// and records every element as an annotation in the OriginalMarkupsSet.
func NewHTMLDocument(source string, opts ...DocumentOption) (*Document, error) {
	parsed, err := htmldoc.Parse(source)
	if err != nil {
		return nil, err
	}

	if parsed.Title != "" {
		opts = append([]DocumentOption{WithDocumentName(parsed.Title)}, opts...)
	}
	d := newDocument(parsed.Text, MimeTextHTML, opts...)

	markups := d.AnnotationSet(OriginalMarkupsSet)
	for _, el := range parsed.Elements {
		features := FeatureMap{FeatureTag: el.Tag}
		if el.Href != "" {
			features[FeatureHref] = el.Href
		}
		if _, err := markups.Add(el.Tag, el.Start, el.End, features); err != nil {
			return nil, fmt.Errorf("recording markup %q: %w", el.Tag, err)
		}
	}
	return d, nil
}

// NewPDFDocument wraps text already extracted from a PDF file.
func NewPDFDocument(text string, opts ...DocumentOption) *Document {
	return newDocument(text, MimePDF, opts...)
}

func newDocument(text, mimeType string, opts ...DocumentOption) *Document {
	ids := &idSource{}
	d := &Document{
		text:       text,
		mimeType:   mimeType,
		ids:        ids,
		defaultSet: newAnnotationSet("", len(text), ids),
		namedSets:  make(map[string]*AnnotationSet),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.id == "" {
		d.id = GenSym()
	}
	if d.name == "" {
		d.name = "doc_" + d.id
	}
	return d
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// Source returns the path or URI the document was loaded from, if any.
func (d *Document) Source() string { return d.source }

// MimeType returns the content type the document was created from.
func (d *Document) MimeType() string { return d.mimeType }

// Text returns the document content.
func (d *Document) Text() string { return d.text }

// Span returns the text covered by [start,end], clamped to the document.
func (d *Document) Span(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.text) {
		end = len(d.text)
	}
	if start >= end {
		return ""
	}
	return d.text[start:end]
}

// Annotations returns the default annotation set.
func (d *Document) Annotations() *AnnotationSet { return d.defaultSet }

// AnnotationSet returns the named set, creating it on first use.
// The empty name returns the default set.
func (d *Document) AnnotationSet(name string) *AnnotationSet {
	if name == "" {
		return d.defaultSet
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.namedSets[name]
	if !ok {
		set = newAnnotationSet(name, len(d.text), d.ids)
		d.namedSets[name] = set
	}
	return set
}

// RemoveAnnotationSet deletes a named set. The default set cannot be removed.
func (d *Document) RemoveAnnotationSet(name string) {
	if name == "" {
		return
	}
	d.mu.Lock()
	delete(d.namedSets, name)
	d.mu.Unlock()
}

// AnnotationSetNames returns the names of the named sets, sorted.
func (d *Document) AnnotationSetNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.namedSets))
	for n := range d.namedSets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RestoreAnnotation re-creates a persisted annotation with its original ID.
func (d *Document) RestoreAnnotation(setName string, id int, typ string, start, end int, features FeatureMap) error {
	if err := features.Validate(); err != nil {
		return err
	}
	return d.AnnotationSet(setName).restore(id, typ, start, end, features)
}

// RestoreDocument re-creates a persisted document without annotations.
func RestoreDocument(id, name, source, mimeType, text string) *Document {
	return newDocument(text, mimeType, WithDocumentID(id), WithDocumentName(name), WithSource(source))
}
