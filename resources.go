package textpipe

import (
	"context"
	"fmt"
)

// ResourceKind names a type of processing resource.
type ResourceKind string

// Built-in resource kinds, provided by the annie plugin.
const (
	KindDocumentReset    ResourceKind = "document-reset"
	KindTokeniser        ResourceKind = "tokeniser"
	KindGazetteer        ResourceKind = "gazetteer"
	KindSentenceSplitter ResourceKind = "sentence-splitter"
	KindPOSTagger        ResourceKind = "pos-tagger"
	KindNETransducer     ResourceKind = "ne-transducer"
	KindOrthoMatcher     ResourceKind = "ortho-matcher"
)

// DefaultResourceChain is the information extraction chain in execution order.
var DefaultResourceChain = []ResourceKind{
	KindDocumentReset,
	KindTokeniser,
	KindGazetteer,
	KindSentenceSplitter,
	KindPOSTagger,
	KindNETransducer,
	KindOrthoMatcher,
}

// Params configures a processing resource at creation.
// The zero value selects the defaults of every kind.
type Params struct {
	// Name overrides the generated instance name.
	Name string

	// KeepTypes lists default-set annotation types the document reset keeps.
	KeepTypes []string

	// KeepSets lists named annotation sets the document reset keeps in
	// addition to OriginalMarkupsSet.
	KeepSets []string

	// ListsOnly makes the named-entity transducer rely on gazetteer lookups
	// alone, without the statistical entity model.
	ListsOnly bool
}

// ProcessingResource is one analysis step run over each document.
type ProcessingResource interface {
	Name() string
	Kind() ResourceKind
	Execute(ctx context.Context, doc *Document) error
}

// ResourceFactory creates processing resources of one kind.
type ResourceFactory interface {
	Create(env *Environment, params Params) (ProcessingResource, error)
}

// ResourceFactoryFunc adapts a function to ResourceFactory.
type ResourceFactoryFunc func(env *Environment, params Params) (ProcessingResource, error)

// Create calls f.
func (f ResourceFactoryFunc) Create(env *Environment, params Params) (ProcessingResource, error) {
	return f(env, params)
}

func builtinFactories() map[ResourceKind]ResourceFactory {
	return map[ResourceKind]ResourceFactory{
		KindDocumentReset:    ResourceFactoryFunc(newDocumentReset),
		KindTokeniser:        ResourceFactoryFunc(newTokeniser),
		KindGazetteer:        ResourceFactoryFunc(newGazetteer),
		KindSentenceSplitter: ResourceFactoryFunc(newSentenceSplitter),
		KindPOSTagger:        ResourceFactoryFunc(newPOSTagger),
		KindNETransducer:     ResourceFactoryFunc(newNETransducer),
		KindOrthoMatcher:     ResourceFactoryFunc(newOrthoMatcher),
	}
}

// resource holds what every built-in processing resource shares.
type resource struct {
	name string
	kind ResourceKind
	env  *Environment
}

func newResource(env *Environment, kind ResourceKind, params Params) resource {
	name := params.Name
	if name == "" {
		name = string(kind) + "_" + GenSym()
	}
	return resource{name: name, kind: kind, env: env}
}

func (r resource) Name() string       { return r.name }
func (r resource) Kind() ResourceKind { return r.kind }

// String describes the resource for logs.
func (r resource) String() string {
	return fmt.Sprintf("%s (%s)", r.name, r.kind)
}

// requireTokens returns the document's Token annotations or ErrMissingAnnotations.
func (r resource) requireTokens(doc *Document) ([]Annotation, error) {
	tokens := doc.Annotations().Get(TypeToken)
	if len(tokens) == 0 && len(doc.Text()) > 0 {
		return nil, fmt.Errorf("%w: %s needs %s annotations (run a %s first)",
			ErrMissingAnnotations, r.kind, TypeToken, KindTokeniser)
	}
	return tokens, nil
}

// add creates an annotation in the default set and counts it.
func (r resource) add(doc *Document, typ string, start, end int, features FeatureMap) error {
	if _, err := doc.Annotations().Add(typ, start, end, features); err != nil {
		return err
	}
	r.env.metrics.AddAnnotations(typ, 1)
	return nil
}
