package textpipe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPipelinePrefix prefixes the generated name of the default pipeline.
const DefaultPipelinePrefix = "ANNIE_"

// Pipeline runs an ordered list of processing resources over every document
// of its corpus. A pipeline executes one corpus at a time; concurrent Execute
// calls wait for each other.
type Pipeline struct {
	name string
	env  *Environment

	mu        sync.Mutex
	resources []ProcessingResource
	corpus    *Corpus
}

// NewPipeline creates an empty pipeline. An empty name is replaced by a
// generated one.
func NewPipeline(env *Environment, name string) (*Pipeline, error) {
	if env == nil {
		return nil, ErrNilEnvironment
	}
	if name == "" {
		name = "Pipeline_" + GenSym()
	}
	return &Pipeline{name: name, env: env}, nil
}

// NewDefaultPipeline creates a pipeline named ANNIE_<id> holding one resource
// of each kind in DefaultResourceChain, created with default parameters.
// Fails with ErrUnknownResource until a plugin providing them is registered.
func NewDefaultPipeline(env *Environment) (*Pipeline, error) {
	p, err := NewPipeline(env, DefaultPipelinePrefix+GenSym())
	if err != nil {
		return nil, err
	}

	env.logger.WithField("pipeline", p.name).Info("Loading ANNIE processing resources...")
	for _, kind := range DefaultResourceChain {
		pr, err := env.CreateResource(kind, Params{})
		if err != nil {
			return nil, err
		}
		p.Add(pr)
	}
	env.logger.WithFields(logrus.Fields{
		"pipeline":  p.name,
		"resources": len(DefaultResourceChain),
	}).Info("ANNIE loaded")
	return p, nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Add appends a processing resource. Nil resources are ignored.
func (p *Pipeline) Add(pr ProcessingResource) {
	if pr == nil {
		return
	}
	p.mu.Lock()
	p.resources = append(p.resources, pr)
	p.mu.Unlock()
}

// Resources returns the processing resources in execution order.
func (p *Pipeline) Resources() []ProcessingResource {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ProcessingResource, len(p.resources))
	copy(out, p.resources)
	return out
}

// SetCorpus attaches the corpus processed by the next Execute, replacing any
// previous one.
func (p *Pipeline) SetCorpus(c *Corpus) {
	p.mu.Lock()
	p.corpus = c
	p.mu.Unlock()
}

// Corpus returns the attached corpus, or nil.
func (p *Pipeline) Corpus() *Corpus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.corpus
}

// Execute runs every resource over every document, documents in corpus order
// and resources in the order they were added. It stops at the first failure
// and returns it wrapped in ErrExecution. Returns ErrNoCorpus if no corpus is
// attached. The context is checked before each step.
func (p *Pipeline) Execute(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.corpus == nil {
		return ErrNoCorpus
	}

	log := p.env.logger.WithFields(logrus.Fields{
		"pipeline": p.name,
		"corpus":   p.corpus.Name(),
	})
	docs := p.corpus.Documents()
	log.WithField("documents", len(docs)).Info("Running pipeline...")

	started := time.Now()
	for _, doc := range docs {
		for _, pr := range p.resources {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %s before %s on document %s: %w", ErrExecution, p.name, pr.Name(), doc.Name(), err)
			}

			stepStart := time.Now()
			err := pr.Execute(ctx, doc)
			p.env.metrics.ObserveResource(string(pr.Kind()), time.Since(stepStart), err)
			if err != nil {
				log.WithFields(logrus.Fields{
					"resource": pr.Name(),
					"document": doc.Name(),
				}).WithError(err).Error("processing resource failed")
				return fmt.Errorf("%w: resource %s on document %s: %w", ErrExecution, pr.Name(), doc.Name(), err)
			}
			log.WithFields(logrus.Fields{
				"resource": pr.Name(),
				"document": doc.Name(),
				"elapsed":  time.Since(stepStart),
			}).Debug("resource done")
		}
		p.env.metrics.Documents.Inc()
	}

	log.WithFields(logrus.Fields{
		"documents": len(docs),
		"elapsed":   time.Since(started).Round(time.Millisecond),
	}).Info("Pipeline complete")
	return nil
}
