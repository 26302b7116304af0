package textpipe

import "sync"

// Corpus is an ordered collection of documents submitted together to a pipeline.
type Corpus struct {
	name string

	mu   sync.RWMutex
	docs []*Document
}

// NewCorpus creates an empty corpus. An empty name is replaced by a generated one.
func NewCorpus(name string) *Corpus {
	if name == "" {
		name = "corpus_" + GenSym()
	}
	return &Corpus{name: name}
}

// Name returns the corpus name.
func (c *Corpus) Name() string { return c.name }

// Add appends documents. Nil documents are ignored.
func (c *Corpus) Add(docs ...*Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range docs {
		if d != nil {
			c.docs = append(c.docs, d)
		}
	}
}

// Documents returns a snapshot of the documents in insertion order.
func (c *Corpus) Documents() []*Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}
