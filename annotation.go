package textpipe

import (
	"fmt"
	"sort"
	"sync"
)

// Annotation types produced by the default resource chain.
const (
	TypeToken        = "Token"
	TypeSpaceToken   = "SpaceToken"
	TypeSentence     = "Sentence"
	TypeLookup       = "Lookup"
	TypePerson       = "Person"
	TypeLocation     = "Location"
	TypeOrganization = "Organization"
)

// OriginalMarkupsSet is the name of the annotation set holding the markup
// elements of an HTML source document.
const OriginalMarkupsSet = "Original markups"

// FeatureKey names a recognised annotation feature.
type FeatureKey string

// Recognised feature keys.
const (
	FeatureString    FeatureKey = "string"    // matched text
	FeatureKind      FeatureKey = "kind"      // word, number, punctuation, symbol
	FeatureLength    FeatureKey = "length"    // length of the matched text in runes
	FeatureOrth      FeatureKey = "orth"      // upperInitial, allCaps, lowercase, mixedCaps
	FeatureCategory  FeatureKey = "category"  // part-of-speech tag
	FeatureMajorType FeatureKey = "majorType" // gazetteer list major type
	FeatureMinorType FeatureKey = "minorType" // gazetteer list minor type
	FeatureRule      FeatureKey = "rule"      // transducer rule that produced the annotation
	FeatureMatches   FeatureKey = "matches"   // comma-separated IDs of co-referring annotations
	FeatureGender    FeatureKey = "gender"
	FeatureLabel     FeatureKey = "label" // raw entity label from the statistical model
	FeatureTag       FeatureKey = "tag"   // element name for original markups
	FeatureHref      FeatureKey = "href"
)

var knownFeatures = map[FeatureKey]bool{
	FeatureString:    true,
	FeatureKind:      true,
	FeatureLength:    true,
	FeatureOrth:      true,
	FeatureCategory:  true,
	FeatureMajorType: true,
	FeatureMinorType: true,
	FeatureRule:      true,
	FeatureMatches:   true,
	FeatureGender:    true,
	FeatureLabel:     true,
	FeatureTag:       true,
	FeatureHref:      true,
}

// IsKnown reports whether k is one of the recognised feature keys.
func (k FeatureKey) IsKnown() bool {
	return knownFeatures[k]
}

// FeatureMap holds the features of an annotation.
type FeatureMap map[FeatureKey]string

// Get returns the value stored under key and whether it was present.
func (f FeatureMap) Get(key FeatureKey) (string, bool) {
	v, ok := f[key]
	return v, ok
}

// Validate rejects keys outside the recognised set.
func (f FeatureMap) Validate() error {
	for k := range f {
		if !k.IsKnown() {
			return fmt.Errorf("%w: %q", ErrUnknownFeature, string(k))
		}
	}
	return nil
}

func (f FeatureMap) clone() FeatureMap {
	if f == nil {
		return FeatureMap{}
	}
	out := make(FeatureMap, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Annotation is a typed span over document text. Values are immutable:
// Features returns a copy.
type Annotation struct {
	id       int
	typ      string
	start    int
	end      int
	features FeatureMap
}

// ID returns the identifier, unique within the owning document.
func (a Annotation) ID() int { return a.id }

// Type returns the annotation type.
func (a Annotation) Type() string { return a.typ }

// Start returns the byte offset of the first covered byte.
func (a Annotation) Start() int { return a.start }

// End returns the byte offset after the last covered byte.
func (a Annotation) End() int { return a.end }

// Features returns a copy of the feature map.
func (a Annotation) Features() FeatureMap { return a.features.clone() }

// Feature returns a single feature value.
func (a Annotation) Feature(key FeatureKey) (string, bool) {
	return a.features.Get(key)
}

func (a Annotation) String() string {
	return fmt.Sprintf("%s#%d[%d,%d]", a.typ, a.id, a.start, a.end)
}

// idSource hands out annotation IDs shared by all sets of one document.
type idSource struct {
	mu   sync.Mutex
	next int
}

func (s *idSource) take() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return id
}

// AnnotationSet is a named collection of annotations over one document.
type AnnotationSet struct {
	name    string
	textLen int
	ids     *idSource

	mu    sync.RWMutex
	items []Annotation
}

func newAnnotationSet(name string, textLen int, ids *idSource) *AnnotationSet {
	return &AnnotationSet{name: name, textLen: textLen, ids: ids}
}

// Name returns the set name ("" for the default set).
func (s *AnnotationSet) Name() string { return s.name }

// Add creates an annotation and returns its ID.
// Offsets must satisfy 0 <= start <= end <= len(text).
func (s *AnnotationSet) Add(typ string, start, end int, features FeatureMap) (int, error) {
	if typ == "" {
		return 0, ErrEmptyAnnotation
	}
	if start < 0 || end < start || end > s.textLen {
		return 0, fmt.Errorf("%w: [%d,%d] over %d bytes", ErrInvalidSpan, start, end, s.textLen)
	}
	if err := features.Validate(); err != nil {
		return 0, err
	}

	a := Annotation{
		id:       s.ids.take(),
		typ:      typ,
		start:    start,
		end:      end,
		features: features.clone(),
	}

	s.mu.Lock()
	s.items = append(s.items, a)
	s.mu.Unlock()
	return a.id, nil
}

// Get returns annotations whose type is one of types, ordered by offset.
// With no types, Get returns every annotation.
func (s *AnnotationSet) Get(types ...string) []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	out := make([]Annotation, 0, len(s.items))
	for _, a := range s.items {
		if len(want) == 0 || want[a.typ] {
			out = append(out, a)
		}
	}
	sortAnnotations(out)
	return out
}

// All returns every annotation in offset order.
func (s *AnnotationSet) All() []Annotation {
	return s.Get()
}

// ByID looks up a single annotation.
func (s *AnnotationSet) ByID(id int) (Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.items {
		if a.id == id {
			return a, true
		}
	}
	return Annotation{}, false
}

// SetFeature replaces one feature of the annotation with the given ID.
// Copies obtained earlier keep their old features.
func (s *AnnotationSet) SetFeature(id int, key FeatureKey, value string) error {
	if !key.IsKnown() {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].id != id {
			continue
		}
		features := s.items[i].features.clone()
		features[key] = value
		s.items[i].features = features
		return nil
	}
	return fmt.Errorf("annotation %d not found in set %q", id, s.name)
}

// Covering returns annotations of the given type lying inside [start,end].
func (s *AnnotationSet) Covering(typ string, start, end int) []Annotation {
	var out []Annotation
	for _, a := range s.Get(typ) {
		if a.start >= start && a.end <= end {
			out = append(out, a)
		}
	}
	return out
}

// Types returns the distinct annotation types, sorted.
func (s *AnnotationSet) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, a := range s.items {
		if !seen[a.typ] {
			seen[a.typ] = true
			out = append(out, a.typ)
		}
	}
	sort.Strings(out)
	return out
}

// Size returns the number of annotations.
func (s *AnnotationSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// RemoveTypes deletes every annotation whose type is listed.
func (s *AnnotationSet) RemoveTypes(types ...string) {
	drop := make(map[string]bool, len(types))
	for _, t := range types {
		drop[t] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, a := range s.items {
		if !drop[a.typ] {
			kept = append(kept, a)
		}
	}
	s.items = kept
}

// Clear removes every annotation.
func (s *AnnotationSet) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// restore appends a previously persisted annotation, keeping its ID.
func (s *AnnotationSet) restore(id int, typ string, start, end int, features FeatureMap) error {
	if start < 0 || end < start || end > s.textLen {
		return fmt.Errorf("%w: [%d,%d] over %d bytes", ErrInvalidSpan, start, end, s.textLen)
	}
	s.ids.mu.Lock()
	if id >= s.ids.next {
		s.ids.next = id + 1
	}
	s.ids.mu.Unlock()

	s.mu.Lock()
	s.items = append(s.items, Annotation{id: id, typ: typ, start: start, end: end, features: features.clone()})
	s.mu.Unlock()
	return nil
}

func sortAnnotations(as []Annotation) {
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].start != as[j].start {
			return as[i].start < as[j].start
		}
		if as[i].end != as[j].end {
			return as[i].end > as[j].end
		}
		return as[i].id < as[j].id
	})
}
