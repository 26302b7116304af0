package textpipe

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// ExtractStrings returns the string feature of every annotation of the given
// type in the document's default set, one entry per distinct annotation, in
// offset order. Annotations without a string feature yield the text they
// cover. An unknown type yields an empty slice.
func ExtractStrings(doc *Document, annotationType string) []string {
	out := []string{}
	if doc == nil {
		return out
	}

	seen := mapset.NewThreadUnsafeSet[int]()
	for _, a := range doc.Annotations().Get(annotationType) {
		if !seen.Add(a.ID()) {
			continue
		}
		out = append(out, annotationString(doc, a))
	}
	return out
}

// DistinctStrings returns the set of strings ExtractStrings yields.
func DistinctStrings(doc *Document, annotationType string) mapset.Set[string] {
	return mapset.NewSet(ExtractStrings(doc, annotationType)...)
}

// ExtractCorpus runs ExtractStrings over each document of a corpus, keyed by
// document name.
func ExtractCorpus(c *Corpus, annotationType string) map[string][]string {
	out := make(map[string][]string)
	if c == nil {
		return out
	}
	for _, doc := range c.Documents() {
		out[doc.Name()] = ExtractStrings(doc, annotationType)
	}
	return out
}
