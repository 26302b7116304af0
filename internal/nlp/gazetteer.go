package nlp

import (
	"bufio"
	"io"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// ListInfo describes one gazetteer list.
type ListInfo struct {
	MajorType string
	MinorType string
}

// Lookup is a gazetteer match over a run of tokens.
type Lookup struct {
	Span
	ListInfo
	FirstToken int // index into the token slice
	TokenCount int
}

// Gazetteer matches multi-token phrases from lists against token sequences.
// Matching is case-sensitive and prefers the longest phrase at each position.
type Gazetteer struct {
	// entries maps a phrase (tokens joined by a single space) to its lists.
	entries   map[string][]ListInfo
	firsts    mapset.Set[string]
	maxTokens int
}

// NewGazetteer creates an empty gazetteer.
func NewGazetteer() *Gazetteer {
	return &Gazetteer{
		entries: make(map[string][]ListInfo),
		firsts:  mapset.NewSet[string](),
	}
}

// AddEntry registers a phrase under a list. Blank phrases are ignored.
func (g *Gazetteer) AddEntry(phrase string, info ListInfo) {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return
	}
	key := strings.Join(words, " ")
	for _, existing := range g.entries[key] {
		if existing == info {
			return
		}
	}
	g.entries[key] = append(g.entries[key], info)
	g.firsts.Add(words[0])
	if len(words) > g.maxTokens {
		g.maxTokens = len(words)
	}
}

// LoadList reads one phrase per line. Empty lines and lines starting with
// '#' are skipped. Returns the number of entries read.
func (g *Gazetteer) LoadList(r io.Reader, info ListInfo) (int, error) {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		g.AddEntry(line, info)
		n++
	}
	return n, sc.Err()
}

// Merge adds every entry of other to g.
func (g *Gazetteer) Merge(other *Gazetteer) {
	for phrase, infos := range other.entries {
		for _, info := range infos {
			g.AddEntry(phrase, info)
		}
	}
}

// Size returns the number of distinct phrases.
func (g *Gazetteer) Size() int {
	return len(g.entries)
}

// Match finds list phrases over tokens. Tokens must be in text order.
func (g *Gazetteer) Match(tokens []Span) []Lookup {
	var out []Lookup
	for i := 0; i < len(tokens); {
		if !g.firsts.Contains(tokens[i].Text) {
			i++
			continue
		}

		matched := 0
		for n := min(g.maxTokens, len(tokens)-i); n >= 1; n-- {
			infos, ok := g.entries[joinTexts(tokens[i:i+n])]
			if !ok {
				continue
			}
			span := Span{
				Start: tokens[i].Start,
				End:   tokens[i+n-1].End,
			}
			for _, info := range infos {
				out = append(out, Lookup{Span: span, ListInfo: info, FirstToken: i, TokenCount: n})
			}
			matched = n
			break
		}

		if matched == 0 {
			i++
		} else {
			i += matched
		}
	}
	return out
}

func joinTexts(spans []Span) string {
	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
