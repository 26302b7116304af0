package textpipe

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/alnah/go-textpipe/internal/nlp"
)

// Lookup major types the named-entity transducer understands.
const (
	majorPersonFirst  = "person_first"
	majorTitle        = "title"
	majorLocation     = "location"
	majorOrganization = "organization"
)

// documentReset removes annotations left by earlier runs.
type documentReset struct {
	resource
	keepTypes mapset.Set[string]
	keepSets  mapset.Set[string]
}

func newDocumentReset(env *Environment, params Params) (ProcessingResource, error) {
	return &documentReset{
		resource:  newResource(env, KindDocumentReset, params),
		keepTypes: mapset.NewSet(params.KeepTypes...),
		keepSets:  mapset.NewSet(append([]string{OriginalMarkupsSet}, params.KeepSets...)...),
	}, nil
}

func (r *documentReset) Execute(_ context.Context, doc *Document) error {
	set := doc.Annotations()
	var drop []string
	for _, t := range set.Types() {
		if !r.keepTypes.Contains(t) {
			drop = append(drop, t)
		}
	}
	set.RemoveTypes(drop...)

	for _, name := range doc.AnnotationSetNames() {
		if !r.keepSets.Contains(name) {
			doc.RemoveAnnotationSet(name)
		}
	}
	return nil
}

// tokeniser creates Token and SpaceToken annotations.
type tokeniser struct{ resource }

func newTokeniser(env *Environment, params Params) (ProcessingResource, error) {
	return &tokeniser{newResource(env, KindTokeniser, params)}, nil
}

func (r *tokeniser) Execute(_ context.Context, doc *Document) error {
	text := doc.Text()
	if strings.TrimSpace(text) == "" {
		return r.addSpaces(doc, 0, len(text))
	}

	spans, err := nlp.Tokenize(text)
	if err != nil {
		return err
	}

	cursor := 0
	for _, s := range spans {
		if s.Start == s.End {
			continue
		}
		if err := r.addSpaces(doc, cursor, s.Start); err != nil {
			return err
		}

		features := FeatureMap{
			FeatureString: s.Text,
			FeatureKind:   nlp.Kind(s.Text),
			FeatureLength: strconv.Itoa(utf8.RuneCountInString(s.Text)),
		}
		if orth := nlp.Orth(s.Text); orth != "" {
			features[FeatureOrth] = orth
		}
		if err := r.add(doc, TypeToken, s.Start, s.End, features); err != nil {
			return err
		}
		cursor = s.End
	}
	return r.addSpaces(doc, cursor, len(text))
}

// addSpaces annotates each whitespace character in text[from:to].
func (r *tokeniser) addSpaces(doc *Document, from, to int) error {
	if from >= to {
		return nil
	}
	for i, c := range doc.Text()[from:to] {
		if !unicode.IsSpace(c) {
			continue
		}
		kind := "space"
		if unicode.IsControl(c) {
			kind = "control"
		}
		start := from + i
		end := start + utf8.RuneLen(c)
		features := FeatureMap{
			FeatureString: string(c),
			FeatureKind:   kind,
			FeatureLength: "1",
		}
		if err := r.add(doc, TypeSpaceToken, start, end, features); err != nil {
			return err
		}
	}
	return nil
}

// gazetteerLookup matches the registered plugins' lists over Tokens.
type gazetteerLookup struct{ resource }

func newGazetteer(env *Environment, params Params) (ProcessingResource, error) {
	if env.gazetteerSize() == 0 {
		env.logger.WithField("kind", KindGazetteer).Warn("no gazetteer lists loaded")
	}
	return &gazetteerLookup{newResource(env, KindGazetteer, params)}, nil
}

func (r *gazetteerLookup) Execute(_ context.Context, doc *Document) error {
	tokens, err := r.requireTokens(doc)
	if err != nil {
		return err
	}

	spans := make([]nlp.Span, len(tokens))
	for i, tok := range tokens {
		spans[i] = nlp.Span{Text: annotationString(doc, tok), Start: tok.Start(), End: tok.End()}
	}

	for _, l := range r.env.matchGazetteer(spans) {
		features := FeatureMap{
			FeatureString:    doc.Span(l.Start, l.End),
			FeatureMajorType: l.MajorType,
		}
		if l.MinorType != "" {
			features[FeatureMinorType] = l.MinorType
		}
		if err := r.add(doc, TypeLookup, l.Start, l.End, features); err != nil {
			return err
		}
	}
	return nil
}

// sentenceSplitter creates Sentence annotations.
type sentenceSplitter struct{ resource }

func newSentenceSplitter(env *Environment, params Params) (ProcessingResource, error) {
	return &sentenceSplitter{newResource(env, KindSentenceSplitter, params)}, nil
}

func (r *sentenceSplitter) Execute(_ context.Context, doc *Document) error {
	if strings.TrimSpace(doc.Text()) == "" {
		return nil
	}
	sents, err := nlp.Sentences(doc.Text())
	if err != nil {
		return err
	}
	for _, s := range sents {
		if s.Start == s.End {
			continue
		}
		if err := r.add(doc, TypeSentence, s.Start, s.End, nil); err != nil {
			return err
		}
	}
	return nil
}

// posTagger sets the category feature of every Token.
type posTagger struct{ resource }

func newPOSTagger(env *Environment, params Params) (ProcessingResource, error) {
	return &posTagger{newResource(env, KindPOSTagger, params)}, nil
}

func (r *posTagger) Execute(_ context.Context, doc *Document) error {
	tokens, err := r.requireTokens(doc)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	tagged, err := nlp.Tag(doc.Text())
	if err != nil {
		return err
	}
	byStart := make(map[int]string, len(tagged))
	for _, tt := range tagged {
		if tt.Start < tt.End && tt.Tag != "" {
			byStart[tt.Start] = tt.Tag
		}
	}

	set := doc.Annotations()
	for _, tok := range tokens {
		tag, ok := byStart[tok.Start()]
		if !ok {
			continue
		}
		if err := set.SetFeature(tok.ID(), FeatureCategory, tag); err != nil {
			return err
		}
	}
	return nil
}

// neTransducer turns Lookups and model entities into Person, Location and
// Organization annotations.
type neTransducer struct {
	resource
	listsOnly bool
}

func newNETransducer(env *Environment, params Params) (ProcessingResource, error) {
	return &neTransducer{
		resource:  newResource(env, KindNETransducer, params),
		listsOnly: params.ListsOnly,
	}, nil
}

// entityCandidate is a proposed entity before overlap resolution.
type entityCandidate struct {
	typ        string
	start, end int
	rule       string
	features   FeatureMap
	fromModel  bool
}

func (r *neTransducer) Execute(_ context.Context, doc *Document) error {
	tokens, err := r.requireTokens(doc)
	if err != nil {
		return err
	}

	lookups := doc.Annotations().Get(TypeLookup)
	lookupStarts := make(map[int]bool, len(lookups))
	for _, l := range lookups {
		lookupStarts[l.Start()] = true
	}

	var candidates []entityCandidate
	for _, l := range lookups {
		if c, ok := r.fromLookup(doc, tokens, lookupStarts, l); ok {
			candidates = append(candidates, c)
		}
	}

	if !r.listsOnly && strings.TrimSpace(doc.Text()) != "" {
		ents, err := nlp.Entities(doc.Text())
		if err != nil {
			return err
		}
		for _, e := range ents {
			typ := entityTypeForLabel(e.Label)
			if typ == "" {
				continue
			}
			candidates = append(candidates, entityCandidate{
				typ:       typ,
				start:     e.Start,
				end:       e.End,
				rule:      "Model",
				features:  FeatureMap{FeatureLabel: e.Label},
				fromModel: true,
			})
		}
	}

	for _, c := range resolveOverlaps(candidates) {
		features := c.features
		if features == nil {
			features = FeatureMap{}
		}
		features[FeatureString] = doc.Span(c.start, c.end)
		features[FeatureRule] = c.rule
		if err := r.add(doc, c.typ, c.start, c.end, features); err != nil {
			return err
		}
	}
	return nil
}

func (r *neTransducer) fromLookup(doc *Document, tokens []Annotation, lookupStarts map[int]bool, l Annotation) (entityCandidate, bool) {
	major, _ := l.Feature(FeatureMajorType)
	minor, _ := l.Feature(FeatureMinorType)

	switch major {
	case majorPersonFirst:
		c := entityCandidate{typ: TypePerson, start: l.Start(), end: l.End(), rule: "PersonFirst", features: FeatureMap{}}
		if minor == "female" {
			c.features[FeatureGender] = "female"
		} else {
			c.features[FeatureGender] = "male"
		}
		// A following capitalised word that no list knows is taken as the surname
		if next, ok := nextWord(doc, tokens, l.End()); ok && !lookupStarts[next.Start()] {
			c.end = next.End()
			c.rule = "PersonFirstLast"
		}
		return c, true

	case majorTitle:
		first, ok := nextWord(doc, tokens, l.End())
		if !ok {
			return entityCandidate{}, false
		}
		c := entityCandidate{typ: TypePerson, start: l.Start(), end: first.End(), rule: "PersonTitle", features: FeatureMap{}}
		if second, ok := nextWord(doc, tokens, first.End()); ok {
			c.end = second.End()
		}
		return c, true

	case majorLocation:
		c := entityCandidate{typ: TypeLocation, start: l.Start(), end: l.End(), rule: "Location", features: FeatureMap{}}
		if minor != "" {
			c.features[FeatureKind] = minor
		}
		return c, true

	case majorOrganization:
		c := entityCandidate{typ: TypeOrganization, start: l.Start(), end: l.End(), rule: "Organization", features: FeatureMap{}}
		if minor != "" {
			c.features[FeatureKind] = minor
		}
		return c, true
	}
	return entityCandidate{}, false
}

// nextWord returns the Token right after offset if only whitespace separates
// them and it is a capitalised word.
func nextWord(doc *Document, tokens []Annotation, offset int) (Annotation, bool) {
	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].Start() >= offset })
	if i == len(tokens) {
		return Annotation{}, false
	}
	tok := tokens[i]
	if strings.TrimSpace(doc.Span(offset, tok.Start())) != "" {
		return Annotation{}, false
	}
	if orth, _ := tok.Feature(FeatureOrth); orth != nlp.OrthUpperInitial {
		return Annotation{}, false
	}
	return tok, true
}

func entityTypeForLabel(label string) string {
	switch label {
	case "PERSON":
		return TypePerson
	case "GPE":
		return TypeLocation
	case "ORGANIZATION", "ORG":
		return TypeOrganization
	}
	return ""
}

// resolveOverlaps keeps non-overlapping candidates, preferring earlier,
// then longer spans, then list-based rules over the model.
func resolveOverlaps(cs []entityCandidate) []entityCandidate {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].start != cs[j].start {
			return cs[i].start < cs[j].start
		}
		if li, lj := cs[i].end-cs[i].start, cs[j].end-cs[j].start; li != lj {
			return li > lj
		}
		return !cs[i].fromModel && cs[j].fromModel
	})

	var out []entityCandidate
	lastEnd := -1
	for _, c := range cs {
		if c.start < lastEnd {
			continue
		}
		out = append(out, c)
		lastEnd = c.end
	}
	return out
}

// orthoMatcher links entities that name the same thing and annotates later
// unmarked mentions of known surnames.
type orthoMatcher struct{ resource }

func newOrthoMatcher(env *Environment, params Params) (ProcessingResource, error) {
	return &orthoMatcher{newResource(env, KindOrthoMatcher, params)}, nil
}

var orthoTypes = []string{TypePerson, TypeLocation, TypeOrganization}

func (r *orthoMatcher) Execute(_ context.Context, doc *Document) error {
	if err := r.addSurnameMentions(doc); err != nil {
		return err
	}

	set := doc.Annotations()
	for _, typ := range orthoTypes {
		anns := set.Get(typ)
		for _, group := range matchGroups(doc, anns) {
			for _, id := range group.ToSlice() {
				others := group.Clone()
				others.Remove(id)
				if err := set.SetFeature(id, FeatureMatches, joinIDs(others.ToSlice())); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// addSurnameMentions annotates capitalised Tokens equal to the last word of
// a multi-word Person when no entity covers them yet.
func (r *orthoMatcher) addSurnameMentions(doc *Document) error {
	set := doc.Annotations()
	surnames := mapset.NewSet[string]()
	for _, p := range set.Get(TypePerson) {
		words := strings.Fields(annotationString(doc, p))
		if len(words) > 1 {
			surnames.Add(words[len(words)-1])
		}
	}
	if surnames.Cardinality() == 0 {
		return nil
	}

	entities := set.Get(orthoTypes...)
	for _, tok := range set.Get(TypeToken) {
		if !surnames.Contains(annotationString(doc, tok)) {
			continue
		}
		if covered(entities, tok.Start(), tok.End()) {
			continue
		}
		features := FeatureMap{
			FeatureString: doc.Span(tok.Start(), tok.End()),
			FeatureRule:   "OrthoMatch",
		}
		if err := r.add(doc, TypePerson, tok.Start(), tok.End(), features); err != nil {
			return err
		}
	}
	return nil
}

func covered(anns []Annotation, start, end int) bool {
	for _, a := range anns {
		if a.Start() < end && start < a.End() {
			return true
		}
	}
	return false
}

// matchGroups partitions annotations into groups of co-referring names.
// Only groups of two or more are returned.
func matchGroups(doc *Document, anns []Annotation) []mapset.Set[int] {
	parent := make(map[int]int, len(anns))
	var find func(int) int
	find = func(id int) int {
		if parent[id] != id {
			parent[id] = find(parent[id])
		}
		return parent[id]
	}
	for _, a := range anns {
		parent[a.ID()] = a.ID()
	}

	names := make([]string, len(anns))
	for i, a := range anns {
		names[i] = annotationString(doc, a)
	}
	for i := range anns {
		for j := i + 1; j < len(anns); j++ {
			if namesMatch(names[i], names[j]) {
				parent[find(anns[i].ID())] = find(anns[j].ID())
			}
		}
	}

	byRoot := make(map[int]mapset.Set[int])
	for _, a := range anns {
		root := find(a.ID())
		if byRoot[root] == nil {
			byRoot[root] = mapset.NewSet[int]()
		}
		byRoot[root].Add(a.ID())
	}

	var groups []mapset.Set[int]
	for _, g := range byRoot {
		if g.Cardinality() > 1 {
			groups = append(groups, g)
		}
	}
	return groups
}

// namesMatch reports whether two entity strings plausibly name the same
// thing: equal ignoring case, one is the first or last word of the other,
// or one is the acronym of the other.
func namesMatch(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 {
		return false
	}
	if len(wa) > len(wb) {
		wa, wb = wb, wa
		a, b = b, a
	}
	if len(wa) == 1 && len(wb) > 1 {
		if wa[0] == wb[0] || wa[0] == wb[len(wb)-1] {
			return true
		}
		return a == acronym(wb)
	}
	return false
}

func acronym(words []string) string {
	var sb strings.Builder
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if unicode.IsUpper(r) {
			sb.WriteRune(r)
		}
	}
	if sb.Len() < 2 {
		return ""
	}
	return sb.String()
}

func joinIDs(ids []int) string {
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Compile-time interface checks.
var (
	_ ProcessingResource = (*documentReset)(nil)
	_ ProcessingResource = (*tokeniser)(nil)
	_ ProcessingResource = (*gazetteerLookup)(nil)
	_ ProcessingResource = (*sentenceSplitter)(nil)
	_ ProcessingResource = (*posTagger)(nil)
	_ ProcessingResource = (*neTransducer)(nil)
	_ ProcessingResource = (*orthoMatcher)(nil)
)

// annotationString returns the string feature of a, or the text it covers.
func annotationString(doc *Document, a Annotation) string {
	if s, ok := a.Feature(FeatureString); ok {
		return s
	}
	return doc.Span(a.Start(), a.End())
}
