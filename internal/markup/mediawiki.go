package markup

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// MaxHeadingLevel is the deepest heading MediaWiki markup can express.
const MaxHeadingLevel = 6

// Emphasis levels as goldmark renders them: 1 is <em>, 2 is <strong>.
const (
	italic = 1
	bold   = 2
)

// wikiPrefix is prepended to internal link targets.
const wikiPrefix = "/wiki/"

// urlSchemes are the schemes recognised in external links.
var urlSchemes = []string{"http://", "https://", "ftp://", "mailto:"}

// ParseMediaWiki parses MediaWiki markup into a goldmark document tree.
// The grammar has no syntax errors: anything not recognised is kept as text.
func ParseMediaWiki(source []byte) *ast.Document {
	p := &wikiParser{doc: ast.NewDocument()}
	for _, line := range bytes.Split(source, []byte("\n")) {
		p.line(strings.TrimRight(string(line), " \t\r"))
	}
	pruneEmptyEmphasis(p.doc)
	return p.doc
}

// wikiParser builds the block structure line by line.
type wikiParser struct {
	doc  *ast.Document
	para *ast.Paragraph

	// lists[i] is the open list at depth i and items[i] its current item.
	lists []*ast.List
	items []*ast.ListItem
}

func (p *wikiParser) line(s string) {
	switch {
	case s == "":
		p.closeParagraph()
		p.closeLists(0)
	case strings.HasPrefix(s, "----"):
		p.closeParagraph()
		p.closeLists(0)
		p.doc.AppendChild(p.doc, ast.NewThematicBreak())
		if rest := strings.TrimSpace(strings.TrimLeft(s, "-")); rest != "" {
			p.paragraphLine(rest)
		}
	case s[0] == '*' || s[0] == '#':
		n := len(s) - len(strings.TrimLeft(s, "*#"))
		p.closeParagraph()
		p.listItem(s[:n], strings.TrimSpace(s[n:]))
	default:
		if level, content, ok := heading(s); ok {
			p.closeParagraph()
			p.closeLists(0)
			h := ast.NewHeading(level)
			p.doc.AppendChild(p.doc, h)
			parseInline(h, content)
			return
		}
		p.closeLists(0)
		p.paragraphLine(s)
	}
}

// heading reports whether s is a "== title ==" line. The level is the
// shorter of the two '=' runs, capped at MaxHeadingLevel; surplus '=' on
// either side stay in the title.
func heading(s string) (int, string, bool) {
	lead := len(s) - len(strings.TrimLeft(s, "="))
	trail := len(s) - len(strings.TrimRight(s, "="))
	if lead == 0 || trail == 0 || lead == len(s) {
		return 0, "", false
	}
	level := min(lead, trail, MaxHeadingLevel)
	content := strings.TrimSpace(s[level : len(s)-level])
	if content == "" {
		return 0, "", false
	}
	return level, content, true
}

func (p *wikiParser) paragraphLine(s string) {
	if p.para == nil {
		p.para = ast.NewParagraph()
		p.doc.AppendChild(p.doc, p.para)
	} else {
		p.para.AppendChild(p.para, rawString("\n"))
	}
	parseInline(p.para, s)
}

func (p *wikiParser) closeParagraph() { p.para = nil }

// closeLists closes every list deeper than depth.
func (p *wikiParser) closeLists(depth int) {
	if depth < len(p.lists) {
		p.lists = p.lists[:depth]
		p.items = p.items[:depth]
	}
}

// listItem adds an item under prefix, a run of '*' (unordered) and '#'
// (ordered) markers, one per nesting level.
func (p *wikiParser) listItem(prefix, content string) {
	common := 0
	for common < len(prefix) && common < len(p.lists) && p.lists[common].Marker == listMarker(prefix[common]) {
		common++
	}
	p.closeLists(common)

	for i := common; i < len(prefix); i++ {
		list := ast.NewList(listMarker(prefix[i]))
		list.IsTight = true
		list.Start = 1
		if i == 0 {
			p.doc.AppendChild(p.doc, list)
		} else {
			if i > common {
				// "**" with no "*" before it still needs a parent item
				empty := ast.NewListItem(i)
				p.lists[i-1].AppendChild(p.lists[i-1], empty)
				p.items[i-1] = empty
			}
			p.items[i-1].AppendChild(p.items[i-1], list)
		}
		p.lists = append(p.lists, list)
		p.items = append(p.items, nil)
	}

	depth := len(prefix) - 1
	item := ast.NewListItem(len(prefix) + 1)
	block := ast.NewTextBlock()
	item.AppendChild(item, block)
	p.lists[depth].AppendChild(p.lists[depth], item)
	p.items[depth] = item
	parseInline(block, content)
}

// listMarker maps a MediaWiki list character to goldmark's list marker.
func listMarker(c byte) byte {
	if c == '#' {
		return '.'
	}
	return '*'
}

// inlineParser builds the inline children of one block for one line.
// Open emphasis nodes form a stack, innermost last.
type inlineParser struct {
	block ast.Node
	open  []*ast.Emphasis
	text  []byte
}

func parseInline(block ast.Node, s string) {
	p := &inlineParser{block: block}
	for i := 0; i < len(s); {
		switch {
		case s[i] == '\'':
			j := i
			for j < len(s) && s[j] == '\'' {
				j++
			}
			p.quotes(j - i)
			i = j
			continue
		case strings.HasPrefix(s[i:], "[["):
			if n := p.internalLink(s[i:]); n > 0 {
				i += n
				continue
			}
		case s[i] == '[':
			if n := p.externalLink(s[i:]); n > 0 {
				i += n
				continue
			}
		case (i == 0 || !isWordByte(s[i-1])) && hasScheme(s[i:], urlSchemes[:3]):
			if n := p.bareURL(s[i:]); n > 0 {
				i += n
				continue
			}
		}
		p.text = append(p.text, s[i])
		i++
	}
	// Formatting never spans lines
	p.flush()
	p.open = nil
}

func (p *inlineParser) current() ast.Node {
	if len(p.open) > 0 {
		return p.open[len(p.open)-1]
	}
	return p.block
}

func (p *inlineParser) flush() {
	if len(p.text) == 0 {
		return
	}
	p.appendNode(rawString(string(p.text)))
	p.text = nil
}

func (p *inlineParser) appendNode(n ast.Node) {
	if _, ok := n.(*ast.String); !ok {
		p.flush()
	}
	cur := p.current()
	cur.AppendChild(cur, n)
}

// quotes handles a run of n apostrophes.
func (p *inlineParser) quotes(n int) {
	switch {
	case n == 1:
		p.text = append(p.text, '\'')
	case n == 2:
		p.toggle(italic)
	case n == 3:
		p.toggle(bold)
	case n == 4:
		p.text = append(p.text, '\'')
		p.toggle(bold)
	default:
		p.text = append(p.text, strings.Repeat("'", n-5)...)
		if len(p.open) == 0 {
			p.toggle(bold)
			p.toggle(italic)
			return
		}
		first := p.open[len(p.open)-1].Level
		p.toggle(first)
		p.toggle(bold + italic - first)
	}
}

// toggle opens the format if it is closed and closes it otherwise.
// Closing a format below the top of the stack reopens the ones above it.
func (p *inlineParser) toggle(level int) {
	p.flush()
	idx := -1
	for i := len(p.open) - 1; i >= 0; i-- {
		if p.open[i].Level == level {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.push(level)
		return
	}
	var reopen []int
	for _, e := range p.open[idx+1:] {
		reopen = append(reopen, e.Level)
	}
	p.open = p.open[:idx]
	for _, l := range reopen {
		p.push(l)
	}
}

func (p *inlineParser) push(level int) {
	e := ast.NewEmphasis(level)
	p.appendNode(e)
	p.open = append(p.open, e)
}

// internalLink parses [[Target]] or [[Target|label]] at the start of s and
// returns the bytes consumed, or 0 if s does not start a link.
func (p *inlineParser) internalLink(s string) int {
	end := strings.Index(s[2:], "]]")
	if end < 0 {
		return 0
	}
	target, label, _ := strings.Cut(s[2:2+end], "|")
	target = strings.TrimSpace(target)
	if target == "" {
		return 0
	}
	if label = strings.TrimSpace(label); label == "" {
		label = target
	}
	p.link(wikiPath(target), label)
	return end + 4
}

// externalLink parses [url] or [url label] at the start of s.
func (p *inlineParser) externalLink(s string) int {
	end := strings.IndexByte(s, ']')
	if end < 0 || !hasScheme(s[1:end], urlSchemes) {
		return 0
	}
	dest, label, _ := strings.Cut(s[1:end], " ")
	if label = strings.TrimSpace(label); label == "" {
		label = dest
	}
	p.link(dest, label)
	return end + 1
}

// bareURL links a URL written without brackets. Trailing punctuation is
// left out of the link.
func (p *inlineParser) bareURL(s string) int {
	n := strings.IndexAny(s, " \t<>[]\"")
	if n < 0 {
		n = len(s)
	}
	dest := strings.TrimRight(s[:n], ".,;:!?)'")
	for _, scheme := range urlSchemes {
		if strings.EqualFold(dest, scheme) {
			return 0
		}
	}
	p.link(dest, dest)
	return len(dest)
}

func (p *inlineParser) link(dest, label string) {
	l := ast.NewLink()
	l.Destination = []byte(dest)
	l.AppendChild(l, rawString(label))
	p.appendNode(l)
}

// wikiPath maps a page title to its /wiki/ path: spaces become
// underscores, each path segment is escaped and a #section survives.
func wikiPath(target string) string {
	title, section, hasSection := strings.Cut(target, "#")
	segments := strings.Split(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	path := wikiPrefix + strings.Join(segments, "/")
	if hasSection {
		path += "#" + url.PathEscape(strings.ReplaceAll(strings.TrimSpace(section), " ", "_"))
	}
	return path
}

func hasScheme(s string, schemes []string) bool {
	lower := strings.ToLower(s)
	for _, scheme := range schemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// rawString creates a text node that the renderer HTML-escapes without
// applying Markdown backslash or entity handling.
func rawString(s string) *ast.String {
	n := ast.NewString([]byte(s))
	n.SetRaw(true)
	return n
}

// pruneEmptyEmphasis removes formatting nodes left without content, such as
// those opened just before the end of a line.
func pruneEmptyEmphasis(n ast.Node) {
	for c := n.FirstChild(); c != nil; {
		next := c.NextSibling()
		pruneEmptyEmphasis(c)
		if _, ok := c.(*ast.Emphasis); ok && c.ChildCount() == 0 {
			n.RemoveChild(n, c)
		}
		c = next
	}
}
