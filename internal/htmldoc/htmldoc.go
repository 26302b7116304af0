// Package htmldoc extracts readable text from HTML and records the span of
// every element over that text.
package htmldoc

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrParse indicates the HTML source could not be parsed.
var ErrParse = errors.New("HTML parse failed")

// Element is one markup element and the text span it covers.
type Element struct {
	Tag   string
	Start int
	End   int
	Href  string
}

// Parsed holds the text rendition of an HTML document.
type Parsed struct {
	Title    string
	Text     string
	Elements []Element
}

// skipped elements contribute neither text nor markup.
var skipped = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// block elements start and end on their own line.
var block = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true, "br": true,
}

// Parse converts HTML source to text plus element spans.
// Whitespace runs collapse to a single space; block elements are separated by newlines.
func Parse(source string) (*Parsed, error) {
	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	doc := goquery.NewDocumentFromNode(root)
	p := &Parsed{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	w := &walker{}
	for _, n := range doc.Find("body").Nodes {
		w.walk(n)
	}

	p.Text = strings.TrimRight(w.buf.String(), "\n")
	for _, el := range w.elements {
		if el.End > len(p.Text) {
			el.End = len(p.Text)
		}
		if el.Start > el.End {
			el.Start = el.End
		}
		p.Elements = append(p.Elements, el)
	}
	return p, nil
}

type walker struct {
	buf      strings.Builder
	last     rune
	space    bool
	elements []Element
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.writeText(n.Data)
	case html.ElementNode:
		if skipped[n.Data] {
			return
		}
		isBlock := block[n.Data]
		if isBlock {
			w.breakLine()
		} else {
			w.flushSpace()
		}

		idx := len(w.elements)
		w.elements = append(w.elements, Element{Tag: n.Data, Start: w.buf.Len()})
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		w.elements[idx].End = w.buf.Len()
		if n.Data == "a" {
			w.elements[idx].Href = attr(n, "href")
		}

		if isBlock {
			w.breakLine()
		}
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
	}
}

func (w *walker) writeText(s string) {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if unicode.IsSpace(r) {
			w.space = true
			continue
		}
		w.flushSpace()
		w.write(r)
	}
}

// flushSpace emits a pending collapsed space unless at the start of a line.
func (w *walker) flushSpace() {
	if w.space && w.buf.Len() > 0 && w.last != '\n' {
		w.write(' ')
	}
	w.space = false
}

func (w *walker) breakLine() {
	if w.buf.Len() > 0 && w.last != '\n' {
		w.write('\n')
	}
	w.space = false
}

func (w *walker) write(r rune) {
	w.buf.WriteRune(r)
	w.last = r
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
