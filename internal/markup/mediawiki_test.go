package markup

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark/ast"
)

const sampleWiki = `= Annual report =
Is this '''working?''' Yes it does Jean-Francois!

== Sections ==
* first
** nested
* second
# one
# two
----
See [[Main Page|the front page]] or [https://example.com Example].`

func wikiHTML(t *testing.T, src string) string {
	t.Helper()
	result, err := NewMediaWikiConverter().ToHTML(context.Background(), src)
	if err != nil {
		t.Fatalf("ToHTML(%q) error = %v", src, err)
	}
	return result
}

func wikiDoc(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(wikiHTML(t, src)))
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	return doc
}

func TestMediaWikiConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "bold",
			input:        "Is this '''working?''' Yes it does Jean-Francois!",
			wantContains: []string{"<p>Is this <strong>working?</strong> Yes it does Jean-Francois!</p>"},
		},
		{
			name:         "italic",
			input:        "an ''emphasised'' word",
			wantContains: []string{"an <em>emphasised</em> word"},
		},
		{
			name:         "bold italic",
			input:        "'''''both'''''",
			wantContains: []string{"<strong><em>both</em></strong>"},
		},
		{
			name:         "formatting closes at end of line",
			input:        "'''open\nnext line",
			wantContains: []string{"<strong>open</strong>"},
			wantNot:      []string{"<strong>next"},
		},
		{
			name:         "heading levels",
			input:        "= One =\n== Two ==\n====== Six ======",
			wantContains: []string{"<h1>One</h1>", "<h2>Two</h2>", "<h6>Six</h6>"},
		},
		{
			name:         "heading deeper than six keeps surplus markers",
			input:        "======= Seven =======",
			wantContains: []string{"<h6>= Seven =</h6>"},
		},
		{
			name:         "unbalanced heading uses shorter run",
			input:        "=== Three =",
			wantContains: []string{"<h1>== Three</h1>"},
		},
		{
			name:         "horizontal rule",
			input:        "above\n----\nbelow",
			wantContains: []string{"<p>above</p>", "<hr />", "<p>below</p>"},
		},
		{
			name:         "internal link",
			input:        "[[Main Page]]",
			wantContains: []string{`<a href="/wiki/Main_Page">Main Page</a>`},
		},
		{
			name:         "internal link with label",
			input:        "[[Main Page|home]]",
			wantContains: []string{`<a href="/wiki/Main_Page">home</a>`},
		},
		{
			name:         "internal link with section",
			input:        "[[Help#Getting started]]",
			wantContains: []string{`href="/wiki/Help#Getting_started"`},
		},
		{
			name:         "external link",
			input:        "[https://example.com Example site]",
			wantContains: []string{`<a href="https://example.com">Example site</a>`},
		},
		{
			name:         "external link without label",
			input:        "[https://example.com]",
			wantContains: []string{`<a href="https://example.com">https://example.com</a>`},
		},
		{
			name:         "bare URL leaves trailing punctuation",
			input:        "see https://example.com.",
			wantContains: []string{`<a href="https://example.com">https://example.com</a>.`},
		},
		{
			name:         "bracket without scheme is text",
			input:        "[not a link]",
			wantContains: []string{"<p>[not a link]</p>"},
			wantNot:      []string{"<a "},
		},
		{
			name:         "unterminated internal link is text",
			input:        "[[broken",
			wantContains: []string{"<p>[[broken</p>"},
			wantNot:      []string{"<a "},
		},
		{
			name:         "HTML is escaped",
			input:        "<script>alert(1)</script> & more",
			wantContains: []string{"&lt;script&gt;", "&amp; more"},
			wantNot:      []string{"<script>"},
		},
		{
			name:         "markdown syntax is plain text",
			input:        "a **not bold** word",
			wantContains: []string{"a **not bold** word"},
			wantNot:      []string{"<strong>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := wikiHTML(t, tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(result, want) {
					t.Errorf("ToHTML() result should contain %q\nGot:\n%s", want, result)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(result, notWant) {
					t.Errorf("ToHTML() result should NOT contain %q\nGot:\n%s", notWant, result)
				}
			}
		})
	}
}

func TestMediaWiki_Lists(t *testing.T) {
	t.Parallel()

	t.Run("nested unordered", func(t *testing.T) {
		t.Parallel()

		doc := wikiDoc(t, "* a\n** b\n** c\n* d")
		if n := doc.Find("body > ul").Length(); n != 1 {
			t.Fatalf("top-level lists = %d, want 1", n)
		}
		if n := doc.Find("body > ul > li").Length(); n != 2 {
			t.Errorf("top-level items = %d, want 2", n)
		}
		nested := doc.Find("body > ul > li > ul > li")
		if nested.Length() != 2 || nested.First().Text() != "b" {
			t.Errorf("nested items = %d (first %q), want 2 starting with b", nested.Length(), nested.First().Text())
		}
	})

	t.Run("ordered inside unordered", func(t *testing.T) {
		t.Parallel()

		doc := wikiDoc(t, "* a\n*# one\n*# two")
		if n := doc.Find("ul > li > ol > li").Length(); n != 2 {
			t.Errorf("ordered items under bullet = %d, want 2", n)
		}
	})

	t.Run("skipped level gets parent item", func(t *testing.T) {
		t.Parallel()

		doc := wikiDoc(t, "** deep")
		if got := doc.Find("ul > li > ul > li").Text(); got != "deep" {
			t.Errorf("deep item = %q, want %q", got, "deep")
		}
	})

	t.Run("marker change starts new list", func(t *testing.T) {
		t.Parallel()

		doc := wikiDoc(t, "* a\n# b")
		if doc.Find("body > ul").Length() != 1 || doc.Find("body > ol").Length() != 1 {
			t.Errorf("want one <ul> then one <ol>")
		}
	})

	t.Run("formatting in items", func(t *testing.T) {
		t.Parallel()

		doc := wikiDoc(t, "* a '''bold''' item")
		if got := doc.Find("li strong").Text(); got != "bold" {
			t.Errorf("strong in item = %q, want %q", got, "bold")
		}
	})
}

func TestMediaWiki_Paragraphs(t *testing.T) {
	t.Parallel()

	doc := wikiDoc(t, "first line\nsame paragraph\n\nsecond paragraph")
	paras := doc.Find("p")
	if paras.Length() != 2 {
		t.Fatalf("paragraphs = %d, want 2", paras.Length())
	}
	if got := paras.First().Text(); got != "first line\nsame paragraph" {
		t.Errorf("first paragraph = %q", got)
	}
}

func TestMediaWiki_Quotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		sel   string
		want  string
		plain string // full paragraph text
	}{
		{"single apostrophe", "it's fine", "strong", "", "it's fine"},
		{"four quotes keep one apostrophe", "''''x''''", "strong", "x'", "'x'"},
		{"six quotes keep one apostrophe", "''''''x''''''", "em", "x'", "'x'"},
		{"italic inside bold", "'''a ''b'' c'''", "strong em", "b", "a b c"},
		{"bold closed inside italic reopens", "''a '''b'' c'''", "em", "a b", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := wikiDoc(t, tt.input)
			if got := doc.Find(tt.sel).First().Text(); got != tt.want {
				t.Errorf("%s text = %q, want %q", tt.sel, got, tt.want)
			}
			if got := doc.Find("p").Text(); got != tt.plain {
				t.Errorf("paragraph text = %q, want %q", got, tt.plain)
			}
		})
	}
}

func TestParseMediaWiki_Tree(t *testing.T) {
	t.Parallel()

	doc := ParseMediaWiki([]byte(sampleWiki))

	var kinds []ast.NodeKind
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		kinds = append(kinds, n.Kind())
	}
	want := []ast.NodeKind{
		ast.KindHeading, ast.KindParagraph, ast.KindHeading,
		ast.KindList, ast.KindList, ast.KindThematicBreak, ast.KindParagraph,
	}
	if len(kinds) != len(want) {
		t.Fatalf("top-level nodes = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("node %d = %v, want %v", i, kinds[i], want[i])
		}
	}

	if l := doc.FirstChild().NextSibling().NextSibling().NextSibling().NextSibling().(*ast.List); !l.IsOrdered() {
		t.Error("second list should be ordered")
	}
}

func TestParseMediaWiki_DropsEmptyFormatting(t *testing.T) {
	t.Parallel()

	doc := ParseMediaWiki([]byte("text '''"))
	p := doc.FirstChild()
	if p == nil || p.Kind() != ast.KindParagraph {
		t.Fatalf("first node = %v, want paragraph", p)
	}
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == ast.KindEmphasis {
			t.Error("empty emphasis should be removed")
		}
	}
}
