// Package markup converts lightweight markup to HTML.
//
// Two grammars are supported, both rendered by goldmark's HTML renderer so
// they share escaping rules and output shape:
//   - MediaWiki: parsed by this package into a goldmark AST (headings, rules,
//     nested lists, bold/italic quote runs, internal and external links)
//   - Markdown: goldmark with GFM, footnotes and chroma syntax highlighting
//
// Every converter returns a complete HTML5 document. Rendered HTML can be
// turned back into Markdown with ToMarkdown.
package markup
