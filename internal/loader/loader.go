// Package loader reads document content from files: plain text, HTML and
// PDF (text extracted page by page).
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/alnah/go-textpipe/internal/fileutil"
)

// Sentinel errors for loading.
var (
	ErrEmptyPath      = errors.New("document path is empty")
	ErrRemoteDocument = errors.New("remote documents are not supported")
	ErrRead           = errors.New("cannot read document")
	ErrPDF            = errors.New("cannot extract PDF text")
	ErrNotUTF8        = errors.New("document is not valid UTF-8")
)

// Kind is the content kind, decided by file extension.
type Kind int

const (
	KindText Kind = iota
	KindHTML
	KindPDF
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindPDF:
		return "pdf"
	default:
		return "text"
	}
}

// Content is a loaded document before annotation.
type Content struct {
	Path string // resolved filesystem path
	Name string // file name without extension
	Kind Kind
	Text string // raw HTML for KindHTML, extracted text otherwise
}

// KindOf returns the content kind for a path.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return KindHTML
	case ".pdf":
		return KindPDF
	default:
		return KindText
	}
}

// Load reads the document at uri, a filesystem path or file:// URI.
func Load(uri string) (*Content, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, ErrEmptyPath
	}
	if fileutil.IsURL(uri) {
		return nil, fmt.Errorf("%w: %s", ErrRemoteDocument, uri)
	}
	path, err := fileutil.PathFromURI(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	c := &Content{
		Path: path,
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Kind: KindOf(path),
	}

	if c.Kind == KindPDF {
		c.Text, err = ExtractPDFText(path)
		return c, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided by design
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrNotUTF8, path)
	}
	c.Text = string(data)
	return c, nil
}

// ExtractPDFText returns the plain text of every page, pages separated by
// a blank line. Pages that fail to decode are skipped.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPDF, path, err)
	}
	defer func() { _ = f.Close() }()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
