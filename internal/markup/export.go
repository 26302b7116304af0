package markup

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ToMarkdown converts an HTML document back to Markdown.
// Only the body content is kept; the <title> is dropped.
func ToMarkdown(htmlDoc string) (string, error) {
	md, err := htmltomarkdown.ConvertString(htmlDoc)
	if err != nil {
		return "", fmt.Errorf("%w: markdown export: %v", ErrConversion, err)
	}
	return strings.TrimSpace(md) + "\n", nil
}
