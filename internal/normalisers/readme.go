package normalisers

import (
	"strings"

	"github.com/custodia-labs/ghview/internal/normalisers/html"
	"github.com/custodia-labs/ghview/internal/normalisers/markdown"
)

var (
	htmlNormaliser     = html.New()
	markdownNormaliser = markdown.NewWithInlineHTML(htmlNormaliser.StripTags)
)

// PlainText renders README content as plain text. Paragraph breaks and the
// contents of code blocks are kept.
func PlainText(content string) string {
	if isHTMLDocument(content) {
		return htmlNormaliser.Normalise(content)
	}
	return markdownNormaliser.Normalise(content)
}

// Title returns the README's first level-one heading, or "" when there is none.
func Title(content string) string {
	if isHTMLDocument(content) {
		return htmlNormaliser.Title(content)
	}
	if title := markdownNormaliser.Title(content); title != "" {
		return title
	}
	return htmlNormaliser.Title(content)
}

func isHTMLDocument(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
