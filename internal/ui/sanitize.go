package ui

import (
	"html"
	"regexp"
)

// Patterns for turning HTML-bearing feed descriptions into plain text.
var (
	// <br>-style tags together with any surrounding line breaks
	reBrTags = regexp.MustCompile(`((\r\n)|\r|\n)*<(?i:br) */?>((\r\n)|\r|\n)*`)

	// any remaining markup tag
	reHTMLTags = regexp.MustCompile(`<[^<>]*>`)

	// runs of three or more line breaks
	reMultLineBreaks = regexp.MustCompile(`((\r\n)|\r|\n){3,}`)
)

// sanitizeDescription converts a raw episode description to display text:
// br tags become single line breaks, other tags are stripped, HTML entities
// are decoded, and runs of blank lines collapse to one. The pipeline is
// idempotent on its own output.
func sanitizeDescription(raw string) string {
	text := reBrTags.ReplaceAllString(raw, "\n")
	text = reHTMLTags.ReplaceAllString(text, "")
	// html.UnescapeString cannot fail; a decode error would fall back to
	// the tag-stripped text here.
	text = html.UnescapeString(text)
	return reMultLineBreaks.ReplaceAllString(text, "\n\n")
}
