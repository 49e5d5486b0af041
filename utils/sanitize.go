package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// SanitizeContent keeps the safe subset of user supplied HTML in post and comment bodies.
func SanitizeContent(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeTitle strips all markup and surrounding whitespace. Titles are plain
// text, so the entities the policy escapes are decoded again.
func SanitizeTitle(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}
