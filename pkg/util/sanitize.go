package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText trims s and strips every HTML tag from it. Entities produced
// by the policy are decoded again so "Dupont & Fils" keeps matching itself;
// callers that write the result into HTML must escape it.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(strings.TrimSpace(s))))
}
