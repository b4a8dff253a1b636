package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	sanitizer = bluemonday.UGCPolicy()
	plain     = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks, keeping safe formatting.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SanitizeText strips all markup, trims, and truncates to maxRunes (0 = no limit).
// The result is plain text: entities escaped by the policy are decoded again.
func SanitizeText(input string, maxRunes int) string {
	s := strings.TrimSpace(html.UnescapeString(plain.Sanitize(input)))
	if maxRunes > 0 {
		if rs := []rune(s); len(rs) > maxRunes {
			s = string(rs[:maxRunes])
		}
	}
	return s
}
