package validation

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t]+`)
)

// SanitizePlainText strips HTML tags and collapses runs of spaces.
// Profile fields like the bio are stored as plain text only.
func SanitizePlainText(s string) string {
	out := htmlTagRegex.ReplaceAllString(s, "")
	out = whitespaceRegex.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
