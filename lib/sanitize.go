package lib

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// richTextPolicy keeps the markup subset suppliers put in descriptions
	richTextPolicy = bluemonday.UGCPolicy()
	// plainTextPolicy strips all markup, used for names and titles
	plainTextPolicy = bluemonday.StrictPolicy()
)

// SanitizeRichText strips unsafe markup from supplier HTML, keeping the safe
// formatting subset (paragraphs, lists, links, emphasis).
func SanitizeRichText(s string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(s))
}

// SanitizePlainText strips all markup and collapses surrounding whitespace.
func SanitizePlainText(s string) string {
	return strings.TrimSpace(plainTextPolicy.Sanitize(s))
}

// CapitalizeFirst upper-cases the first rune of s, leaving the rest as-is.
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
