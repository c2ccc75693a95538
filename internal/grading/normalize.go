package grading

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	lineCommentPattern = regexp.MustCompile(`#.*`)
	docstringPattern   = regexp.MustCompile(`"""[\s\S]*?"""|'''[\s\S]*?'''`)
)

// NormalizeCode strips # comments, triple-quoted blocks and every whitespace
// character so that code differing only in layout compares equal.
func NormalizeCode(code string) string {
	code = lineCommentPattern.ReplaceAllString(code, "")
	code = docstringPattern.ReplaceAllString(code, "")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
}

// normalizeText case-folds and trims free text answers.
func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
