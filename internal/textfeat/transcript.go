package textfeat

import (
	"regexp"
	"strings"
)

var punctSpacingRe = regexp.MustCompile(`\s+([.,!?;:])`)

// NormalizeTranscript cleans raw ASR output for analysis: whitespace is
// collapsed, spacing before punctuation is removed, casing and punctuation
// are preserved for the grammar checker.
func NormalizeTranscript(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = punctSpacingRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// CountWords returns the number of whitespace-delimited tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
