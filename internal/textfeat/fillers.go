// Package textfeat extracts linguistic measurements from ASR transcripts:
// filler occurrences, speaking rate and sentence statistics. It measures
// only; scoring the measurements is the scoring package's job.
package textfeat

import (
	"regexp"
	"strings"
)

// fillerPatterns is the fixed disfluency lexicon, matched against the
// lowercased transcript. Multi-word phrases come first so they are counted
// as one occurrence.
var fillerPatterns = []*regexp.Regexp{
	// Multi-word fillers
	regexp.MustCompile(`\byou know\b`),
	regexp.MustCompile(`\bi mean\b`),
	regexp.MustCompile(`\bkind of\b`),
	regexp.MustCompile(`\bkinda\b`),
	regexp.MustCompile(`\bsort of\b`),
	regexp.MustCompile(`\bsorta\b`),
	regexp.MustCompile(`\byou see\b`),
	regexp.MustCompile(`\blet me see\b`),
	regexp.MustCompile(`\blet's see\b`),

	// Single-word fillers
	regexp.MustCompile(`\bum+\b`),
	regexp.MustCompile(`\buh+\b`),
	regexp.MustCompile(`\berm+\b`),
	regexp.MustCompile(`\bhmm+\b`),
	regexp.MustCompile(`\bah+\b`),
	regexp.MustCompile(`\boh+\b`),
	regexp.MustCompile(`\blike\b`),
	regexp.MustCompile(`\bbasically\b`),
	regexp.MustCompile(`\bactually\b`),
	regexp.MustCompile(`\bliterally\b`),
	regexp.MustCompile(`\bwell\b`),
	regexp.MustCompile(`\bso\b`),
	regexp.MustCompile(`\bjust\b`),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CountFillers detects filler words and verbal disfluencies in a
// transcript. It returns the total occurrence count and the matched
// instances in lexicon order.
func CountFillers(text string) (int, []string) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	normalized := whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")

	var detected []string
	for _, pattern := range fillerPatterns {
		detected = append(detected, pattern.FindAllString(normalized, -1)...)
	}
	return len(detected), detected
}
