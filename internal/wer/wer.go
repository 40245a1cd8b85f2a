// Package wer computes the word error rate between a hypothesis transcript
// and a reference transcript.
package wer

import (
	"errors"
	"strings"
)

// ErrEmptyReference is returned when the reference transcript holds no
// words; a rate over an empty reference is undefined.
var ErrEmptyReference = errors.New("wer: reference transcript is empty")

// Compute returns (substitutions + deletions + insertions) / len(reference)
// after case-insensitive whitespace tokenization. The result can exceed 1.0
// when the hypothesis inserts more words than the reference holds.
func Compute(reference, hypothesis string) (float64, error) {
	ref := tokenize(reference)
	if len(ref) == 0 {
		return 0, ErrEmptyReference
	}
	hyp := tokenize(hypothesis)

	return float64(editDistance(ref, hyp)) / float64(len(ref)), nil
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// editDistance computes word-level Levenshtein distance with two rolling
// rows.
func editDistance(ref, hyp []string) int {
	prev := make([]int, len(hyp)+1)
	curr := make([]int, len(hyp)+1)

	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ref); i++ {
		curr[0] = i
		for j := 1; j <= len(hyp); j++ {
			if ref[i-1] == hyp[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min3(prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(hyp)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
