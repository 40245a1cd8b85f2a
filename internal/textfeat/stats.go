package textfeat

import (
	"math"
	"regexp"
	"strings"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// SentenceStats summarizes sentence-level structure of a transcript.
type SentenceStats struct {
	SentenceCount     int     `json:"sentence_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	MinSentenceLength int     `json:"min_sentence_length"`
	MaxSentenceLength int     `json:"max_sentence_length"`
}

// WordsPerMinute computes the speaking rate, rounded to 2 decimals.
// It returns ok=false when the duration or word count make the rate
// meaningless.
func WordsPerMinute(wordCount int, durationSec float64) (float64, bool) {
	if durationSec <= 0 || wordCount < 0 {
		return 0, false
	}
	wpm := float64(wordCount) / durationSec * 60.0
	return math.Round(wpm*100) / 100, true
}

// ComputeSentenceStats splits a transcript on sentence delimiters and
// reports count and per-sentence word lengths.
func ComputeSentenceStats(text string) SentenceStats {
	var stats SentenceStats
	if strings.TrimSpace(text) == "" {
		return stats
	}

	var lengths []int
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			lengths = append(lengths, len(strings.Fields(s)))
		}
	}
	if len(lengths) == 0 {
		return stats
	}

	total := 0
	stats.MinSentenceLength = lengths[0]
	stats.MaxSentenceLength = lengths[0]
	for _, n := range lengths {
		total += n
		if n < stats.MinSentenceLength {
			stats.MinSentenceLength = n
		}
		if n > stats.MaxSentenceLength {
			stats.MaxSentenceLength = n
		}
	}
	stats.SentenceCount = len(lengths)
	stats.AvgSentenceLength = math.Round(float64(total)/float64(len(lengths))*100) / 100
	return stats
}
