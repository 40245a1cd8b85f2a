package scoring

import "fmt"

// Explanation renders the fixed-format, human-readable score breakdown.
// The output is deterministic: identical inputs yield byte-identical
// strings, so it can be snapshot-tested and cached.
func Explanation(finalScore float64, d PointDeductions) string {
	return fmt.Sprintf(
		"Score: %.2f/100 | Grammar: -%.2f pts | Fillers: -%.2f pts | WER: -%.2f pts | Fluency: -%.2f pts",
		finalScore, d.Grammar, d.Fillers, d.WER, d.Fluency,
	)
}
