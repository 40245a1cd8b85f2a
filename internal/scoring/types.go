package scoring

// FeatureSet holds the raw linguistic measurements for one spoken sample.
// All fields are produced upstream (ASR, grammar checker, filler detector,
// reference alignment); the engine only scores them.
type FeatureSet struct {
	WordCount         int     `json:"word_count"`
	DurationSec       float64 `json:"duration_sec"`
	GrammarErrorCount int     `json:"grammar_error_count"`
	FillerCount       int     `json:"filler_count"`
	// WordErrorRate is nil when no reference transcript was supplied.
	WordErrorRate *float64 `json:"word_error_rate"`
}

// WordsPerMinute derives the speaking rate from word count and duration.
// A non-positive duration yields 0.
func (f FeatureSet) WordsPerMinute() float64 {
	if f.DurationSec <= 0 || f.WordCount <= 0 {
		return 0
	}
	return float64(f.WordCount) / f.DurationSec * 60.0
}

// PenaltyVector holds the normalized penalty for each scoring component.
// Every field is in [0,1]; 0 means no degradation, 1 maximum degradation.
type PenaltyVector struct {
	Grammar float64 `json:"grammar"`
	Fillers float64 `json:"fillers"`
	WER     float64 `json:"wer"`
	Fluency float64 `json:"fluency"`
}

// PointDeductions reports how many of the 100 available points each
// component removed (penalty x weight x 100, rounded to 2 decimals).
type PointDeductions struct {
	Grammar float64 `json:"grammar"`
	Fillers float64 `json:"fillers"`
	WER     float64 `json:"wer"`
	Fluency float64 `json:"fluency"`
}

// ScoreResult is the full outcome of one scoring call. It is constructed
// fresh per call and never mutated afterwards.
type ScoreResult struct {
	FinalScore      float64         `json:"final_score"`
	Normalized      PenaltyVector   `json:"normalized"`
	PointDeductions PointDeductions `json:"point_deductions"`
	Explanation     string          `json:"explanation"`
}
