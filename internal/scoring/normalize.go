package scoring

// clamp01 bounds a penalty to [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// ratePer100 converts a raw count into occurrences per 100 words.
// A zero word count defines the rate as 0 (nothing was said).
func ratePer100(count, wordCount int) float64 {
	if wordCount <= 0 || count <= 0 {
		return 0
	}
	return float64(count) / float64(wordCount) * 100.0
}

// GrammarPenalty maps the grammar error rate onto [0,1]. The penalty grows
// linearly with errors per 100 words and saturates at
// Thresholds.MaxGrammarErrorsPer100.
func (t Thresholds) GrammarPenalty(errorCount, wordCount int) float64 {
	return clamp01(ratePer100(errorCount, wordCount) / t.MaxGrammarErrorsPer100)
}

// FillerPenalty maps the filler rate onto [0,1], saturating at
// Thresholds.MaxFillersPer100 fillers per 100 words.
func (t Thresholds) FillerPenalty(fillerCount, wordCount int) float64 {
	return clamp01(ratePer100(fillerCount, wordCount) / t.MaxFillersPer100)
}

// WERPenalty maps a word error rate onto [0,1], saturating at
// Thresholds.MaxWER. An absent rate is exactly 0: no reference transcript
// means a best-case assumption, not an imputed average.
func (t Thresholds) WERPenalty(wer *float64) float64 {
	if wer == nil {
		return 0
	}
	return clamp01(*wer / t.MaxWER)
}

// FluencyPenalty scores the speaking rate. Inside the ideal band the
// penalty is 0; outside it grows linearly and saturates at 1.0 at the
// very-slow / very-fast rates.
//
// A sample with words but no usable duration has an unknowable rate and is
// scored at maximum penalty. A sample with no words at all is not penalized.
func (t Thresholds) FluencyPenalty(wordCount int, durationSec float64) float64 {
	if wordCount <= 0 {
		return 0
	}
	if durationSec <= 0 {
		return 1
	}
	wpm := float64(wordCount) / durationSec * 60.0
	switch {
	case wpm < t.IdealWPMMin:
		return clamp01((t.IdealWPMMin - wpm) / (t.IdealWPMMin - t.VerySlowWPM))
	case wpm > t.IdealWPMMax:
		return clamp01((wpm - t.IdealWPMMax) / (t.VeryFastWPM - t.IdealWPMMax))
	default:
		return 0
	}
}

// Normalize converts a full FeatureSet into its PenaltyVector.
func (t Thresholds) Normalize(fs FeatureSet) PenaltyVector {
	return PenaltyVector{
		Grammar: t.GrammarPenalty(fs.GrammarErrorCount, fs.WordCount),
		Fillers: t.FillerPenalty(fs.FillerCount, fs.WordCount),
		WER:     t.WERPenalty(fs.WordErrorRate),
		Fluency: t.FluencyPenalty(fs.WordCount, fs.DurationSec),
	}
}
