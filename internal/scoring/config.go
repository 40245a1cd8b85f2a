package scoring

import (
	"fmt"
	"math"

	apperrors "github.com/voxlab/speechmeter/internal/errors"
)

// weightSumTolerance is the floating-point tolerance applied when checking
// that a weight vector sums to 1.0.
const weightSumTolerance = 1e-6

// MissingWERPolicy selects how the combiner treats an absent word error rate.
type MissingWERPolicy string

const (
	// PolicyZeroPenalty scores an absent WER as a perfect sub-score: the
	// WER weight stays allocated and contributes zero penalty.
	PolicyZeroPenalty MissingWERPolicy = "zero-penalty"
	// PolicyRenormalize drops the WER dimension entirely and rescales the
	// remaining three weights to sum to 1.0.
	PolicyRenormalize MissingWERPolicy = "renormalize"
)

// Weights is the calibrated importance of each scoring component.
// A valid weight vector is non-negative and sums to 1.0.
type Weights struct {
	Grammar float64 `json:"grammar" yaml:"grammar"`
	Fillers float64 `json:"fillers" yaml:"fillers"`
	WER     float64 `json:"wer" yaml:"wer"`
	Fluency float64 `json:"fluency" yaml:"fluency"`
}

// Thresholds holds the calibrated saturation points of the penalty curves.
type Thresholds struct {
	// MaxGrammarErrorsPer100 is the grammar error rate (per 100 words) at
	// which the grammar penalty saturates at 1.0.
	MaxGrammarErrorsPer100 float64 `json:"max_grammar_errors_per_100" yaml:"max_grammar_errors_per_100"`
	// MaxFillersPer100 is the filler rate (per 100 words) at which the
	// filler penalty saturates at 1.0.
	MaxFillersPer100 float64 `json:"max_fillers_per_100" yaml:"max_fillers_per_100"`
	// MaxWER is the word error rate at which the WER penalty saturates.
	MaxWER float64 `json:"max_wer" yaml:"max_wer"`
	// IdealWPMMin..IdealWPMMax is the zero-penalty speaking-rate band.
	IdealWPMMin float64 `json:"ideal_wpm_min" yaml:"ideal_wpm_min"`
	IdealWPMMax float64 `json:"ideal_wpm_max" yaml:"ideal_wpm_max"`
	// VerySlowWPM and VeryFastWPM are the rates at which the fluency
	// penalty reaches 1.0 below and above the ideal band.
	VerySlowWPM float64 `json:"very_slow_wpm" yaml:"very_slow_wpm"`
	VeryFastWPM float64 `json:"very_fast_wpm" yaml:"very_fast_wpm"`
}

// Config is one versioned scoring calibration: weights, curve thresholds
// and the missing-WER policy. It is loaded once, validated once, and read
// only thereafter.
type Config struct {
	Version    string           `json:"version" yaml:"version"`
	Weights    Weights          `json:"weights" yaml:"weights"`
	Thresholds Thresholds       `json:"thresholds" yaml:"thresholds"`
	MissingWER MissingWERPolicy `json:"missing_wer_policy" yaml:"missing_wer_policy"`
}

// DefaultConfig returns the calibrated default profile. The thresholds come
// from CEFR-aligned benchmarks for L2 English speech.
func DefaultConfig() Config {
	return Config{
		Version: "1.0.0",
		Weights: Weights{
			Grammar: 0.35,
			Fillers: 0.25,
			WER:     0.20,
			Fluency: 0.20,
		},
		Thresholds: Thresholds{
			MaxGrammarErrorsPer100: 12.0,
			MaxFillersPer100:       8.0,
			MaxWER:                 0.35,
			IdealWPMMin:            110.0,
			IdealWPMMax:            170.0,
			VerySlowWPM:            60.0,
			VeryFastWPM:            220.0,
		},
		MissingWER: PolicyZeroPenalty,
	}
}

// Sum returns the total of the four weights.
func (w Weights) Sum() float64 {
	return w.Grammar + w.Fillers + w.WER + w.Fluency
}

// Validate checks the weight vector invariants.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"grammar": w.Grammar,
		"fillers": w.Fillers,
		"wer":     w.WER,
		"fluency": w.Fluency,
	} {
		if v < 0 {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("weight %q is negative: %g", name, v), nil)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("weights sum to %g, expected 1.0", sum), nil)
	}
	return nil
}

// Validate checks that every threshold is positive and the fluency band is
// properly ordered.
func (t Thresholds) Validate() error {
	if t.MaxGrammarErrorsPer100 <= 0 || t.MaxFillersPer100 <= 0 || t.MaxWER <= 0 {
		return apperrors.NewConfigurationError("saturation thresholds must be positive", nil)
	}
	if !(t.VerySlowWPM < t.IdealWPMMin && t.IdealWPMMin < t.IdealWPMMax && t.IdealWPMMax < t.VeryFastWPM) {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("wpm thresholds must satisfy slow < ideal_min < ideal_max < fast, got %g/%g/%g/%g",
				t.VerySlowWPM, t.IdealWPMMin, t.IdealWPMMax, t.VeryFastWPM), nil)
	}
	return nil
}

// Validate fails fast on a bad calibration so it can never skew a score at
// scoring time.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	switch c.MissingWER {
	case PolicyZeroPenalty, PolicyRenormalize, "":
	default:
		return apperrors.NewConfigurationError(
			fmt.Sprintf("unknown missing-wer policy %q", c.MissingWER), nil)
	}
	return nil
}

// effectiveWeights returns the weights actually applied for a sample,
// renormalizing away the WER allocation when the policy asks for it and the
// sample has no word error rate.
func (c Config) effectiveWeights(werAbsent bool) Weights {
	if !werAbsent || c.MissingWER != PolicyRenormalize {
		return c.Weights
	}
	rest := c.Weights.Grammar + c.Weights.Fillers + c.Weights.Fluency
	if rest <= 0 {
		return c.Weights
	}
	return Weights{
		Grammar: c.Weights.Grammar / rest,
		Fillers: c.Weights.Fillers / rest,
		WER:     0,
		Fluency: c.Weights.Fluency / rest,
	}
}
