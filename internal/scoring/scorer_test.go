package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Grammar: 0.4, Fillers: 0.4, WER: 0.4, Fluency: 0.4}

	_, err := NewEngine(cfg)
	require.Error(t, err)

	_, err = Score(FeatureSet{WordCount: 10, DurationSec: 5}, cfg)
	require.Error(t, err, "a bad calibration must be rejected before any score is computed")
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	// 0.125 and 12.5 are exact binary values, so these pin the rounding
	// rule without floating-point ambiguity.
	assert.Equal(t, 0.13, round2(0.125))
	assert.Equal(t, -0.13, round2(-0.125))
	assert.Equal(t, 75.0, round2(75.0))
}

func TestScorePerfectSample(t *testing.T) {
	e := newTestEngine(t)

	res := e.Score(FeatureSet{WordCount: 140, DurationSec: 60})
	assert.Equal(t, 100.0, res.FinalScore)
	assert.Equal(t, PenaltyVector{}, res.Normalized)
}

func TestScoreWorstSample(t *testing.T) {
	e := newTestEngine(t)

	werVal := 1.0
	res := e.Score(FeatureSet{
		WordCount:         100,
		DurationSec:       600, // 10 WPM
		GrammarErrorCount: 50,
		FillerCount:       50,
		WordErrorRate:     &werVal,
	})
	assert.Equal(t, 0.0, res.FinalScore)
	assert.Equal(t, PenaltyVector{Grammar: 1, Fillers: 1, WER: 1, Fluency: 1}, res.Normalized)
}

func TestScoreScenarioFillerHeavy(t *testing.T) {
	e := newTestEngine(t)

	// 15 words in 7.5s is 120 WPM (ideal); 2 fillers in 15 words is
	// 13.33 per 100 words, past saturation.
	res := e.Score(FeatureSet{WordCount: 15, DurationSec: 7.5, FillerCount: 2})

	assert.Equal(t, 0.0, res.Normalized.Grammar)
	assert.Equal(t, 1.0, res.Normalized.Fillers)
	assert.Equal(t, 0.0, res.Normalized.WER)
	assert.Equal(t, 0.0, res.Normalized.Fluency)
	assert.InDelta(t, 75.00, res.FinalScore, 1e-9)
	assert.InDelta(t, 25.00, res.PointDeductions.Fillers, 1e-9)
}

func TestScoreScenarioSlightlySlow(t *testing.T) {
	e := newTestEngine(t)

	// 28 words in 15.7s is ~107 WPM, slightly under the ideal band.
	res := e.Score(FeatureSet{
		WordCount:         28,
		DurationSec:       15.7,
		GrammarErrorCount: 1,
		FillerCount:       1,
	})

	assert.InDelta(t, 0.2976, res.Normalized.Grammar, 0.0001)
	assert.InDelta(t, 0.4464, res.Normalized.Fillers, 0.0001)
	assert.Equal(t, 0.0, res.Normalized.WER)
	assert.InDelta(t, 0.0599, res.Normalized.Fluency, 0.0001)
	assert.InDelta(t, 77.23, res.FinalScore, 1e-9)
}

func TestScoreZeroDuration(t *testing.T) {
	e := newTestEngine(t)

	res := e.Score(FeatureSet{WordCount: 50, DurationSec: 0, GrammarErrorCount: 2})
	assert.GreaterOrEqual(t, res.FinalScore, 0.0)
	assert.LessOrEqual(t, res.FinalScore, 100.0)
	assert.Equal(t, 1.0, res.Normalized.Fluency)
}

func TestScoreEmptySample(t *testing.T) {
	e := newTestEngine(t)

	res := e.Score(FeatureSet{})
	assert.Equal(t, 100.0, res.FinalScore)
}

func TestScoreMissingWERIsFreePass(t *testing.T) {
	e := newTestEngine(t)

	// All other penalties at maximum; absent WER still contributes zero,
	// so the score floor is the WER weight share.
	res := e.Score(FeatureSet{
		WordCount:         100,
		DurationSec:       600,
		GrammarErrorCount: 50,
		FillerCount:       50,
	})
	assert.Equal(t, 0.0, res.Normalized.WER)
	assert.InDelta(t, 20.00, res.FinalScore, 1e-9)
}

func TestScoreRenormalizePolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MissingWER = PolicyRenormalize
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	// Same worst-case sample as above: with renormalization the idle WER
	// allocation disappears and the score bottoms out at zero.
	res := e.Score(FeatureSet{
		WordCount:         100,
		DurationSec:       600,
		GrammarErrorCount: 50,
		FillerCount:       50,
	})
	assert.InDelta(t, 0.0, res.FinalScore, 1e-9)

	// With a WER supplied the policy must not change anything.
	werVal := 0.1
	withWER := e.Score(FeatureSet{WordCount: 140, DurationSec: 60, WordErrorRate: &werVal})
	base := newTestEngine(t).Score(FeatureSet{WordCount: 140, DurationSec: 60, WordErrorRate: &werVal})
	assert.Equal(t, base, withWER)
}

func TestScoreMonotonicity(t *testing.T) {
	e := newTestEngine(t)

	base := FeatureSet{WordCount: 100, DurationSec: 50}

	t.Run("grammar errors never raise the score", func(t *testing.T) {
		prev := 101.0
		for errs := 0; errs <= 20; errs++ {
			fs := base
			fs.GrammarErrorCount = errs
			score := e.Score(fs).FinalScore
			assert.LessOrEqual(t, score, prev, "errors=%d", errs)
			prev = score
		}
	})

	t.Run("fillers never raise the score", func(t *testing.T) {
		prev := 101.0
		for fillers := 0; fillers <= 15; fillers++ {
			fs := base
			fs.FillerCount = fillers
			score := e.Score(fs).FinalScore
			assert.LessOrEqual(t, score, prev, "fillers=%d", fillers)
			prev = score
		}
	})

	t.Run("word error rate never raises the score", func(t *testing.T) {
		prev := 101.0
		for i := 0; i <= 10; i++ {
			rate := float64(i) / 10.0
			fs := base
			fs.WordErrorRate = &rate
			score := e.Score(fs).FinalScore
			assert.LessOrEqual(t, score, prev, "wer=%.1f", rate)
			prev = score
		}
	})
}

func TestScoreIdempotent(t *testing.T) {
	e := newTestEngine(t)

	werVal := 0.12
	fs := FeatureSet{
		WordCount:         37,
		DurationSec:       19.4,
		GrammarErrorCount: 2,
		FillerCount:       3,
		WordErrorRate:     &werVal,
	}

	first := e.Score(fs)
	second := e.Score(fs)
	assert.Equal(t, first, second)
	assert.Equal(t, first.Explanation, second.Explanation)
}

func TestScoreRangeInvariant(t *testing.T) {
	e := newTestEngine(t)

	werHigh := 0.9
	for _, fs := range []FeatureSet{
		{WordCount: 1, DurationSec: 0.01, GrammarErrorCount: 99, FillerCount: 99, WordErrorRate: &werHigh},
		{WordCount: 10000, DurationSec: 1},
		{WordCount: 3, DurationSec: 300},
	} {
		res := e.Score(fs)
		assert.GreaterOrEqual(t, res.FinalScore, 0.0, "%+v", fs)
		assert.LessOrEqual(t, res.FinalScore, 100.0, "%+v", fs)
	}
}

func TestDeductionsSumMatchesScore(t *testing.T) {
	e := newTestEngine(t)

	werVal := 0.15
	res := e.Score(FeatureSet{
		WordCount:         60,
		DurationSec:       40,
		GrammarErrorCount: 3,
		FillerCount:       2,
		WordErrorRate:     &werVal,
	})

	sum := res.PointDeductions.Grammar + res.PointDeductions.Fillers +
		res.PointDeductions.WER + res.PointDeductions.Fluency
	// Each deduction is rounded independently, so allow up to 0.01 of
	// residual per component.
	assert.InDelta(t, 100.0-res.FinalScore, sum, 0.04)
}
