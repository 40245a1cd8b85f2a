package scoring

import "math"

// Engine scores feature sets against one validated calibration. It holds no
// mutable state and is safe for concurrent use across any number of samples.
type Engine struct {
	cfg Config
}

// NewEngine validates the calibration once and returns an engine that can
// never fail at scoring time.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the calibration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// combine aggregates a penalty vector into a total penalty in [0,1] using
// the effective weights for the sample. Inputs are already clamped and
// weights sum to 1.0, so the result is bounded; the clamp only guards
// against calibration drift.
func combine(p PenaltyVector, w Weights) float64 {
	total := p.Grammar*w.Grammar +
		p.Fillers*w.Fillers +
		p.WER*w.WER +
		p.Fluency*w.Fluency
	return clamp01(total)
}

// Score converts one FeatureSet into its ScoreResult. The same input always
// produces a byte-identical result.
func (e *Engine) Score(fs FeatureSet) ScoreResult {
	penalties := e.cfg.Thresholds.Normalize(fs)
	weights := e.cfg.effectiveWeights(fs.WordErrorRate == nil)

	total := combine(penalties, weights)
	final := round2(clamp(100.0-total*100.0, 0, 100))

	deductions := PointDeductions{
		Grammar: round2(penalties.Grammar * weights.Grammar * 100),
		Fillers: round2(penalties.Fillers * weights.Fillers * 100),
		WER:     round2(penalties.WER * weights.WER * 100),
		Fluency: round2(penalties.Fluency * weights.Fluency * 100),
	}

	return ScoreResult{
		FinalScore:      final,
		Normalized:      penalties,
		PointDeductions: deductions,
		Explanation:     Explanation(final, deductions),
	}
}

// Score is the one-shot entry point: validate the calibration, then score.
// Callers scoring many samples should build an Engine once instead.
func Score(fs FeatureSet, cfg Config) (ScoreResult, error) {
	e, err := NewEngine(cfg)
	if err != nil {
		return ScoreResult{}, err
	}
	return e.Score(fs), nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
