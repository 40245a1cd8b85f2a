// Package pipeline orchestrates one full scoring pass: transcription (when
// needed), feature extraction through the external collaborators, and the
// scoring engine. Components run strictly forward; nothing here mutates
// another stage's output.
package pipeline

import (
	"context"
	"time"

	"github.com/voxlab/speechmeter/internal/adapters"
	"github.com/voxlab/speechmeter/internal/errors"
	"github.com/voxlab/speechmeter/internal/monitoring"
	"github.com/voxlab/speechmeter/internal/resilience"
	"github.com/voxlab/speechmeter/internal/scoring"
	"github.com/voxlab/speechmeter/internal/textfeat"
	"github.com/voxlab/speechmeter/internal/wer"
)

// maxDetailItems bounds grammar details and filler lists in a report.
const maxDetailItems = 20

// Request describes one sample to score. Either Transcript or AudioURL must
// be set; AudioURL requires a configured transcriber.
type Request struct {
	Transcript          string  `json:"transcript"`
	AudioURL            string  `json:"audio_url"`
	DurationSec         float64 `json:"duration_sec"`
	ReferenceTranscript string  `json:"reference_transcript"`
	Language            string  `json:"language"`
	Profile             string  `json:"profile"`
}

// ASRBlock carries the transcription metadata echoed back in a report.
type ASRBlock struct {
	Transcript  string                 `json:"transcript"`
	WordCount   int                    `json:"word_count"`
	DurationSec float64                `json:"duration_sec"`
	Language    string                 `json:"language"`
	Sentences   textfeat.SentenceStats `json:"sentence_stats"`
}

// MetricsBlock holds the raw measurements next to their normalized
// penalties and the final score.
type MetricsBlock struct {
	GrammarErrors int                   `json:"grammar_errors"`
	Fillers       int                   `json:"fillers"`
	WER           *float64              `json:"wer"`
	WPM           *float64              `json:"wpm"`
	Normalized    scoring.PenaltyVector `json:"normalized"`
	FinalScore    float64               `json:"final_score"`
}

// Report is the full outcome of one pipeline run.
type Report struct {
	ASR             ASRBlock                  `json:"asr"`
	Metrics         MetricsBlock              `json:"metrics"`
	GrammarDetails  []adapters.GrammarFinding `json:"grammar_details"`
	FillerWords     []string                  `json:"filler_words"`
	PointDeductions scoring.PointDeductions   `json:"point_deductions"`
	Explanation     string                    `json:"explanation"`
	ModelVersion    string                    `json:"model_version"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}

// Pipeline wires the collaborators to the scoring engine. Checker and
// transcriber may be nil; the pipeline degrades to zero findings and
// transcript-only input respectively.
type Pipeline struct {
	profiles    *scoring.ProfileStore
	checker     adapters.GrammarChecker
	transcriber adapters.Transcriber
	logger      *monitoring.Logger
	metrics     *monitoring.Metrics
	retry       resilience.RetryConfig
}

// New creates a pipeline.
func New(profiles *scoring.ProfileStore, checker adapters.GrammarChecker, transcriber adapters.Transcriber,
	logger *monitoring.Logger, metrics *monitoring.Metrics) *Pipeline {
	return &Pipeline{
		profiles:    profiles,
		checker:     checker,
		transcriber: transcriber,
		logger:      logger,
		metrics:     metrics,
		retry:       resilience.DefaultRetryConfig(),
	}
}

// Score runs the full pipeline for one request.
func (p *Pipeline) Score(ctx context.Context, req Request) (*Report, error) {
	cfg, err := p.profiles.Load(req.Profile)
	if err != nil {
		return nil, err
	}
	engine, err := scoring.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	transcript := req.Transcript
	durationSec := req.DurationSec
	language := req.Language
	modelVersion := "external"

	if transcript == "" {
		if req.AudioURL == "" {
			return nil, errors.NewValidationError("either transcript or audio_url is required")
		}
		if p.transcriber == nil {
			return nil, errors.NewValidationError("audio_url scoring requires a configured transcription provider")
		}

		var t *adapters.Transcription
		start := time.Now()
		err := resilience.Retry(ctx, p.retry, func() error {
			var err error
			t, err = p.transcriber.Transcribe(ctx, req.AudioURL)
			return err
		})
		p.metrics.RecordExternalAPIRequest("whisper", err == nil)
		p.logger.ExternalAPILogger("whisper", req.AudioURL, time.Since(start), err == nil)
		if err != nil {
			return nil, errors.NewExternalAPIError("transcription", err)
		}

		transcript = t.Transcript
		durationSec = t.DurationSec
		language = t.Language
		modelVersion = t.ModelVersion
	}

	normalized := textfeat.NormalizeTranscript(transcript)
	wordCount := textfeat.CountWords(normalized)

	findings := p.checkGrammar(ctx, normalized, language)
	fillerCount, fillerWords := textfeat.CountFillers(normalized)

	var werValue *float64
	if req.ReferenceTranscript != "" {
		rate, err := wer.Compute(req.ReferenceTranscript, normalized)
		if err != nil {
			// Not fatal: scored as if no reference was supplied.
			p.logger.Warn("WER computation failed", "error", err)
		} else {
			werValue = &rate
		}
	}

	fs := scoring.FeatureSet{
		WordCount:         wordCount,
		DurationSec:       durationSec,
		GrammarErrorCount: len(findings),
		FillerCount:       fillerCount,
		WordErrorRate:     werValue,
	}
	res := engine.Score(fs)
	p.metrics.IncrementScore()

	var wpm *float64
	if v, ok := textfeat.WordsPerMinute(wordCount, durationSec); ok {
		wpm = &v
	}

	return &Report{
		ASR: ASRBlock{
			Transcript:  transcript,
			WordCount:   wordCount,
			DurationSec: durationSec,
			Language:    language,
			Sentences:   textfeat.ComputeSentenceStats(normalized),
		},
		Metrics: MetricsBlock{
			GrammarErrors: len(findings),
			Fillers:       fillerCount,
			WER:           werValue,
			WPM:           wpm,
			Normalized:    res.Normalized,
			FinalScore:    res.FinalScore,
		},
		GrammarDetails:  truncate(findings, maxDetailItems),
		FillerWords:     truncate(fillerWords, maxDetailItems),
		PointDeductions: res.PointDeductions,
		Explanation:     res.Explanation,
		ModelVersion:    modelVersion,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// checkGrammar runs the grammar collaborator with retries, degrading to
// zero findings on failure so a checker outage never aborts scoring.
func (p *Pipeline) checkGrammar(ctx context.Context, text, language string) []adapters.GrammarFinding {
	if p.checker == nil || text == "" {
		return nil
	}

	var findings []adapters.GrammarFinding
	start := time.Now()
	err := resilience.Retry(ctx, p.retry, func() error {
		var err error
		findings, err = p.checker.Check(ctx, text, language)
		return err
	})
	p.metrics.RecordExternalAPIRequest("languagetool", err == nil)
	p.logger.ExternalAPILogger("languagetool", "/v2/check", time.Since(start), err == nil)
	if err != nil {
		p.logger.Warn("Grammar check failed, scoring without findings", "error", err)
		return nil
	}
	return findings
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
