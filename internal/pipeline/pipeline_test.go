package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxlab/speechmeter/internal/adapters"
	"github.com/voxlab/speechmeter/internal/monitoring"
	"github.com/voxlab/speechmeter/internal/scoring"
)

type fakeChecker struct {
	findings []adapters.GrammarFinding
	err      error
	calls    int
}

func (f *fakeChecker) Check(ctx context.Context, text, language string) ([]adapters.GrammarFinding, error) {
	f.calls++
	return f.findings, f.err
}

type fakeTranscriber struct {
	result *adapters.Transcription
	err    error
	calls  int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioURL string) (*adapters.Transcription, error) {
	f.calls++
	return f.result, f.err
}

func newTestPipeline(t *testing.T, checker adapters.GrammarChecker, transcriber adapters.Transcriber) *Pipeline {
	t.Helper()
	profiles := scoring.NewProfileStore(t.TempDir())
	return New(profiles, checker, transcriber, monitoring.NewLogger(), monitoring.NewMetrics())
}

func TestPipelineScoreTranscript(t *testing.T) {
	checker := &fakeChecker{findings: []adapters.GrammarFinding{
		{Message: "Agreement error", RuleID: "HE_VERB_AGR"},
	}}
	p := newTestPipeline(t, checker, nil)

	report, err := p.Score(context.Background(), Request{
		Transcript:  "Um, he go to school every day and, you know, he likes it there a lot honestly I think.",
		DurationSec: 8.0,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, checker.calls)
	assert.Equal(t, 1, report.Metrics.GrammarErrors)
	assert.Equal(t, 2, report.Metrics.Fillers)
	assert.Nil(t, report.Metrics.WER)
	require.NotNil(t, report.Metrics.WPM)
	assert.Equal(t, 19, report.ASR.WordCount)
	assert.Equal(t, "external", report.ModelVersion)
	assert.GreaterOrEqual(t, report.Metrics.FinalScore, 0.0)
	assert.LessOrEqual(t, report.Metrics.FinalScore, 100.0)
	assert.ElementsMatch(t, []string{"um", "you know"}, report.FillerWords)
	assert.Equal(t, 1, report.ASR.Sentences.SentenceCount)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestPipelineScoreAudioURL(t *testing.T) {
	transcriber := &fakeTranscriber{result: &adapters.Transcription{
		Transcript:   "hello there everyone thanks for joining",
		DurationSec:  3.0,
		Language:     "en",
		ModelVersion: "whisper-small",
	}}
	p := newTestPipeline(t, nil, transcriber)

	report, err := p.Score(context.Background(), Request{
		AudioURL: "https://cdn.example.com/sample.wav",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, transcriber.calls)
	assert.Equal(t, "hello there everyone thanks for joining", report.ASR.Transcript)
	assert.Equal(t, 6, report.ASR.WordCount)
	assert.InDelta(t, 3.0, report.ASR.DurationSec, 1e-9)
	assert.Equal(t, "en", report.ASR.Language)
	assert.Equal(t, "whisper-small", report.ModelVersion)
}

func TestPipelineScoreWithReference(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	report, err := p.Score(context.Background(), Request{
		Transcript:          "the quick brown fox",
		DurationSec:         2.0,
		ReferenceTranscript: "the quick red fox",
	})
	require.NoError(t, err)

	require.NotNil(t, report.Metrics.WER)
	assert.InDelta(t, 0.25, *report.Metrics.WER, 1e-9)
}

func TestPipelineScoreEmptyReferenceIgnored(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	report, err := p.Score(context.Background(), Request{
		Transcript:          "the quick brown fox",
		DurationSec:         2.0,
		ReferenceTranscript: "   ",
	})
	require.NoError(t, err)
	assert.Nil(t, report.Metrics.WER)
}

func TestPipelineScoreMissingInput(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	_, err := p.Score(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcript or audio_url")
}

func TestPipelineScoreAudioWithoutTranscriber(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	_, err := p.Score(context.Background(), Request{AudioURL: "https://cdn.example.com/a.wav"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription provider")
}

func TestPipelineScoreTranscriberFailure(t *testing.T) {
	transcriber := &fakeTranscriber{err: errors.New("connection refused")}
	p := newTestPipeline(t, nil, transcriber)

	_, err := p.Score(context.Background(), Request{AudioURL: "https://cdn.example.com/a.wav"})
	require.Error(t, err)
	assert.Greater(t, transcriber.calls, 1, "transcription should be retried")
}

func TestPipelineScoreCheckerFailureDegrades(t *testing.T) {
	checker := &fakeChecker{err: errors.New("languagetool down")}
	p := newTestPipeline(t, checker, nil)

	report, err := p.Score(context.Background(), Request{
		Transcript:  "a perfectly fine sentence with no issues at all",
		DurationSec: 4.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Metrics.GrammarErrors)
	assert.Empty(t, report.GrammarDetails)
}

func TestPipelineScoreUnknownProfile(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	_, err := p.Score(context.Background(), Request{
		Transcript:  "hello there",
		DurationSec: 1.0,
		Profile:     "does-not-exist",
	})
	require.Error(t, err)
}
