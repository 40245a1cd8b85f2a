package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Transcription is the ASR collaborator's output for one audio sample.
type Transcription struct {
	Transcript   string  `json:"transcript"`
	WordCount    int     `json:"word_count"`
	DurationSec  float64 `json:"duration_sec"`
	Language     string  `json:"language"`
	ModelVersion string  `json:"model_version"`
}

// Transcriber converts an audio sample into a transcript with metadata.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (*Transcription, error)
}

// WhisperAdapter talks to a faster-whisper transcription server.
type WhisperAdapter struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewWhisperAdapter creates an ASR client for the given transcription
// server base URL. model selects the Whisper model size (tiny..large).
func NewWhisperAdapter(baseURL, model string) *WhisperAdapter {
	if model == "" {
		model = "small"
	}
	return &WhisperAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        5,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

// Transcribe asks the ASR server to fetch and transcribe the audio at
// audioURL. Transcription is the slow leg of the pipeline, so callers
// should pass a context with their own deadline.
func (w *WhisperAdapter) Transcribe(ctx context.Context, audioURL string) (*Transcription, error) {
	payload, err := json.Marshal(map[string]string{
		"audio_url": audioURL,
		"model":     w.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.baseURL+"/v1/transcribe", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var t Transcription
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}
	if t.ModelVersion == "" {
		t.ModelVersion = "whisper-" + w.model
	}
	return &t, nil
}

// Close releases idle connections held by the client.
func (w *WhisperAdapter) Close() {
	w.client.CloseIdleConnections()
}
