package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhisperAdapterTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/transcribe", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://cdn.example.com/sample.wav", req["audio_url"])
		assert.Equal(t, "base", req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Transcription{
			Transcript:   "hello there everyone",
			WordCount:    3,
			DurationSec:  2.4,
			Language:     "en",
			ModelVersion: "whisper-base-v3",
		})
	}))
	defer server.Close()

	adapter := NewWhisperAdapter(server.URL, "base")
	defer adapter.Close()

	tr, err := adapter.Transcribe(context.Background(), "https://cdn.example.com/sample.wav")
	require.NoError(t, err)
	assert.Equal(t, "hello there everyone", tr.Transcript)
	assert.Equal(t, 3, tr.WordCount)
	assert.InDelta(t, 2.4, tr.DurationSec, 1e-9)
	assert.Equal(t, "en", tr.Language)
	assert.Equal(t, "whisper-base-v3", tr.ModelVersion)
}

func TestWhisperAdapterDefaultsModelVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Transcription{Transcript: "hi", WordCount: 1, DurationSec: 0.5})
	}))
	defer server.Close()

	adapter := NewWhisperAdapter(server.URL, "")
	defer adapter.Close()

	tr, err := adapter.Transcribe(context.Background(), "https://cdn.example.com/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "whisper-small", tr.ModelVersion)
}

func TestWhisperAdapterServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewWhisperAdapter(server.URL, "small")
	defer adapter.Close()

	_, err := adapter.Transcribe(context.Background(), "https://cdn.example.com/a.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
