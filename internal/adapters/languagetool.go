// Package adapters holds the HTTP clients for the external collaborators:
// the ASR transcription provider and the LanguageTool grammar checker. The
// scoring engine never calls these; the server pipeline does.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GrammarFinding is one grammar issue reported by the checker.
type GrammarFinding struct {
	Message     string   `json:"message"`
	RuleID      string   `json:"rule_id"`
	Context     string   `json:"context"`
	Offset      int      `json:"offset"`
	Length      int      `json:"length"`
	Suggestions []string `json:"suggestions"`
}

// GrammarChecker reports grammar findings for a normalized transcript.
type GrammarChecker interface {
	Check(ctx context.Context, text, language string) ([]GrammarFinding, error)
}

// ltResponse mirrors the LanguageTool /v2/check response shape.
type ltResponse struct {
	Matches []struct {
		Message string `json:"message"`
		Rule    struct {
			ID string `json:"id"`
		} `json:"rule"`
		Context struct {
			Text   string `json:"text"`
			Offset int    `json:"offset"`
			Length int    `json:"length"`
		} `json:"context"`
		Offset       int `json:"offset"`
		Length       int `json:"length"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
	} `json:"matches"`
}

// LanguageToolAdapter checks grammar against a LanguageTool server.
type LanguageToolAdapter struct {
	baseURL string
	client  *http.Client
}

// NewLanguageToolAdapter creates a grammar checker client for the given
// LanguageTool base URL (e.g. http://localhost:8010).
func NewLanguageToolAdapter(baseURL string) *LanguageToolAdapter {
	return &LanguageToolAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// Check submits text to LanguageTool's /v2/check endpoint and maps the
// matches into findings, keeping at most 3 suggestions per finding.
func (a *LanguageToolAdapter) Check(ctx context.Context, text, language string) ([]GrammarFinding, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if language == "" {
		language = "en-US"
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build grammar check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grammar check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("languagetool API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var ltResp ltResponse
	if err := json.NewDecoder(resp.Body).Decode(&ltResp); err != nil {
		return nil, fmt.Errorf("failed to decode grammar check response: %w", err)
	}

	findings := make([]GrammarFinding, 0, len(ltResp.Matches))
	for _, m := range ltResp.Matches {
		f := GrammarFinding{
			Message: m.Message,
			RuleID:  m.Rule.ID,
			Context: m.Context.Text,
			Offset:  m.Offset,
			Length:  m.Length,
		}
		for _, r := range m.Replacements {
			if len(f.Suggestions) == 3 {
				break
			}
			f.Suggestions = append(f.Suggestions, r.Value)
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// Close releases idle connections held by the client.
func (a *LanguageToolAdapter) Close() {
	a.client.CloseIdleConnections()
}
