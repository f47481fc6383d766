// Package analyzer is the client for the external emotion-analysis service.
// The engine treats analysis as opaque input: an emotion label, a confidence
// score, and a suggested gesture for the avatar.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Analysis is the black-box result for one utterance.
type Analysis struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Gesture    string  `json:"gesture"`
}

// Analyzer classifies the emotional tone of an utterance.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}

// HTTPAnalyzer calls the analysis service over HTTP.
type HTTPAnalyzer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPAnalyzer(baseURL string) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Analysis{}, fmt.Errorf("analyzer: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return Analysis{}, fmt.Errorf("analyzer: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyzer: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Analysis{}, fmt.Errorf("analyzer: service returned %d", resp.StatusCode)
	}
	var out Analysis
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Analysis{}, fmt.Errorf("analyzer: decode response: %w", err)
	}
	return out, nil
}
