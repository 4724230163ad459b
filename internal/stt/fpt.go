package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	pkglog "morning/internal/log"
)

// minAudioBytes rejects segments too small to contain speech.
const minAudioBytes = 1000

// FPTProvider implements STT using FPT.AI Speech-to-Text API
type FPTProvider struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewFPTProvider creates a new FPT STT provider
func NewFPTProvider(apiKey, url string) *FPTProvider {
	return &FPTProvider{
		apiKey:     apiKey,
		url:        url,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Name returns the provider name
func (p *FPTProvider) Name() string {
	return "fpt"
}

// FPTSTTResponse represents FPT.AI STT API response
type FPTSTTResponse struct {
	Hypotheses []struct {
		Utterance  string  `json:"utterance"`
		Confidence float64 `json:"confidence"`
	} `json:"hypotheses"`
	ErrorCode int    `json:"errorCode,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Transcribe sends an audio segment to FPT.AI and returns its transcript
func (p *FPTProvider) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	logger := pkglog.Ctx(ctx).With().Str(pkglog.FieldComponent, "stt.fpt").Logger()
	startTime := time.Now()

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if len(audioBytes) < minAudioBytes {
		return nil, fmt.Errorf("audio file too small (%d bytes), may be empty or corrupted", len(audioBytes))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(audioBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", p.apiKey)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to FPT.AI: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	result := &Result{Provider: p.Name(), RawResponse: string(body)}

	if resp.StatusCode != http.StatusOK {
		logger.Warn().Int("status", resp.StatusCode).Str("body", pkglog.Truncate(string(body), 500)).Msg("FPT.AI API error")
		return result, fmt.Errorf("FPT.AI API returned status %d: %s", resp.StatusCode, pkglog.Truncate(string(body), 200))
	}

	var sttResp FPTSTTResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return result, fmt.Errorf("failed to parse FPT.AI response: %w", err)
	}
	if sttResp.ErrorCode != 0 {
		return result, fmt.Errorf("FPT.AI API error %d: %s", sttResp.ErrorCode, sttResp.Message)
	}
	if len(sttResp.Hypotheses) == 0 {
		return result, fmt.Errorf("no speech detected in audio")
	}

	hyp := sttResp.Hypotheses[0]
	result.Transcript = strings.TrimSpace(hyp.Utterance)
	result.Confidence = hyp.Confidence
	if result.Transcript == "" {
		return result, fmt.Errorf("empty transcript returned")
	}

	logger.Debug().
		Float64("confidence", result.Confidence).
		Int("length", len(result.Transcript)).
		Dur("duration", time.Since(startTime)).
		Msg("transcription successful")
	return result, nil
}
