package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	pkglog "morning/internal/log"
)

const googleScope = "https://www.googleapis.com/auth/cloud-platform"

// GoogleProvider implements STT using Google Cloud Speech-to-Text REST API
type GoogleProvider struct {
	projectID  string
	apiKey     string
	language   string
	endpoint   string
	httpClient *http.Client
}

// NewGoogleProvider creates a new Google STT provider
// keyData can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON key file (e.g., "./keys/google-service-account.json")
//   - A JSON string containing the service account credentials
func NewGoogleProvider(projectID, keyData, language string) (*GoogleProvider, error) {
	keyData = strings.TrimSpace(keyData)
	if language == "" {
		language = "en-US"
	}

	p := &GoogleProvider{
		projectID: projectID,
		language:  language,
		endpoint:  "https://speech.googleapis.com/v1",
	}

	if isGoogleAPIKey(keyData) {
		p.apiKey = keyData
		p.httpClient = &http.Client{Timeout: 90 * time.Second}
		return p, nil
	}

	ctx := context.Background()
	var creds *google.Credentials
	var err error

	switch {
	case keyData == "":
		creds, err = google.FindDefaultCredentials(ctx, googleScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w. Please set GOOGLE_STT_KEY_FILE", err)
		}
	default:
		jsonData := []byte(keyData)
		if !strings.HasPrefix(keyData, "{") {
			jsonData, err = os.ReadFile(keyData)
			if err != nil {
				return nil, fmt.Errorf("failed to read key file '%s': %w", keyData, err)
			}
		}
		creds, err = google.CredentialsFromJSON(ctx, jsonData, googleScope)
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
	}

	p.httpClient = oauth2.NewClient(ctx, creds.TokenSource)
	p.httpClient.Timeout = 90 * time.Second
	return p, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

type googleRequest struct {
	Config googleConfig `json:"config"`
	Audio  googleAudio  `json:"audio"`
}

type googleConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	Model                      string `json:"model,omitempty"`
}

type googleAudio struct {
	Content string `json:"content"` // Base64 encoded
}

type googleResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
	Error *googleError `json:"error,omitempty"`
}

type googleError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Transcribe transcribes an audio segment with Google Cloud Speech-to-Text
func (p *GoogleProvider) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	logger := pkglog.Ctx(ctx).With().Str(pkglog.FieldComponent, "stt.google").Logger()

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if len(audioBytes) < minAudioBytes {
		return nil, fmt.Errorf("audio file too small (%d bytes), may be empty or corrupted", len(audioBytes))
	}

	encoding, sampleRate := googleAudioConfig(filepath.Ext(audioPath))
	reqJSON, err := json.Marshal(googleRequest{
		Config: googleConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               p.language,
			EnableAutomaticPunctuation: true,
			Model:                      "latest_short",
		},
		Audio: googleAudio{Content: base64.StdEncoding.EncodeToString(audioBytes)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := p.endpoint + "/speech:recognize"
	if p.apiKey != "" {
		apiURL += "?key=" + url.QueryEscape(p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey == "" && p.projectID != "" {
		// Bill the service account's project.
		req.Header.Set("X-Goog-User-Project", p.projectID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Google Speech-to-Text: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	result := &Result{Provider: p.Name(), RawResponse: string(body)}

	var sttResp googleResponse
	parseErr := json.Unmarshal(body, &sttResp)

	if resp.StatusCode != http.StatusOK {
		logger.Warn().Int("status", resp.StatusCode).Str("body", pkglog.Truncate(string(body), 500)).Msg("Google STT API error")
		if parseErr == nil && sttResp.Error != nil {
			return result, fmt.Errorf("Google Speech-to-Text API error: %s", sttResp.Error.Message)
		}
		return result, fmt.Errorf("Google Speech-to-Text API returned status %d", resp.StatusCode)
	}
	if parseErr != nil {
		return result, fmt.Errorf("failed to parse Google Speech-to-Text response: %w", parseErr)
	}
	if sttResp.Error != nil {
		return result, fmt.Errorf("Google Speech-to-Text API error: %s", sttResp.Error.Message)
	}
	if len(sttResp.Results) == 0 || len(sttResp.Results[0].Alternatives) == 0 {
		return result, fmt.Errorf("no speech detected in audio")
	}

	alternative := sttResp.Results[0].Alternatives[0]
	result.Transcript = strings.TrimSpace(alternative.Transcript)
	result.Confidence = alternative.Confidence
	if result.Transcript == "" {
		return result, fmt.Errorf("empty transcript returned")
	}
	return result, nil
}

// googleAudioConfig determines encoding and sample rate from the file extension
func googleAudioConfig(fileExt string) (string, int) {
	switch strings.ToLower(fileExt) {
	case ".mp3":
		return "MP3", 44100
	case ".ogg", ".opus":
		return "OGG_OPUS", 48000
	case ".webm":
		return "WEBM_OPUS", 48000
	case ".flac":
		return "FLAC", 44100
	default:
		return "LINEAR16", 16000
	}
}
