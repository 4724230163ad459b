package stt

import (
	"fmt"
	"strings"

	pkglog "morning/internal/log"
)

type ProviderConfig struct {
	Name               string // "fpt", "google" or empty for none
	Language           string
	FPTApiKey          string
	FPTSTTURL          string
	GoogleSTTProjectID string
	GoogleSTTKeyFile   string
}

// CreateProvider creates an STT provider from configuration. An empty name
// yields a nil provider: live transcription is then unsupported.
func CreateProvider(cfg ProviderConfig) (Provider, error) {
	logger := pkglog.Component("stt.factory")

	switch strings.ToLower(cfg.Name) {
	case "":
		logger.Info().Msg("STT_PROVIDER not set, live transcription disabled")
		return nil, nil
	case "fpt":
		return createFPTProvider(cfg)
	case "google":
		return createGoogleProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported STT provider: %s. Supported: fpt, google", cfg.Name)
	}
}

func createFPTProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.FPTApiKey == "" {
		return nil, fmt.Errorf("FPT_AI_API_KEY environment variable is not set")
	}

	url := cfg.FPTSTTURL
	if url == "" {
		url = "https://api.fpt.ai/hmi/asr/v1"
		logger := pkglog.Component("stt.factory")
		logger.Info().Str("url", url).Msg("FPT_AI_STT_URL not set, using default")
	}

	return NewFPTProvider(cfg.FPTApiKey, url), nil
}

// createGoogleProvider creates a Google STT provider
// GOOGLE_STT_KEY_FILE can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON key file (e.g., "./keys/google-service-account.json")
//   - A JSON string containing the service account credentials
func createGoogleProvider(cfg ProviderConfig) (Provider, error) {
	keyData := strings.TrimSpace(cfg.GoogleSTTKeyFile)

	if !isGoogleAPIKey(keyData) && cfg.GoogleSTTProjectID == "" {
		return nil, fmt.Errorf("GOOGLE_STT_PROJECT_ID environment variable is required when using service account")
	}
	if keyData == "" {
		return nil, fmt.Errorf("GOOGLE_STT_KEY_FILE environment variable is not set. It can be:\n  - An API key (39 characters)\n  - A file path to a JSON key file\n  - A JSON string containing service account credentials")
	}

	p, err := NewGoogleProvider(cfg.GoogleSTTProjectID, keyData, cfg.Language)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func isGoogleAPIKey(s string) bool {
	return len(s) == 39 && strings.HasPrefix(s, "AIzaSy")
}
