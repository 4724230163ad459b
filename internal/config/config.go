package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port      string
	LogLevel  string
	LogPretty bool

	// OpenAIKey is the server-wide default credential. Requests that carry
	// their own api_key override it; when both are empty AI features stay off.
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	AITimeout     time.Duration
	AIRateLimit   float64
	AIRateBurst   int

	RedisURL        string
	PresenceChannel string
	MeetingBaseURL  string

	STTProvider        string
	STTLanguage        string
	FPTApiKey          string
	FPTSTTURL          string
	GoogleSTTProjectID string
	GoogleSTTKeyFile   string
	ListenIdleTimeout  time.Duration
	UploadDir          string

	SessionIdleTTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", false),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:     time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 30)) * time.Second,
		AIRateLimit:   getEnvFloat("AI_RATE_LIMIT", 3),
		AIRateBurst:   getEnvInt("AI_RATE_BURST", 5),

		RedisURL:        os.Getenv("REDIS_URL"),
		PresenceChannel: getEnv("PRESENCE_CHANNEL", "morning-presence"),
		MeetingBaseURL:  getEnv("MEETING_BASE_URL", "https://meet.jit.si"),

		STTProvider:        strings.ToLower(os.Getenv("STT_PROVIDER")),
		STTLanguage:        getEnv("STT_LANGUAGE", "en-US"),
		FPTApiKey:          os.Getenv("FPT_AI_API_KEY"),
		FPTSTTURL:          getEnv("FPT_AI_STT_URL", "https://api.fpt.ai/hmi/asr/v1"),
		GoogleSTTProjectID: os.Getenv("GOOGLE_STT_PROJECT_ID"),
		GoogleSTTKeyFile:   os.Getenv("GOOGLE_STT_KEY_FILE"),
		ListenIdleTimeout:  time.Duration(getEnvInt("LISTEN_IDLE_SECONDS", 60)) * time.Second,
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),

		SessionIdleTTL: time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 30)) * time.Minute,
	}

	if cfg.AIRateLimit <= 0 {
		return nil, fmt.Errorf("AI_RATE_LIMIT must be positive, got %v", cfg.AIRateLimit)
	}
	if cfg.AIRateBurst < 1 {
		return nil, fmt.Errorf("AI_RATE_BURST must be at least 1, got %d", cfg.AIRateBurst)
	}
	if cfg.SessionIdleTTL < time.Minute {
		return nil, fmt.Errorf("SESSION_IDLE_MINUTES must be at least 1, got %v", cfg.SessionIdleTTL.Minutes())
	}

	// Speech-to-text is optional; an unknown provider is a configuration
	// mistake rather than a missing capability.
	switch cfg.STTProvider {
	case "", "fpt", "google":
	default:
		return nil, fmt.Errorf("unsupported STT_PROVIDER %q. Supported: fpt, google", cfg.STTProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
