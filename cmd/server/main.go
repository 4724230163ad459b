package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"morning/internal/ai"
	"morning/internal/api"
	"morning/internal/config"
	pkglog "morning/internal/log"
	"morning/internal/match"
	"morning/internal/meeting"
	"morning/internal/presence"
	"morning/internal/room"
	"morning/internal/session"
	"morning/internal/storage"
	"morning/internal/store"
	"morning/internal/stt"
	"morning/internal/suggest"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pkglog.Init(pkglog.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, ServiceName: "morning"})
	logger := pkglog.L()
	if envErr != nil {
		logger.Info().Msg("No .env file found, using environment variables")
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	aiClient := ai.NewClient(ai.Config{
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.OpenAIModel,
		Timeout:   cfg.AITimeout,
		RateLimit: cfg.AIRateLimit,
		RateBurst: cfg.AIRateBurst,
	})
	if cfg.OpenAIKey == "" {
		logger.Info().Msg("OPENAI_API_KEY not set, AI is used only when requests carry a key")
	}

	kv, channel, closeRedis := setupStorage(cfg)
	defer closeRedis()

	provider, err := stt.CreateProvider(stt.ProviderConfig{
		Name:               cfg.STTProvider,
		Language:           cfg.STTLanguage,
		FPTApiKey:          cfg.FPTApiKey,
		FPTSTTURL:          cfg.FPTSTTURL,
		GoogleSTTProjectID: cfg.GoogleSTTProjectID,
		GoogleSTTKeyFile:   cfg.GoogleSTTKeyFile,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create STT provider, live transcription disabled")
		provider = nil
	} else if provider != nil {
		logger.Info().Str("provider", provider.Name()).Msg("STT provider initialized")
	}

	var newStream session.StreamFactory
	if provider != nil {
		idle := cfg.ListenIdleTimeout
		newStream = func() stt.Stream { return stt.NewProviderStream(provider, idle) }
	}

	sessions := session.NewManager(newStream)
	go sessions.RunJanitor(context.Background(), cfg.SessionIdleTTL, time.Minute)

	handler := api.NewHandler(api.Deps{
		Sessions: sessions,
		Launcher: meeting.NewLauncher(
			match.NewSelector(room.DefaultCatalog(), aiClient),
			meeting.NewLinkBuilder(cfg.MeetingBaseURL),
		),
		Agent:             suggest.NewEngine(aiClient),
		Prefs:             store.NewPreferences(kv),
		Presence:          channel,
		Audio:             storage.NewAudioStore(cfg.UploadDir),
		DefaultCredential: cfg.OpenAIKey,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Add CORS middleware for browser clients
	r.Use(corsMiddleware())

	// Register routes
	handler.RegisterRoutes(r)

	logger.Info().Str("port", cfg.Port).Msg("morning backend running")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// setupStorage uses Redis for preferences and presence when REDIS_URL is set
// and falls back to in-process stores otherwise.
func setupStorage(cfg *config.Config) (store.KV, presence.Channel, func()) {
	logger := pkglog.L()

	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, running with in-memory preferences and presence")
		return store.NewMemoryKV(), presence.NewMemoryChannel(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := store.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to redis. Continuing with in-memory storage.")
		return store.NewMemoryKV(), presence.NewMemoryChannel(), func() {}
	}

	logger.Info().Msg("Redis connected")
	return store.NewRedisKV(client, "morning:"), presence.NewRedisChannel(client, cfg.PresenceChannel), closeClient(client)
}

func closeClient(client *redis.Client) func() {
	return func() {
		if err := client.Close(); err != nil {
			logger := pkglog.L()
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}

// corsMiddleware adds CORS headers for browser clients
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Session-ID, X-OpenAI-Key, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Session-ID, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
