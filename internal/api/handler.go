package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	pkglog "morning/internal/log"
	"morning/internal/meeting"
	"morning/internal/presence"
	"morning/internal/session"
	"morning/internal/storage"
	"morning/internal/store"
	"morning/internal/utils"
)

const (
	HeaderSessionID  = "X-Session-ID"
	HeaderOpenAIKey  = "X-OpenAI-Key"
	querySessionID   = "session_id"
	sessionKey       = "morning.session"
	maxUploadMemory  = 32 << 20
	wsWriteWait      = 10 * time.Second
	wsPingInterval   = 30 * time.Second
	wsMaxMessageSize = 4096
)

// Deps are the services behind the HTTP API.
type Deps struct {
	Sessions *session.Manager
	Launcher *meeting.Launcher
	Agent    session.Answerer
	Prefs    *store.Preferences
	Presence presence.Channel
	Audio    *storage.AudioStore

	// DefaultCredential is used for AI calls when the request carries none.
	DefaultCredential string
}

type Handler struct {
	Deps
	upgrader websocket.Upgrader
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		Deps: d,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// Health check
	r.GET("/health", healthCheck)

	// API v1
	v1 := r.Group("/api/v1")
	v1.POST("/sessions", h.createSession)
	v1.DELETE("/sessions/current", h.endSession)

	s := v1.Group("", h.withSession)
	{
		s.GET("/sessions/current", h.currentSession)

		s.POST("/meeting/launch", h.launchMeeting)
		s.GET("/profile", h.getProfile)
		s.PUT("/profile", h.saveProfile)
		s.GET("/theme", h.getTheme)
		s.PUT("/theme", h.setTheme)

		s.POST("/listen/start", h.startListening)
		s.POST("/listen/stop", h.stopListening)
		s.POST("/listen/audio", h.uploadAudio)

		s.GET("/transcript", h.getTranscript)
		s.POST("/transcript", h.addTranscriptLine)
		s.DELETE("/transcript", h.clearTranscript)

		s.POST("/agent/ask", h.askAgent)
		s.GET("/agent/feed", h.agentFeed)

		s.POST("/presence", h.postPresence)
		s.GET("/presence/ws", h.presenceFeed)
	}
}

// healthCheck returns server health status
func healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "morning",
	})
}

// withSession resolves the caller's session from the X-Session-ID header (or
// the session_id query parameter, for websockets) and creates one when it is
// missing or unknown.
func (h *Handler) withSession(c *gin.Context) {
	s, created := h.Sessions.GetOrCreate(sessionID(c))
	if created {
		h.onSessionCreated(c, s)
	}

	c.Set(sessionKey, s)
	c.Set(pkglog.FieldSessionID, s.ID)
	c.Header(HeaderSessionID, s.ID)
	c.Next()
}

func sessionID(c *gin.Context) string {
	if id := c.GetHeader(HeaderSessionID); id != "" {
		return id
	}
	return c.Query(querySessionID)
}

func (h *Handler) onSessionCreated(c *gin.Context, s *session.Session) {
	ctx := c.Request.Context()
	logger := pkglog.Ctx(ctx)
	logger.Info().Str(pkglog.FieldSessionID, s.ID).Msg("session started")
	h.announce(c, s, presence.StatusJoinedLounge)
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// credential picks the AI key: request body, then header, then server default.
func (h *Handler) credential(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if k := c.GetHeader(HeaderOpenAIKey); k != "" {
		return k
	}
	return h.DefaultCredential
}
