package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkglog "morning/internal/log"
	"morning/internal/presence"
	"morning/internal/session"
	"morning/internal/store"
	"morning/internal/utils"
)

// createSession handles POST /api/v1/sessions
func (h *Handler) createSession(c *gin.Context) {
	s := h.Sessions.Create()
	c.Set(pkglog.FieldSessionID, s.ID)
	c.Header(HeaderSessionID, s.ID)
	h.onSessionCreated(c, s)

	c.Set(sessionKey, s)
	h.currentSession(c)
}

// endSession handles DELETE /api/v1/sessions/current
func (h *Handler) endSession(c *gin.Context) {
	s, ok := h.Sessions.Get(sessionID(c))
	if !ok {
		utils.Error(c, http.StatusNotFound, "session not found")
		return
	}
	c.Set(pkglog.FieldSessionID, s.ID)

	h.announce(c, s, presence.StatusLeftLounge)
	h.Sessions.Remove(s.ID)

	logger := pkglog.Ctx(c.Request.Context())
	logger.Info().Str(pkglog.FieldSessionID, s.ID).Msg("session ended")

	utils.Success(c, gin.H{
		"session_id": s.ID,
		"removed":    true,
	})
}

// currentSession handles GET /api/v1/sessions/current
func (h *Handler) currentSession(c *gin.Context) {
	s := current(c)
	ctx := c.Request.Context()
	logger := pkglog.Ctx(ctx)

	theme, err := h.Prefs.Theme(ctx, s.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load theme")
	}
	profile, err := h.Prefs.Profile(ctx, s.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load profile")
	}

	utils.Success(c, gin.H{
		"session_id":     s.ID,
		"created_at":     s.CreatedAt,
		"theme":          theme,
		"profile":        profile,
		"meeting_status": s.MeetingStatus(),
		"listen":         s.Listener.Snapshot(),
		"transcript":     s.Transcript.Lines(),
		"feed":           s.Feed.Messages(),
		"agent_active":   s.AgentActive(),
	})
}

// getProfile handles GET /api/v1/profile
func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.Prefs.Profile(c.Request.Context(), current(c).ID)
	if err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to load profile")
		utils.Error(c, http.StatusInternalServerError, "failed to load profile")
		return
	}
	utils.Success(c, gin.H{"profile": profile})
}

// saveProfile handles PUT /api/v1/profile
func (h *Handler) saveProfile(c *gin.Context) {
	var body store.Profile
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	saved, err := h.Prefs.SaveProfile(c.Request.Context(), current(c).ID, body)
	if err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Error().Err(err).Msg("failed to save profile")
		utils.Error(c, http.StatusInternalServerError, "failed to save profile")
		return
	}
	utils.Success(c, gin.H{"profile": saved})
}

// getTheme handles GET /api/v1/theme
func (h *Handler) getTheme(c *gin.Context) {
	theme, err := h.Prefs.Theme(c.Request.Context(), current(c).ID)
	if err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Warn().Err(err).Msg("failed to load theme")
	}
	utils.Success(c, gin.H{"theme": theme})
}

type themeRequest struct {
	Theme  string `json:"theme"`
	Toggle bool   `json:"toggle"`
}

// setTheme handles PUT /api/v1/theme. Either sets a theme or toggles the
// current one.
func (h *Handler) setTheme(c *gin.Context) {
	var body themeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	s := current(c)

	var theme store.Theme
	if body.Toggle {
		cur, _ := h.Prefs.Theme(ctx, s.ID)
		theme = cur.Toggle()
	} else {
		t, err := store.ParseTheme(body.Theme)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		theme = t
	}

	if err := h.Prefs.SetTheme(ctx, s.ID, theme); err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Msg("failed to save theme")
		utils.Error(c, http.StatusInternalServerError, "failed to save theme")
		return
	}
	utils.Success(c, gin.H{"theme": theme})
}

func feedResponse(s *session.Session) gin.H {
	return gin.H{"messages": s.Feed.Messages()}
}
