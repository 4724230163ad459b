package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	pkglog "morning/internal/log"
	"morning/internal/presence"
	"morning/internal/session"
	"morning/internal/utils"
)

type presenceRequest struct {
	Status string `json:"status"`
}

// postPresence handles POST /api/v1/presence
func (h *Handler) postPresence(c *gin.Context) {
	var body presenceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	status := strings.TrimSpace(body.Status)
	if status == "" {
		utils.Error(c, http.StatusBadRequest, "status is required")
		return
	}

	p := h.announce(c, current(c), status)
	utils.Success(c, gin.H{"packet": p})
}

// announce publishes a presence packet under the session's saved display
// name. Delivery is best effort; failures are only logged.
func (h *Handler) announce(c *gin.Context, s *session.Session, status string) presence.Packet {
	ctx := c.Request.Context()
	logger := pkglog.Ctx(ctx)

	profile, err := h.Prefs.Profile(ctx, s.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load profile for presence")
	}

	p := presence.Announce(s.ID, profile.DisplayName, status)
	if h.Presence != nil {
		if err := h.Presence.Publish(ctx, p); err != nil {
			logger.Warn().Err(err).Msg("failed to publish presence")
		}
	}
	return p
}

// presenceFeed handles GET /api/v1/presence/ws. It streams other sessions'
// presence packets as JSON text frames.
func (h *Handler) presenceFeed(c *gin.Context) {
	s := current(c)
	logger := pkglog.Ctx(c.Request.Context()).With().Str(pkglog.FieldSessionID, s.ID).Logger()

	if h.Presence == nil {
		utils.Error(c, http.StatusServiceUnavailable, "presence is not available")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	packets, err := h.Presence.Subscribe(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("presence subscribe failed")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "presence unavailable"),
			time.Now().Add(wsWriteWait))
		return
	}

	// The client only listens; reading detects when it goes away.
	go func() {
		defer cancel()
		conn.SetReadLimit(wsMaxMessageSize)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug().Err(err).Msg("WebSocket error")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-packets:
			if !ok {
				return
			}
			if p.Origin == s.ID {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
