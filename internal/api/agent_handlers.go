package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"morning/internal/session"
	"morning/internal/utils"
)

type askRequest struct {
	Question string `json:"question"`
	APIKey   string `json:"apiKey"`
}

// askAgent handles POST /api/v1/agent/ask
func (h *Handler) askAgent(c *gin.Context) {
	var body askRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	question := strings.TrimSpace(body.Question)
	if question == "" {
		utils.Error(c, http.StatusBadRequest, "question is required")
		return
	}

	s := current(c)
	reply, err := s.Ask(c.Request.Context(), h.Agent, h.credential(c, body.APIKey), question)
	if errors.Is(err, session.ErrAgentBusy) {
		utils.Error(c, http.StatusConflict, err.Error())
		return
	}

	utils.Success(c, gin.H{
		"reply":    reply,
		"messages": s.Feed.Messages(),
	})
}

// agentFeed handles GET /api/v1/agent/feed
func (h *Handler) agentFeed(c *gin.Context) {
	utils.Success(c, feedResponse(current(c)))
}
