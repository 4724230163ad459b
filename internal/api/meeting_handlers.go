package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	pkglog "morning/internal/log"
	"morning/internal/meeting"
	"morning/internal/session"
	"morning/internal/store"
	"morning/internal/utils"
)

type launchRequest struct {
	DisplayName string `json:"displayName"`
	Vibe        string `json:"vibe"`
	Goal        string `json:"goal"`
	MeetingURL  string `json:"meetingUrl"`
	APIKey      string `json:"apiKey"`
}

// launchMeeting handles POST /api/v1/meeting/launch
func (h *Handler) launchMeeting(c *gin.Context) {
	var body launchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	s := current(c)
	logger := pkglog.Ctx(ctx)

	launch, err := h.Launcher.Launch(ctx, meeting.LaunchRequest{
		DisplayName: body.DisplayName,
		Vibe:        body.Vibe,
		Goal:        body.Goal,
		CustomURL:   body.MeetingURL,
		Credential:  h.credential(c, body.APIKey),
	}, s.Transcript.Lines())
	if errors.Is(err, meeting.ErrMissingFields) {
		s.SetMeetingStatus(meeting.MissingFieldsMessage)
		utils.Error(c, http.StatusBadRequest, meeting.MissingFieldsMessage)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("launch failed")
		utils.Error(c, http.StatusInternalServerError, "failed to launch meeting")
		return
	}

	// The join form doubles as the saved profile: meetingId holds the vibe and
	// meetingPasscode the goal.
	profile, err := h.Prefs.SaveProfile(ctx, s.ID, store.Profile{
		DisplayName:     body.DisplayName,
		MeetingID:       body.Vibe,
		MeetingPasscode: body.Goal,
		MeetingURL:      body.MeetingURL,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to save profile after launch")
	}

	s.SetMeetingStatus(launch.Status)
	s.Feed.Push(session.AuthorAgent, launch.Message)
	h.announce(c, s, fmt.Sprintf("launched %s.", launch.Match.RoomName))

	logger.Info().
		Str("room", launch.Match.RoomSlug).
		Str("source", string(launch.Source)).
		Str("fallback", launch.Fallback).
		Msg("meeting launched")

	utils.Success(c, gin.H{
		"launch":  launch,
		"profile": profile,
	})
}
