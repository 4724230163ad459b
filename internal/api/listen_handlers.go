package api

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	pkglog "morning/internal/log"
	"morning/internal/storage"
	"morning/internal/stt"
	"morning/internal/utils"
)

// startListening handles POST /api/v1/listen/start
func (h *Handler) startListening(c *gin.Context) {
	s := current(c)
	err := s.Listener.Start(c.Request.Context())
	switch {
	case errors.Is(err, stt.ErrUnsupported):
		utils.Error(c, http.StatusNotImplemented, stt.StatusUnsupported)
		return
	case err != nil:
		logger := pkglog.Ctx(c.Request.Context())
		logger.Warn().Err(err).Msg("failed to start listening")
		utils.Error(c, http.StatusBadGateway, s.Listener.Snapshot().Status)
		return
	}
	utils.Success(c, gin.H{"listen": s.Listener.Snapshot()})
}

// stopListening handles POST /api/v1/listen/stop
func (h *Handler) stopListening(c *gin.Context) {
	s := current(c)
	if err := s.Listener.Stop(); err != nil {
		logger := pkglog.Ctx(c.Request.Context())
		logger.Warn().Err(err).Msg("failed to stop listening")
	}
	utils.Success(c, gin.H{"listen": s.Listener.Snapshot()})
}

// uploadAudio handles POST /api/v1/listen/audio. The segment is queued for
// transcription; results arrive in the transcript.
func (h *Handler) uploadAudio(c *gin.Context) {
	s := current(c)
	logger := pkglog.Ctx(c.Request.Context())

	if c.Request.MultipartForm == nil {
		if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
			utils.Error(c, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
			return
		}
	}

	file, err := c.FormFile("audio")
	if err != nil {
		if file, err = c.FormFile("file"); err != nil {
			utils.Error(c, http.StatusBadRequest, "audio is required")
			return
		}
	}

	path, err := h.Audio.SaveSegment(s.ID, file)
	if errors.Is(err, storage.ErrUnsupportedFormat) || errors.Is(err, storage.ErrTooLarge) {
		utils.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("error saving audio")
		utils.Error(c, http.StatusInternalServerError, "failed to save audio file")
		return
	}

	if err := s.FeedAudio(path); err != nil {
		_ = os.Remove(path)
		switch {
		case errors.Is(err, stt.ErrUnsupported):
			utils.Error(c, http.StatusNotImplemented, stt.StatusUnsupported)
		case errors.Is(err, stt.ErrStreamNotRunning):
			utils.Error(c, http.StatusConflict, "not listening")
		case errors.Is(err, stt.ErrBacklogFull):
			utils.Error(c, http.StatusTooManyRequests, err.Error())
		default:
			logger.Error().Err(err).Msg("failed to queue audio")
			utils.Error(c, http.StatusInternalServerError, "failed to queue audio")
		}
		return
	}

	utils.Accepted(c, gin.H{"status": "queued", "listen": s.Listener.Snapshot()})
}

// getTranscript handles GET /api/v1/transcript
func (h *Handler) getTranscript(c *gin.Context) {
	s := current(c)
	snap := s.Listener.Snapshot()
	utils.Success(c, gin.H{
		"lines":   s.Transcript.Lines(),
		"interim": snap.Interim,
		"status":  snap.Status,
	})
}

type lineRequest struct {
	Text string `json:"text"`
}

// addTranscriptLine handles POST /api/v1/transcript for clients that run
// speech recognition themselves and post finalized lines.
func (h *Handler) addTranscriptLine(c *gin.Context) {
	var body lineRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		utils.Error(c, http.StatusBadRequest, "text is required")
		return
	}

	s := current(c)
	s.AddFinalLine(body.Text)
	utils.Success(c, gin.H{
		"lines": s.Transcript.Lines(),
		"feed":  s.Feed.Messages(),
	})
}

// clearTranscript handles DELETE /api/v1/transcript
func (h *Handler) clearTranscript(c *gin.Context) {
	s := current(c)
	s.ClearTranscript()
	utils.Success(c, gin.H{
		"lines":  []string{},
		"status": s.Listener.Snapshot().Status,
	})
}
