package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	pkglog "morning/internal/log"
	"morning/internal/room"
)

const (
	defaultAIReason = "AI selected this room based on your context."
	defaultAIOpener = "Start by asking what outcome would make this call a win."
)

// MatchOutcome is the result of one AI match attempt. Exactly one of Result
// (when OK) or Failure is meaningful.
type MatchOutcome struct {
	OK      bool
	Result  room.MatchResult
	Failure *Failure
}

// roomChoice is the JSON object the model is asked to produce.
type roomChoice struct {
	RoomName string `json:"roomName"`
	RoomSlug string `json:"roomSlug"`
	Reason   string `json:"reason"`
	Opener   string `json:"opener"`
}

// MatchRoom asks the completion service to pick a room. It never returns an
// error; every failure is reported in the outcome.
func (c *Client) MatchRoom(ctx context.Context, req room.MatchRequest) (out MatchOutcome) {
	logger := pkglog.Ctx(ctx).With().Str(pkglog.FieldComponent, "ai.match").Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("AI match aborted")
			out = failed(&Failure{Reason: ReasonTransport, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	systemPrompt, userPrompt := BuildMatchPrompt(req.Vibe, req.Goal, req.Transcript)
	content, err := c.complete(ctx, req.Credential, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			return failed(f)
		}
		return failed(&Failure{Reason: ReasonTransport, Err: err})
	}

	result, f := parseRoomChoice(content)
	if f != nil {
		logger.Warn().Str("reason", string(f.Reason)).Str("content", pkglog.Truncate(content, 200)).Msg("AI room choice rejected")
		return failed(f)
	}

	logger.Info().Str("room", result.RoomName).Str("slug", result.RoomSlug).Msg("AI matched room")
	return MatchOutcome{OK: true, Result: result}
}

// parseRoomChoice validates the model's message content and builds a result
// with a sanitized slug and defaulted optional fields.
func parseRoomChoice(content string) (room.MatchResult, *Failure) {
	if strings.TrimSpace(content) == "" {
		return room.MatchResult{}, &Failure{Reason: ReasonNoContent, Err: errors.New("empty message content")}
	}

	var choice roomChoice
	if err := json.Unmarshal([]byte(content), &choice); err != nil {
		if err2 := json.Unmarshal([]byte(extractJSONFromMarkdown(content)), &choice); err2 != nil {
			return room.MatchResult{}, &Failure{Reason: ReasonMalformed, Err: err}
		}
	}

	if choice.RoomName == "" || choice.RoomSlug == "" {
		return room.MatchResult{}, &Failure{Reason: ReasonIncomplete, Err: errors.New("roomName and roomSlug are required")}
	}

	result := room.MatchResult{
		RoomName: choice.RoomName,
		RoomSlug: room.SanitizeSlug(choice.RoomSlug),
		Reason:   choice.Reason,
		Opener:   choice.Opener,
	}
	if result.Reason == "" {
		result.Reason = defaultAIReason
	}
	if result.Opener == "" {
		result.Opener = defaultAIOpener
	}
	return result, nil
}

func failed(f *Failure) MatchOutcome {
	return MatchOutcome{Failure: f}
}
