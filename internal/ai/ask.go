package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	pkglog "morning/internal/log"
)

const (
	askWindow      = 8
	askTemperature = 0.7
	noAnswer       = "No response returned by AI service."
)

// Ask forwards a free-text question plus the trailing transcript window to the
// completion service and returns the trimmed reply. A reply without content
// is a notice, not an error. Errors are *Failure.
func (c *Client) Ask(ctx context.Context, credential, question string, lines []string) (string, error) {
	logger := pkglog.Ctx(ctx).With().Str(pkglog.FieldComponent, "ai.ask").Logger()

	if len(lines) > askWindow {
		lines = lines[len(lines)-askWindow:]
	}

	systemPrompt, userPrompt := BuildAskPrompt(question, lines)
	logger.Debug().Int("question_len", len(question)).Int("transcript_lines", len(lines)).Msg("asking AI")

	content, err := c.complete(ctx, credential, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: askTemperature,
	})
	var f *Failure
	if errors.As(err, &f) && f.Reason == ReasonNoContent {
		return noAnswer, nil
	}
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(content)
	if answer == "" {
		return noAnswer, nil
	}
	return answer, nil
}
