package suggest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"morning/internal/ai"
	pkglog "morning/internal/log"
)

// Source tells how a reply was produced.
type Source string

const (
	SourceAI      Source = "ai"
	SourceAIError Source = "ai_error"
	SourceLocal   Source = "local"
)

// Asker is implemented by *ai.Client.
type Asker interface {
	Ask(ctx context.Context, credential, question string, lines []string) (string, error)
}

// Reply is the agent's answer to a question.
type Reply struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Engine answers free-text questions with the AI when a credential is
// present and with local templates otherwise.
type Engine struct {
	asker Asker
	pick  func(n int) int
}

func NewEngine(asker Asker) *Engine {
	return &Engine{asker: asker, pick: rand.IntN}
}

// WithPicker replaces the random template picker.
func (e *Engine) WithPicker(pick func(n int) int) *Engine {
	e.pick = pick
	return e
}

// Answer never fails. AI failures come back as the reply text.
func (e *Engine) Answer(ctx context.Context, credential, question string, lines []string) Reply {
	if credential == "" || e.asker == nil {
		return Reply{Text: LocalSuggestion(lines, e.pick), Source: SourceLocal}
	}

	answer, err := e.asker.Ask(ctx, credential, question, lines)
	if err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Warn().Err(err).Str(pkglog.FieldComponent, "suggest").Msg("AI answer failed")
		return Reply{Text: failureText(err), Source: SourceAIError}
	}
	return Reply{Text: answer, Source: SourceAI}
}

func failureText(err error) string {
	var f *ai.Failure
	if errors.As(err, &f) {
		if f.Status != 0 {
			return fmt.Sprintf("OpenAI request failed (%d). Using local suggestions only.", f.Status)
		}
		if f.Err != nil {
			return fmt.Sprintf("Could not reach OpenAI (%v). Using local suggestions only.", f.Err)
		}
		return fmt.Sprintf("Could not reach OpenAI (%s). Using local suggestions only.", f.Reason)
	}
	return fmt.Sprintf("Could not reach OpenAI (%v). Using local suggestions only.", err)
}
