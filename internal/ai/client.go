package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	pkglog "morning/internal/log"
)

// Completer is the part of *openai.Client the adapter depends on.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CompleterFactory builds a Completer bound to one credential.
type CompleterFactory func(credential string) Completer

type Config struct {
	BaseURL   string
	Model     string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// Client talks to the chat-completion service. Each call makes exactly one
// request; there is no retry.
type Client struct {
	newCompleter CompleterFactory
	model        string
	timeout      time.Duration
	limiter      *rate.Limiter
}

// NewClient creates a Client backed by go-openai.
func NewClient(cfg Config) *Client {
	factory := func(credential string) Completer {
		oc := openai.DefaultConfig(credential)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		return openai.NewClientWithConfig(oc)
	}
	return NewClientWithFactory(cfg, factory)
}

// NewClientWithFactory creates a Client with a custom Completer factory.
func NewClientWithFactory(cfg Config, factory CompleterFactory) *Client {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		newCompleter: factory,
		model:        model,
		timeout:      cfg.Timeout,
		limiter:      limiter,
	}
}

// complete sends one chat completion and returns the first choice's message
// content. Every error is a *Failure.
func (c *Client) complete(ctx context.Context, credential string, req openai.ChatCompletionRequest) (string, error) {
	logger := pkglog.Ctx(ctx).With().Str(pkglog.FieldComponent, "ai").Logger()

	if credential == "" {
		return "", &Failure{Reason: ReasonNoCredential}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Warn().Err(err).Msg("AI call rejected by rate limiter")
			return "", &Failure{Reason: ReasonRateLimited, Err: err}
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req.Model = c.model
	start := time.Now()
	resp, err := c.newCompleter(credential).CreateChatCompletion(ctx, req)
	if err != nil {
		f := classify(err)
		logger.Warn().Err(err).Str("reason", string(f.Reason)).Int("http_status", f.Status).Msg("AI call failed")
		return "", f
	}

	logger.Debug().
		Dur("duration", time.Since(start)).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Int("choices", len(resp.Choices)).
		Msg("AI response received")

	if len(resp.Choices) == 0 {
		return "", &Failure{Reason: ReasonNoContent, Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps a go-openai error onto a failure reason.
func classify(err error) *Failure {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &Failure{Reason: ReasonStatus, Status: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		if reqErr.HTTPStatusCode < http.StatusOK || reqErr.HTTPStatusCode >= http.StatusMultipleChoices {
			return &Failure{Reason: ReasonStatus, Status: reqErr.HTTPStatusCode, Err: err}
		}
		return &Failure{Reason: ReasonMalformed, Status: reqErr.HTTPStatusCode, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Failure{Reason: ReasonMalformed, Err: err}
	}

	return &Failure{Reason: ReasonTransport, Err: err}
}

// FailureReason names why an AI call produced no usable result.
type FailureReason string

const (
	ReasonNoCredential FailureReason = "no_credential"
	ReasonRateLimited  FailureReason = "rate_limited"
	ReasonTransport    FailureReason = "transport"
	ReasonStatus       FailureReason = "status"
	ReasonMalformed    FailureReason = "malformed"
	ReasonNoContent    FailureReason = "no_content"
	ReasonIncomplete   FailureReason = "incomplete"
)

// Failure is the error type returned for every unsuccessful AI call.
type Failure struct {
	Reason FailureReason
	Status int // HTTP status when the service answered with one
	Err    error
}

func (f *Failure) Error() string {
	switch {
	case f.Status != 0 && f.Err != nil:
		return fmt.Sprintf("ai %s (%d): %v", f.Reason, f.Status, f.Err)
	case f.Err != nil:
		return fmt.Sprintf("ai %s: %v", f.Reason, f.Err)
	default:
		return fmt.Sprintf("ai %s", f.Reason)
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}
