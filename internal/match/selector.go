package match

import (
	"context"

	"morning/internal/ai"
	pkglog "morning/internal/log"
	"morning/internal/room"
)

// Source tells where a selection came from.
type Source string

const (
	SourceAI        Source = "ai"
	SourceHeuristic Source = "heuristic"
)

// AIMatcher is implemented by *ai.Client.
type AIMatcher interface {
	MatchRoom(ctx context.Context, req room.MatchRequest) ai.MatchOutcome
}

// Selection is the room picked for a request and how it was picked.
type Selection struct {
	Result room.MatchResult
	Source Source
	// Fallback is set when an AI attempt was made and failed.
	Fallback ai.FailureReason
}

// Selector applies the AI-first, heuristic-fallback policy.
type Selector struct {
	catalog room.Catalog
	ai      AIMatcher
}

func NewSelector(catalog room.Catalog, matcher AIMatcher) *Selector {
	return &Selector{catalog: catalog, ai: matcher}
}

// SelectBestRoom returns the AI's room when a credential is present and the AI
// call succeeds; otherwise the heuristic room. It always returns a result.
func (s *Selector) SelectBestRoom(ctx context.Context, req room.MatchRequest) Selection {
	logger := pkglog.Ctx(ctx).With().Str(pkglog.FieldComponent, "match").Logger()

	var fallback ai.FailureReason
	if req.Credential != "" && s.ai != nil {
		out := s.ai.MatchRoom(ctx, req)
		if out.OK {
			return Selection{Result: out.Result, Source: SourceAI}
		}
		if out.Failure != nil {
			fallback = out.Failure.Reason
		}
		logger.Info().Str("reason", string(fallback)).Msg("AI match unavailable, using heuristic")
	}

	result := room.MatchHeuristically(s.catalog, req.Vibe, req.Goal, req.Transcript)
	return Selection{Result: result, Source: SourceHeuristic, Fallback: fallback}
}
