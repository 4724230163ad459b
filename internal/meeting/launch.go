package meeting

import (
	"context"
	"fmt"
	"strings"

	"morning/internal/match"
	"morning/internal/room"
)

// transcriptWindow is how many recent transcript lines inform a launch.
const transcriptWindow = 8

// Selector is implemented by *match.Selector.
type Selector interface {
	SelectBestRoom(ctx context.Context, req room.MatchRequest) match.Selection
}

// LaunchRequest is the join form.
type LaunchRequest struct {
	DisplayName string
	Vibe        string
	Goal        string
	CustomURL   string
	Credential  string
}

// Launch is the outcome of matching a user to a room.
type Launch struct {
	Match    room.MatchResult `json:"match"`
	Source   match.Source     `json:"source"`
	Fallback string           `json:"fallback,omitempty"`
	URL      string           `json:"url"`
	Target   string           `json:"target"`
	Features string           `json:"features"`
	Status   string           `json:"status"`
	Message  string           `json:"message"`
}

// Launcher matches a user to a room and builds the link to join it.
type Launcher struct {
	selector Selector
	links    LinkBuilder
}

func NewLauncher(selector Selector, links LinkBuilder) *Launcher {
	return &Launcher{selector: selector, links: links}
}

// Launch validates the request, picks a room using the last transcript lines
// as extra signal and returns the meeting link.
func (l *Launcher) Launch(ctx context.Context, req LaunchRequest, transcript []string) (Launch, error) {
	name := strings.TrimSpace(req.DisplayName)
	if err := ValidateLaunch(name, req.Vibe); err != nil {
		return Launch{}, err
	}

	if len(transcript) > transcriptWindow {
		transcript = transcript[len(transcript)-transcriptWindow:]
	}

	sel := l.selector.SelectBestRoom(ctx, room.MatchRequest{
		Vibe:       strings.TrimSpace(req.Vibe),
		Goal:       strings.TrimSpace(req.Goal),
		Transcript: strings.Join(transcript, " "),
		Credential: strings.TrimSpace(req.Credential),
	})

	return Launch{
		Match:    sel.Result,
		Source:   sel.Source,
		Fallback: string(sel.Fallback),
		URL:      l.links.Build(req.CustomURL, sel.Result.RoomSlug, name),
		Target:   OpenTarget,
		Features: OpenFeatures,
		Status:   fmt.Sprintf("Auto-joining %s for %s.", sel.Result.RoomName, name),
		Message:  fmt.Sprintf("Matched you to %s. Need a crisp opening line?", sel.Result.RoomName),
	}, nil
}
