package room

import "strings"

const (
	ReasonKeywordMatch = "Keyword match from your vibe/goal."
	ReasonDefaultRoom  = "Best default room, no signal in your vibe/goal."
)

// MatchRequest carries the free-text signals for one match attempt
type MatchRequest struct {
	Vibe       string
	Goal       string
	Transcript string
	Credential string
}

// MatchResult is the room chosen for a user
type MatchResult struct {
	RoomName string `json:"room_name"`
	RoomSlug string `json:"room_slug"`
	Reason   string `json:"reason"`
	Opener   string `json:"opener"`
}

// Scored pairs a room with its tag hit count
type Scored struct {
	Room
	Score int
}

// Score counts, for each room in catalog order, how many of its tags occur
// as a substring of text. Matching is case-insensitive.
func (c Catalog) Score(text string) []Scored {
	text = strings.ToLower(text)

	scored := make([]Scored, 0, len(c))
	for _, r := range c {
		hits := 0
		for _, tag := range r.Tags {
			if strings.Contains(text, strings.ToLower(tag)) {
				hits++
			}
		}
		scored = append(scored, Scored{Room: r, Score: hits})
	}
	return scored
}

// MatchHeuristically picks the room with the most tag hits in the combined
// vibe, goal and transcript text. Ties go to the earliest room; no hits at all
// yields the default room.
func MatchHeuristically(c Catalog, vibe, goal, transcript string) MatchResult {
	text := vibe + " " + goal + " " + transcript

	best := Scored{Room: c.Default()}
	for _, s := range c.Score(text) {
		if s.Score > best.Score {
			best = s
		}
	}

	if best.Score == 0 {
		return resultFor(c.Default(), ReasonDefaultRoom)
	}
	return resultFor(best.Room, ReasonKeywordMatch)
}

func resultFor(r Room, reason string) MatchResult {
	return MatchResult{
		RoomName: r.Name,
		RoomSlug: r.Slug,
		Reason:   reason,
		Opener:   r.Opener,
	}
}
