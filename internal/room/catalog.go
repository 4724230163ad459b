package room

import (
	"regexp"
	"strings"
)

// Room describes one of the predefined meeting rooms
type Room struct {
	Name   string   `json:"room_name"`
	Slug   string   `json:"room_slug"`
	Tags   []string `json:"tags"`
	Opener string   `json:"opener"`
}

// Catalog is the ordered list of rooms. The first entry is the default room.
type Catalog []Room

// DefaultCatalog returns the built-in rooms
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Name:   "Morning Founders Floor",
			Slug:   "morning-founders-floor",
			Tags:   []string{"startup", "founder", "fundraise", "venture", "pitch", "growth"},
			Opener: "Ask everyone: “What inflection point are you building toward this quarter?”",
		},
		{
			Name:   "Morning Product Lab",
			Slug:   "morning-product-lab",
			Tags:   []string{"product", "pm", "design", "ux", "roadmap", "launch"},
			Opener: "Try: “Which user behavior change would define success for your next release?”",
		},
		{
			Name:   "Morning AI Builders Club",
			Slug:   "morning-ai-builders-club",
			Tags:   []string{"ai", "agent", "ml", "automation", "llm", "model"},
			Opener: "Lead with: “Where does your AI create leverage that your competitors cannot copy?”",
		},
		{
			Name:   "Morning NYC Creators Lounge",
			Slug:   "morning-nyc-creators-lounge",
			Tags:   []string{"new york", "manhattan", "brooklyn", "creator", "brand", "media"},
			Opener: "Try: “Which NYC scene most shaped your brand voice this year?”",
		},
	}
}

// Default returns the first room of the catalog
func (c Catalog) Default() Room {
	if len(c) == 0 {
		return Room{}
	}
	return c[0]
}

var nonSlugChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// SanitizeSlug replaces every character outside [a-zA-Z0-9-] with a hyphen
// and lowercases the result.
func SanitizeSlug(s string) string {
	return strings.ToLower(nonSlugChars.ReplaceAllString(s, "-"))
}
