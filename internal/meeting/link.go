package meeting

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://meet.jit.si"

// ErrMissingFields is returned when a launch lacks the display name or vibe.
var ErrMissingFields = errors.New("display name and conversation vibe are required")

// MissingFieldsMessage is the status shown for ErrMissingFields.
const MissingFieldsMessage = "Display name and conversation vibe are required."

// Window hints for opening the meeting link in the browser.
const (
	OpenTarget   = "_blank"
	OpenFeatures = "noopener,noreferrer"
)

// LinkBuilder builds outbound meeting links.
type LinkBuilder struct {
	BaseURL string
}

func NewLinkBuilder(baseURL string) LinkBuilder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return LinkBuilder{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Build returns customURL when it is set. Otherwise it links to the room slug
// on the meeting host with the display name prefilled.
func (b LinkBuilder) Build(customURL, slug, displayName string) string {
	if customURL = strings.TrimSpace(customURL); customURL != "" {
		return customURL
	}
	base := b.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf(`%s/%s#userInfo.displayName="%s"`, base, slug, escapeComponent(displayName))
}

// ValidateLaunch checks the fields a launch cannot do without.
func ValidateLaunch(displayName, vibe string) error {
	if strings.TrimSpace(displayName) == "" || strings.TrimSpace(vibe) == "" {
		return ErrMissingFields
	}
	return nil
}

// escapeComponent escapes s like a browser's encodeURIComponent.
func escapeComponent(s string) string {
	r := strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")
	return r.Replace(url.QueryEscape(s))
}
