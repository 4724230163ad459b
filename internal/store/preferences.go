package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pkglog "morning/internal/log"
)

const (
	ThemeKey   = "morning-theme-v1"
	ProfileKey = "morning-profile-v1"
)

// Theme is the page color scheme.
type Theme string

const (
	ThemeDay   Theme = "day"
	ThemeNight Theme = "night"
)

var ErrInvalidTheme = errors.New("theme must be day or night")

// ParseTheme accepts "day" or "night" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeDay:
		return ThemeDay, nil
	case ThemeNight:
		return ThemeNight, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDay {
		return ThemeNight
	}
	return ThemeDay
}

// Profile is what the user typed into the join form.
type Profile struct {
	DisplayName     string `json:"displayName"`
	MeetingID       string `json:"meetingId"`
	MeetingPasscode string `json:"meetingPasscode"`
	MeetingURL      string `json:"meetingUrl"`
}

func (p Profile) trimmed() Profile {
	return Profile{
		DisplayName:     strings.TrimSpace(p.DisplayName),
		MeetingID:       strings.TrimSpace(p.MeetingID),
		MeetingPasscode: strings.TrimSpace(p.MeetingPasscode),
		MeetingURL:      strings.TrimSpace(p.MeetingURL),
	}
}

// Preferences reads and writes per-session theme and profile.
type Preferences struct {
	kv KV
}

func NewPreferences(kv KV) *Preferences {
	return &Preferences{kv: kv}
}

func scoped(scope, key string) string {
	if scope == "" {
		return key
	}
	return scope + ":" + key
}

// Theme returns the saved theme, night when unset or unreadable.
func (p *Preferences) Theme(ctx context.Context, scope string) (Theme, error) {
	raw, ok, err := p.kv.Get(ctx, scoped(scope, ThemeKey))
	if err != nil {
		return ThemeNight, err
	}
	if !ok {
		return ThemeNight, nil
	}
	t, err := ParseTheme(raw)
	if err != nil {
		return ThemeNight, nil
	}
	return t, nil
}

func (p *Preferences) SetTheme(ctx context.Context, scope string, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return p.kv.Set(ctx, scoped(scope, ThemeKey), string(t))
}

// Profile returns the saved profile. A missing or corrupt record reads as an
// empty profile.
func (p *Preferences) Profile(ctx context.Context, scope string) (Profile, error) {
	raw, ok, err := p.kv.Get(ctx, scoped(scope, ProfileKey))
	if err != nil || !ok {
		return Profile{}, err
	}

	var prof Profile
	if err := json.Unmarshal([]byte(raw), &prof); err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Warn().Err(err).Str(pkglog.FieldComponent, "store").Msg("ignoring unreadable profile")
		return Profile{}, nil
	}
	return prof, nil
}

// SaveProfile stores the profile with every field trimmed and returns what
// was stored.
func (p *Preferences) SaveProfile(ctx context.Context, scope string, prof Profile) (Profile, error) {
	prof = prof.trimmed()
	data, err := json.Marshal(prof)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := p.kv.Set(ctx, scoped(scope, ProfileKey), string(data)); err != nil {
		return Profile{}, err
	}
	return prof, nil
}
