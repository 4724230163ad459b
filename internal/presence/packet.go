package presence

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	DefaultChannel = "morning-presence"
	GuestName      = "Guest"

	StatusJoinedLounge = "joined the lounge."
	StatusLeftLounge   = "left the lounge."
)

// Packet is one presence announcement.
type Packet struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	At     string `json:"at"`
	// Origin identifies the publishing session so it can skip its own echo.
	Origin string `json:"origin,omitempty"`
}

// Announce builds a packet stamped with the current time. An empty name is
// shown as Guest.
func Announce(origin, name, status string) Packet {
	name = strings.TrimSpace(name)
	if name == "" {
		name = GuestName
	}
	return Packet{
		Name:   name,
		Status: status,
		At:     time.Now().UTC().Format(time.RFC3339),
		Origin: origin,
	}
}

// Decode parses a raw packet. Anything that is not JSON or lacks a name or
// status is dropped.
func Decode(raw []byte) (Packet, bool) {
	var p Packet
	if err := json.Unmarshal(raw, &p); err != nil {
		return Packet{}, false
	}
	if p.Name == "" || p.Status == "" {
		return Packet{}, false
	}
	return p, true
}
