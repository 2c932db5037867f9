// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package session

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a room.
type State int

const (
	StateForming State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateForming:
		return "forming"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for st := StateForming; st <= StateClosed; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown room state %q", b)
}

// ConnID identifies one live connection. It is opaque to this package.
type ConnID string

// Decision is a member's swipe on the current item.
type Decision bool

const (
	No  Decision = false
	Yes Decision = true
)

// Vote is one member's decision on an item. Round zero means "whatever
// round is current"; a non-zero round must match exactly.
type Vote struct {
	Conn     ConnID
	ItemID   string
	Round    int
	Decision Decision
}

// Config tunes room behaviour.
type Config struct {
	MaxMembers    int
	MinMembers    int
	IdleTimeout   time.Duration
	GracePeriod   time.Duration
	MaxCandidates int

	// InboxSize bounds the per-room command queue.
	InboxSize int
}

// DefaultConfig returns the settings used when none are supplied.
func DefaultConfig() Config {
	return Config{
		MaxMembers:    8,
		MinMembers:    2,
		IdleTimeout:   30 * time.Minute,
		GracePeriod:   30 * time.Second,
		MaxCandidates: 500,
		InboxSize:     64,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxMembers <= 0 {
		c.MaxMembers = d.MaxMembers
	}
	if c.MinMembers <= 0 {
		c.MinMembers = d.MinMembers
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = d.GracePeriod
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = d.MaxCandidates
	}
	if c.InboxSize <= 0 {
		c.InboxSize = d.InboxSize
	}
	return c
}

// MemberView is the public part of a member.
type MemberView struct {
	ID          ConnID `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Voted       bool   `json:"voted"`
}

// RoomView is an immutable snapshot of a room.
type RoomView struct {
	ID           string       `json:"room_id"`
	State        State        `json:"state"`
	Members      []MemberView `json:"members"`
	CurrentItem  string       `json:"current_item"`
	Round        int          `json:"round"`
	Remaining    int          `json:"remaining"`
	Exhausted    bool         `json:"exhausted"`
	CreatedAt    time.Time    `json:"created_at"`
	LastActivity time.Time    `json:"last_activity"`
}

// HasMember reports whether conn is in the snapshot's member list.
func (v RoomView) HasMember(conn ConnID) bool {
	for _, m := range v.Members {
		if m.ID == conn {
			return true
		}
	}
	return false
}

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidRoomID reports whether id is usable as a room identifier and URL segment.
func ValidRoomID(id string) bool {
	return roomIDPattern.MatchString(id)
}

// NewRoomID returns a short random room code.
func NewRoomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
