// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package eventprocessor

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/cineswipe/internal/session"
)

// RoomEvent is the bus representation of a session event.
type RoomEvent struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	RoomID     string          `json:"room_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// NewRoomEvent wraps ev with a fresh event ID.
func NewRoomEvent(ev session.Event, at time.Time) (*RoomEvent, error) {
	var data json.RawMessage
	if ev.Data != nil {
		raw, err := json.Marshal(ev.Data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", ev.Type, err)
		}
		data = raw
	}
	return &RoomEvent{
		EventID:    uuid.NewString(),
		Type:       string(ev.Type),
		RoomID:     ev.RoomID,
		OccurredAt: at.UTC(),
		Data:       data,
	}, nil
}

// Topic returns the NATS subject for the event under prefix.
func (e *RoomEvent) Topic(prefix string) string {
	return strings.TrimSuffix(prefix, ".") + "." + e.RoomID + "." + e.Type
}

// Validate checks the fields every consumer relies on.
func (e *RoomEvent) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("event_id is required")
	case e.Type == "":
		return fmt.Errorf("type is required")
	case !session.ValidRoomID(e.RoomID):
		return fmt.Errorf("invalid room_id %q", e.RoomID)
	}
	return nil
}

// SerializeEvent encodes e as JSON.
func SerializeEvent(e *RoomEvent) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// DeserializeEvent decodes and validates a JSON event.
func DeserializeEvent(data []byte) (*RoomEvent, error) {
	var e RoomEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal room event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
