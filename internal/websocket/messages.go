// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package websocket

import (
	"github.com/goccy/go-json"
)

// Inbound message types.
const (
	MessageTypeJoin          = "join"
	MessageTypeLeave         = "leave"
	MessageTypeVote          = "vote"
	MessageTypeAddCandidates = "add_candidates"
	MessageTypePing          = "ping"
)

// Outbound message types not produced by a room.
const (
	MessageTypePong  = "pong"
	MessageTypeError = "error"
)

// CodeBadRequest is sent for frames that fail decoding or validation.
const CodeBadRequest = "bad_request"

// Message is an outbound frame. Room events map onto it one to one.
type Message struct {
	Type   string      `json:"type"`
	RoomID string      `json:"room_id,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// inbound is a decoded client frame whose data is parsed per type.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ErrorData is the payload of an error frame.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
