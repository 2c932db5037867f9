// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package validation

// CreateRoomRequest is the body of POST /api/v1/rooms. An empty room_id asks
// the server to generate one.
type CreateRoomRequest struct {
	RoomID     string   `json:"room_id" validate:"omitempty,roomid"`
	Candidates []string `json:"candidates" validate:"max=500,dive,itemid"`
}

// GuestRequest is the body of POST /api/v1/auth/guest.
type GuestRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=32,displayname"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// JoinPayload is the data of an inbound WebSocket join message.
type JoinPayload struct {
	RoomID      string   `json:"room_id" validate:"required,roomid"`
	DisplayName string   `json:"display_name" validate:"omitempty,max=32,displayname"`
	Candidates  []string `json:"candidates" validate:"max=500,dive,itemid"`
}

// VotePayload is the data of an inbound WebSocket vote message. Round zero
// means the current round.
type VotePayload struct {
	ItemID   string `json:"item_id" validate:"required,itemid"`
	Round    int    `json:"round" validate:"gte=0"`
	Decision *bool  `json:"decision" validate:"required"`
}

// AddCandidatesPayload is the data of an inbound add_candidates message.
type AddCandidatesPayload struct {
	Items []string `json:"items" validate:"required,min=1,max=500,dive,itemid"`
}
