// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package session

import (
	"context"
	"errors"
)

var (
	// ErrRoomFull is returned when a join would exceed the member cap.
	ErrRoomFull = errors.New("room is full")

	// ErrRoomClosed is returned for operations on a room that has been torn down.
	ErrRoomClosed = errors.New("room is closed")

	// ErrNotAMember is returned when a connection acts on a room it has not joined.
	ErrNotAMember = errors.New("connection is not a member of the room")

	// ErrStaleRound marks a vote for a round or item that is no longer current.
	// It is never reported to clients.
	ErrStaleRound = errors.New("vote is for a stale round")

	// ErrRoomNotActive is returned for votes while the room is still forming.
	ErrRoomNotActive = errors.New("room is not active")

	// ErrRoomNotFound is returned when no room exists with the given identifier.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists is returned by Create for an identifier already in use.
	ErrRoomExists = errors.New("room already exists")

	// ErrInvalidRoomID is returned for identifiers outside [A-Za-z0-9_-]{1,64}.
	ErrInvalidRoomID = errors.New("invalid room id")

	// ErrRegistryClosed is returned after Shutdown.
	ErrRegistryClosed = errors.New("registry is shut down")
)

// Wire codes sent to clients in error events.
const (
	CodeRoomFull      = "room_full"
	CodeRoomClosed    = "room_closed"
	CodeNotAMember    = "not_a_member"
	CodeStaleRound    = "stale_round"
	CodeRoomNotActive = "room_not_active"
	CodeRoomNotFound  = "room_not_found"
	CodeRoomExists    = "room_exists"
	CodeInvalidRoomID = "invalid_room_id"
	CodeUnavailable   = "unavailable"
	CodeInternal      = "internal_error"
)

// ErrorCode maps err to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomFull):
		return CodeRoomFull
	case errors.Is(err, ErrRoomClosed):
		return CodeRoomClosed
	case errors.Is(err, ErrNotAMember):
		return CodeNotAMember
	case errors.Is(err, ErrStaleRound):
		return CodeStaleRound
	case errors.Is(err, ErrRoomNotActive):
		return CodeRoomNotActive
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrRoomExists):
		return CodeRoomExists
	case errors.Is(err, ErrInvalidRoomID):
		return CodeInvalidRoomID
	case errors.Is(err, ErrRegistryClosed),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

// IsSilent reports errors that are dropped instead of being sent to the client.
func IsSilent(err error) bool {
	return errors.Is(err, ErrStaleRound)
}
