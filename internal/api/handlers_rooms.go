// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/session"
	"github.com/tomtom215/cineswipe/internal/validation"
)

// CreateRoom handles POST /api/v1/rooms. An omitted room_id is generated.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req validation.CreateRoomRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rw := NewResponseWriter(w, r)
	view, err := h.rooms.Create(r.Context(), req.RoomID, req.Candidates)
	switch {
	case err == nil:
		logging.Ctx(r.Context()).Info().Str("room_id", view.ID).Int("remaining", view.Remaining).Msg("Room created")
		rw.Created(view)
	case errors.Is(err, session.ErrRoomExists):
		rw.Conflict("Room already exists")
	case errors.Is(err, session.ErrInvalidRoomID):
		rw.BadRequest("Invalid room id")
	case errors.Is(err, session.ErrRegistryClosed):
		rw.ServiceUnavailable("Server is shutting down")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Room creation failed")
		rw.InternalError("Failed to create room")
	}
}

// GetRoom handles GET /api/v1/rooms/{roomID}.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if !session.ValidRoomID(roomID) {
		NewResponseWriter(w, r).NotFound("Room not found")
		return
	}
	view, ok := h.rooms.Lookup(roomID)
	if !ok {
		NewResponseWriter(w, r).NotFound("Room not found")
		return
	}
	WriteSuccess(w, r, view)
}
