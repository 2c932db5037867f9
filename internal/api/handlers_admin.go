// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/cineswipe/internal/audit"
	"github.com/tomtom215/cineswipe/internal/middleware"
	"github.com/tomtom215/cineswipe/internal/session"
)

// AdminRoomsResponse is the body of GET /api/v1/admin/rooms.
type AdminRoomsResponse struct {
	Stats session.Stats      `json:"stats"`
	Rooms []session.RoomView `json:"rooms"`
}

// AdminRooms lists every live room with registry totals.
func (h *Handler) AdminRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.rooms.List()
	if rooms == nil {
		rooms = []session.RoomView{}
	}
	WriteSuccess(w, r, AdminRoomsResponse{Stats: h.rooms.Stats(), Rooms: rooms})
}

// AdminPerformance returns per-route latency over the monitor's window.
func (h *Handler) AdminPerformance(w http.ResponseWriter, r *http.Request) {
	stats := []middleware.EndpointStats{}
	if h.perf != nil {
		stats = h.perf.GetStats()
	}
	WriteSuccess(w, r, stats)
}

const maxAuditLimit = 500

// AdminAuditResponse is the body of GET /api/v1/admin/audit.
type AdminAuditResponse struct {
	Total  int64         `json:"total"`
	Events []audit.Event `json:"events"`
}

// AdminAudit returns the security audit trail, newest first. Query
// parameters: type (repeatable), outcome, actor, limit (1-500, default 100).
func (h *Handler) AdminAudit(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.audit == nil {
		rw.ServiceUnavailable("Audit logging is disabled")
		return
	}

	q := r.URL.Query()
	filter := audit.DefaultQueryFilter()
	for _, t := range q["type"] {
		filter.Types = append(filter.Types, audit.EventType(t))
	}
	if o := q.Get("outcome"); o != "" {
		filter.Outcomes = []audit.Outcome{audit.Outcome(o)}
	}
	filter.ActorID = q.Get("actor")
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > maxAuditLimit {
			rw.BadRequest("limit must be between 1 and 500")
			return
		}
		filter.Limit = n
	}

	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		rw.InternalError("Failed to query audit events")
		return
	}
	total, err := h.audit.Count(r.Context(), filter)
	if err != nil {
		rw.InternalError("Failed to count audit events")
		return
	}
	rw.Success(AdminAuditResponse{Total: total, Events: events})
}
