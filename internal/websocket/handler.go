// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package websocket

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/metrics"
)

// Handler upgrades /ws requests and attaches a Client to the hub.
type Handler struct {
	hub            *Hub
	rooms          RoomService
	cfg            ClientConfig
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewHandler creates the upgrade handler. Browsers must send an Origin that
// matches the request host or appears in allowedOrigins ("*" allows any).
func NewHandler(hub *Hub, rooms RoomService, cfg ClientConfig, allowedOrigins []string) *Handler {
	h := &Handler{
		hub:            hub,
		rooms:          rooms,
		cfg:            cfg.withDefaults(),
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	claims, _ := auth.ClaimsFromContext(r.Context())
	client := NewClient(h.hub, conn, h.rooms, h.cfg, claims)
	if !h.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}
	client.Start()
}

// checkOrigin rejects requests without an Origin header; browsers always send
// one and omitting it would bypass the origin policy entirely.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		metrics.WSErrors.WithLabelValues("origin").Inc()
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}

	metrics.WSErrors.WithLabelValues("origin").Inc()
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue strips control characters and bounds the length of a
// client-supplied value before it is logged.
func sanitizeLogValue(s string) string {
	const maxLen = 200
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
