// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package services

import (
	"context"
	"fmt"
)

// ContextHub is satisfied by *websocket.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// WebSocketHubService supervises the connection hub. Once the hub stops it
// refuses new registrations, so a restart is only useful before shutdown and
// the service name follows the hub's own Stringer when it has one.
type WebSocketHubService struct {
	hub  ContextHub
	name string
}

// NewWebSocketHubService creates a new WebSocket hub service wrapper.
func NewWebSocketHubService(hub ContextHub) *WebSocketHubService {
	name := "websocket-hub"
	if s, ok := hub.(fmt.Stringer); ok {
		name = s.String()
	}
	return &WebSocketHubService{hub: hub, name: name}
}

// Serve implements suture.Service.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	return w.hub.RunWithContext(ctx)
}

func (w *WebSocketHubService) String() string {
	return w.name
}
