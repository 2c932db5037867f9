// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cineswipe/internal/websocket"
)

type mockContextHub struct {
	runErr error
}

func (m *mockContextHub) RunWithContext(ctx context.Context) error {
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

var _ suture.Service = (*WebSocketHubService)(nil)

func TestNewWebSocketHubService_Name(t *testing.T) {
	if got := NewWebSocketHubService(&mockContextHub{}).String(); got != "websocket-hub" {
		t.Errorf("String() = %q, want websocket-hub", got)
	}
	if got := NewWebSocketHubService(websocket.NewHub()).String(); got != "websocket-hub" {
		t.Errorf("String() for real hub = %q", got)
	}
}

func TestWebSocketHubService_Serve(t *testing.T) {
	t.Run("returns context error on cancellation", func(t *testing.T) {
		svc := NewWebSocketHubService(&mockContextHub{})
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		cancel()
		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return")
		}
	})

	t.Run("propagates hub error", func(t *testing.T) {
		hubErr := errors.New("hub crashed")
		if err := NewWebSocketHubService(&mockContextHub{runErr: hubErr}).Serve(context.Background()); !errors.Is(err, hubErr) {
			t.Errorf("expected %v, got %v", hubErr, err)
		}
	})

	t.Run("stops a real hub", func(t *testing.T) {
		hub := websocket.NewHub()
		svc := NewWebSocketHubService(hub)
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		cancel()
		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Fatal("hub did not stop")
		}
		if hub.ClientCount() != 0 {
			t.Errorf("ClientCount() = %d after stop", hub.ClientCount())
		}
	})
}
