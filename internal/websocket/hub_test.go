// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package websocket

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/cineswipe/internal/session"
)

func TestHub_ShutdownClosesClients(t *testing.T) {
	reg := session.NewRegistry(session.Config{})
	defer func() { _ = reg.Shutdown(context.Background()) }()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	srv := httptest.NewServer(NewHandler(hub, reg, ClientConfig{}, nil))
	defer srv.Close()
	conn := dial(t, srv)

	send(t, conn, MessageTypePing, nil)
	readUntil(t, conn, MessageTypePong)
	eventually(t, func() bool { return hub.ClientCount() == 1 })

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage() after shutdown = %v, want normal close", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() after shutdown = %d", hub.ClientCount())
	}
	if hub.Register(NewClient(hub, nil, reg, ClientConfig{}, nil)) {
		t.Error("Register() succeeded on a stopped hub")
	}
}

func TestGetShutdownReason(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled reason = %q", got)
	}

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline reason = %q", got)
	}
}

func TestHub_String(t *testing.T) {
	if NewHub().String() != "websocket-hub" {
		t.Error("unexpected service name")
	}
}

func TestClient_SlowConsumerIsClosed(t *testing.T) {
	c := NewClient(NewHub(), nil, nil, ClientConfig{OutboxSize: 1}, nil)
	ev := session.Event{Type: session.EventRoomState, RoomID: "abc123"}

	if !c.Deliver(ev) {
		t.Fatal("first Deliver() should fit the buffer")
	}
	if c.Deliver(ev) {
		t.Fatal("second Deliver() should overflow")
	}
	if !c.Closed() {
		t.Error("overflowing client should be closed")
	}
	if c.Deliver(ev) {
		t.Error("Deliver() after close should fail")
	}

	// The buffered event is still drained before the close is observed.
	if msg, ok := <-c.send; !ok || msg.Type != string(session.EventRoomState) || msg.RoomID != "abc123" {
		t.Errorf("buffered message = %+v, %v", msg, ok)
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}
}

func TestClient_DisplayNameFallback(t *testing.T) {
	c := NewClient(NewHub(), nil, nil, ClientConfig{}, nil)
	if !strings.HasPrefix(c.displayName, "Guest-") {
		t.Errorf("displayName = %q, want Guest- prefix", c.displayName)
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"missing origin", nil, "", false},
		{"same host", nil, "http://example.com", true},
		{"listed origin", []string{"https://app.example.org"}, "https://app.example.org", true},
		{"wildcard", []string{"*"}, "https://anything.test", true},
		{"foreign origin", []string{"https://app.example.org"}, "https://evil.test", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewHub(), nil, ClientConfig{}, tt.allowed)
			req := httptest.NewRequest("GET", "http://example.com/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkOrigin(req); got != tt.want {
				t.Errorf("checkOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSanitizeLogValue(t *testing.T) {
	if got := sanitizeLogValue("a\nb\x00c"); got != "abc" {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
	if got := sanitizeLogValue(strings.Repeat("x", 500)); len(got) != 200 {
		t.Errorf("len = %d, want 200", len(got))
	}
}
