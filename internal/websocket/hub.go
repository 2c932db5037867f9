// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Hub tracks live connections. Room traffic does not pass through the hub;
// rooms deliver straight into each client's outbox. The hub owns connection
// lifecycle so that every socket is closed when the gateway stops.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// RunWithContext processes registrations until ctx is canceled, then closes
// every connected client and returns ctx.Err(). It is run under suture.
//
// Shutdown is checked before lifecycle events so a canceled hub never admits
// another client.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register adds client to the hub. It returns false once the hub has stopped,
// in which case the caller must close the connection itself.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopped:
		return false
	}
}

// Unregister removes client from the hub. It is a no-op after shutdown.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logging.Debug().Str("conn_id", string(client.ID())).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	client.close()
	metrics.WSConnections.Dec()
	logging.Debug().Str("conn_id", string(client.ID())).Int("total_clients", total).Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs the shutdown. ctx.Err() is
// not logged as an error because cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.stopOnce.Do(func() { close(h.stopped) })
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// closeAllClients closes clients in ID order so shutdown logs are stable.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		client.close()
		metrics.WSConnections.Dec()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// String implements fmt.Stringer for suture service identification.
func (h *Hub) String() string {
	return "websocket-hub"
}
