// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
	roomIDKey        contextKey = "room_id"
	connIDKey        contextKey = "conn_id"
)

// GenerateCorrelationID returns a short (8 character) identifier for
// correlating log lines of one background operation.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID returns a full UUID for an HTTP request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCorrelationID attaches a correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID attaches a freshly generated correlation ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns "" when no correlation ID is set.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey)
}

// ContextWithRequestID attaches an HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns "" when no request ID is set.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// ContextWithRoomID attaches the room a log line belongs to.
func ContextWithRoomID(ctx context.Context, roomID string) context.Context {
	return context.WithValue(ctx, roomIDKey, roomID)
}

// RoomIDFromContext returns "" when no room is set.
func RoomIDFromContext(ctx context.Context) string {
	return stringValue(ctx, roomIDKey)
}

// ContextWithConnID attaches a WebSocket connection identity.
func ContextWithConnID(ctx context.Context, connID string) context.Context {
	return context.WithValue(ctx, connIDKey, connID)
}

// ConnIDFromContext returns "" when no connection is set.
func ConnIDFromContext(ctx context.Context) string {
	return stringValue(ctx, connIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// Ctx returns the global logger enriched with whatever identifiers ctx carries.
//
//	logging.Ctx(ctx).Info().Msg("Joined room")
//	// {"level":"info","room_id":"abc123","conn_id":"...","message":"Joined room"}
func Ctx(ctx context.Context) *zerolog.Logger {
	l := CtxWith(ctx).Logger()
	return &l
}

// CtxWith returns a logger context pre-populated from ctx, for adding more fields.
func CtxWith(ctx context.Context) zerolog.Context {
	lc := With()
	for _, key := range []contextKey{correlationIDKey, requestIDKey, roomIDKey, connIDKey} {
		if v := stringValue(ctx, key); v != "" {
			lc = lc.Str(string(key), v)
		}
	}
	return lc
}

// WithComponent creates a child logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
