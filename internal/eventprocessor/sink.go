// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package eventprocessor

import (
	"context"
	"time"

	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/metrics"
	"github.com/tomtom215/cineswipe/internal/session"
)

// RoomEventPublisher is the part of Publisher the sink depends on.
type RoomEventPublisher interface {
	PublishRoomEvent(ctx context.Context, ev session.Event) error
}

// AsyncSink decouples room goroutines from the event bus. Publish only
// enqueues; a single worker started by Serve drains the queue. When the queue
// is full the event is dropped and counted, so a stalled broker can never
// stall a room.
type AsyncSink struct {
	pub          RoomEventPublisher
	queue        chan session.Event
	drainTimeout time.Duration
}

var _ session.EventSink = (*AsyncSink)(nil)

// NewAsyncSink creates a sink with a queue of queueSize events.
func NewAsyncSink(pub RoomEventPublisher, queueSize int) *AsyncSink {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &AsyncSink{
		pub:          pub,
		queue:        make(chan session.Event, queueSize),
		drainTimeout: 5 * time.Second,
	}
}

// Publish enqueues ev without blocking.
func (s *AsyncSink) Publish(ev session.Event) {
	select {
	case s.queue <- ev:
		metrics.EventQueueDepth.Inc()
	default:
		metrics.RecordEventPublish("dropped")
		logging.Warn().
			Str("room_id", ev.RoomID).
			Str("type", string(ev.Type)).
			Msg("Event queue full, dropping room event")
	}
}

// Len returns the number of queued events.
func (s *AsyncSink) Len() int {
	return len(s.queue)
}

// Serve publishes queued events until ctx is cancelled, then makes a bounded
// attempt to flush what is left. It implements suture.Service.
func (s *AsyncSink) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return ctx.Err()
		case ev := <-s.queue:
			s.publish(ctx, ev)
		}
	}
}

func (s *AsyncSink) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()
	for {
		select {
		case ev := <-s.queue:
			s.publish(ctx, ev)
		default:
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *AsyncSink) publish(ctx context.Context, ev session.Event) {
	metrics.EventQueueDepth.Dec()
	if err := s.pub.PublishRoomEvent(ctx, ev); err != nil {
		logging.Warn().Err(err).
			Str("room_id", ev.RoomID).
			Str("type", string(ev.Type)).
			Msg("Failed to publish room event")
	}
}

// String names the service in supervisor logs.
func (s *AsyncSink) String() string {
	return "event-sink"
}
