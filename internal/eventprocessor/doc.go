// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package eventprocessor publishes concluded-round and room-closed events to NATS.

Architecture:

	Room goroutine ──Publish──> AsyncSink queue ──Serve──> Publisher
	                                                         │
	                                     gobreaker ──> watermill-nats ──> NATS
	                                                         │
	                                       <prefix>.<room_id>.<event_type>

The session package only knows the session.EventSink interface. AsyncSink
satisfies it with a bounded, non-blocking queue, so the broker being slow or
down never delays a vote. Publisher wraps a watermill message.Publisher in a
circuit breaker; in production that is watermill-nats over core NATS, in
tests the watermill gochannel pub/sub.

Subjects (default prefix "cineswipe.rooms"):

	cineswipe.rooms.abc123.match_found
	cineswipe.rooms.abc123.round_exhausted
	cineswipe.rooms.abc123.room_closed

Payloads are RoomEvent JSON documents (goccy/go-json). Set NATS_EMBEDDED=true
to run an in-process server instead of connecting to NATS_URL.
*/
package eventprocessor
