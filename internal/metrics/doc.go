// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package metrics defines the Prometheus instrumentation for CineSwipe.

Collectors are registered with the default registry through promauto and
exposed at /metrics:

	curl http://localhost:8080/metrics | grep cineswipe_

# Available Metrics

Rooms and rounds:
  - cineswipe_rooms_active, cineswipe_rooms_created_total
  - cineswipe_rooms_closed_total{reason}
  - cineswipe_room_members, cineswipe_room_leaves_total{reason}
  - cineswipe_votes_total{decision}, cineswipe_votes_dropped_total{reason}
  - cineswipe_matches_total, cineswipe_rounds_exhausted_total
  - cineswipe_broadcast_dropped_total{event}

Connections and HTTP:
  - cineswipe_ws_connections, cineswipe_ws_messages_{sent,received}_total
  - cineswipe_ws_errors_total{error_type}
  - cineswipe_api_requests_total, cineswipe_api_request_duration_seconds
  - cineswipe_rate_limit_denied_total{endpoint}, cineswipe_rate_limit_tracked_keys

Event bus:
  - cineswipe_events_published_total{outcome}, cineswipe_event_queue_depth
  - cineswipe_circuit_breaker_state{name}, cineswipe_circuit_breaker_transitions_total

Callers use the Record* helpers rather than touching collectors directly.
*/
package metrics
