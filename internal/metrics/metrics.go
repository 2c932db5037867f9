// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Room Metrics
	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cineswipe_rooms_active",
			Help: "Current number of live rooms",
		},
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cineswipe_rooms_created_total",
			Help: "Total number of rooms created",
		},
	)

	RoomsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_rooms_closed_total",
			Help: "Total number of rooms closed",
		},
		[]string{"reason"}, // "grace_expired", "idle_timeout", "shutdown"
	)

	RoomMembers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cineswipe_room_members",
			Help: "Current number of members across all rooms",
		},
	)

	RoomLeaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_room_leaves_total",
			Help: "Total number of members leaving rooms",
		},
		[]string{"reason"},
	)

	// Vote Metrics
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_votes_total",
			Help: "Total number of accepted votes",
		},
		[]string{"decision"}, // "yes", "no"
	)

	VotesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_votes_dropped_total",
			Help: "Total number of rejected or discarded votes",
		},
		[]string{"reason"}, // "stale", "not_a_member", "not_active", "disconnected"
	)

	MatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cineswipe_matches_total",
			Help: "Total number of rounds that ended in a match",
		},
	)

	RoundsExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cineswipe_rounds_exhausted_total",
			Help: "Total number of rounds ended by a no vote",
		},
	)

	BroadcastDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_broadcast_dropped_total",
			Help: "Total number of room events not delivered to a slow or closed member",
		},
		[]string{"event"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cineswipe_ws_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cineswipe_ws_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_ws_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
		[]string{"type"},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_ws_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"}, // "decode", "write", "unexpected_close", "rejected"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cineswipe_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cineswipe_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	RateLimitDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_rate_limit_denied_total",
			Help: "Total number of requests rejected by a rate limiter",
		},
		[]string{"endpoint"},
	)

	RateLimitKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cineswipe_rate_limit_tracked_keys",
			Help: "Current number of client keys holding a token bucket",
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_events_published_total",
			Help: "Total number of room events handed to the event bus",
		},
		[]string{"outcome"}, // "ok", "error", "dropped", "breaker_open"
	)

	EventQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cineswipe_event_queue_depth",
			Help: "Current number of room events waiting to be published",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cineswipe_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Security Audit Metrics
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cineswipe_audit_events_total",
			Help: "Total number of security audit events by type and disposition",
		},
		[]string{"type", "status"}, // status: "recorded", "dropped"
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cineswipe_app_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordRoomCreated counts a new room and raises the live gauge.
func RecordRoomCreated() {
	RoomsCreated.Inc()
	RoomsActive.Inc()
}

// RecordRoomClosed counts a closed room and lowers the live gauge.
func RecordRoomClosed(reason string) {
	RoomsClosed.WithLabelValues(reason).Inc()
	RoomsActive.Dec()
}

func RecordMemberJoined() {
	RoomMembers.Inc()
}

func RecordMemberLeft(reason string) {
	RoomMembers.Dec()
	RoomLeaves.WithLabelValues(reason).Inc()
}

// RecordVote counts an accepted vote.
func RecordVote(yes bool) {
	if yes {
		VotesTotal.WithLabelValues("yes").Inc()
		return
	}
	VotesTotal.WithLabelValues("no").Inc()
}

func RecordVoteDropped(reason string) {
	VotesDropped.WithLabelValues(reason).Inc()
}

func RecordMatch() {
	MatchesTotal.Inc()
}

func RecordRoundExhausted() {
	RoundsExhausted.Inc()
}

func RecordBroadcastDropped(eventType string) {
	BroadcastDropped.WithLabelValues(eventType).Inc()
}

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordRateLimitDenied(endpoint string) {
	RateLimitDenied.WithLabelValues(endpoint).Inc()
}

// RecordEventPublish records the outcome of handing one event to the bus.
func RecordEventPublish(outcome string) {
	EventsPublished.WithLabelValues(outcome).Inc()
}

// RecordBreakerTransition records a state change of the named circuit breaker.
// States use gobreaker's names: "closed", "half-open", "open".
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	var v float64
	switch to {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(v)
}

func RecordAuditEvent(eventType, status string) {
	AuditEvents.WithLabelValues(eventType, status).Inc()
}
