// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRoomLifecycle(t *testing.T) {
	active := testutil.ToFloat64(RoomsActive)
	created := testutil.ToFloat64(RoomsCreated)
	closed := testutil.ToFloat64(RoomsClosed.WithLabelValues("idle_timeout"))

	RecordRoomCreated()
	RecordRoomCreated()
	RecordRoomClosed("idle_timeout")

	if got := testutil.ToFloat64(RoomsActive) - active; got != 1 {
		t.Errorf("active delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RoomsCreated) - created; got != 2 {
		t.Errorf("created delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(RoomsClosed.WithLabelValues("idle_timeout")) - closed; got != 1 {
		t.Errorf("closed delta = %v, want 1", got)
	}
}

func TestRecordVote(t *testing.T) {
	yes := testutil.ToFloat64(VotesTotal.WithLabelValues("yes"))
	no := testutil.ToFloat64(VotesTotal.WithLabelValues("no"))

	RecordVote(true)
	RecordVote(true)
	RecordVote(false)

	if got := testutil.ToFloat64(VotesTotal.WithLabelValues("yes")) - yes; got != 2 {
		t.Errorf("yes delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(VotesTotal.WithLabelValues("no")) - no; got != 1 {
		t.Errorf("no delta = %v, want 1", got)
	}
}

func TestRecordMembers(t *testing.T) {
	before := testutil.ToFloat64(RoomMembers)
	leaves := testutil.ToFloat64(RoomLeaves.WithLabelValues("disconnect"))

	RecordMemberJoined()
	RecordMemberJoined()
	RecordMemberLeft("disconnect")

	if got := testutil.ToFloat64(RoomMembers) - before; got != 1 {
		t.Errorf("members delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RoomLeaves.WithLabelValues("disconnect")) - leaves; got != 1 {
		t.Errorf("leaves delta = %v, want 1", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/rooms/{roomID}", "404"))
	RecordAPIRequest("GET", "/api/v1/rooms/{roomID}", 404, 3*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/rooms/{roomID}", "404")) - before; got != 1 {
		t.Errorf("requests delta = %v, want 1", got)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	tests := []struct {
		to   string
		want float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
	}
	for _, tt := range tests {
		RecordBreakerTransition("nats-publisher", "x", tt.to)
		if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("nats-publisher")); got != tt.want {
			t.Errorf("state after -> %s = %v, want %v", tt.to, got, tt.want)
		}
	}
}

func TestTrackActiveRequest_Concurrent(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestRecordHelpersDoNotPanic(t *testing.T) {
	RecordVoteDropped("stale")
	RecordMatch()
	RecordRoundExhausted()
	RecordBroadcastDropped("room_state")
	RecordRateLimitDenied("/api/v1/auth/guest")
	RecordEventPublish("ok")
}
