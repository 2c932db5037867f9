// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package session

import "time"

// EventType names an outbound room event.
type EventType string

const (
	EventRoomState      EventType = "room_state"
	EventVoteRecorded   EventType = "vote_recorded"
	EventMatchFound     EventType = "match_found"
	EventRoundExhausted EventType = "round_exhausted"
	EventRoomClosed     EventType = "room_closed"
)

// Close reasons carried by room_closed.
const (
	ReasonGraceExpired = "grace_expired"
	ReasonIdleTimeout  = "idle_timeout"
	ReasonShutdown     = "shutdown"
)

// Leave reasons, used for logging and metrics.
const (
	LeaveExplicit   = "leave"
	LeaveDisconnect = "disconnect"
	LeaveSwitch     = "switch_room"
)

// Event is delivered to every member of a room, in the order the room produced it.
type Event struct {
	Type   EventType   `json:"type"`
	RoomID string      `json:"room_id"`
	Data   interface{} `json:"data"`
}

// RoomStateData is sent on join, leave, state change and round advance.
// Remaining counts unseen candidates after the current item.
type RoomStateData struct {
	State       State        `json:"state"`
	Members     []MemberView `json:"members"`
	CurrentItem string       `json:"current_item"`
	Round       int          `json:"round"`
	Remaining   int          `json:"remaining"`
	Exhausted   bool         `json:"exhausted"`
}

// VoteRecordedData reports progress without revealing decisions.
type VoteRecordedData struct {
	Member  ConnID `json:"member"`
	Round   int    `json:"round"`
	Votes   int    `json:"votes"`
	Members int    `json:"members"`
}

// MatchFoundData announces that every member voted yes on ItemID.
type MatchFoundData struct {
	ItemID string    `json:"item_id"`
	Round  int       `json:"round"`
	At     time.Time `json:"at"`
}

// RoundExhaustedData reports a round ended by a no vote.
type RoundExhaustedData struct {
	ItemID string `json:"item_id"`
	Round  int    `json:"round"`
}

// RoomClosedData is the last event a room sends.
type RoomClosedData struct {
	Reason string `json:"reason"`
}

// Outbox receives events for one member. Deliver must not block; it returns
// false when the event could not be queued (full buffer or closed connection).
type Outbox interface {
	Deliver(Event) bool
}

// closedOutbox is implemented by outboxes that know their connection is gone.
type closedOutbox interface {
	Closed() bool
}

// EventSink receives concluded-round and room-closed events for fan-out
// beyond this process. Publish is called from the room goroutine and must
// not block.
type EventSink interface {
	Publish(Event)
}

// OutboxFunc adapts a function to the Outbox interface.
type OutboxFunc func(Event) bool

func (f OutboxFunc) Deliver(e Event) bool { return f(e) }
