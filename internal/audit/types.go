// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package audit

import (
	"context"
	"time"
)

// EventType categorizes audit events.
type EventType string

const (
	EventTypeGuestToken   EventType = "auth.guest_token"
	EventTypeLoginSuccess EventType = "auth.login_success"
	EventTypeLoginFailure EventType = "auth.login_failure"
	EventTypeRateLimited  EventType = "auth.rate_limited"
	EventTypeAuthzDenied  EventType = "authz.denied"
)

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityDebug   Severity = "debug"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severityOrder = map[Severity]int{
	SeverityDebug:   0,
	SeverityInfo:    1,
	SeverityWarning: 2,
	SeverityError:   3,
}

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one security-relevant occurrence.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	Severity    Severity  `json:"severity"`
	Outcome     Outcome   `json:"outcome"`
	Actor       Actor     `json:"actor"`
	Source      Source    `json:"source"`
	Action      string    `json:"action"`
	Resource    string    `json:"resource,omitempty"`
	Description string    `json:"description,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// Actor is who performed the action. Anonymous callers have an empty ID.
type Actor struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// Source is where the request came from.
type Source struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)
	Count(ctx context.Context, filter QueryFilter) (int64, error)
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter selects events. Empty fields match everything; results are
// newest first.
type QueryFilter struct {
	Types    []EventType `json:"types,omitempty"`
	Outcomes []Outcome   `json:"outcomes,omitempty"`
	ActorID  string      `json:"actor_id,omitempty"`
	SourceIP string      `json:"source_ip,omitempty"`
	Since    *time.Time  `json:"since,omitempty"`
	Limit    int         `json:"limit,omitempty"`
}

// DefaultQueryFilter returns the newest 100 events.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{Limit: 100}
}
