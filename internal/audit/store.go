// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package audit

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps the most recent maxLen events in memory. Data is lost on
// restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
	maxLen int
}

// NewMemoryStore creates a store holding at most maxLen events (10000 if
// non-positive).
func NewMemoryStore(maxLen int) *MemoryStore {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &MemoryStore{events: make([]Event, 0, min(maxLen, 1024)), maxLen: maxLen}
}

// Save appends event, dropping the oldest 10% when full.
func (s *MemoryStore) Save(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) >= s.maxLen {
		drop := max(s.maxLen/10, 1)
		s.events = slices.Delete(s.events, 0, drop)
	}
	s.events = append(s.events, *event)
	return nil
}

// Query returns matching events, newest first.
func (s *MemoryStore) Query(_ context.Context, filter QueryFilter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Event, 0)
	for i := len(s.events) - 1; i >= 0; i-- {
		if !matches(&s.events[i], &filter) {
			continue
		}
		results = append(results, s.events[i])
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

func matches(e *Event, f *QueryFilter) bool {
	switch {
	case len(f.Types) > 0 && !slices.Contains(f.Types, e.Type):
		return false
	case len(f.Outcomes) > 0 && !slices.Contains(f.Outcomes, e.Outcome):
		return false
	case f.ActorID != "" && e.Actor.ID != f.ActorID:
		return false
	case f.SourceIP != "" && e.Source.IPAddress != f.SourceIP:
		return false
	case f.Since != nil && e.Timestamp.Before(*f.Since):
		return false
	}
	return true
}

// Count returns the number of matching events, ignoring Limit.
func (s *MemoryStore) Count(_ context.Context, filter QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filter.Limit = 0
	var n int64
	for i := range s.events {
		if matches(&s.events[i], &filter) {
			n++
		}
	}
	return n, nil
}

// Delete removes events older than olderThan.
func (s *MemoryStore) Delete(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.events)
	s.events = slices.DeleteFunc(s.events, func(e Event) bool {
		return e.Timestamp.Before(olderThan)
	})
	return int64(before - len(s.events)), nil
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
