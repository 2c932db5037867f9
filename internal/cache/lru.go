// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type lruEntry[K comparable, V any] struct {
	key       K
	value     V
	prev      *lruEntry[K, V]
	next      *lruEntry[K, V]
	expiresAt time.Time
}

// LRU is a thread-safe least-recently-used map with a sliding TTL.
//
// Reads refresh both recency and expiry, so an entry only expires after ttl
// of disuse. Capacity is a hard bound: inserting beyond it evicts the least
// recently used entry.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	capacity int
	ttl      time.Duration
	items    map[K]*lruEntry[K, V]

	// head.next is the most recently used entry, tail.prev the least.
	head *lruEntry[K, V]
	tail *lruEntry[K, V]

	hits      int64
	misses    int64
	evictions int64
}

// NewLRU creates an LRU. A nil clock uses the real clock.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration, clock clockwork.Clock) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c := &LRU[K, V]{
		clock:    clock,
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[K]*lruEntry[K, V], capacity),
		head:     &lruEntry[K, V]{},
		tail:     &lruEntry[K, V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.lookup(key, c.clock.Now()); ok {
		c.hits++
		return e.value, true
	}
	c.misses++
	var zero V
	return zero, false
}

// GetOrAdd returns the live value for key, creating it with create when
// absent or expired. created reports whether create ran.
func (c *LRU[K, V]) GetOrAdd(key K, create func() V) (value V, created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if e, ok := c.lookup(key, now); ok {
		c.hits++
		return e.value, false
	}
	c.misses++
	v := create()
	c.insert(key, v, now)
	return v, true
}

// Add inserts or replaces the value for key.
func (c *LRU[K, V]) Add(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = now.Add(c.ttl)
		c.moveToFront(e)
		return
	}
	c.insert(key, value, now)
}

// Contains reports presence without touching recency.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	return ok && !c.clock.Now().After(e.expiresAt)
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		c.unlink(e)
		return true
	}
	return false
}

// CleanupExpired drops every expired entry and returns how many were removed.
func (c *LRU[K, V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.unlink(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Purge removes every entry. Counters are kept.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*lruEntry[K, V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len includes entries that have expired but not yet been cleaned up.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit, miss and eviction counters.
func (c *LRU[K, V]) Stats() (hits, misses, evictions int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions
}

// lookup must be called with mu held. Expired entries are removed.
func (c *LRU[K, V]) lookup(key K, now time.Time) (*lruEntry[K, V], bool) {
	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if now.After(e.expiresAt) {
		c.unlink(e)
		return nil, false
	}
	e.expiresAt = now.Add(c.ttl)
	c.moveToFront(e)
	return e, true
}

func (c *LRU[K, V]) insert(key K, value V, now time.Time) {
	e := &lruEntry[K, V]{key: key, value: value, expiresAt: now.Add(c.ttl)}
	c.pushFront(e)
	c.items[key] = e
	for len(c.items) > c.capacity {
		oldest := c.tail.prev
		if oldest == c.head {
			return
		}
		c.unlink(oldest)
		c.evictions++
	}
}

func (c *LRU[K, V]) pushFront(e *lruEntry[K, V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[K, V]) moveToFront(e *lruEntry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.pushFront(e)
}

func (c *LRU[K, V]) unlink(e *lruEntry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}
