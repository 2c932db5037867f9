// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

// Package cache provides a bounded, TTL-aware LRU map.
//
// The rate limiter stores one token bucket per client key in an LRU so that
// the number of tracked clients can never grow without bound, however many
// distinct addresses hit the authentication endpoints.
//
//	buckets := cache.NewLRU[string, *rate.Limiter](10000, time.Hour, clock)
//	lim, _ := buckets.GetOrAdd(ip, func() *rate.Limiter { return rate.NewLimiter(r, burst) })
package cache
