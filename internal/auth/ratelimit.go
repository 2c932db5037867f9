// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package auth

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cineswipe/internal/cache"
	"github.com/tomtom215/cineswipe/internal/config"
	"github.com/tomtom215/cineswipe/internal/metrics"
)

// ErrRateLimited is reported when a client's bucket cannot cover a request.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiterConfig sizes the per-client token buckets.
type RateLimiterConfig struct {
	Capacity        int           // bucket size C
	RefillPerSecond float64       // refill rate R
	Cost            int           // tokens consumed per request
	MaxKeys         int           // client keys tracked before LRU eviction
	IdleTTL         time.Duration // idle buckets are forgotten after this long
}

// RateLimiterConfigFrom maps the security section onto a RateLimiterConfig.
func RateLimiterConfigFrom(cfg *config.SecurityConfig) RateLimiterConfig {
	return RateLimiterConfig{
		Capacity:        cfg.RateLimitCapacity,
		RefillPerSecond: cfg.RateLimitRefill,
		Cost:            cfg.RateLimitCost,
		MaxKeys:         cfg.RateLimitMaxKeys,
		IdleTTL:         cfg.RateLimitIdleTTL,
	}
}

func (c RateLimiterConfig) withDefaults() RateLimiterConfig {
	if c.Capacity <= 0 {
		c.Capacity = 5
	}
	if c.RefillPerSecond <= 0 {
		c.RefillPerSecond = float64(c.Capacity) / 60
	}
	if c.Cost <= 0 {
		c.Cost = 1
	}
	if c.MaxKeys <= 0 {
		c.MaxKeys = 10000
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = time.Hour
	}
	return c
}

// RateLimiter is a keyed token bucket. Each client key owns a bucket holding at
// most Capacity tokens that refills at RefillPerSecond; a request is admitted
// only when Cost tokens are available at the instant it arrives.
//
// Buckets live in a bounded LRU so that an attacker rotating source addresses
// cannot grow memory without limit. A key evicted from the LRU starts over with
// a full bucket.
type RateLimiter struct {
	cfg     RateLimiterConfig
	clock   clockwork.Clock
	buckets *cache.LRU[string, *rate.Limiter]
}

// NewRateLimiter creates a limiter. A nil clock uses the wall clock.
func NewRateLimiter(cfg RateLimiterConfig, clock clockwork.Clock) *RateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cfg = cfg.withDefaults()
	return &RateLimiter{
		cfg:     cfg,
		clock:   clock,
		buckets: cache.NewLRU[string, *rate.Limiter](cfg.MaxKeys, cfg.IdleTTL, clock),
	}
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	lim, created := rl.buckets.GetOrAdd(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(rl.cfg.RefillPerSecond), rl.cfg.Capacity)
	})
	if created {
		metrics.RateLimitKeys.Set(float64(rl.buckets.Len()))
	}
	return lim
}

// Allow consumes Cost tokens from key's bucket and reports whether the request
// may proceed. An empty key shares a single anonymous bucket.
func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		key = "anonymous"
	}
	return rl.bucket(key).AllowN(rl.clock.Now(), rl.cfg.Cost)
}

// RetryAfter estimates how long key must wait before Cost tokens are available.
// It never consumes tokens.
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	if key == "" {
		key = "anonymous"
	}
	lim, ok := rl.buckets.Get(key)
	if !ok {
		return 0
	}
	missing := float64(rl.cfg.Cost) - lim.TokensAt(rl.clock.Now())
	if missing <= 0 {
		return 0
	}
	secs := math.Ceil(missing / rl.cfg.RefillPerSecond)
	return time.Duration(secs) * time.Second
}

// Len returns the number of tracked client keys.
func (rl *RateLimiter) Len() int {
	return rl.buckets.Len()
}

// Config returns the effective configuration after defaults.
func (rl *RateLimiter) Config() RateLimiterConfig {
	return rl.cfg
}

// Cleanup forgets buckets idle for longer than IdleTTL and returns how many
// were dropped.
func (rl *RateLimiter) Cleanup() int {
	n := rl.buckets.CleanupExpired()
	metrics.RateLimitKeys.Set(float64(rl.buckets.Len()))
	return n
}

// Run periodically cleans idle buckets until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := rl.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			rl.Cleanup()
		}
	}
}
