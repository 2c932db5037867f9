// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package auth provides identity and request-admission primitives.

Key Components:

  - RateLimiter: keyed token bucket (capacity C, refill R tokens/s, cost per
    request) over a bounded LRU of client buckets
  - Middleware: RateLimit (HTTP 429 with Retry-After), Identify, Authenticate,
    and SecurityHeaders (CSP nonce, HSTS, X-Frame-Options)
  - JWTManager: HS256 session tokens for guests and the admin account
  - AdminAuthenticator: bcrypt-hashed operator credentials

Rate Limiting:

With the defaults (C=5, R=5/60, cost=1) a client may issue five auth requests
back to back; the sixth is rejected until twelve seconds of refill have
accrued. The limiter is driven by a clockwork.Clock so tests can advance time
deterministically:

	clock := clockwork.NewFakeClock()
	rl := auth.NewRateLimiter(auth.RateLimiterConfig{Capacity: 3, RefillPerSecond: 1}, clock)
	rl.Allow("10.0.0.1") // true x3, then false
	clock.Advance(time.Second)
	rl.Allow("10.0.0.1") // true

Tokens:

Guest tokens carry a generated subject ("guest-<uuid>") and the chosen display
name. Tokens are accepted from the Authorization header, the token query
parameter, or the cineswipe_token cookie.
*/
package auth
