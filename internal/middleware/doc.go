// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package middleware provides the infrastructure HTTP middleware shared by every
route: request IDs, Prometheus instrumentation and a sliding-window
performance monitor.

All three are plain func(http.Handler) http.Handler and are mounted on the chi
router with Use. Metrics and the performance monitor label requests by chi
route pattern, not raw path, and wrap the ResponseWriter with chi's
WrapResponseWriter so that /ws upgrades can still hijack the connection.

Security middleware (rate limiting, JWT, CSP) lives in package auth, and
authorization in package authz.
*/
package middleware
