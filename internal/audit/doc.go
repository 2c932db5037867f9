// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

// Package audit records security-relevant events: token issuance, admin
// logins, rate limit rejections and authorization denials.
//
// # Architecture
//
//	Logger.Log() -> buffer (chan) -> Logger.Serve -> Store
//	     |                                |
//	 non-blocking                  supervised goroutine
//
// Log never blocks the request path. When the buffer is full the event is
// dropped and counted in cineswipe_audit_events_total{status="dropped"}.
// Serve also deletes events older than Config.Retention on every
// CleanupInterval tick.
//
// MemoryStore keeps the newest events in memory; the trail does not survive a
// restart. Admins read it through GET /api/v1/admin/audit.
package audit
