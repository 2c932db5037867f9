// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package api provides the HTTP surface of CineSwipe on a chi router.

Routes:

	GET  /api/v1/health/live         liveness probe
	GET  /api/v1/health/ready        readiness probe (registered checks)
	GET  /metrics                    Prometheus exposition
	POST /api/v1/auth/guest          guest JWT (token-bucket rate limited)
	POST /api/v1/auth/login          admin JWT (token-bucket rate limited)
	POST /api/v1/rooms               create a room (201, 409 if it exists)
	GET  /api/v1/rooms/{roomID}      room snapshot (404 NOT_FOUND if absent)
	GET  /api/v1/admin/rooms         every live room (JWT + admin role)
	GET  /api/v1/admin/performance   per-route latency window (JWT + admin role)
	GET  /api/v1/admin/audit         security audit trail (JWT + admin role)
	GET  /ws                         WebSocket upgrade
	GET  /, /{roomID}                single-page client (404 for unknown rooms)

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

Request bodies are decoded with goccy/go-json and validated with the structs
in package validation. Authentication (auth.Middleware) and authorization
(authz.Middleware) are injected through NewRouter so tests can substitute
their own instances.
*/
package api
