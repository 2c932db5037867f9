// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package services provides suture.Service wrappers for CineSwipe components.

Each wrapper translates a component's own lifecycle (ListenAndServe,
RunWithContext, a ticker loop) into suture's context-aware Serve and names
itself via fmt.Stringer for supervisor logs.

# Available Services

  - HTTPServerService: *http.Server with bounded graceful shutdown
  - WebSocketHubService: the connection hub; closes clients on cancel
  - RoomSweeperService: periodic session.Registry.SweepExpired on a clockwork ticker
  - CleanupService: periodic eviction such as auth.RateLimiter.Run

eventprocessor.AsyncSink already implements suture.Service and is added to
the tree directly.
*/
package services
