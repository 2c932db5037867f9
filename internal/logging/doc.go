// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

// Package logging provides the zerolog-based structured logger used across CineSwipe.
//
// A single global logger is configured once from main and read through the
// level helpers. JSON output is the default; console output is meant for
// local development.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("room_id", id).Msg("Room created")
//	logging.Err(err).Msg("Publish failed")
//
// # Context Fields
//
// Request, correlation, room and connection identifiers travel on the
// context and are attached by Ctx:
//
//	ctx = logging.ContextWithRoomID(ctx, roomID)
//	ctx = logging.ContextWithConnID(ctx, connID)
//	logging.Ctx(ctx).Debug().Msg("Vote recorded")
//
// # Suture Integration
//
// NewSlogLogger returns a *slog.Logger that writes through zerolog so that
// sutureslog can report supervisor events in the same stream.
package logging
