// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package supervisor provides process supervision for CineSwipe using suture v4.

# Overview

Long-running services are organized into three layers for failure isolation:

	RootSupervisor ("cineswipe")
	├── SessionSupervisor ("session-layer")
	│   ├── RoomSweeperService
	│   └── CleanupService (rate limiter)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── eventprocessor.AsyncSink (if NATS is enabled)
	└── APISupervisor ("api-layer")
	    ├── audit.Logger
	    └── HTTPServerService

A crash in the event sink restarts the sink alone; the HTTP server and the
WebSocket hub keep serving.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddSessionService(services.NewRoomSweeperService(registry, time.Minute, nil))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

# Failure Handling

Each failure increments a counter that decays over FailureDecay seconds. Past
FailureThreshold the supervisor waits FailureBackoff before the next restart.
Supervisor events are logged through sutureslog into the zerolog pipeline.

Service return values:
  - nil: stopped cleanly, not restarted
  - error: crashed, restarted
  - ctx.Err() after cancellation: shutdown

# Rooms Are Not Supervised

Room goroutines are owned by session.Registry, which closes them on
Shutdown. A room that stops is removed from the registry rather than
restarted, since its membership cannot be recovered.
*/
package supervisor
