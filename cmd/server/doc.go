// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package main is the entry point for the CineSwipe server.

CineSwipe runs group movie swipe sessions: members of a room vote yes or no on
the same candidate and the room announces a match once everyone agrees.

# Application Architecture

The server runs under Suture v4 process supervision:

	RootSupervisor ("cineswipe")
	├── SessionSupervisor ("session-layer")
	│   ├── RoomSweeperService (idle room expiry)
	│   └── CleanupService (rate limiter bucket eviction)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── AsyncSink (room events to NATS, optional)
	└── APISupervisor ("api-layer")
	    ├── audit.Logger (security audit trail writer)
	    └── HTTPServerService

Component initialization order:

 1. Environment: optional .env file via godotenv
 2. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 3. Logging: zerolog with JSON/console output modes
 4. Event bus: embedded NATS server and Watermill publisher (NATS_ENABLED)
 5. Session registry
 6. Authentication: JWT, admin credentials, token bucket rate limiter
 7. Authorization: Casbin RBAC
 8. WebSocket gateway
 9. HTTP server: Chi router with middleware stack

# Signal Handling

SIGINT and SIGTERM first close every room, so members receive room_closed
and the event sink queues the matching bus events. The supervisor tree is then
cancelled: the sink flushes its queue, the HTTP server drains, and the hub
closes every connection with a normal close frame. The NATS publisher and the
embedded server shut down last.
*/
package main
