// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package config loads and validates CineSwipe configuration.

Configuration is layered with koanf v2: struct defaults, then an optional
YAML file, then environment variables. Later layers win.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 0.0.0.0:8080), HTTP_TIMEOUT
  - ENVIRONMENT: development, production or test
  - SHELL_PATH: HTML page served for / and /{roomID}

Rooms:
  - ROOM_MAX_MEMBERS (default 8), ROOM_MIN_MEMBERS (default 2)
  - ROOM_IDLE_TIMEOUT (default 30m), ROOM_GRACE_PERIOD (default 30s)
  - ROOM_SWEEP_INTERVAL, ROOM_OUTBOX_SIZE, ROOM_MAX_CANDIDATES

Security:
  - JWT_SECRET (32+ characters, required in production), TOKEN_TTL
  - ADMIN_USERNAME, ADMIN_PASSWORD
  - AUTH_RATE_CAPACITY, AUTH_RATE_REFILL (tokens/second), AUTH_RATE_COST
  - AUTH_RATE_MAX_KEYS, AUTH_RATE_IDLE_TTL, DISABLE_RATE_LIMIT
  - API_RATE_LIMIT_REQS, API_RATE_LIMIT_WINDOW
  - CORS_ORIGINS, TRUSTED_PROXIES (comma-separated)

NATS event fan-out:
  - NATS_ENABLED, NATS_URL, NATS_EMBEDDED, NATS_HOST, NATS_PORT
  - NATS_SUBJECT_PREFIX (default cineswipe.rooms), NATS_QUEUE_SIZE
  - NATS_MAX_RECONNECTS, NATS_RECONNECT_WAIT
  - NATS_BREAKER_THRESHOLD, NATS_BREAKER_TIMEOUT

Logging:
  - LOG_LEVEL, LOG_FORMAT (json or console), LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
