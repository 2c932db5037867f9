// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cineswipe/internal/config"
	"github.com/tomtom215/cineswipe/internal/eventprocessor"
	"github.com/tomtom215/cineswipe/internal/logging"
)

// errBreakerOpen fails readiness while the publisher's breaker is open.
var errBreakerOpen = errors.New("nats publisher circuit breaker open")

// eventComponents holds the optional room event bus.
type eventComponents struct {
	server    *eventprocessor.EmbeddedServer // nil when connecting to an external NATS
	publisher *eventprocessor.Publisher
	breaker   *gobreaker.CircuitBreaker[interface{}]
	sink      *eventprocessor.AsyncSink
}

// initEvents starts the event bus when NATS is enabled and returns nil
// otherwise. The embedded server, when requested, is started before the
// publisher connects to it.
func initEvents(cfg *config.NATSConfig) (*eventComponents, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Room event publishing disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	pubCfg, cbCfg, srvCfg := eventprocessor.Settings(cfg)
	c := &eventComponents{}

	if cfg.EmbeddedServer {
		srv, err := eventprocessor.NewEmbeddedServer(srvCfg, 10*time.Second)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		c.server = srv
		pubCfg.URL = srv.ClientURL()
		logging.Info().Str("url", pubCfg.URL).Msg("Embedded NATS server started")
	}

	pub, err := eventprocessor.NewNATSPublisher(pubCfg, eventprocessor.NewWatermillLogger())
	if err != nil {
		c.close(context.Background())
		return nil, fmt.Errorf("connect NATS publisher: %w", err)
	}
	c.publisher = pub
	c.breaker = eventprocessor.NewCircuitBreaker(cbCfg)
	pub.SetCircuitBreaker(c.breaker)
	c.sink = eventprocessor.NewAsyncSink(pub, cfg.QueueSize)

	logging.Info().
		Str("url", pubCfg.URL).
		Str("subject_prefix", pubCfg.SubjectPrefix).
		Msg("Room event publishing enabled")
	return c, nil
}

// ready reports whether events can currently reach the bus.
func (c *eventComponents) ready(context.Context) error {
	if c.server != nil && !c.server.IsRunning() {
		return eventprocessor.ErrServerNotReady
	}
	if c.breaker != nil && c.breaker.State() == gobreaker.StateOpen {
		return errBreakerOpen
	}
	return nil
}

// close releases the publisher, then the embedded server. Safe on nil.
func (c *eventComponents) close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing NATS publisher")
		}
	}
	if c.server != nil {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down embedded NATS")
		}
	}
}
