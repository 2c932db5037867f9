// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package eventprocessor

import (
	"time"

	"github.com/tomtom215/cineswipe/internal/config"
)

// PublisherConfig configures the NATS connection behind the publisher.
type PublisherConfig struct {
	URL             string
	SubjectPrefix   string // subjects are <prefix>.<room_id>.<event_type>
	MaxReconnects   int    // -1 for unlimited
	ReconnectWait   time.Duration
	ReconnectBuffer int
}

// DefaultPublisherConfig returns production defaults.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:             url,
		SubjectPrefix:   "cineswipe.rooms",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024,
	}
}

// CircuitBreakerConfig configures the breaker wrapped around publish calls.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Consecutive failures before opening
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// ServerConfig configures the embedded NATS server.
type ServerConfig struct {
	Host string
	Port int // -1 picks a random free port
}

// Settings derives the publisher, breaker and embedded server configuration
// from the application's NATS section.
func Settings(cfg *config.NATSConfig) (PublisherConfig, CircuitBreakerConfig, ServerConfig) {
	pub := DefaultPublisherConfig(cfg.URL)
	if cfg.SubjectPrefix != "" {
		pub.SubjectPrefix = cfg.SubjectPrefix
	}
	if cfg.MaxReconnects != 0 {
		pub.MaxReconnects = cfg.MaxReconnects
	}
	if cfg.ReconnectWait > 0 {
		pub.ReconnectWait = cfg.ReconnectWait
	}

	cb := DefaultCircuitBreakerConfig("nats-publisher")
	if cfg.BreakerThreshold > 0 {
		cb.FailureThreshold = cfg.BreakerThreshold
	}
	if cfg.BreakerTimeout > 0 {
		cb.Timeout = cfg.BreakerTimeout
	}

	return pub, cb, ServerConfig{Host: cfg.Host, Port: cfg.Port}
}
