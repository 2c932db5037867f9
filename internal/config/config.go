// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package config

import (
	"fmt"
	"time"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Session   SessionConfig   `koanf:"session"`
	Security  SecurityConfig  `koanf:"security"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	NATS      NATSConfig      `koanf:"nats"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production

	// ShellPath is an optional HTML file served for "/" and "/{roomID}".
	// Empty serves the built-in page.
	ShellPath string `koanf:"shell_path"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SessionConfig tunes room lifecycle and capacity.
type SessionConfig struct {
	MaxMembers    int           `koanf:"max_members"`
	MinMembers    int           `koanf:"min_members"`    // members required before voting opens
	IdleTimeout   time.Duration `koanf:"idle_timeout"`   // inactivity before a room is expired
	GracePeriod   time.Duration `koanf:"grace_period"`   // empty room lifetime before teardown
	SweepInterval time.Duration `koanf:"sweep_interval"` // idle sweeper cadence
	OutboxSize    int           `koanf:"outbox_size"`    // per-connection send buffer
	MaxCandidates int           `koanf:"max_candidates"` // queue cap per room
}

// SecurityConfig holds token, credential and rate limiting settings.
type SecurityConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	AdminUsername string        `koanf:"admin_username"`
	AdminPassword string        `koanf:"admin_password"`

	// Token bucket guarding /api/v1/auth/*.
	RateLimitCapacity int           `koanf:"rate_limit_capacity"`
	RateLimitRefill   float64       `koanf:"rate_limit_refill"` // tokens per second
	RateLimitCost     int           `koanf:"rate_limit_cost"`
	RateLimitMaxKeys  int           `koanf:"rate_limit_max_keys"`
	RateLimitIdleTTL  time.Duration `koanf:"rate_limit_idle_ttl"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// Coarse per-IP limit on room creation and WebSocket upgrades.
	APIRateLimitReqs   int           `koanf:"api_rate_limit_reqs"`
	APIRateLimitWindow time.Duration `koanf:"api_rate_limit_window"`

	CORSOrigins    []string `koanf:"cors_origins"`
	TrustedProxies []string `koanf:"trusted_proxies"`
}

// WebSocketConfig holds connection pump settings.
type WebSocketConfig struct {
	ReadLimit      int64         `koanf:"read_limit"`
	WriteWait      time.Duration `koanf:"write_wait"`
	PongWait       time.Duration `koanf:"pong_wait"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
}

// NATSConfig controls optional fan-out of room events to NATS.
type NATSConfig struct {
	Enabled          bool          `koanf:"enabled"`
	URL              string        `koanf:"url"`
	EmbeddedServer   bool          `koanf:"embedded_server"`
	Host             string        `koanf:"host"`
	Port             int           `koanf:"port"`
	SubjectPrefix    string        `koanf:"subject_prefix"`
	QueueSize        int           `koanf:"queue_size"`
	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait"`
	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

// LoggingConfig mirrors logging.Config for the loader.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether stricter validation applies.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, an optional YAML file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
