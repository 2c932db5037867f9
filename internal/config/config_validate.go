// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package config

import (
	"fmt"
	"net"
	"strings"
)

// minJWTSecretLength matches the HS256 key size.
const minJWTSecretLength = 32

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateWebSocket(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production or test, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateSession() error {
	s := c.Session
	if s.MinMembers < 1 {
		return fmt.Errorf("ROOM_MIN_MEMBERS must be at least 1, got %d", s.MinMembers)
	}
	if s.MaxMembers < s.MinMembers {
		return fmt.Errorf("ROOM_MAX_MEMBERS (%d) must be >= ROOM_MIN_MEMBERS (%d)", s.MaxMembers, s.MinMembers)
	}
	if s.IdleTimeout <= 0 || s.GracePeriod <= 0 || s.SweepInterval <= 0 {
		return fmt.Errorf("room idle timeout, grace period and sweep interval must be positive")
	}
	if s.OutboxSize < 1 {
		return fmt.Errorf("ROOM_OUTBOX_SIZE must be at least 1")
	}
	if s.MaxCandidates < 1 {
		return fmt.Errorf("ROOM_MAX_CANDIDATES must be at least 1")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	sec := c.Security
	if c.IsProduction() {
		if len(sec.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters in production", minJWTSecretLength)
		}
		for _, o := range sec.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	if sec.JWTSecret != "" && len(sec.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if (sec.AdminUsername == "") != (sec.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if sec.AdminPassword != "" && len(sec.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters")
	}
	if sec.AdminPassword != "" && sec.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_USERNAME is set")
	}
	if sec.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return c.validateRateLimits()
}

func (c *Config) validateRateLimits() error {
	sec := c.Security
	if sec.RateLimitDisabled {
		return nil
	}
	if sec.RateLimitCapacity < 1 || sec.RateLimitCapacity > 10000 {
		return fmt.Errorf("AUTH_RATE_CAPACITY must be between 1 and 10000, got %d", sec.RateLimitCapacity)
	}
	if sec.RateLimitRefill <= 0 {
		return fmt.Errorf("AUTH_RATE_REFILL must be positive")
	}
	if sec.RateLimitCost < 1 || sec.RateLimitCost > sec.RateLimitCapacity {
		return fmt.Errorf("AUTH_RATE_COST must be between 1 and the bucket capacity (%d)", sec.RateLimitCapacity)
	}
	if sec.RateLimitMaxKeys < 1 {
		return fmt.Errorf("AUTH_RATE_MAX_KEYS must be positive")
	}
	if sec.APIRateLimitReqs < 1 || sec.APIRateLimitWindow <= 0 {
		return fmt.Errorf("API_RATE_LIMIT_REQS and API_RATE_LIMIT_WINDOW must be positive")
	}
	for _, p := range sec.TrustedProxies {
		if _, _, err := net.ParseCIDR(p); err == nil {
			continue
		}
		if net.ParseIP(p) == nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", p)
		}
	}
	return nil
}

func (c *Config) validateWebSocket() error {
	ws := c.WebSocket
	if ws.ReadLimit < 256 {
		return fmt.Errorf("WS_READ_LIMIT must be at least 256 bytes")
	}
	if ws.WriteWait <= 0 || ws.PongWait <= 0 {
		return fmt.Errorf("WS_WRITE_WAIT and WS_PONG_WAIT must be positive")
	}
	return nil
}

func (c *Config) validateNATS() error {
	n := c.NATS
	if !n.Enabled {
		return nil
	}
	if !n.EmbeddedServer && n.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true and NATS_EMBEDDED=false")
	}
	if n.EmbeddedServer && (n.Port < 1 || n.Port > 65535) {
		return fmt.Errorf("NATS_PORT must be between 1 and 65535, got %d", n.Port)
	}
	if n.SubjectPrefix == "" || strings.ContainsAny(n.SubjectPrefix, " *>") {
		return fmt.Errorf("NATS_SUBJECT_PREFIX %q is not a valid subject prefix", n.SubjectPrefix)
	}
	if n.QueueSize < 1 {
		return fmt.Errorf("NATS_QUEUE_SIZE must be at least 1")
	}
	if n.BreakerThreshold == 0 {
		return fmt.Errorf("NATS_BREAKER_THRESHOLD must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a recognized level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
