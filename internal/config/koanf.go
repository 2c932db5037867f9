// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cineswipe/config.yaml",
	"/etc/cineswipe/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Session: SessionConfig{
			MaxMembers:    8,
			MinMembers:    2,
			IdleTimeout:   30 * time.Minute,
			GracePeriod:   30 * time.Second,
			SweepInterval: time.Minute,
			OutboxSize:    64,
			MaxCandidates: 500,
		},
		Security: SecurityConfig{
			TokenTTL:           24 * time.Hour,
			RateLimitCapacity:  5,
			RateLimitRefill:    5.0 / 60.0,
			RateLimitCost:      1,
			RateLimitMaxKeys:   10000,
			RateLimitIdleTTL:   time.Hour,
			APIRateLimitReqs:   120,
			APIRateLimitWindow: time.Minute,
			CORSOrigins:        []string{"*"},
			TrustedProxies:     []string{},
		},
		WebSocket: WebSocketConfig{
			ReadLimit:      8 * 1024,
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			AllowedOrigins: []string{},
		},
		NATS: NATSConfig{
			Enabled:          false,
			URL:              "nats://127.0.0.1:4222",
			EmbeddedServer:   false,
			Host:             "127.0.0.1",
			Port:             4222,
			SubjectPrefix:    "cineswipe.rooms",
			QueueSize:        1024,
			MaxReconnects:    -1,
			ReconnectWait:    2 * time.Second,
			BreakerThreshold: 5,
			BreakerTimeout:   30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers configuration sources, later ones winning:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. environment variables listed in envMappings
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
	"websocket.allowed_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",
	"shell_path":   "server.shell_path",

	// Session
	"room_max_members":    "session.max_members",
	"room_min_members":    "session.min_members",
	"room_idle_timeout":   "session.idle_timeout",
	"room_grace_period":   "session.grace_period",
	"room_sweep_interval": "session.sweep_interval",
	"room_outbox_size":    "session.outbox_size",
	"room_max_candidates": "session.max_candidates",

	// Security
	"jwt_secret":            "security.jwt_secret",
	"token_ttl":             "security.token_ttl",
	"admin_username":        "security.admin_username",
	"admin_password":        "security.admin_password",
	"auth_rate_capacity":    "security.rate_limit_capacity",
	"auth_rate_refill":      "security.rate_limit_refill",
	"auth_rate_cost":        "security.rate_limit_cost",
	"auth_rate_max_keys":    "security.rate_limit_max_keys",
	"auth_rate_idle_ttl":    "security.rate_limit_idle_ttl",
	"disable_rate_limit":    "security.rate_limit_disabled",
	"api_rate_limit_reqs":   "security.api_rate_limit_reqs",
	"api_rate_limit_window": "security.api_rate_limit_window",
	"cors_origins":          "security.cors_origins",
	"trusted_proxies":       "security.trusted_proxies",

	// WebSocket
	"ws_read_limit":      "websocket.read_limit",
	"ws_write_wait":      "websocket.write_wait",
	"ws_pong_wait":       "websocket.pong_wait",
	"ws_allowed_origins": "websocket.allowed_origins",

	// NATS
	"nats_enabled":           "nats.enabled",
	"nats_url":               "nats.url",
	"nats_embedded":          "nats.embedded_server",
	"nats_host":              "nats.host",
	"nats_port":              "nats.port",
	"nats_subject_prefix":    "nats.subject_prefix",
	"nats_queue_size":        "nats.queue_size",
	"nats_max_reconnects":    "nats.max_reconnects",
	"nats_reconnect_wait":    "nats.reconnect_wait",
	"nats_breaker_threshold": "nats.breaker_threshold",
	"nats_breaker_timeout":   "nats.breaker_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are ignored.
//
//	ROOM_GRACE_PERIOD -> session.grace_period
//	NATS_EMBEDDED     -> nats.embedded_server
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
