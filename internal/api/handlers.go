// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/cineswipe/internal/audit"
	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/config"
	"github.com/tomtom215/cineswipe/internal/middleware"
	"github.com/tomtom215/cineswipe/internal/session"
)

// RoomRegistry is the part of session.Registry the HTTP surface uses.
type RoomRegistry interface {
	Create(ctx context.Context, id string, candidates []string) (session.RoomView, error)
	Lookup(id string) (session.RoomView, bool)
	Exists(id string) bool
	Stats() session.Stats
	List() []session.RoomView
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	config    *config.Config
	rooms     RoomRegistry
	jwt       *auth.JWTManager
	admin     *auth.AdminAuthenticator
	shell     *ShellPage
	perf      *middleware.PerformanceMonitor
	audit     *audit.Logger
	startTime time.Time

	checksMu sync.RWMutex
	checks   map[string]ReadinessCheck
}

// NewHandler creates the API handlers. admin may be nil or disabled, in which
// case login always fails.
func NewHandler(cfg *config.Config, rooms RoomRegistry, jwtManager *auth.JWTManager, admin *auth.AdminAuthenticator, shell *ShellPage) *Handler {
	return &Handler{
		config:    cfg,
		rooms:     rooms,
		jwt:       jwtManager,
		admin:     admin,
		shell:     shell,
		startTime: time.Now(),
		checks:    make(map[string]ReadinessCheck),
	}
}

// SetPerformanceMonitor exposes the monitor's window on the admin API.
func (h *Handler) SetPerformanceMonitor(pm *middleware.PerformanceMonitor) {
	h.perf = pm
}

// SetAuditLogger records auth outcomes and exposes the trail on the admin API.
func (h *Handler) SetAuditLogger(l *audit.Logger) {
	h.audit = l
}

// AddReadinessCheck registers a named dependency for /health/ready.
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checksMu.Lock()
	defer h.checksMu.Unlock()
	h.checks[name] = check
}

func (h *Handler) secureCookies() bool {
	return h.config != nil && h.config.Server.Environment == "production"
}
