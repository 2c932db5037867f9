// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package services

import (
	"context"
	"time"
)

// PeriodicRunner is satisfied by *auth.RateLimiter.
type PeriodicRunner interface {
	Run(ctx context.Context, interval time.Duration)
}

// CleanupService supervises a component that evicts stale state on its own
// ticker until canceled.
type CleanupService struct {
	runner   PeriodicRunner
	interval time.Duration
	name     string
}

// NewCleanupService creates a named cleanup service.
func NewCleanupService(name string, runner PeriodicRunner, interval time.Duration) *CleanupService {
	return &CleanupService{runner: runner, interval: interval, name: name}
}

// Serve implements suture.Service.
func (c *CleanupService) Serve(ctx context.Context) error {
	c.runner.Run(ctx, c.interval)
	return ctx.Err()
}

func (c *CleanupService) String() string {
	return c.name
}
