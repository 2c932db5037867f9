// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/cineswipe/internal/logging"
)

// RoomSweeper is satisfied by *session.Registry.
type RoomSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) int
}

// RoomSweeperService expires idle rooms on a fixed cadence.
type RoomSweeperService struct {
	sweeper  RoomSweeper
	interval time.Duration
	clock    clockwork.Clock
}

// NewRoomSweeperService sweeps every interval (one minute if non-positive).
// A nil clock uses the real clock.
func NewRoomSweeperService(sweeper RoomSweeper, interval time.Duration, clock clockwork.Clock) *RoomSweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoomSweeperService{sweeper: sweeper, interval: interval, clock: clock}
}

// Serve implements suture.Service.
func (s *RoomSweeperService) Serve(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Debug().Dur("interval", s.interval).Msg("Room sweeper started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.Chan():
			s.sweeper.SweepExpired(ctx, now)
		}
	}
}

func (s *RoomSweeperService) String() string {
	return "room-sweeper"
}
