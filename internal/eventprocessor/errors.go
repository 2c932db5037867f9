// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package eventprocessor

import "errors"

var (
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("publisher is closed")

	// ErrServerNotReady is returned when the embedded server fails to accept
	// connections in time.
	ErrServerNotReady = errors.New("NATS server not ready within timeout")
)
