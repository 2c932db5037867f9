// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package eventprocessor

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWatermillLoggerFrom(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.Info("connected", watermill.LogFields{"url": "nats://x"})
	l.With(watermill.LogFields{"topic": "t"}).Error("publish failed", errors.New("boom"), nil)
	l.Trace("hidden", nil)

	out := buf.String()
	for _, want := range []string{`"message":"connected"`, `"url":"nats://x"`, `"topic":"t"`, `"error":"boom"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("trace should be filtered at debug level")
	}
}
