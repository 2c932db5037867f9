// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 2 * time.Second

// HealthLive is the liveness probe. It succeeds while the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe. It returns 503 when any registered
// dependency check fails.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.checksMu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]ReadinessCheck, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.checksMu.RUnlock()
	sort.Strings(names)

	ready := true
	results := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := checks[name](ctx)
		cancel()
		if err != nil {
			ready = false
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	stats := h.rooms.Stats()
	data := map[string]interface{}{
		"ready":   ready,
		"checks":  results,
		"rooms":   stats.Rooms,
		"members": stats.Members,
		"uptime":  time.Since(h.startTime).Seconds(),
	}
	if !ready {
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service not ready", data)
		return
	}
	WriteSuccess(w, r, data)
}
