// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/cineswipe/internal/logging"
)

// RequestMetrics is one completed request.
type RequestMetrics struct {
	Route      string
	Method     string
	Duration   time.Duration
	StatusCode int
	Timestamp  time.Time
}

// EndpointStats aggregates the sliding window for one method and route.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        int64   `json:"p50_ms"`
	P95MS        int64   `json:"p95_ms"`
	P99MS        int64   `json:"p99_ms"`
	MaxMS        int64   `json:"max_ms"`
	Errors       int64   `json:"errors"`
}

// PerformanceMonitor keeps a bounded window of recent requests for the admin
// endpoint and logs requests slower than SlowThreshold.
type PerformanceMonitor struct {
	mu            sync.RWMutex
	window        []RequestMetrics
	maxMetrics    int
	slowThreshold time.Duration
}

// NewPerformanceMonitor creates a monitor holding at most maxMetrics requests.
func NewPerformanceMonitor(maxMetrics int, slowThreshold time.Duration) *PerformanceMonitor {
	if maxMetrics <= 0 {
		maxMetrics = 1000
	}
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}
	return &PerformanceMonitor{
		window:        make([]RequestMetrics, 0, maxMetrics),
		maxMetrics:    maxMetrics,
		slowThreshold: slowThreshold,
	}
}

// RecordRequest adds a request to the sliding window.
func (pm *PerformanceMonitor) RecordRequest(m RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.window = append(pm.window, m)
	if len(pm.window) > pm.maxMetrics {
		pm.window = pm.window[1:]
	}
}

// GetStats returns per-endpoint statistics, busiest first.
func (pm *PerformanceMonitor) GetStats() []EndpointStats {
	pm.mu.RLock()
	byEndpoint := make(map[string][]RequestMetrics)
	for _, m := range pm.window {
		key := m.Method + " " + m.Route
		byEndpoint[key] = append(byEndpoint[key], m)
	}
	pm.mu.RUnlock()

	stats := make([]EndpointStats, 0, len(byEndpoint))
	for endpoint, reqs := range byEndpoint {
		ms := make([]int64, len(reqs))
		var sum, errs int64
		for i, m := range reqs {
			ms[i] = m.Duration.Milliseconds()
			sum += ms[i]
			if m.StatusCode >= 500 {
				errs++
			}
		}
		sort.Slice(ms, func(i, j int) bool { return ms[i] < ms[j] })

		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: int64(len(ms)),
			AvgMS:        float64(sum) / float64(len(ms)),
			P50MS:        percentile(ms, 0.50),
			P95MS:        percentile(ms, 0.95),
			P99MS:        percentile(ms, 0.99),
			MaxMS:        ms[len(ms)-1],
			Errors:       errs,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

// Middleware records every request passing through it.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		pm.RecordRequest(RequestMetrics{
			Route:      route,
			Method:     r.Method,
			Duration:   duration,
			StatusCode: status,
			Timestamp:  start,
		})

		// Upgraded sockets live as long as the connection; they are not slow requests.
		if duration > pm.slowThreshold && status != http.StatusSwitchingProtocols {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", duration).
				Msg("Slow request detected")
		}
	})
}

// percentile picks from a sorted slice by nearest rank.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
