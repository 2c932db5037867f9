// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestPerformanceMonitor_Stats(t *testing.T) {
	pm := NewPerformanceMonitor(100, time.Second)
	for i := 1; i <= 10; i++ {
		pm.RecordRequest(RequestMetrics{Route: "/a", Method: http.MethodGet, Duration: time.Duration(i) * time.Millisecond, StatusCode: 200})
	}
	pm.RecordRequest(RequestMetrics{Route: "/b", Method: http.MethodPost, Duration: 5 * time.Millisecond, StatusCode: 500})

	stats := pm.GetStats()
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	a := stats[0]
	if a.Endpoint != "GET /a" || a.RequestCount != 10 {
		t.Errorf("busiest endpoint = %+v", a)
	}
	if a.AvgMS != 5.5 || a.P50MS != 5 || a.MaxMS != 10 {
		t.Errorf("avg/p50/max = %v/%d/%d, want 5.5/5/10", a.AvgMS, a.P50MS, a.MaxMS)
	}
	if stats[1].Errors != 1 {
		t.Errorf("errors for POST /b = %d, want 1", stats[1].Errors)
	}
}

func TestPerformanceMonitor_WindowBounded(t *testing.T) {
	pm := NewPerformanceMonitor(3, time.Second)
	for i := 0; i < 5; i++ {
		pm.RecordRequest(RequestMetrics{Route: "/a", Method: http.MethodGet})
	}
	if got := pm.GetStats()[0].RequestCount; got != 3 {
		t.Errorf("RequestCount = %d, want 3", got)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	pm := NewPerformanceMonitor(10, time.Second)
	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/rooms/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rooms/x", nil))

	stats := pm.GetStats()
	if len(stats) != 1 || stats[0].Endpoint != "GET /rooms/{id}" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPercentile(t *testing.T) {
	if percentile(nil, 0.5) != 0 {
		t.Error("percentile of empty slice should be 0")
	}
	if got := percentile([]int64{1, 2, 3, 4}, 0.99); got != 3 {
		t.Errorf("percentile(0.99) = %d, want 3", got)
	}
}
