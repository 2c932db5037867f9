// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/authz"
	"github.com/tomtom215/cineswipe/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
	authz         *authz.Middleware
	ws            http.Handler
	perf          *middleware.PerformanceMonitor
}

// NewRouter creates a router. ws serves the /ws upgrade.
func NewRouter(handler *Handler, chiMw *ChiMiddleware, authMw *auth.Middleware, authzMw *authz.Middleware, ws http.Handler) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
		auth:          authMw,
		authz:         authzMw,
		ws:            ws,
	}
}

// SetPerformanceMonitor records every request into pm.
func (router *Router) SetPerformanceMonitor(pm *middleware.PerformanceMonitor) {
	router.perf = pm
	router.handler.SetPerformanceMonitor(pm)
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	if router.perf != nil {
		r.Use(router.perf.Middleware)
	}
	r.Use(router.chiMiddleware.CORS())
	r.Use(router.auth.SecurityHeaders)
	r.Use(router.auth.Identify)

	r.NotFound(router.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	// The upgrade is kept out of the compressed group; the hijacked
	// connection is not an HTTP response body.
	r.With(
		router.chiMiddleware.RateLimit(),
		router.authz.Authorize("/ws", "connect"),
	).Get("/ws", router.ws.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Compress(5, "application/json", "text/html", "text/plain"))

		r.Route("/api/v1/health", func(r chi.Router) {
			r.Get("/live", router.handler.HealthLive)
			r.Get("/ready", router.handler.HealthReady)
		})

		// Token bucket guards credential endpoints against brute force.
		r.Route("/api/v1/auth", func(r chi.Router) {
			r.Use(router.auth.RateLimit)
			r.Post("/guest", router.handler.GuestToken)
			r.Post("/login", router.handler.Login)
		})

		r.Route("/api/v1/rooms", func(r chi.Router) {
			r.With(
				router.chiMiddleware.RateLimit(),
				router.authz.Authorize("/api/v1/rooms", "create"),
			).Post("/", router.handler.CreateRoom)
			r.With(
				router.authz.Authorize("/api/v1/rooms/:roomID", "read"),
			).Get("/{roomID}", router.handler.GetRoom)
		})

		r.Route("/api/v1/admin", func(r chi.Router) {
			r.Use(router.auth.Authenticate)
			r.Use(router.authz.Authorize("/api/v1/admin/*", "read"))
			r.Get("/rooms", router.handler.AdminRooms)
			r.Get("/performance", router.handler.AdminPerformance)
			r.Get("/audit", router.handler.AdminAudit)
		})

		r.Get("/", router.handler.Shell)
		r.Get("/{roomID}", router.handler.RoomShell)
	})

	return r
}

func (router *Router) notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		NewResponseWriter(w, r).NotFound("Resource not found")
		return
	}
	http.NotFound(w, r)
}
