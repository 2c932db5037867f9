// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/cineswipe/internal/metrics"
)

// ChiMiddlewareConfig holds configuration for Chi middleware factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	// Coarse per-client limit for room creation and WebSocket upgrades.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc
}

// DefaultChiMiddlewareConfig returns a secure default configuration. CORS
// origins default to empty, requiring explicit configuration.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins:   []string{},
		CORSAllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,

		RateLimitRequests: 60,
		RateLimitWindow:   time.Minute,
	}
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a new Chi middleware factory with the given configuration.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   config.CORSAllowedMethods,
		AllowedHeaders:   config.CORSAllowedHeaders,
		ExposedHeaders:   config.CORSExposedHeaders,
		AllowCredentials: config.CORSAllowCredentials,
		MaxAge:           config.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns the go-chi/cors middleware. It must be global so OPTIONS
// preflights reach it.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns the sliding-window limiter from go-chi/httprate. The
// token-bucket limiter on the auth endpoints is separate (auth.RateLimiter).
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || m.config.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	keyFunc := m.config.RateLimitKeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		m.config.RateLimitRequests,
		m.config.RateLimitWindow,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitDenied(r.URL.Path)
			NewResponseWriter(w, r).TooManyRequests("Too many requests")
		}),
	)
}

// RateLimitedResponse is the auth.DeniedFunc used by the token-bucket limiter.
func RateLimitedResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	NewResponseWriter(w, r).ErrorWithDetails(http.StatusTooManyRequests, ErrCodeTooManyRequests,
		"Too many attempts, try again later",
		map[string]string{"retry_after_seconds": strconv.Itoa(int(retryAfter.Seconds()))})
}

// UnauthorizedResponse is the auth.UnauthorizedFunc for JSON routes.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request, _ error) {
	NewResponseWriter(w, r).Unauthorized("Authentication required")
}

// AuthorizationErrorResponse is the authz.ErrorFunc for JSON routes.
func AuthorizationErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	code := ErrCodeForbidden
	if status >= http.StatusInternalServerError {
		code = ErrCodeInternalError
	}
	NewResponseWriter(w, r).Error(status, code, message)
}
