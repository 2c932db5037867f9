// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/cineswipe/internal/audit"
	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/authz"
	"github.com/tomtom215/cineswipe/internal/config"
	"github.com/tomtom215/cineswipe/internal/middleware"
	"github.com/tomtom215/cineswipe/internal/session"
)

const (
	testSecret        = "test-secret-key-that-is-at-least-32-characters-long"
	testAdminUser     = "admin"
	testAdminPassword = "correct-horse-battery"
)

type testEnv struct {
	handler  http.Handler
	api      *Handler
	registry *session.Registry
	jwt      *auth.JWTManager
	audit    *audit.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Security.JWTSecret = testSecret
	cfg.Security.TokenTTL = time.Hour

	reg := session.NewRegistry(session.Config{MaxMembers: 2, MinMembers: 2})
	t.Cleanup(func() { _ = reg.Shutdown(context.Background()) })

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	admin, err := auth.NewAdminAuthenticator(testAdminUser, testAdminPassword)
	if err != nil {
		t.Fatal(err)
	}
	limiter := auth.NewRateLimiter(auth.RateLimiterConfig{Capacity: 5, RefillPerSecond: 0.001}, clockwork.NewFakeClock())
	authMw, err := auth.NewMiddleware(limiter, jwtManager, auth.MiddlewareOptions{
		OnDenied:       RateLimitedResponse,
		OnUnauthorized: UnauthorizedResponse,
	})
	if err != nil {
		t.Fatal(err)
	}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatal(err)
	}
	shell, err := NewShellPage("")
	if err != nil {
		t.Fatal(err)
	}

	h := NewHandler(cfg, reg, jwtManager, admin, shell)

	auditStore := audit.NewMemoryStore(100)
	auditLog := audit.NewLogger(auditStore, audit.DefaultConfig(), nil)
	auditCtx, stopAudit := context.WithCancel(context.Background())
	auditDone := make(chan struct{})
	go func() {
		defer close(auditDone)
		_ = auditLog.Serve(auditCtx)
	}()
	t.Cleanup(func() {
		stopAudit()
		<-auditDone
	})
	h.SetAuditLogger(auditLog)
	ws := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	router := NewRouter(h, NewChiMiddleware(nil), authMw, authz.NewMiddleware(enforcer, AuthorizationErrorResponse), ws)
	router.SetPerformanceMonitor(middleware.NewPerformanceMonitor(100, time.Second))

	return &testEnv{handler: router.SetupChi(), api: h, registry: reg, jwt: jwtManager, audit: auditStore}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return resp
}
