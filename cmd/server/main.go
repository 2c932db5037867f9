// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tomtom215/cineswipe/internal/api"
	"github.com/tomtom215/cineswipe/internal/audit"
	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/authz"
	"github.com/tomtom215/cineswipe/internal/config"
	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/middleware"
	"github.com/tomtom215/cineswipe/internal/session"
	"github.com/tomtom215/cineswipe/internal/supervisor"
	"github.com/tomtom215/cineswipe/internal/supervisor/services"
	ws "github.com/tomtom215/cineswipe/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

//nolint:gocyclo // sequential wiring
func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Int("max_members", cfg.Session.MaxMembers).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting CineSwipe")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, err := initEvents(&cfg.NATS)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}

	var opts []session.Option
	if events != nil {
		opts = append(opts, session.WithEventSink(events.sink))
	}
	registry := session.NewRegistry(sessionConfig(&cfg.Session), opts...)

	// === SECURITY ===

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	var admin *auth.AdminAuthenticator
	if cfg.Security.AdminUsername != "" {
		admin, err = auth.NewAdminAuthenticator(cfg.Security.AdminUsername, cfg.Security.AdminPassword)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize admin credentials")
		}
	} else {
		logging.Info().Msg("Admin login disabled (ADMIN_USERNAME not set)")
	}

	auditLog := audit.NewLogger(audit.NewMemoryStore(0), audit.DefaultConfig(), nil)

	limiter := auth.NewRateLimiter(auth.RateLimiterConfigFrom(&cfg.Security), nil)
	authMw, err := auth.NewMiddleware(limiter, jwtManager, auth.MiddlewareOptions{
		RateLimitDisabled: cfg.Security.RateLimitDisabled,
		TrustedProxies:    cfg.Security.TrustedProxies,
		OnDenied: func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
			auditLog.LogRateLimited(r, retryAfter)
			api.RateLimitedResponse(w, r, retryAfter)
		},
		OnUnauthorized: api.UnauthorizedResponse,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize auth middleware")
	}
	auditLog.SetClientIPFunc(authMw.ClientIP)

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	authzMw := authz.NewMiddleware(enforcer, func(w http.ResponseWriter, r *http.Request, status int, message string) {
		if status == http.StatusForbidden {
			auditLog.LogAuthzDenied(r)
		}
		api.AuthorizationErrorResponse(w, r, status, message)
	})

	// === WEBSOCKET GATEWAY ===

	hub := ws.NewHub()
	origins := cfg.WebSocket.AllowedOrigins
	if len(origins) == 0 {
		origins = cfg.Security.CORSOrigins
	}
	wsHandler := ws.NewHandler(hub, registry, ws.ClientConfig{
		ReadLimit:  cfg.WebSocket.ReadLimit,
		WriteWait:  cfg.WebSocket.WriteWait,
		PongWait:   cfg.WebSocket.PongWait,
		OutboxSize: cfg.Session.OutboxSize,
	}, origins)

	// === HTTP ===

	shell, err := api.NewShellPage(cfg.Server.ShellPath)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Server.ShellPath).Msg("Failed to load shell page")
	}

	handler := api.NewHandler(cfg, registry, jwtManager, admin, shell)
	handler.SetAuditLogger(auditLog)
	if events != nil {
		handler.AddReadinessCheck("nats", events.ready)
	}

	chiCfg := api.DefaultChiMiddlewareConfig()
	chiCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	chiCfg.RateLimitRequests = cfg.Security.APIRateLimitReqs
	chiCfg.RateLimitWindow = cfg.Security.APIRateLimitWindow
	chiCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled
	chiCfg.RateLimitKeyFunc = func(r *http.Request) (string, error) {
		return authMw.ClientIP(r), nil
	}

	perf := middleware.NewPerformanceMonitor(1000, time.Second)
	handler.SetPerformanceMonitor(perf)

	router := api.NewRouter(handler, api.NewChiMiddleware(chiCfg), authMw, authzMw, wsHandler)
	router.SetPerformanceMonitor(perf)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddSessionService(services.NewRoomSweeperService(registry, cfg.Session.SweepInterval, nil))
	tree.AddSessionService(services.NewCleanupService("ratelimit-cleanup", limiter, time.Minute))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	if events != nil {
		tree.AddMessagingService(events.sink)
	}
	tree.AddAPIService(auditLog)
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))

	// The tree runs on its own context so rooms can be closed, and their
	// room_closed events flushed through the sink, before services stop.
	treeCtx, cancelTree := context.WithCancel(context.Background())
	defer cancelTree()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(treeCtx)

	failed := false
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, closing rooms")

		closeCtx, cancelClose := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := registry.Shutdown(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Failed to close rooms")
		}
		cancelClose()

		cancelTree()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
			failed = true
		}
		closeCtx, cancelClose := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := registry.Shutdown(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Failed to close rooms")
		}
		cancelClose()
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	events.close(shutdownCtx)

	if failed {
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

func sessionConfig(c *config.SessionConfig) session.Config {
	sc := session.DefaultConfig()
	sc.MaxMembers = c.MaxMembers
	sc.MinMembers = c.MinMembers
	sc.IdleTimeout = c.IdleTimeout
	sc.GracePeriod = c.GracePeriod
	if c.MaxCandidates > 0 {
		sc.MaxCandidates = c.MaxCandidates
	}
	return sc
}
