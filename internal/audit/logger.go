// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package audit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/metrics"
)

// Config holds configuration for the audit logger.
type Config struct {
	Enabled bool

	// MinSeverity drops events below this level.
	MinSeverity Severity

	// Retention is how long events are kept; CleanupInterval is how often
	// expired events are removed.
	Retention       time.Duration
	CleanupInterval time.Duration

	// BufferSize bounds events waiting to be written.
	BufferSize int

	// LogToStdout mirrors every event to the application log.
	LogToStdout bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		MinSeverity:     SeverityInfo,
		Retention:       7 * 24 * time.Hour,
		CleanupInterval: time.Hour,
		BufferSize:      1000,
	}
}

// ClientIPFunc resolves the caller's address, honoring trusted proxies.
type ClientIPFunc func(r *http.Request) string

// Logger records security events. Log never blocks: events are buffered and
// written by Serve, and dropped when the buffer is full. All methods are safe
// on a nil *Logger.
type Logger struct {
	config   *Config
	store    Store
	clock    clockwork.Clock
	events   chan *Event
	clientIP ClientIPFunc

	mu sync.RWMutex
}

// NewLogger creates a logger writing to store. A nil clock uses the wall clock.
func NewLogger(store Store, config *Config, clock clockwork.Clock) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Logger{
		config:   config,
		store:    store,
		clock:    clock,
		events:   make(chan *Event, config.BufferSize),
		clientIP: remoteHost,
	}
}

// SetClientIPFunc overrides how Source.IPAddress is derived.
func (l *Logger) SetClientIPFunc(fn ClientIPFunc) {
	if l == nil || fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clientIP = fn
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Log enqueues event, filling in ID and Timestamp when unset.
func (l *Logger) Log(event *Event) {
	if l == nil || !l.config.Enabled {
		return
	}
	if severityOrder[event.Severity] < severityOrder[l.config.MinSeverity] {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.clock.Now().UTC()
	}

	select {
	case l.events <- event:
	default:
		metrics.RecordAuditEvent(string(event.Type), "dropped")
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).
			Msg("Audit event buffer full, dropping event")
	}
}

// Serve implements suture.Service: it writes buffered events and enforces
// retention until ctx is canceled, then drains what is left.
func (l *Logger) Serve(ctx context.Context) error {
	interval := l.config.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := l.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case event := <-l.events:
			l.write(event)
		case now := <-ticker.Chan():
			l.cleanup(ctx, now)
		}
	}
}

func (l *Logger) String() string {
	return "audit-logger"
}

func (l *Logger) drain() {
	for {
		select {
		case event := <-l.events:
			l.write(event)
		default:
			return
		}
	}
}

func (l *Logger) write(event *Event) {
	if l.config.LogToStdout {
		if data, err := json.Marshal(event); err == nil {
			logging.Info().RawJSON("event", data).Msg("Audit event")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.Save(ctx, event); err != nil {
		metrics.RecordAuditEvent(string(event.Type), "dropped")
		logging.Error().Err(err).Msg("Failed to save audit event")
		return
	}
	metrics.RecordAuditEvent(string(event.Type), "recorded")
}

func (l *Logger) cleanup(ctx context.Context, now time.Time) {
	if l.config.Retention <= 0 {
		return
	}
	n, err := l.store.Delete(ctx, now.Add(-l.config.Retention))
	if err != nil {
		logging.Error().Err(err).Msg("Audit cleanup error")
		return
	}
	if n > 0 {
		logging.Info().Int64("count", n).Msg("Cleaned up old audit events")
	}
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Count returns the number of events matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// event builds an event carrying the request's caller, source and request ID.
func (l *Logger) event(r *http.Request, typ EventType, sev Severity, outcome Outcome, action string) *Event {
	l.mu.RLock()
	ipFunc := l.clientIP
	l.mu.RUnlock()

	e := &Event{
		Type:      typ,
		Severity:  sev,
		Outcome:   outcome,
		Action:    action,
		Source:    Source{IPAddress: ipFunc(r), UserAgent: r.UserAgent()},
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		e.Actor = Actor{ID: claims.Subject, Name: claims.DisplayName, Role: claims.Role}
	}
	return e
}

// LogGuestToken records issuance of a guest token.
func (l *Logger) LogGuestToken(r *http.Request, userID, displayName string) {
	if l == nil {
		return
	}
	e := l.event(r, EventTypeGuestToken, SeverityInfo, OutcomeSuccess, "guest_token")
	e.Actor = Actor{ID: userID, Name: displayName, Role: auth.RoleGuest}
	l.Log(e)
}

// LogLoginSuccess records a successful admin login.
func (l *Logger) LogLoginSuccess(r *http.Request, username string) {
	if l == nil {
		return
	}
	e := l.event(r, EventTypeLoginSuccess, SeverityInfo, OutcomeSuccess, "login")
	e.Actor = Actor{ID: username, Name: username, Role: auth.RoleAdmin}
	l.Log(e)
}

// LogLoginFailure records a rejected admin login. The password is never logged.
func (l *Logger) LogLoginFailure(r *http.Request, username, reason string) {
	if l == nil {
		return
	}
	e := l.event(r, EventTypeLoginFailure, SeverityWarning, OutcomeFailure, "login")
	e.Actor = Actor{Name: username}
	e.Description = reason
	l.Log(e)
}

// LogRateLimited records a request rejected by a rate limiter.
func (l *Logger) LogRateLimited(r *http.Request, retryAfter time.Duration) {
	if l == nil {
		return
	}
	e := l.event(r, EventTypeRateLimited, SeverityWarning, OutcomeFailure, r.Method)
	e.Resource = r.URL.Path
	e.Description = "retry after " + retryAfter.String()
	l.Log(e)
}

// LogAuthzDenied records a request the policy rejected.
func (l *Logger) LogAuthzDenied(r *http.Request) {
	if l == nil {
		return
	}
	e := l.event(r, EventTypeAuthzDenied, SeverityWarning, OutcomeFailure, r.Method)
	e.Resource = r.URL.Path
	l.Log(e)
}
