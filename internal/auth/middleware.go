// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/metrics"
)

type contextKey string

const (
	// ClaimsContextKey holds the *Claims of an authenticated request.
	ClaimsContextKey contextKey = "claims"
	// NonceContextKey holds the CSP nonce generated for the request.
	NonceContextKey contextKey = "csp_nonce"
)

// TokenCookieName is the cookie the shell page stores its token in.
const TokenCookieName = "cineswipe_token"

// DeniedFunc writes the response for a rate-limited request.
type DeniedFunc func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)

// UnauthorizedFunc writes the response for a request without a valid token.
type UnauthorizedFunc func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOptions configures Middleware.
type MiddlewareOptions struct {
	RateLimitDisabled bool
	TrustedProxies    []string // IPs or CIDRs whose forwarding headers are honored
	OnDenied          DeniedFunc
	OnUnauthorized    UnauthorizedFunc
}

// Middleware bundles the HTTP security middleware.
type Middleware struct {
	limiter        *RateLimiter
	jwt            *JWTManager
	disabled       bool
	trusted        []*net.IPNet
	onDenied       DeniedFunc
	onUnauthorized UnauthorizedFunc
}

// NewMiddleware creates the middleware set. limiter and jwtManager may be nil
// when the corresponding middleware is not used.
func NewMiddleware(limiter *RateLimiter, jwtManager *JWTManager, opts MiddlewareOptions) (*Middleware, error) {
	trusted, err := parseTrustedProxies(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}
	m := &Middleware{
		limiter:        limiter,
		jwt:            jwtManager,
		disabled:       opts.RateLimitDisabled,
		trusted:        trusted,
		onDenied:       opts.OnDenied,
		onUnauthorized: opts.OnUnauthorized,
	}
	if m.onDenied == nil {
		m.onDenied = func(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
			http.Error(w, ErrRateLimited.Error(), http.StatusTooManyRequests)
		}
	}
	if m.onUnauthorized == nil {
		m.onUnauthorized = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
	}
	return m, nil
}

func parseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.Contains(e, "/") {
			ip := net.ParseIP(e)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", e)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// RateLimit admits a request only if the client's token bucket holds enough
// tokens. Denied requests never reach next.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled || m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		ip := m.ClientIP(r)
		if !m.limiter.Allow(ip) {
			retry := m.limiter.RetryAfter(ip)
			metrics.RecordRateLimitDenied(r.URL.Path)
			logging.Ctx(r.Context()).Warn().
				Str("client_ip", ip).
				Str("path", r.URL.Path).
				Dur("retry_after", retry).
				Msg("Rate limit exceeded")
			if retry > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
			}
			m.onDenied(w, r, retry)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Identify attaches claims to the context when the request carries a valid
// token. Requests without one pass through anonymously.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.jwt != nil {
			if raw := TokenFromRequest(r); raw != "" {
				if claims, err := m.jwt.ValidateToken(raw); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticate requires a valid token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.jwt == nil {
			m.onUnauthorized(w, r, ErrInvalidToken)
			return
		}
		raw := TokenFromRequest(r)
		if raw == "" {
			m.onUnauthorized(w, r, ErrInvalidToken)
			return
		}
		claims, err := m.jwt.ValidateToken(raw)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token rejected")
			m.onUnauthorized(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims)))
	})
}

// ClaimsFromContext returns the claims attached by Identify or Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// TokenFromRequest looks for a bearer token, then the token query parameter
// (browsers cannot set headers on WebSocket upgrades), then the token cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if c, err := r.Cookie(TokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

// SecurityHeaders sets a strict CSP with a per-request script nonce plus the
// usual hardening headers.
func (m *Middleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce := generateNonce()

		csp := "default-src 'self'; " +
			"script-src 'self' 'nonce-" + nonce + "'; " +
			"style-src 'self' 'unsafe-inline' fonts.googleapis.com; " +
			"img-src 'self' data: image.tmdb.org www.themoviedb.org; " +
			"connect-src 'self' ws: wss:; " +
			"frame-ancestors 'none'; base-uri 'self'; form-action 'self'"

		h := w.Header()
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), NonceContextKey, nonce)))
	})
}

// NonceFromContext returns the CSP nonce set by SecurityHeaders.
func NonceFromContext(ctx context.Context) string {
	nonce, _ := ctx.Value(NonceContextKey).(string)
	return nonce
}

func generateNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// ClientIP returns the address used as the rate-limit key. Forwarding headers
// are honored only when the direct peer is a trusted proxy.
func (m *Middleware) ClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}

	if !m.isTrusted(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return m.forwardedClient(xff, peer)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return peer
}

// forwardedClient walks X-Forwarded-For from the right, skipping trusted
// proxies. Entries left of the first untrusted hop are client-controlled and
// never used. A malformed hop or an all-trusted chain yields peer.
func (m *Middleware) forwardedClient(xff, peer string) string {
	hops := strings.Split(xff, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if net.ParseIP(hop) == nil {
			return peer
		}
		if !m.isTrusted(hop) {
			return hop
		}
	}
	return peer
}

func (m *Middleware) isTrusted(addr string) bool {
	if len(m.trusted) == 0 {
		return false
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range m.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
