// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package authz

import (
	"net/http"

	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/logging"
)

// anonymousSubject is enforced for requests without claims.
const anonymousSubject = "anonymous"

// ErrorFunc writes an authorization failure.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, status int, message string)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
	onError  ErrorFunc
}

// NewMiddleware creates authorization middleware. A nil onError writes plain
// text via http.Error.
func NewMiddleware(enforcer *Enforcer, onError ErrorFunc) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, status int, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{enforcer: enforcer, onError: onError}
}

// Authorize enforces object/action against the caller's role. Requests without
// claims are evaluated as the enforcer's default role.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, roles := anonymousSubject, []string(nil)
			if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
				subject, roles = claims.Subject, []string{claims.Role}
			}

			allowed, err := m.enforcer.EnforceWithRoles(subject, roles, object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
				m.onError(w, r, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !allowed {
				logging.Ctx(r.Context()).Debug().
					Str("subject", subject).
					Strs("roles", roles).
					Str("object", object).
					Str("action", action).
					Msg("Authorization denied")
				m.onError(w, r, http.StatusForbidden, "Forbidden: insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
