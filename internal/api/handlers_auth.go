// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/validation"
)

// TokenResponse is returned by the auth endpoints.
type TokenResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
}

// GuestToken handles POST /api/v1/auth/guest.
func (h *Handler) GuestToken(w http.ResponseWriter, r *http.Request) {
	var req validation.GuestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, claims, err := h.jwt.GenerateGuestToken(req.DisplayName)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue guest token")
		NewResponseWriter(w, r).InternalError("Failed to issue token")
		return
	}

	resp := TokenResponse{
		Token:       token,
		ExpiresAt:   claims.ExpiresAt.Time,
		UserID:      claims.Subject,
		DisplayName: claims.DisplayName,
		Role:        claims.Role,
	}
	h.audit.LogGuestToken(r, claims.Subject, claims.DisplayName)
	h.setTokenCookie(w, resp)
	WriteSuccess(w, r, resp)
}

// Login handles POST /api/v1/auth/login for the configured admin account.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rw := NewResponseWriter(w, r)
	if err := h.admin.Verify(req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrAdminDisabled) {
			h.audit.LogLoginFailure(r, req.Username, "admin login disabled")
			rw.Forbidden("Admin login is disabled")
			return
		}
		h.audit.LogLoginFailure(r, req.Username, "invalid credentials")
		logging.Ctx(r.Context()).Warn().Msg("Admin login failed")
		rw.Unauthorized("Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(req.Username, req.Username, auth.RoleAdmin)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue admin token")
		rw.InternalError("Failed to issue token")
		return
	}

	h.audit.LogLoginSuccess(r, req.Username)
	logging.Ctx(r.Context()).Info().Str("username", req.Username).Msg("Admin logged in")
	resp := TokenResponse{
		Token:       token,
		ExpiresAt:   time.Now().Add(h.jwt.TTL()).UTC(),
		UserID:      req.Username,
		DisplayName: req.Username,
		Role:        auth.RoleAdmin,
	}
	h.setTokenCookie(w, resp)
	rw.Success(resp)
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, resp TokenResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}
