// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cineswipe/internal/auth"
)

func guestToken(t *testing.T, env *testEnv) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/v1/auth/guest", map[string]string{"display_name": "Ana"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("guest status = %d: %s", rec.Code, rec.Body.String())
	}
	var tok TokenResponse
	if err := json.Unmarshal(decodeResponse(t, rec).Data, &tok); err != nil {
		t.Fatal(err)
	}
	return tok.Token
}

func adminToken(t *testing.T, env *testEnv) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": testAdminUser,
		"password": testAdminPassword,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var tok TokenResponse
	if err := json.Unmarshal(decodeResponse(t, rec).Data, &tok); err != nil {
		t.Fatal(err)
	}
	if tok.Role != auth.RoleAdmin {
		t.Fatalf("role = %q, want admin", tok.Role)
	}
	return tok.Token
}

func TestGuestToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/guest", map[string]string{"display_name": "Ana"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var tok TokenResponse
	if err := json.Unmarshal(decodeResponse(t, rec).Data, &tok); err != nil {
		t.Fatal(err)
	}
	claims, err := env.jwt.ValidateToken(tok.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.DisplayName != "Ana" || claims.Role != auth.RoleGuest || claims.Subject != tok.UserID {
		t.Errorf("claims = %+v, response = %+v", claims, tok)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.TokenCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != tok.Token || !cookie.HttpOnly {
		t.Errorf("token cookie = %+v", cookie)
	}
}

func TestGuestToken_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/guest", map[string]string{"display_name": ""}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthEndpoints_RateLimited(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]string{"display_name": "Ana"}
	for i := 0; i < 5; i++ {
		if rec := env.do(t, http.MethodPost, "/api/v1/auth/guest", body, ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	// The bucket is shared across /api/v1/auth/*.
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "a", "password": "b"}, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1000" {
		t.Errorf("Retry-After = %q, want 1000", rec.Header().Get("Retry-After"))
	}
	if got := decodeResponse(t, rec).Error.Code; got != ErrCodeTooManyRequests {
		t.Errorf("code = %q", got)
	}

	// Other routes are not affected by the auth bucket.
	if rec := env.do(t, http.MethodGet, "/api/v1/health/live", nil, ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": testAdminUser,
		"password": "wrong-password",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}

	claims, err := env.jwt.ValidateToken(adminToken(t, env))
	if err != nil || claims.Subject != testAdminUser || claims.Role != auth.RoleAdmin {
		t.Errorf("admin claims = %+v, %v", claims, err)
	}
}

func TestLogin_Disabled(t *testing.T) {
	env := newTestEnv(t)
	env.api.admin = nil

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "x", "password": "y"}, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
