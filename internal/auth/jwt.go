// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/cineswipe/internal/config"
)

// Roles carried in token claims.
const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

const tokenIssuer = "cineswipe"

// ErrInvalidToken is returned for any token that fails parsing or validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the holder of a session token. Subject (from
// RegisteredClaims) is the stable user ID; DisplayName is what other room
// members see.
type Claims struct {
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewJWTManager creates a manager from the security configuration. The secret
// must be non-empty.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	return NewJWTManagerWithClock(cfg, nil)
}

// NewJWTManagerWithClock is NewJWTManager with an injectable clock.
func NewJWTManagerWithClock(cfg *config.SecurityConfig, clock clockwork.Clock) (*JWTManager, error) {
	if cfg == nil || cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{secret: []byte(cfg.JWTSecret), ttl: ttl, clock: clock}, nil
}

// TTL returns the lifetime of issued tokens.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

// GenerateToken signs a token for subject with the given role.
func (m *JWTManager) GenerateToken(subject, displayName, role string) (string, error) {
	now := m.clock.Now()
	claims := &Claims{
		DisplayName: displayName,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// GenerateGuestToken mints a guest identity with a fresh subject.
func (m *JWTManager) GenerateGuestToken(displayName string) (string, *Claims, error) {
	subject := "guest-" + uuid.NewString()
	token, err := m.GenerateToken(subject, displayName, RoleGuest)
	if err != nil {
		return "", nil, err
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// ValidateToken parses tokenString and returns its claims. Only HMAC-signed
// tokens from this issuer are accepted.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.clock.Now),
	)
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
