// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// ErrInvalidCredentials is returned by Verify for any username or password
// mismatch. Callers must not distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAdminDisabled is returned when no admin account is configured.
var ErrAdminDisabled = errors.New("admin login disabled")

// AdminAuthenticator checks the single operator account configured through
// ADMIN_USERNAME and ADMIN_PASSWORD. The password is held only as a bcrypt
// hash.
type AdminAuthenticator struct {
	username     string
	passwordHash []byte
}

// NewAdminAuthenticator hashes password. Empty credentials produce a disabled
// authenticator rather than an error.
func NewAdminAuthenticator(username, password string) (*AdminAuthenticator, error) {
	if username == "" && password == "" {
		return &AdminAuthenticator{}, nil
	}
	if username == "" {
		return nil, fmt.Errorf("admin username cannot be empty")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("admin password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AdminAuthenticator{username: username, passwordHash: hash}, nil
}

// Enabled reports whether an admin account is configured.
func (a *AdminAuthenticator) Enabled() bool {
	return a != nil && a.username != ""
}

// Username returns the configured admin username.
func (a *AdminAuthenticator) Username() string {
	if a == nil {
		return ""
	}
	return a.username
}

// Verify checks a username and password pair.
func (a *AdminAuthenticator) Verify(username, password string) error {
	if !a.Enabled() {
		return ErrAdminDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
