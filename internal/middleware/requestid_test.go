// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/cineswipe/internal/logging"
)

func runRequestID(t *testing.T, header string) (responseID, contextID, loggingID string) {
	t.Helper()
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextID = GetRequestID(r.Context())
		loggingID = logging.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header().Get(RequestIDHeader), contextID, loggingID
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	responseID, contextID, loggingID := runRequestID(t, "")

	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("Response X-Request-ID is not a valid UUID: %v", err)
	}
	if contextID != responseID {
		t.Errorf("Context ID (%s) doesn't match response header ID (%s)", contextID, responseID)
	}
	if loggingID != responseID {
		t.Errorf("logging request ID = %q, want %q", loggingID, responseID)
	}
}

func TestRequestID_PreservesExistingID(t *testing.T) {
	existingID := "existing-request-id-12345"
	responseID, contextID, _ := runRequestID(t, existingID)

	if responseID != existingID || contextID != existingID {
		t.Errorf("got header %q context %q, want %q", responseID, contextID, existingID)
	}
}

func TestRequestID_ReplacesUnsafeID(t *testing.T) {
	for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("a", 200)} {
		responseID, _, _ := runRequestID(t, bad)
		if responseID == bad {
			t.Errorf("unsafe upstream ID %q was echoed", bad)
		}
		if _, err := uuid.Parse(responseID); err != nil {
			t.Errorf("replacement ID %q is not a UUID", responseID)
		}
	}
}

func TestRequestID_CorrelationID(t *testing.T) {
	var correlationID string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		correlationID = logging.CorrelationIDFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if correlationID == "" {
		t.Error("Expected correlation ID in context")
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("Expected empty string, got %s", id)
	}
}
