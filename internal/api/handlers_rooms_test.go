// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cineswipe/internal/session"
)

func TestCreateRoom(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/rooms", map[string]interface{}{
		"room_id":    "abc123",
		"candidates": []string{"m1", "m2"},
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var view session.RoomView
	if err := json.Unmarshal(decodeResponse(t, rec).Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.ID != "abc123" || view.CurrentItem != "m1" || view.Remaining != 1 {
		t.Errorf("view = %+v", view)
	}
	if !env.registry.Exists("abc123") {
		t.Error("room not registered")
	}
}

func TestCreateRoom_GeneratesID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/rooms", nil, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var view session.RoomView
	if err := json.Unmarshal(decodeResponse(t, rec).Data, &view); err != nil {
		t.Fatal(err)
	}
	if !session.ValidRoomID(view.ID) {
		t.Errorf("generated id %q is not valid", view.ID)
	}
}

func TestCreateRoom_Conflict(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{"room_id": "abc123"}
	env.do(t, http.MethodPost, "/api/v1/rooms", body, "")
	rec := env.do(t, http.MethodPost, "/api/v1/rooms", body, "")

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Success || resp.Error.Code != ErrCodeConflict {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreateRoom_Invalid(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body interface{}
		code string
	}{
		{"bad room id", map[string]interface{}{"room_id": "no spaces allowed"}, ErrCodeValidationFailed},
		{"bad item id", map[string]interface{}{"candidates": []string{"m1", "bad item"}}, ErrCodeValidationFailed},
		{"unknown field", `{"room":"abc"}`, ErrCodeBadRequest},
		{"malformed", `{"room_id":`, ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/rooms", tt.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if got := decodeResponse(t, rec).Error.Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestGetRoom(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/rooms", map[string]interface{}{"room_id": "abc123", "candidates": []string{"m1"}}, "")

	rec := env.do(t, http.MethodGet, "/api/v1/rooms/abc123", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var view session.RoomView
	if err := json.Unmarshal(decodeResponse(t, rec).Data, &view); err != nil {
		t.Fatal(err)
	}
	if view.State != session.StateForming {
		t.Errorf("state = %v, want forming", view.State)
	}
}

func TestGetRoom_NotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/rooms/unknown", "/api/v1/rooms/bad%20id"} {
		rec := env.do(t, http.MethodGet, path, nil, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
			continue
		}
		if got := decodeResponse(t, rec).Error.Code; got != ErrCodeNotFound {
			t.Errorf("%s: code = %q, want NOT_FOUND", path, got)
		}
	}
}
