// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cineswipe/internal/auth"
	"github.com/tomtom215/cineswipe/internal/logging"
	"github.com/tomtom215/cineswipe/internal/session"
)

//go:embed shell.html
var defaultShell string

// ShellPage renders the single-page client. The template receives the CSP
// nonce and the room ID taken from the path (empty for "/").
type ShellPage struct {
	tmpl *template.Template
}

type shellData struct {
	Nonce  string
	RoomID string
}

// NewShellPage parses the template at path, or the built-in page when path
// is empty.
func NewShellPage(path string) (*ShellPage, error) {
	src := defaultShell
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read shell template: %w", err)
		}
		src = string(b)
	}
	tmpl, err := template.New("shell").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse shell template: %w", err)
	}
	return &ShellPage{tmpl: tmpl}, nil
}

func (p *ShellPage) render(w http.ResponseWriter, r *http.Request, roomID string) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, shellData{Nonce: auth.NonceFromContext(r.Context()), RoomID: roomID}); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to render shell")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

// Shell serves the landing page.
func (h *Handler) Shell(w http.ResponseWriter, r *http.Request) {
	h.shell.render(w, r, "")
}

// RoomShell serves the page for an existing room and 404s otherwise, so
// stale share links fail fast instead of creating rooms.
func (h *Handler) RoomShell(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if !session.ValidRoomID(roomID) || !h.rooms.Exists(roomID) {
		http.NotFound(w, r)
		return
	}
	h.shell.render(w, r, roomID)
}
