// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cineswipe/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 * 1024

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// On failure it writes the error response and returns false. An empty body
// decodes as "{}" so optional-only requests need not send one.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
			return false
		}
		rw.BadRequest("Invalid JSON body")
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}
