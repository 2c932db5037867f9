// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package validation provides struct validation using go-playground/validator v10.

A single validator instance is built once and shared. It registers three
application tags:

  - roomid: 1-64 characters of [A-Za-z0-9_-]
  - itemid: 1-128 characters of [A-Za-z0-9:._-]
  - displayname: no control characters, no leading or trailing spaces

Error field names come from the json tag, so messages read the same as the
request body the client sent:

	req := validation.GuestRequest{DisplayName: ""}
	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError() // "display_name is required"
	}

Request and WebSocket payload types live in requests.go.
*/
package validation
