// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

// Package authz provides role-based authorization using Casbin.
//
// The RBAC model and default policy are embedded (model.conf, policy.csv).
// Objects are request paths matched with keyMatch2, so "/api/v1/rooms/:roomID"
// covers every room. The admin role inherits the guest role. Decisions are
// memoized in a bounded LRU that is purged whenever role assignments change.
package authz
