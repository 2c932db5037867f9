// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package websocket is the connection gateway between browsers and the session
registry.

Each connection is a Client with a read pump and a write pump. The read pump
decodes JSON frames (join, leave, vote, add_candidates, ping), validates them
and calls the registry. Rooms deliver events straight into the client's
bounded send buffer through the session.Outbox interface; the write pump
drains that buffer to the socket in order. A client whose buffer overflows is
disconnected rather than allowed to stall its room.

Closing a connection always counts as leaving its room. The client is marked
closed before the leave is issued, so a vote racing the disconnect is
discarded by the room.

The Hub only tracks connections so they can all be closed on shutdown. It is
run under suture via RunWithContext.
*/
package websocket
