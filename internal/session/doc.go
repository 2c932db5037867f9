// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

/*
Package session implements swipe rooms: membership, rounds, vote
aggregation and broadcast of room events.

# Architecture

	Registry (map of rooms, RWMutex)
	    |
	    +-- Room "abc123"  (one goroutine, bounded inbox)
	    |      members -> Outbox (non-blocking, owned by the gateway)
	    |      queue   -> candidate items, each shown at most once
	    |      tally   -> map[ConnID]Decision for the current round
	    |
	    +-- Room "q9f2..."

Every mutation of a room is a command sent to its inbox and handled by the
room goroutine in arrival order. Readers use Registry.Lookup, which returns
the snapshot the room published after its last command.

# Lifecycle

	Forming --(members >= MinMembers)--> Active
	Active  --(members <  MinMembers)--> Forming
	Forming/Active --(last member leaves)--> Closing (grace timer armed)
	Closing --(rejoin)--> Forming/Active
	Closing --(grace timer fires)--> Closed
	any --(idle timeout or shutdown)--> Closed

A Closed room removes itself from the registry.

# Rounds

Each round presents one candidate. Evaluate decides the round from the tally:
a single "no" from any member exhausts it immediately, unanimous "yes" from
every current member is a match, anything else is still pending. Either
conclusion advances to the next unseen candidate.
*/
package session
