// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package session

// Outcome is the verdict on a round.
type Outcome int

const (
	Pending Outcome = iota
	Match
	RoundExhausted
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Match:
		return "match"
	case RoundExhausted:
		return "round_exhausted"
	default:
		return "unknown"
	}
}

// Result is returned by Evaluate. ItemID is set for Match and RoundExhausted.
type Result struct {
	Outcome Outcome
	ItemID  string
}

// Evaluate decides the round for item given the tally and current membership.
//
// Any "no" from a current member exhausts the round. A "yes" from every
// current member is a match. Tally entries for non-members are ignored and an
// empty membership is always pending. The result depends only on the final
// contents of tally and the member set, never on the order votes arrived.
func Evaluate(tally map[ConnID]Decision, members []ConnID, item string) Result {
	if len(members) == 0 {
		return Result{Outcome: Pending}
	}

	yes := 0
	for _, m := range members {
		d, voted := tally[m]
		if !voted {
			continue
		}
		if d == No {
			return Result{Outcome: RoundExhausted, ItemID: item}
		}
		yes++
	}

	if yes == len(members) {
		return Result{Outcome: Match, ItemID: item}
	}
	return Result{Outcome: Pending}
}
