// Package announce turns consecutive snapshots of a match into announcement
// events, composes the sentence for each event, and delivers it to the
// voice and notification channels of the matches a user subscribed to.
//
// Pipeline: detect (pure diff) → compose text → deliver per channel.
package announce

import "github.com/padely/padely/internal/padel"

// Kind is the type of announcement event.
type Kind string

const (
	MatchStart    Kind = "MATCH_START"
	GameWon       Kind = "GAME_WON"
	SetWon        Kind = "SET_WON"
	TiebreakPoint Kind = "TIEBREAK_POINT"
	MatchEnd      Kind = "MATCH_END"

	// Waiting is the placeholder sent when a channel is enabled before the
	// match begins. Never produced by Detect.
	Waiting Kind = "WAITING"
)

// Event is one detected state change. Set is the set the event refers to
// for GAME_WON, SET_WON and TIEBREAK_POINT, 0 otherwise.
type Event struct {
	Kind Kind `json:"kind"`
	Set  int  `json:"set,omitempty"`
}

// Detect compares two snapshots of the same match and returns the events
// the change represents, in emission order. It is pure: no timers, no I/O.
//
// Rules, first match wins:
//   - previous snapshot already ended: nothing (terminal).
//   - no winner before, exactly one now: MATCH_END.
//   - no set value before, some now: MATCH_START.
//   - game counts of a set changed: GAME_WON for the lowest such set, plus
//     SET_WON when the change completes that set. At 6-6 the change is a
//     tiebreak and only a points change is reported.
//   - active set at 6-6 and points changed: TIEBREAK_POINT.
func Detect(prev, curr padel.Match) []Event {
	return detect(prev.Phase(), curr.Phase(), prev, curr)
}

func detect(prevPhase, currPhase padel.Phase, prev, curr padel.Match) []Event {
	if prevPhase == padel.Ended {
		return nil
	}
	if currPhase == padel.Ended {
		if curr.Winner() != 0 {
			return []Event{{Kind: MatchEnd}}
		}
		return nil
	}
	if prevPhase == padel.NotStarted {
		if currPhase == padel.NotStarted {
			return nil
		}
		return []Event{{Kind: MatchStart}}
	}

	if set := changedSet(prev, curr); set != 0 {
		a, b := curr.SetGames(set)
		if a == 6 && b == 6 {
			if pointsChanged(prev, curr) {
				return []Event{{Kind: TiebreakPoint, Set: set}}
			}
			return nil
		}
		events := []Event{{Kind: GameWon, Set: set}}
		pa, pb := prev.SetGames(set)
		if padel.SetComplete(a, b) && !padel.SetComplete(pa, pb) {
			events = append(events, Event{Kind: SetWon, Set: set})
		}
		return events
	}

	if currPhase == padel.Tiebreak && pointsChanged(prev, curr) {
		return []Event{{Kind: TiebreakPoint, Set: curr.ActiveSet()}}
	}
	return nil
}

// changedSet returns the lowest set whose game counts differ, or 0. A set
// appearing at 0-0 is not a change.
func changedSet(prev, curr padel.Match) int {
	for n := 1; n <= padel.MaxSets; n++ {
		pa, pb := prev.SetGames(n)
		ca, cb := curr.SetGames(n)
		if pa != ca || pb != cb {
			return n
		}
	}
	return 0
}

func pointsChanged(prev, curr padel.Match) bool {
	return prev.Team1.Points != curr.Team1.Points || prev.Team2.Points != curr.Team2.Points
}
