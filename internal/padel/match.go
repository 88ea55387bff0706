// Package padel holds the domain model for padel tournaments, matches,
// statistics and rankings as served by the upstream live-score API.
//
// Upstream payloads are loosely typed: identifiers come as strings or
// numbers, set scores as numbers, numeric strings, "" or null. Everything is
// parsed into explicit types at the boundary so the rest of the code never
// has to guess at shapes.
package padel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned when an entity is absent from an otherwise
// successful upstream response.
var ErrNotFound = errors.New("not found")

// --------------------------------------------------------------------------
// Loose JSON scalars
// --------------------------------------------------------------------------

// FlexString decodes a JSON string or number into a string. null decodes to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// SetScore is the number of games a team has in one set. Absent means the
// set has not been reached (the API sends "", null, or omits the field).
type SetScore struct {
	Games   int
	Present bool
}

// Games returns a present SetScore.
func Games(n int) SetScore { return SetScore{Games: n, Present: true} }

func (s *SetScore) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = SetScore{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			// Non-numeric markers ("-", "W/O") are treated as absent.
			return nil
		}
		*s = Games(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = Games(int(f))
	return nil
}

func (s SetScore) MarshalJSON() ([]byte, error) {
	if !s.Present {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.Games)), nil
}

// String renders the score the way the scoreboard shows it: "" when absent.
func (s SetScore) String() string {
	if !s.Present {
		return ""
	}
	return strconv.Itoa(s.Games)
}

// --------------------------------------------------------------------------
// Match model
// --------------------------------------------------------------------------

// MaxSets is the number of sets in the best-of-three format the API reports.
const MaxSets = 3

// Player is one half of a team.
type Player struct {
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Team is one side of a match with its live score.
type Team struct {
	Player1   *Player    `json:"player1,omitempty"`
	Player2   *Player    `json:"player2,omitempty"`
	Points    FlexString `json:"points"`
	Set1      SetScore   `json:"set1"`
	Set2      SetScore   `json:"set2"`
	Set3      SetScore   `json:"set3"`
	IsServing bool       `json:"isServing"`
	IsWinner  bool       `json:"isWinner"`
}

// Set returns the score for set n (1-based). Out of range sets are absent.
func (t Team) Set(n int) SetScore {
	switch n {
	case 1:
		return t.Set1
	case 2:
		return t.Set2
	case 3:
		return t.Set3
	}
	return SetScore{}
}

// Players returns the non-nil players of the team in order.
func (t Team) Players() []Player {
	out := make([]Player, 0, 2)
	if t.Player1 != nil {
		out = append(out, *t.Player1)
	}
	if t.Player2 != nil {
		out = append(out, *t.Player2)
	}
	return out
}

// Match is a single scheduled or live match.
type Match struct {
	MatchID   FlexString `json:"matchId"`
	CourtName string     `json:"courtName"`
	RoundName string     `json:"roundName"`
	StartDate string     `json:"startDate"`
	Team1     Team       `json:"team1"`
	Team2     Team       `json:"team2"`
}

// ID returns the match id as a plain string.
func (m Match) ID() string { return string(m.MatchID) }

// Team returns team 1 or 2.
func (m Match) Team(n int) Team {
	if n == 2 {
		return m.Team2
	}
	return m.Team1
}

// Winner returns 1 or 2 when exactly one team carries the winner flag, 0
// otherwise.
func (m Match) Winner() int {
	switch {
	case m.Team1.IsWinner && !m.Team2.IsWinner:
		return 1
	case m.Team2.IsWinner && !m.Team1.IsWinner:
		return 2
	}
	return 0
}

// HasWinnerFlag reports whether either team is flagged as winner.
func (m Match) HasWinnerFlag() bool {
	return m.Team1.IsWinner || m.Team2.IsWinner
}

// AnySetPresent reports whether either team has a game count in any set.
func (m Match) AnySetPresent() bool {
	for n := 1; n <= MaxSets; n++ {
		if m.Team1.Set(n).Present || m.Team2.Set(n).Present {
			return true
		}
	}
	return false
}

// ActiveSet is the highest set number with a value on either team, or 1
// when no set has started.
func (m Match) ActiveSet() int {
	for n := MaxSets; n > 1; n-- {
		if m.Team1.Set(n).Present || m.Team2.Set(n).Present {
			return n
		}
	}
	return 1
}

// SetGames returns the game counts of both teams in set n. Absent values
// read as 0.
func (m Match) SetGames(n int) (int, int) {
	return m.Team1.Set(n).Games, m.Team2.Set(n).Games
}

// InTiebreak reports whether both teams are at 6 games in the active set.
func (m Match) InTiebreak() bool {
	a, b := m.SetGames(m.ActiveSet())
	return a == 6 && b == 6
}

// HasStarted reports whether the match shows any sign of play: a non-zero
// point score or a game count in any set.
func (m Match) HasStarted() bool {
	for _, p := range []FlexString{m.Team1.Points, m.Team2.Points} {
		if p != "" && p != "0" {
			return true
		}
	}
	return m.AnySetPresent()
}

// IsLive reports whether the scoreboard shows the match as in play.
func (m Match) IsLive() bool {
	if m.Team1.IsServing || m.Team2.IsServing {
		return true
	}
	return m.Team1.Points != "" && !m.HasWinnerFlag()
}

// SetComplete reports whether a set with the given game counts is decided:
// one side has at least 6 games and leads by at least 2.
func SetComplete(a, b int) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return max(a, b) >= 6 && diff >= 2
}

// --------------------------------------------------------------------------
// Phases
// --------------------------------------------------------------------------

// Phase is the lifecycle position of a match derived from one snapshot.
type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Tiebreak
	Ended
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Tiebreak:
		return "tiebreak"
	case Ended:
		return "ended"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for _, c := range []Phase{NotStarted, InProgress, Tiebreak, Ended} {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Phase derives the match phase. A winner flag on either side is terminal.
func (m Match) Phase() Phase {
	switch {
	case m.HasWinnerFlag():
		return Ended
	case !m.AnySetPresent():
		return NotStarted
	case m.InTiebreak():
		return Tiebreak
	}
	return InProgress
}
