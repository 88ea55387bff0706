package padel

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StatValue is a statistic as sent by the API: a number or a percentage
// string like "45%". Raw keeps the original rendering.
type StatValue struct {
	Raw     string
	Percent bool
}

func (v *StatValue) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(s))
	*v = StatValue{Raw: raw, Percent: strings.HasSuffix(raw, "%")}
	return nil
}

func (v StatValue) MarshalJSON() ([]byte, error) {
	if v.Raw == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.Atoi(v.Raw); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(v.Raw)
}

// Int reads the leading integer of the value ("45%" -> 45, "12 (3)" -> 12).
// Unparseable values read as 0.
func (v StatValue) Int() int {
	s := strings.TrimSpace(v.Raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func (v StatValue) String() string { return v.Raw }

// MatchGroup is the "match" statistics group.
type MatchGroup struct {
	TotalPointsWon          StatValue `json:"totalPointsWon"`
	BreakingPointsConverted StatValue `json:"breakingPointsConverted"`
	LongestStreak           StatValue `json:"longestStreak"`
}

// ServeGroup is the "serve" statistics group.
type ServeGroup struct {
	Aces             StatValue `json:"aces"`
	DoubleFaults     StatValue `json:"doubleFaults"`
	WonOnFirstServe  StatValue `json:"wonOnFirstServe"`
	WonOnSecondServe StatValue `json:"wonOnSecondServe"`
}

// ReturnGroup is the "returnStats" statistics group.
type ReturnGroup struct {
	WonOnFirstReturn  StatValue `json:"wonOnFirstReturn"`
	WonOnSecondReturn StatValue `json:"wonOnSecondReturn"`
}

// TotalPointsGroup is the "totalPoints" statistics group.
type TotalPointsGroup struct {
	TotalWonOnServe  StatValue `json:"totalWonOnServe"`
	TotalWonOnReturn StatValue `json:"totalWonOnReturn"`
}

// TeamStats holds every group for one team.
type TeamStats struct {
	Match       MatchGroup       `json:"match"`
	Serve       ServeGroup       `json:"serve"`
	ReturnStats ReturnGroup      `json:"returnStats"`
	TotalPoints TotalPointsGroup `json:"totalPoints"`
}

// PeriodStats compares both teams over the match or one set.
type PeriodStats struct {
	Team1Stats TeamStats `json:"team1Stats"`
	Team2Stats TeamStats `json:"team2Stats"`
}

// MatchStats is the payload of the match statistics endpoint.
type MatchStats struct {
	Match *PeriodStats `json:"match,omitempty"`
	Set1  *PeriodStats `json:"set1,omitempty"`
	Set2  *PeriodStats `json:"set2,omitempty"`
	Set3  *PeriodStats `json:"set3,omitempty"`
}

// Tabs lists the available periods in display order ("match", "set1", ...).
func (s MatchStats) Tabs() []string {
	var tabs []string
	for _, p := range []struct {
		name  string
		stats *PeriodStats
	}{{"match", s.Match}, {"set1", s.Set1}, {"set2", s.Set2}, {"set3", s.Set3}} {
		if p.stats != nil {
			tabs = append(tabs, p.name)
		}
	}
	return tabs
}

// Period returns the stats for a tab name, or nil.
func (s MatchStats) Period(tab string) *PeriodStats {
	switch tab {
	case "match":
		return s.Match
	case "set1":
		return s.Set1
	case "set2":
		return s.Set2
	case "set3":
		return s.Set3
	}
	return nil
}

// IsEmpty reports whether no period carried data.
func (s MatchStats) IsEmpty() bool { return len(s.Tabs()) == 0 }

// StatRow is one labelled comparison line of a stats panel.
type StatRow struct {
	Group string    `json:"group"`
	Label string    `json:"label"`
	Team1 StatValue `json:"team1"`
	Team2 StatValue `json:"team2"`
}

// Share returns team 1's share of the combined value in percent, for bar
// rendering. Both zero yields 50.
func (r StatRow) Share() int {
	a, b := r.Team1.Int(), r.Team2.Int()
	if a+b <= 0 {
		return 50
	}
	return a * 100 / (a + b)
}

// Rows flattens a period into labelled rows.
func (p PeriodStats) Rows() []StatRow {
	t1, t2 := p.Team1Stats, p.Team2Stats
	return []StatRow{
		{"Match", "Total points won", t1.Match.TotalPointsWon, t2.Match.TotalPointsWon},
		{"Match", "Break points converted", t1.Match.BreakingPointsConverted, t2.Match.BreakingPointsConverted},
		{"Match", "Longest streak", t1.Match.LongestStreak, t2.Match.LongestStreak},
		{"Serve", "Aces", t1.Serve.Aces, t2.Serve.Aces},
		{"Serve", "Double faults", t1.Serve.DoubleFaults, t2.Serve.DoubleFaults},
		{"Serve", "Won on 1st serve", t1.Serve.WonOnFirstServe, t2.Serve.WonOnFirstServe},
		{"Serve", "Won on 2nd serve", t1.Serve.WonOnSecondServe, t2.Serve.WonOnSecondServe},
		{"Return", "Won on 1st return", t1.ReturnStats.WonOnFirstReturn, t2.ReturnStats.WonOnFirstReturn},
		{"Return", "Won on 2nd return", t1.ReturnStats.WonOnSecondReturn, t2.ReturnStats.WonOnSecondReturn},
		{"Total points", "Won on serve", t1.TotalPoints.TotalWonOnServe, t2.TotalPoints.TotalWonOnServe},
		{"Total points", "Won on return", t1.TotalPoints.TotalWonOnReturn, t2.TotalPoints.TotalWonOnReturn},
	}
}

// --------------------------------------------------------------------------
// Rankings
// --------------------------------------------------------------------------

// Gender selects a ranking table.
type Gender string

const (
	Men   Gender = "men"
	Women Gender = "women"
)

// Valid reports whether g is a known ranking gender.
func (g Gender) Valid() bool { return g == Men || g == Women }

// RankedPlayer is one row of the ranking table.
type RankedPlayer struct {
	Position FlexString `json:"position"`
	Name     string     `json:"name"`
	Image    string     `json:"image"`
	Flag     string     `json:"flag"`
	Country  string     `json:"country"`
	Points   FlexString `json:"points"`
}
