package padel

import (
	"slices"
	"strings"
)

// MatchFilter narrows a day's match list. Zero values match everything.
type MatchFilter struct {
	Gender string // "men", "women" or "" / "all"
	Player string // case-insensitive substring of any of the four names
	Court  string // exact court name, "" / "all" for every court
}

// Match reports whether m passes the filter.
func (f MatchFilter) Match(m Match) bool {
	round := strings.ToLower(m.RoundName)
	switch f.Gender {
	case "men":
		if !strings.Contains(round, "men") || strings.Contains(round, "women") {
			return false
		}
	case "women":
		if !strings.Contains(round, "women") {
			return false
		}
	}

	if f.Player != "" {
		q := strings.ToLower(f.Player)
		found := false
		for _, t := range []Team{m.Team1, m.Team2} {
			for _, p := range t.Players() {
				if strings.Contains(strings.ToLower(p.Name), q) {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}

	if f.Court != "" && f.Court != "all" && m.CourtName != f.Court {
		return false
	}
	return true
}

// Apply returns the matches passing f, preserving order.
func (f MatchFilter) Apply(ms []Match) []Match {
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Courts returns the sorted distinct court names.
func Courts(ms []Match) []string {
	var courts []string
	for _, m := range ms {
		if !slices.Contains(courts, m.CourtName) {
			courts = append(courts, m.CourtName)
		}
	}
	slices.Sort(courts)
	return courts
}

// FirstLive returns the index of the first live match, or -1.
func FirstLive(ms []Match) int {
	return slices.IndexFunc(ms, Match.IsLive)
}
