package handler

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/padely/padely/internal/api/respond"
	"github.com/padely/padely/internal/cache"
	"github.com/padely/padely/internal/padel"
)

const teamSep = " / "

// TournamentList is the categorized listing with favorite markers.
type TournamentList struct {
	padel.Categorized
	Favorites []padel.Tournament `json:"favorites"`
	Types     []padel.TypeOption `json:"types"`
	Filter    listFilter         `json:"filter"`
}

type listFilter struct {
	Types  []string `json:"types"`
	Month  string   `json:"month"`
	Search string   `json:"search,omitempty"`
}

// MatchCard is a match with display names resolved through the name
// mappings.
type MatchCard struct {
	padel.Match
	Team1Name string      `json:"team1Name"`
	Team2Name string      `json:"team2Name"`
	Live      bool        `json:"live"`
	Phase     padel.Phase `json:"phase"`
}

// DayMatches is the filtered match list of one tournament day.
type DayMatches struct {
	Tournament padel.Tournament `json:"tournament"`
	Day        int              `json:"day"`
	Days       []padel.Day      `json:"days"`
	Courts     []string         `json:"courts"`
	FirstLive  int              `json:"firstLive"`
	Matches    []MatchCard      `json:"matches"`
}

// StatsRow is a stats line with the team 1 bar share.
type StatsRow struct {
	padel.StatRow
	Share int `json:"share"`
}

// MatchStatsView is one stats tab of a match.
type MatchStatsView struct {
	MatchID string     `json:"matchId"`
	Tabs    []string   `json:"tabs"`
	Tab     string     `json:"tab"`
	Rows    []StatsRow `json:"rows"`
}

// ListTournaments returns tournaments grouped into today, upcoming and past.
// @Summary List tournaments
// @Description Tournaments grouped by date relative to today. Without type or month parameters the saved filter preferences apply. Excluded types (world and FIP championships) are never listed.
// @Tags tournaments
// @Produce json
// @Param type query string false "Comma-separated tournament types, or all"
// @Param month query string false "Month as YYYY-MM, or all"
// @Param search query string false "Case-insensitive name filter"
// @Success 200 {object} TournamentList
// @Failure 502 {object} respond.ErrorResponse
// @Router /tournaments [get]
func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ts, err := h.upstream.GetTournaments(r.Context())
	if err != nil {
		h.upstreamError(w, err, "tournaments")
		return
	}

	q := r.URL.Query()
	saved := h.prefs.Filters.Get()
	f := saved.TournamentFilter(strings.TrimSpace(q.Get("search")))
	if q.Has("type") {
		f.Types = splitList(q.Get("type"))
	}
	if q.Has("month") {
		f.Month = q.Get("month")
	}

	respond.WriteJSONObject(w, http.StatusOK, TournamentList{
		Categorized: padel.Categorize(ts, f, h.now()),
		Favorites:   h.prefs.Favorites.List(),
		Types:       padel.TournamentTypes(ts),
		Filter:      listFilter{Types: f.Types, Month: f.Month, Search: f.Search},
	})
}

// GetTournamentTypes returns the type filter options.
// @Summary Tournament types
// @Description Distinct listed tournament types with display labels.
// @Tags tournaments
// @Produce json
// @Success 200 {array} padel.TypeOption
// @Failure 502 {object} respond.ErrorResponse
// @Router /tournaments/types [get]
func (h *Handler) GetTournamentTypes(w http.ResponseWriter, r *http.Request) {
	ts, err := h.upstream.GetTournaments(r.Context())
	if err != nil {
		h.upstreamError(w, err, "tournaments")
		return
	}
	respond.WriteCached(w, r, padel.TournamentTypes(ts), cache.TTLTournaments)
}

// GetTournament returns one tournament with its selectable days.
// @Summary Get tournament
// @Description Tournament detail with day labels and the default day (today while running, else day 1).
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /tournaments/{id} [get]
func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	t, err := h.upstream.GetTournament(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.upstreamError(w, err, "tournament")
		return
	}
	days, err := t.Days(h.now())
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusBadGateway, "BAD_DATES", "Tournament has invalid dates", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"tournament": t,
		"days":       days,
		"defaultDay": padel.DefaultDay(days),
		"favorite":   h.prefs.Favorites.IsFavorite(string(t.ID)),
	})
}

// GetDayMatches returns the matches of one tournament day.
// @Summary Day matches
// @Description Fetches a tournament day from the upstream (never cached) and applies the gender, player and court filters.
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Param day path int true "Day number (1-based)"
// @Param gender query string false "men, women or all"
// @Param player query string false "Player name substring"
// @Param court query string false "Court name, or all"
// @Success 200 {object} DayMatches
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /tournaments/{id}/days/{day}/matches [get]
func (h *Handler) GetDayMatches(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_DAY", "day must be a positive integer")
		return
	}
	t, err := h.upstream.GetTournament(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.upstreamError(w, err, "tournament")
		return
	}
	days, _ := t.Days(h.now())

	ms, err := h.upstream.GetEventMatches(r.Context(), string(t.ID), day)
	if err != nil {
		h.upstreamError(w, err, "matches")
		return
	}

	q := r.URL.Query()
	filtered := padel.MatchFilter{
		Gender: q.Get("gender"),
		Player: q.Get("player"),
		Court:  q.Get("court"),
	}.Apply(ms)

	respond.WriteJSONObject(w, http.StatusOK, DayMatches{
		Tournament: t,
		Day:        day,
		Days:       days,
		Courts:     padel.Courts(ms),
		FirstLive:  padel.FirstLive(filtered),
		Matches:    h.cards(filtered),
	})
}

// GetMatchStats returns one stats tab of a match.
// @Summary Match statistics
// @Description Statistics per period (match, set1..set3). Defaults to the first available tab.
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Param matchID path string true "Match ID"
// @Param tab query string false "match, set1, set2 or set3"
// @Success 200 {object} MatchStatsView
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /tournaments/{id}/matches/{matchID}/stats [get]
func (h *Handler) GetMatchStats(w http.ResponseWriter, r *http.Request) {
	t, err := h.upstream.GetTournament(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.upstreamError(w, err, "tournament")
		return
	}
	matchID := chi.URLParam(r, "matchID")
	stats, err := h.upstream.GetMatchStats(r.Context(), string(t.EventID), matchID)
	if err != nil {
		h.upstreamError(w, err, "statistics")
		return
	}

	tabs := stats.Tabs()
	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = tabs[0]
	}
	period := stats.Period(tab)
	if period == nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_TAB", "No statistics for tab "+tab)
		return
	}

	rows := period.Rows()
	out := MatchStatsView{MatchID: matchID, Tabs: tabs, Tab: tab, Rows: make([]StatsRow, len(rows))}
	for i, row := range rows {
		out.Rows[i] = StatsRow{StatRow: row, Share: row.Share()}
	}
	respond.WriteCached(w, r, out, cache.TTLMatchStats)
}

// GetRankings returns the ranking table for a gender.
// @Summary Rankings
// @Description Ranking table, optionally narrowed by player name.
// @Tags rankings
// @Produce json
// @Param gender path string true "Ranking table" Enums(men, women)
// @Param search query string false "Player name substring"
// @Success 200 {array} padel.RankedPlayer
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /rankings/{gender} [get]
func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	gender := padel.Gender(strings.ToLower(chi.URLParam(r, "gender")))
	if !gender.Valid() {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_GENDER", "gender must be men or women")
		return
	}
	players, err := h.upstream.GetRankings(r.Context(), gender)
	if err != nil {
		h.upstreamError(w, err, "rankings")
		return
	}
	if search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search"))); search != "" {
		players = slices.DeleteFunc(slices.Clone(players), func(p padel.RankedPlayer) bool {
			return !strings.Contains(strings.ToLower(p.Name), search)
		})
	}
	respond.WriteCached(w, r, players, cache.TTLRankings)
}

// cards resolves display names for a match list.
func (h *Handler) cards(ms []padel.Match) []MatchCard {
	names := h.prefs.Names.Transform
	out := make([]MatchCard, len(ms))
	for i, m := range ms {
		out[i] = MatchCard{
			Match:     m,
			Team1Name: padel.TeamName(m.Team1, names, teamSep),
			Team2Name: padel.TeamName(m.Team2, names, teamSep),
			Live:      m.IsLive(),
			Phase:     m.Phase(),
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
