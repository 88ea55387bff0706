package poller

import (
	"math"
	"sync"
	"time"

	"github.com/padely/padely/internal/padel"
)

// Selection identifies the tournament day the board shows.
type Selection struct {
	TournamentID string `json:"tournamentId"`
	EventID      string `json:"eventId"`
	Day          int    `json:"day"`
}

// Card is one match on the board together with its UI state. Reconciliation
// replaces Match and leaves Expanded and StatsTab alone.
type Card struct {
	Match    padel.Match `json:"match"`
	Live     bool        `json:"live"`
	Phase    padel.Phase `json:"phase"`
	Expanded bool        `json:"expanded"`
	StatsTab string      `json:"statsTab,omitempty"`
}

// View is a point-in-time copy of the board.
type View struct {
	Selection           Selection `json:"selection"`
	Active              bool      `json:"active"`
	Loading             bool      `json:"loading"`
	Error               string    `json:"error,omitempty"`
	Seq                 uint64    `json:"seq"`
	UpdatedAt           time.Time `json:"updatedAt,omitzero"`
	AutoRefresh         bool      `json:"autoRefresh"`
	SecondsUntilRefresh int       `json:"secondsUntilRefresh"`
	FirstLive           int       `json:"firstLive"`
	Cards               []Card    `json:"matches"`
}

// Matches returns the matches of the view in board order.
func (v View) Matches() []padel.Match {
	out := make([]padel.Match, len(v.Cards))
	for i, c := range v.Cards {
		out[i] = c.Match
	}
	return out
}

// Board holds the current match list of one selection.
type Board struct {
	mu          sync.RWMutex
	sel         Selection
	active      bool
	loading     bool
	err         string
	seq         uint64
	cards       []Card
	updatedAt   time.Time
	nextTick    time.Time
	autoRefresh bool
}

// NewBoard returns an empty board with auto-refresh on.
func NewBoard() *Board {
	return &Board{autoRefresh: true}
}

// reset switches the board to a new selection and clears its data.
func (b *Board) reset(sel Selection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sel = sel
	b.active = true
	b.loading = true
	b.err = ""
	b.cards = nil
	b.updatedAt = time.Time{}
	b.nextTick = time.Time{}
}

func (b *Board) deactivate() {
	b.mu.Lock()
	b.active = false
	b.loading = false
	b.nextTick = time.Time{}
	b.mu.Unlock()
}

// fail records a foreground fetch failure for sel.
func (b *Board) fail(sel Selection, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sel != sel {
		return
	}
	b.loading = false
	b.active = false
	b.err = msg
	b.nextTick = time.Time{}
}

func (b *Board) scheduled(sel Selection, at time.Time) {
	b.mu.Lock()
	if b.sel == sel && b.active {
		b.nextTick = at
	}
	b.mu.Unlock()
}

// Apply reconciles a poll result into the board. Results older than the last
// applied one or for a selection that is no longer current are dropped and
// Apply returns false.
func (b *Board) Apply(seq uint64, sel Selection, matches []padel.Match) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sel != b.sel || seq <= b.seq {
		return false
	}

	state := make(map[string]Card, len(b.cards))
	for _, c := range b.cards {
		state[c.Match.ID()] = c
	}
	cards := make([]Card, len(matches))
	for i, m := range matches {
		c := state[m.ID()]
		c.Match = m
		c.Live = m.IsLive()
		c.Phase = m.Phase()
		cards[i] = c
	}

	b.cards = cards
	b.seq = seq
	b.loading = false
	b.err = ""
	b.updatedAt = time.Now()
	return true
}

// Match looks up a match by id, returning the sequence it was applied at.
func (b *Board) Match(id string) (padel.Match, uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.cards {
		if c.Match.ID() == id {
			return c.Match, b.seq, true
		}
	}
	return padel.Match{}, 0, false
}

// SetExpanded opens or closes the stats panel of a card. tab selects the
// stats period; empty keeps the current one.
func (b *Board) SetExpanded(id string, expanded bool, tab string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.cards {
		if b.cards[i].Match.ID() != id {
			continue
		}
		b.cards[i].Expanded = expanded
		if tab != "" {
			b.cards[i].StatsTab = tab
		}
		return true
	}
	return false
}

// Selection returns the current selection and whether polling is active.
func (b *Board) Selection() (Selection, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sel, b.active
}

// AutoRefresh reports whether background polling is enabled.
func (b *Board) AutoRefresh() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.autoRefresh
}

func (b *Board) setAutoRefresh(on bool) {
	b.mu.Lock()
	b.autoRefresh = on
	b.mu.Unlock()
}

// SecondsUntilRefresh returns the countdown to the next background poll, or
// 0 when none is scheduled.
func (b *Board) SecondsUntilRefresh(now time.Time) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.countdownLocked(now)
}

func (b *Board) countdownLocked(now time.Time) int {
	if !b.active || !b.autoRefresh || b.nextTick.IsZero() {
		return 0
	}
	d := b.nextTick.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// View returns a copy of the board.
func (b *Board) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v := View{
		Selection:           b.sel,
		Active:              b.active,
		Loading:             b.loading,
		Error:               b.err,
		Seq:                 b.seq,
		UpdatedAt:           b.updatedAt,
		AutoRefresh:         b.autoRefresh,
		SecondsUntilRefresh: b.countdownLocked(time.Now()),
		Cards:               append([]Card(nil), b.cards...),
	}
	v.FirstLive = padel.FirstLive(v.Matches())
	return v
}
