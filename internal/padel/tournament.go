package padel

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the upstream date format (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// Tournament is one entry of the upstream event list.
type Tournament struct {
	ID        FlexString `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Cover     string     `json:"cover"`
	StartDate string     `json:"startDate"`
	EndDate   string     `json:"endDate"`
	EventID   FlexString `json:"eventId"`
	Href      string     `json:"href"`
}

// excludedTypes are never listed.
var excludedTypes = []string{"world-championships", "fip-championship"}

// Listed reports whether the tournament type is shown in listings.
func (t Tournament) Listed() bool {
	return !slices.Contains(excludedTypes, t.Type)
}

// Dates parses the start and end dates in the given location.
func (t Tournament) Dates(loc *time.Location) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(DateLayout, strings.TrimSpace(t.StartDate), loc)
	if err != nil {
		return start, end, fmt.Errorf("parse start date %q: %w", t.StartDate, err)
	}
	end, err = time.ParseInLocation(DateLayout, strings.TrimSpace(t.EndDate), loc)
	if err != nil {
		return start, end, fmt.Errorf("parse end date %q: %w", t.EndDate, err)
	}
	return start, end, nil
}

// Category groups tournaments relative to today.
type Category string

const (
	CategoryToday    Category = "today"
	CategoryUpcoming Category = "upcoming"
	CategoryPast     Category = "past"
)

// Category places the tournament relative to now. Unparseable dates count
// as past.
func (t Tournament) Category(now time.Time) Category {
	start, end, err := t.Dates(now.Location())
	if err != nil {
		return CategoryPast
	}
	today := truncateDay(now)
	switch {
	case !start.After(today) && !end.Before(today):
		return CategoryToday
	case start.After(today):
		return CategoryUpcoming
	}
	return CategoryPast
}

// Month returns the start month as "YYYY-MM", or "" when unparseable.
func (t Tournament) Month() string {
	start, _, err := t.Dates(time.UTC)
	if err != nil {
		return ""
	}
	return start.Format("2006-01")
}

// FormatType turns "premier-padel-major" into "Premier Padel Major".
func FormatType(typ string) string {
	words := strings.Split(typ, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// --------------------------------------------------------------------------
// Tournament days
// --------------------------------------------------------------------------

// Day is one selectable day of a tournament (1-based).
type Day struct {
	Number  int       `json:"value"`
	Label   string    `json:"label"`
	Date    time.Time `json:"date"`
	IsToday bool      `json:"isToday"`
}

// Days lists every day from start to end inclusive with a label relative to
// now: "Today (Mon, Jan 2)", "Tomorrow (...)", "Yesterday (...)", a bare date
// within six days, otherwise "Day N (...)".
func (t Tournament) Days(now time.Time) ([]Day, error) {
	start, end, err := t.Dates(now.Location())
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		start, end = end, start
	}
	today := truncateDay(now)

	var days []Day
	for i, d := 0, start; !d.After(end); i, d = i+1, d.AddDate(0, 0, 1) {
		dateStr := d.Format("Mon, Jan 2")
		diff := daysBetween(today, d)

		var label string
		switch {
		case diff == 0:
			label = "Today (" + dateStr + ")"
		case diff == 1:
			label = "Tomorrow (" + dateStr + ")"
		case diff == -1:
			label = "Yesterday (" + dateStr + ")"
		case diff >= -6 && diff <= 6:
			label = dateStr
		default:
			label = fmt.Sprintf("Day %d (%s)", i+1, dateStr)
		}
		days = append(days, Day{Number: i + 1, Label: label, Date: d, IsToday: diff == 0})
	}
	return days, nil
}

// DefaultDay returns today's day number when the tournament is running,
// otherwise 1.
func DefaultDay(days []Day) int {
	for _, d := range days {
		if d.IsToday {
			return d.Number
		}
	}
	return 1
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// --------------------------------------------------------------------------
// Tournament filtering
// --------------------------------------------------------------------------

// TournamentFilter selects tournaments for a listing. Empty fields match all.
type TournamentFilter struct {
	Types  []string // "all" or empty matches every type
	Month  string   // "YYYY-MM"
	Search string   // case-insensitive name substring
}

// Match reports whether t passes the filter.
func (f TournamentFilter) Match(t Tournament) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, "all") && !slices.Contains(f.Types, t.Type) {
		return false
	}
	if f.Month != "" && f.Month != "all" && t.Month() != f.Month {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Categorized is a listing split into today, upcoming and past.
type Categorized struct {
	Today    []Tournament `json:"today"`
	Upcoming []Tournament `json:"upcoming"`
	Past     []Tournament `json:"past"`
}

// Categorize drops excluded types, applies f and groups the rest.
func Categorize(ts []Tournament, f TournamentFilter, now time.Time) Categorized {
	out := Categorized{Today: []Tournament{}, Upcoming: []Tournament{}, Past: []Tournament{}}
	for _, t := range ts {
		if !t.Listed() || !f.Match(t) {
			continue
		}
		switch t.Category(now) {
		case CategoryToday:
			out.Today = append(out.Today, t)
		case CategoryUpcoming:
			out.Upcoming = append(out.Upcoming, t)
		default:
			out.Past = append(out.Past, t)
		}
	}
	return out
}

// TypeOption is one entry of the type filter.
type TypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TournamentTypes returns the distinct listed types, sorted.
func TournamentTypes(ts []Tournament) []TypeOption {
	var types []string
	for _, t := range ts {
		if t.Listed() && t.Type != "" && !slices.Contains(types, t.Type) {
			types = append(types, t.Type)
		}
	}
	slices.Sort(types)
	out := make([]TypeOption, 0, len(types))
	for _, typ := range types {
		out = append(out, TypeOption{Value: typ, Label: FormatType(typ)})
	}
	return out
}

// FindTournament looks a tournament up by id.
func FindTournament(ts []Tournament, id string) (Tournament, error) {
	for _, t := range ts {
		if string(t.ID) == id {
			return t, nil
		}
	}
	return Tournament{}, fmt.Errorf("tournament %s: %w", id, ErrNotFound)
}
