package padel

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSetScoreUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want SetScore
	}{
		{`4`, Games(4)},
		{`"6"`, Games(6)},
		{`""`, SetScore{}},
		{`null`, SetScore{}},
		{`"-"`, SetScore{}},
		{`0`, Games(0)},
	}
	for _, tt := range tests {
		var got SetScore
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestMatchDecodeLoosePayload(t *testing.T) {
	raw := `{
		"matchId": 1234,
		"courtName": "Central",
		"roundName": "Men's Quarter Final",
		"team1": {"player1": {"name": "A. Galan (2)", "flag": "https://x/flags/ESP.jpg"}, "points": 15, "set1": "6", "set2": "", "isServing": true},
		"team2": {"player1": {"name": "F. Chingotto"}, "points": "30", "set1": 4, "set2": null}
	}`
	var m Match
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.ID() != "1234" {
		t.Errorf("ID() = %q, want %q", m.ID(), "1234")
	}
	if m.Team1.Points != "15" {
		t.Errorf("Team1.Points = %q, want %q", m.Team1.Points, "15")
	}
	if !m.Team1.Set1.Present || m.Team1.Set1.Games != 6 {
		t.Errorf("Team1.Set1 = %+v, want 6", m.Team1.Set1)
	}
	if m.Team1.Set2.Present || m.Team2.Set2.Present {
		t.Errorf("set2 should be absent")
	}
	if m.Team2.Player2 != nil {
		t.Errorf("Team2.Player2 = %+v, want nil", m.Team2.Player2)
	}
}

func TestMatchPhase(t *testing.T) {
	tests := []struct {
		name string
		m    Match
		want Phase
	}{
		{"empty", Match{}, NotStarted},
		{"first set", Match{Team1: Team{Set1: Games(1)}, Team2: Team{Set1: Games(0)}}, InProgress},
		{"tiebreak", Match{Team1: Team{Set1: Games(6)}, Team2: Team{Set1: Games(6)}}, Tiebreak},
		{"six all in earlier set", Match{
			Team1: Team{Set1: Games(6), Set2: Games(1)},
			Team2: Team{Set1: Games(6), Set2: Games(0)},
		}, InProgress},
		{"winner", Match{Team1: Team{Set1: Games(6), IsWinner: true}, Team2: Team{Set1: Games(6)}}, Ended},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Phase(); got != tt.want {
				t.Errorf("Phase() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWinnerRequiresExactlyOne(t *testing.T) {
	both := Match{Team1: Team{IsWinner: true}, Team2: Team{IsWinner: true}}
	if got := both.Winner(); got != 0 {
		t.Errorf("Winner() with two flags = %d, want 0", got)
	}
	two := Match{Team2: Team{IsWinner: true}}
	if got := two.Winner(); got != 2 {
		t.Errorf("Winner() = %d, want 2", got)
	}
}

func TestSetComplete(t *testing.T) {
	tests := []struct {
		a, b int
		want bool
	}{
		{6, 4, true},
		{4, 6, true},
		{6, 5, false},
		{7, 5, true},
		{7, 6, false},
		{5, 3, false},
		{6, 6, false},
	}
	for _, tt := range tests {
		if got := SetComplete(tt.a, tt.b); got != tt.want {
			t.Errorf("SetComplete(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsLive(t *testing.T) {
	tests := []struct {
		name string
		m    Match
		want bool
	}{
		{"serving", Match{Team2: Team{IsServing: true}}, true},
		{"points no winner", Match{Team1: Team{Points: "15"}}, true},
		{"points with winner", Match{Team1: Team{Points: "15", IsWinner: true}}, false},
		{"idle", Match{}, false},
	}
	for _, tt := range tests {
		if got := tt.m.IsLive(); got != tt.want {
			t.Errorf("%s: IsLive() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTeamName(t *testing.T) {
	team := Team{Player1: &Player{Name: "A. Galan (2)"}, Player2: &Player{Name: "F. Chingotto (Q)"}}
	if got, want := TeamName(team, nil, " / "), "A. Galan / F. Chingotto (Q)"; got != want {
		t.Errorf("TeamName() = %q, want %q", got, want)
	}
	upper := func(s string) string { return "X " + s }
	if got, want := TeamName(Team{Player1: &Player{Name: "B (3)"}}, upper, " & "), "X B"; got != want {
		t.Errorf("TeamName() = %q, want %q", got, want)
	}
}

func TestMatchLanguage(t *testing.T) {
	flag := func(code string) *Player { return &Player{Flag: "https://widget/images/flags/" + code + ".jpg"} }
	tests := []struct {
		name string
		m    Match
		want string
	}{
		{"no flags", Match{}, DefaultLanguage},
		{"spanish preferred", Match{
			Team1: Team{Player1: flag("ITA"), Player2: flag("ITA")},
			Team2: Team{Player1: flag("ARG"), Player2: flag("ITA")},
		}, "es-AR"},
		{"most common", Match{
			Team1: Team{Player1: flag("FRA"), Player2: flag("BRA")},
			Team2: Team{Player1: flag("BRA"), Player2: flag("SWE")},
		}, "pt-BR"},
	}
	for _, tt := range tests {
		if got := tt.m.Language(); got != tt.want {
			t.Errorf("%s: Language() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTournamentDays(t *testing.T) {
	now := time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)
	tr := Tournament{StartDate: "10/03/2025", EndDate: "13/03/2025"}
	days, err := tr.Days(now)
	if err != nil {
		t.Fatalf("Days: %v", err)
	}
	want := []string{
		"Mon, Mar 10",
		"Yesterday (Tue, Mar 11)",
		"Today (Wed, Mar 12)",
		"Tomorrow (Thu, Mar 13)",
	}
	if len(days) != len(want) {
		t.Fatalf("len(days) = %d, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.Label != want[i] {
			t.Errorf("day %d label = %q, want %q", i+1, d.Label, want[i])
		}
	}
	if got := DefaultDay(days); got != 3 {
		t.Errorf("DefaultDay() = %d, want 3", got)
	}

	far := Tournament{StartDate: "01/01/2025", EndDate: "02/01/2025"}
	days, _ = far.Days(now)
	if got, want := days[1].Label, "Day 2 (Thu, Jan 2)"; got != want {
		t.Errorf("far label = %q, want %q", got, want)
	}
	if got := DefaultDay(days); got != 1 {
		t.Errorf("DefaultDay() = %d, want 1", got)
	}
}

func TestCategorize(t *testing.T) {
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
	ts := []Tournament{
		{ID: "1", Name: "Madrid P1", Type: "p1", StartDate: "10/03/2025", EndDate: "16/03/2025"},
		{ID: "2", Name: "Paris Major", Type: "major", StartDate: "01/04/2025", EndDate: "06/04/2025"},
		{ID: "3", Name: "Doha", Type: "p2", StartDate: "01/02/2025", EndDate: "06/02/2025"},
		{ID: "4", Name: "Worlds", Type: "world-championships", StartDate: "10/03/2025", EndDate: "16/03/2025"},
	}
	got := Categorize(ts, TournamentFilter{}, now)
	if len(got.Today) != 1 || got.Today[0].ID != "1" {
		t.Errorf("Today = %+v", got.Today)
	}
	if len(got.Upcoming) != 1 || got.Upcoming[0].ID != "2" {
		t.Errorf("Upcoming = %+v", got.Upcoming)
	}
	if len(got.Past) != 1 || got.Past[0].ID != "3" {
		t.Errorf("Past = %+v", got.Past)
	}

	got = Categorize(ts, TournamentFilter{Search: "paris"}, now)
	if len(got.Today)+len(got.Past) != 0 || len(got.Upcoming) != 1 {
		t.Errorf("search filter = %+v", got)
	}
}

func TestFormatType(t *testing.T) {
	if got, want := FormatType("premier-padel-major"), "Premier Padel Major"; got != want {
		t.Errorf("FormatType() = %q, want %q", got, want)
	}
}

func TestMatchFilter(t *testing.T) {
	ms := []Match{
		{MatchID: "a", RoundName: "Men's Final", CourtName: "Pista 2", Team1: Team{Player1: &Player{Name: "A. Coello"}}},
		{MatchID: "b", RoundName: "Women's Final", CourtName: "Central", Team1: Team{Player1: &Player{Name: "G. Triay Pons"}}},
	}
	tests := []struct {
		f    MatchFilter
		want []string
	}{
		{MatchFilter{}, []string{"a", "b"}},
		{MatchFilter{Gender: "men"}, []string{"a"}},
		{MatchFilter{Gender: "women"}, []string{"b"}},
		{MatchFilter{Player: "TRIAY"}, []string{"b"}},
		{MatchFilter{Court: "Pista 2"}, []string{"a"}},
	}
	for _, tt := range tests {
		got := tt.f.Apply(ms)
		if len(got) != len(tt.want) {
			t.Errorf("Apply(%+v) returned %d matches, want %d", tt.f, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].ID() != tt.want[i] {
				t.Errorf("Apply(%+v)[%d] = %s, want %s", tt.f, i, got[i].ID(), tt.want[i])
			}
		}
	}
	if courts := Courts(ms); courts[0] != "Central" || courts[1] != "Pista 2" {
		t.Errorf("Courts() = %v", courts)
	}
}

func TestStatValue(t *testing.T) {
	var s PeriodStats
	raw := `{"team1Stats":{"serve":{"aces":3,"wonOnFirstServe":"68%"}},"team2Stats":{"serve":{"aces":"1"}}}`
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := s.Team1Stats.Serve.WonOnFirstServe.Int(); got != 68 {
		t.Errorf("Int() = %d, want 68", got)
	}
	if !s.Team1Stats.Serve.WonOnFirstServe.Percent {
		t.Errorf("Percent = false, want true")
	}
	row := StatRow{Team1: s.Team1Stats.Serve.Aces, Team2: s.Team2Stats.Serve.Aces}
	if got := row.Share(); got != 75 {
		t.Errorf("Share() = %d, want 75", got)
	}
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{NotStarted, InProgress, Tiebreak, Ended} {
		b, _ := p.MarshalText()
		var got Phase
		if err := got.UnmarshalText(b); err != nil || got != p {
			t.Errorf("%s: got %v, err %v", b, got, err)
		}
	}
	var p Phase
	if err := p.UnmarshalText([]byte("paused")); err == nil {
		t.Error("unknown phase accepted")
	}
}
