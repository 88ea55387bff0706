package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/padely/padely/internal/announce"
	"github.com/padely/padely/internal/api/handler"
	"github.com/padely/padely/internal/cache"
	"github.com/padely/padely/internal/config"
	"github.com/padely/padely/internal/padel"
	"github.com/padely/padely/internal/poller"
	"github.com/padely/padely/internal/prefs"
	"github.com/padely/padely/internal/voice"
)

// fakeUpstream serves fixed data and records the ids it was asked for.
type fakeUpstream struct {
	mu          sync.Mutex
	tournaments []padel.Tournament
	matches     []padel.Match
	stats       *padel.MatchStats
	matchIDs    []string
	statsIDs    []string
	invalidated []string
}

func (f *fakeUpstream) GetTournaments(ctx context.Context) ([]padel.Tournament, error) {
	return f.tournaments, nil
}

func (f *fakeUpstream) GetTournament(ctx context.Context, id string) (padel.Tournament, error) {
	return padel.FindTournament(f.tournaments, id)
}

func (f *fakeUpstream) GetEventMatches(ctx context.Context, eventID string, day int) ([]padel.Match, error) {
	f.mu.Lock()
	f.matchIDs = append(f.matchIDs, eventID)
	f.mu.Unlock()
	return f.matches, nil
}

func (f *fakeUpstream) GetMatchStats(ctx context.Context, eventID, matchID string) (*padel.MatchStats, error) {
	f.mu.Lock()
	f.statsIDs = append(f.statsIDs, eventID)
	f.mu.Unlock()
	if f.stats == nil {
		return nil, fmt.Errorf("stats: %w", padel.ErrNotFound)
	}
	return f.stats, nil
}

func (f *fakeUpstream) InvalidateStats(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, eventID)
	return 1
}

func (f *fakeUpstream) GetRankings(ctx context.Context, gender padel.Gender) ([]padel.RankedPlayer, error) {
	return []padel.RankedPlayer{{Position: "1", Name: "A. Galan"}, {Position: "2", Name: "F. Chingotto"}}, nil
}

type deniedNotifier struct{}

func (deniedNotifier) Notify(ctx context.Context, a announce.Announcement) error { return nil }
func (deniedNotifier) Permission() announce.Permission                           { return announce.PermissionDenied }

type testEnv struct {
	srv      *httptest.Server
	upstream *fakeUpstream
	poller   *poller.Poller
	prefs    *prefs.Preferences
}

func player(name string) *padel.Player { return &padel.Player{Name: name} }

func fixtures(now time.Time) *fakeUpstream {
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(padel.DateLayout) }
	live := padel.Match{MatchID: "m1", CourtName: "Central", RoundName: "Men Quarterfinal"}
	live.Team1 = padel.Team{Player1: player("A. Galan (1)"), Player2: player("F. Chingotto (2)"), Points: "15", Set1: padel.Games(3), IsServing: true}
	live.Team2 = padel.Team{Player1: player("A. Coello (3)"), Player2: player("A. Tapia (4)"), Points: "30", Set1: padel.Games(2)}
	pending := padel.Match{MatchID: "m2", CourtName: "Court 2", RoundName: "Women Quarterfinal"}
	pending.Team1 = padel.Team{Player1: player("P. Josemaria"), Player2: player("A. Ortega")}
	pending.Team2 = padel.Team{Player1: player("G. Triay"), Player2: player("D. Brea")}

	return &fakeUpstream{
		tournaments: []padel.Tournament{
			{ID: "10", Name: "Madrid P1", Type: "p1", StartDate: day(-1), EndDate: day(2), EventID: "555"},
			{ID: "11", Name: "Rome Major", Type: "major", StartDate: day(10), EndDate: day(15), EventID: "556"},
			{ID: "12", Name: "World Championships", Type: "world-championships", StartDate: day(-1), EndDate: day(1), EventID: "557"},
		},
		matches: []padel.Match{live, pending},
	}
}

func newEnv(t *testing.T, perm announce.Notifier, mutate func(*config.Config)) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimitEnabled = false
	if mutate != nil {
		mutate(cfg)
	}

	up := fixtures(time.Now())
	store, err := prefs.NewFileStore(filepath.Join(t.TempDir(), "prefs.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	p := prefs.New(store, nil)
	if err := p.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	ann := announce.New(announce.NewComposer(nil, p.Names.Transform, nil), nil, perm, 10*time.Millisecond, nil)
	t.Cleanup(ann.Close)
	pl := poller.New(up, ann, time.Hour, nil)
	t.Cleanup(pl.Stop)
	c := cache.New(true)
	t.Cleanup(c.Close)

	router := NewRouter(handler.Deps{
		Upstream:  up,
		Cache:     c,
		Config:    cfg,
		Poller:    pl,
		Announcer: ann,
		Prefs:     p,
		Clips:     voice.NewMemoryStore("/api/v1/audio"),
	}, cfg)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, upstream: up, poller: pl, prefs: p}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, e.srv.URL+path, rd)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestListTournamentsCategorized(t *testing.T) {
	env := newEnv(t, nil, nil)

	var got handler.TournamentList
	if code := env.do(t, "GET", "/api/v1/tournaments", nil, &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got.Today) != 1 || got.Today[0].ID != "10" {
		t.Errorf("today = %+v", got.Today)
	}
	if len(got.Upcoming) != 1 || got.Upcoming[0].ID != "11" {
		t.Errorf("upcoming = %+v", got.Upcoming)
	}
	if len(got.Types) != 2 {
		t.Errorf("types = %+v, want excluded type dropped", got.Types)
	}

	var filtered handler.TournamentList
	env.do(t, "GET", "/api/v1/tournaments?type=major", nil, &filtered)
	if len(filtered.Today) != 0 || len(filtered.Upcoming) != 1 {
		t.Errorf("type filter: %+v", filtered.Categorized)
	}
}

func TestSavedFiltersApplyToListing(t *testing.T) {
	env := newEnv(t, nil, nil)

	if code := env.do(t, "PUT", "/api/v1/filters", prefs.Filters{Types: []string{"p1"}, ShowFilters: true}, nil); code != http.StatusOK {
		t.Fatalf("save filters status = %d", code)
	}
	var got handler.TournamentList
	env.do(t, "GET", "/api/v1/tournaments", nil, &got)
	if len(got.Today) != 1 || len(got.Upcoming) != 0 {
		t.Errorf("listing ignores saved filters: %+v", got.Categorized)
	}
}

func TestDayMatchesUsesTournamentID(t *testing.T) {
	env := newEnv(t, nil, nil)

	var got handler.DayMatches
	if code := env.do(t, "GET", "/api/v1/tournaments/10/days/1/matches?gender=men", nil, &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(got.Matches) != 1 || got.Matches[0].ID() != "m1" {
		t.Fatalf("matches = %+v", got.Matches)
	}
	if name := got.Matches[0].Team1Name; name != "Ale Galan / Fede Chingotto" {
		t.Errorf("team1 name = %q, want mapped names without ranking", name)
	}
	if len(got.Courts) != 2 {
		t.Errorf("courts = %v", got.Courts)
	}
	if ids := env.upstream.matchIDs; len(ids) != 1 || ids[0] != "10" {
		t.Errorf("fetched with %v, want tournament id", ids)
	}

	if code := env.do(t, "GET", "/api/v1/tournaments/10/days/zero/matches", nil, nil); code != http.StatusBadRequest {
		t.Errorf("bad day status = %d", code)
	}
	if code := env.do(t, "GET", "/api/v1/tournaments/99/days/1/matches", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown tournament status = %d", code)
	}
}

func TestMatchStatsUsesEventID(t *testing.T) {
	env := newEnv(t, nil, nil)

	if code := env.do(t, "GET", "/api/v1/tournaments/10/matches/m1/stats", nil, nil); code != http.StatusNotFound {
		t.Errorf("empty stats status = %d, want 404", code)
	}

	period := &padel.PeriodStats{}
	env.upstream.stats = &padel.MatchStats{Match: period, Set1: period}
	var got handler.MatchStatsView
	if code := env.do(t, "GET", "/api/v1/tournaments/10/matches/m1/stats", nil, &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.Tab != "match" || len(got.Tabs) != 2 || len(got.Rows) == 0 {
		t.Errorf("stats = %+v", got)
	}
	if got.Rows[0].Share != 50 {
		t.Errorf("share of empty row = %d", got.Rows[0].Share)
	}
	if ids := env.upstream.statsIDs; ids[len(ids)-1] != "555" {
		t.Errorf("stats fetched with %v, want event id", ids)
	}
	if code := env.do(t, "GET", "/api/v1/tournaments/10/matches/m1/stats?tab=set3", nil, nil); code != http.StatusBadRequest {
		t.Errorf("missing tab status = %d", code)
	}
}

func TestRankings(t *testing.T) {
	env := newEnv(t, nil, nil)

	var players []padel.RankedPlayer
	if code := env.do(t, "GET", "/api/v1/rankings/men?search=galan", nil, &players); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(players) != 1 || players[0].Name != "A. Galan" {
		t.Errorf("players = %+v", players)
	}
	if code := env.do(t, "GET", "/api/v1/rankings/mixed", nil, nil); code != http.StatusBadRequest {
		t.Errorf("invalid gender status = %d", code)
	}
}

func TestTournamentTypesETag(t *testing.T) {
	env := newEnv(t, nil, nil)

	resp, err := http.Get(env.srv.URL + "/api/v1/tournaments/types")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("no ETag")
	}

	req, _ := http.NewRequest("GET", env.srv.URL+"/api/v1/tournaments/types", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("status = %d, want 304", resp.StatusCode)
	}
}

func startLive(t *testing.T, env *testEnv) poller.View {
	t.Helper()
	if code := env.do(t, "POST", "/api/v1/live", handler.StartLiveRequest{TournamentID: "10", Day: 1}, nil); code != http.StatusAccepted {
		t.Fatalf("start status = %d", code)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		var v poller.View
		env.do(t, "GET", "/api/v1/live", nil, &v)
		if len(v.Cards) > 0 {
			return v
		}
		if time.Now().After(deadline) {
			t.Fatalf("board never loaded: %+v", v)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLiveBoardLifecycle(t *testing.T) {
	env := newEnv(t, nil, nil)

	v := startLive(t, env)
	if v.Selection.TournamentID != "10" || v.Selection.EventID != "555" || !v.Active {
		t.Errorf("selection = %+v active=%v", v.Selection, v.Active)
	}
	if v.FirstLive != 0 || !v.Cards[0].Live {
		t.Errorf("first live = %d", v.FirstLive)
	}

	var expanded poller.View
	if code := env.do(t, "PUT", "/api/v1/live/matches/m1/expanded", handler.ExpandRequest{Expanded: true, Tab: "set1"}, &expanded); code != http.StatusOK {
		t.Fatalf("expand status = %d", code)
	}
	if !expanded.Cards[0].Expanded || expanded.Cards[0].StatsTab != "set1" {
		t.Errorf("card = %+v", expanded.Cards[0])
	}

	var off poller.View
	env.do(t, "PUT", "/api/v1/live/auto-refresh", map[string]bool{"enabled": false}, &off)
	if off.AutoRefresh || off.SecondsUntilRefresh != 0 {
		t.Errorf("auto-refresh view = %+v", off)
	}

	var refreshed poller.View
	if code := env.do(t, "POST", "/api/v1/live/refresh", nil, &refreshed); code != http.StatusOK {
		t.Fatalf("refresh status = %d", code)
	}
	if refreshed.Seq <= v.Seq {
		t.Errorf("seq %d not advanced from %d", refreshed.Seq, v.Seq)
	}
	env.upstream.mu.Lock()
	invalidated := append([]string(nil), env.upstream.invalidated...)
	env.upstream.mu.Unlock()
	if len(invalidated) != 1 || invalidated[0] != "555" {
		t.Errorf("invalidated = %v, want [555]", invalidated)
	}

	var stopped poller.View
	env.do(t, "DELETE", "/api/v1/live", nil, &stopped)
	if stopped.Active {
		t.Error("still active after stop")
	}
	if code := env.do(t, "POST", "/api/v1/live/refresh", nil, nil); code != http.StatusConflict {
		t.Errorf("refresh after stop status = %d", code)
	}
}

func TestToggleChannels(t *testing.T) {
	env := newEnv(t, deniedNotifier{}, nil)
	startLive(t, env)

	var denied handler.SubscriptionResponse
	if code := env.do(t, "POST", "/api/v1/live/matches/m1/notification", nil, &denied); code != http.StatusForbidden {
		t.Fatalf("notification status = %d, want 403", code)
	}
	if denied.Message != announce.PermissionDeniedMessage || denied.Subscription.Notification {
		t.Errorf("denied response = %+v", denied)
	}

	var on handler.SubscriptionResponse
	if code := env.do(t, "POST", "/api/v1/live/matches/m1/voice", nil, &on); code != http.StatusOK {
		t.Fatalf("voice status = %d", code)
	}
	if !on.Subscription.Voice {
		t.Errorf("voice not enabled: %+v", on)
	}

	var subs []announce.Subscription
	env.do(t, "GET", "/api/v1/subscriptions", nil, &subs)
	if len(subs) != 1 || subs[0].MatchID != "m1" {
		t.Errorf("subscriptions = %+v", subs)
	}

	var off handler.SubscriptionResponse
	env.do(t, "POST", "/api/v1/live/matches/m1/voice", map[string]bool{"enabled": false}, &off)
	if off.Subscription.Voice {
		t.Error("explicit disable ignored")
	}

	if code := env.do(t, "POST", "/api/v1/live/matches/m1/smoke", nil, nil); code != http.StatusBadRequest {
		t.Errorf("bad channel status = %d", code)
	}
	if code := env.do(t, "POST", "/api/v1/live/matches/zzz/voice", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown match status = %d", code)
	}
}

func TestNameMappingRoutes(t *testing.T) {
	env := newEnv(t, nil, nil)

	var names []handler.NameMapping
	if code := env.do(t, "DELETE", "/api/v1/names", nil, &names); code != http.StatusOK || len(names) != 0 {
		t.Fatalf("clear: status %d, %d names", code, len(names))
	}
	env.do(t, "PUT", "/api/v1/names", handler.NameMapping{Original: "A. Coello", Preferred: "Arturo Coello"}, &names)
	if len(names) != 1 || names[0].Preferred != "Arturo Coello" {
		t.Fatalf("after set: %+v", names)
	}
	if code := env.do(t, "PUT", "/api/v1/names", handler.NameMapping{Original: "A. Coello", Preferred: "  "}, nil); code != http.StatusBadRequest {
		t.Errorf("empty name status = %d", code)
	}
	env.do(t, "DELETE", "/api/v1/names/A.%20Coello", nil, &names)
	if len(names) != 0 {
		t.Errorf("after remove: %+v", names)
	}
	env.do(t, "POST", "/api/v1/names/reset", nil, &names)
	if len(names) != len(prefs.DefaultMappings) {
		t.Errorf("after reset: %d names", len(names))
	}
}

func TestFavoriteToggle(t *testing.T) {
	env := newEnv(t, nil, nil)

	var resp struct {
		Favorite  bool               `json:"favorite"`
		Favorites []padel.Tournament `json:"favorites"`
	}
	env.do(t, "POST", "/api/v1/favorites/10/toggle", nil, &resp)
	if !resp.Favorite || len(resp.Favorites) != 1 {
		t.Fatalf("first toggle = %+v", resp)
	}
	env.do(t, "POST", "/api/v1/favorites/10/toggle", nil, &resp)
	if resp.Favorite || len(resp.Favorites) != 0 {
		t.Errorf("second toggle = %+v", resp)
	}
	if code := env.do(t, "POST", "/api/v1/favorites/nope/toggle", nil, nil); code != http.StatusNotFound {
		t.Errorf("unknown tournament status = %d", code)
	}
}

func TestAudioClip(t *testing.T) {
	env := newEnv(t, nil, nil)
	if code := env.do(t, "GET", "/api/v1/audio/missing", nil, nil); code != http.StatusNotFound {
		t.Errorf("missing clip status = %d", code)
	}
}

func TestRateLimit(t *testing.T) {
	env := newEnv(t, nil, func(c *config.Config) {
		c.RateLimitEnabled = true
		c.RateLimitRequests = 2
		c.RateLimitWindow = time.Minute
	})

	limited := false
	for range 5 {
		resp, err := http.Get(env.srv.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			if resp.Header.Get("Retry-After") != "60" {
				t.Errorf("Retry-After = %q", resp.Header.Get("Retry-After"))
			}
		}
	}
	if !limited {
		t.Error("no request was rate limited")
	}
}

func TestHealthAndTiming(t *testing.T) {
	env := newEnv(t, nil, nil)

	resp, err := http.Get(env.srv.URL + "/health/db")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusOK || body["database"] != "disabled" {
		t.Errorf("health/db = %d %v", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Process-Time") == "" {
		t.Error("missing X-Process-Time")
	}
}
