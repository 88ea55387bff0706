package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/padely/padely/internal/config"
	"github.com/padely/padely/internal/padel"
)

func tempStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs", "padely.json")
	s, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return s, path
}

func TestTransform(t *testing.T) {
	n := NewNames(nil, nil)
	tests := []struct {
		in, want string
	}{
		{"P. Josemaria Martin (2)", "Paulita (2)"},
		{"A. Galan", "Ale Galan"},
		{"A. Galan (Q)", "Ale Galan (Q)"},
		{"A. Galan(WC)", "Ale Galan(WC)"},
		{"A. Galan  ", "Ale Galan"},
		{"Unknown Player (3)", "Unknown Player (3)"},
		{"A. Galan (q)", "A. Galan (q)"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := n.Transform(tt.in); got != tt.want {
			t.Errorf("Transform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNamesPersistEveryMutation(t *testing.T) {
	ctx := context.Background()
	store, path := tempStore(t)
	n := NewNames(store, nil)
	if err := n.Load(ctx); err != nil {
		t.Fatal(err)
	}

	reopen := func() *Names {
		t.Helper()
		s, err := NewFileStore(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		r := NewNames(s, nil)
		if err := r.Load(ctx); err != nil {
			t.Fatal(err)
		}
		return r
	}

	if err := n.Set(ctx, "X. Player", "Xavi"); err != nil {
		t.Fatal(err)
	}
	if got := reopen().Transform("X. Player (7)"); got != "Xavi (7)" {
		t.Errorf("after Set: %q", got)
	}

	if err := n.Remove(ctx, "A. Galan"); err != nil {
		t.Fatal(err)
	}
	if got := reopen().Transform("A. Galan"); got != "A. Galan" {
		t.Errorf("after Remove: %q", got)
	}

	if err := n.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if m := reopen().Mappings(); len(m) != 0 {
		t.Errorf("after Clear: %d mappings", len(m))
	}

	if err := n.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	r := reopen()
	if len(r.Mappings()) != len(DefaultMappings) || r.Transform("X. Player") != "X. Player" {
		t.Errorf("after Reset: %d mappings", len(r.Mappings()))
	}
}

func TestNamesSetRejectsEmpty(t *testing.T) {
	store, _ := tempStore(t)
	n := NewNames(store, nil)
	if err := n.Set(context.Background(), " ", "x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("err = %v, want ErrInvalidName", err)
	}
}

func TestNamesDefaultsWhenMissing(t *testing.T) {
	store, _ := tempStore(t)
	n := NewNames(store, nil)
	if err := n.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := n.Transform("F. Chingotto (2)"); got != "Fede Chingotto (2)" {
		t.Errorf("Transform() = %q", got)
	}
}

func TestFavoritesToggle(t *testing.T) {
	ctx := context.Background()
	store, path := tempStore(t)
	f := NewFavorites(store)

	tour := padel.Tournament{ID: "42", Name: "Milano Premier Padel P1"}
	added, err := f.Toggle(ctx, tour)
	if err != nil || !added {
		t.Fatalf("Toggle() = %v, %v", added, err)
	}
	if !f.IsFavorite("42") || f.IsFavorite("7") {
		t.Error("IsFavorite mismatch")
	}

	s2, _ := NewFileStore(path, nil)
	f2 := NewFavorites(s2)
	if err := f2.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if list := f2.List(); len(list) != 1 || list[0].Name != tour.Name {
		t.Errorf("persisted favorites = %+v", list)
	}

	added, _ = f.Toggle(ctx, tour)
	if added || f.IsFavorite("42") {
		t.Error("second toggle did not remove")
	}
	raw, _ := store.Get(ctx, config.FavoritesKey)
	if string(raw) != "[]" {
		t.Errorf("stored = %s, want []", raw)
	}
}

func TestFiltersRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := tempStore(t)
	fs := NewFilterStore(store)
	want := Filters{Types: []string{"major"}, Month: "2025-03", ShowFilters: true}
	if err := fs.Save(ctx, want); err != nil {
		t.Fatal(err)
	}

	fs2 := NewFilterStore(store)
	if err := fs2.Load(ctx); err != nil {
		t.Fatal(err)
	}
	got := fs2.Get()
	if got.Month != want.Month || !got.ShowFilters || len(got.Types) != 1 {
		t.Errorf("Get() = %+v", got)
	}
	if tf := got.TournamentFilter("milano"); tf.Search != "milano" || tf.Month != "2025-03" {
		t.Errorf("TournamentFilter() = %+v", tf)
	}
}

func TestReloadPicksUpExternalWrite(t *testing.T) {
	ctx := context.Background()
	store, _ := tempStore(t)
	p := New(store, nil)
	if err := p.Load(ctx); err != nil {
		t.Fatal(err)
	}

	raw, _ := json.Marshal(map[string]string{"A. Galan": "Galan"})
	if err := store.Put(ctx, config.NameMappingsKey, raw); err != nil {
		t.Fatal(err)
	}
	if got := p.Names.Transform("A. Galan"); got != "Ale Galan" {
		t.Fatalf("before reload = %q", got)
	}
	if err := p.Reload(ctx, config.NameMappingsKey); err != nil {
		t.Fatal(err)
	}
	if got := p.Names.Transform("A. Galan"); got != "Galan" {
		t.Errorf("after reload = %q", got)
	}
	if err := p.Reload(ctx, "unrelated"); err != nil {
		t.Errorf("unknown key: %v", err)
	}
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(context.Background(), config.FavoritesKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
