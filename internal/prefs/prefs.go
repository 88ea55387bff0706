package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/padely/padely/internal/config"
	"github.com/padely/padely/internal/db"
	"github.com/padely/padely/internal/padel"
)

// ----- Favorites -----

// Favorites is the list of starred tournaments, stored whole so the list
// renders without an upstream call.
type Favorites struct {
	mu    sync.RWMutex
	list  []padel.Tournament
	store Store
}

func NewFavorites(store Store) *Favorites {
	return &Favorites{store: store}
}

func (f *Favorites) Load(ctx context.Context) error {
	var list []padel.Tournament
	if err := getJSON(ctx, f.store, config.FavoritesKey, &list); err != nil {
		return err
	}
	f.mu.Lock()
	f.list = list
	f.mu.Unlock()
	return nil
}

// List returns the favorites in the order they were added.
func (f *Favorites) List() []padel.Tournament {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.list)
}

// IsFavorite reports whether a tournament id is starred.
func (f *Favorites) IsFavorite(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexLocked(id) >= 0
}

// IDs returns the starred tournament ids as a set.
func (f *Favorites) IDs() map[string]bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make(map[string]bool, len(f.list))
	for _, t := range f.list {
		ids[string(t.ID)] = true
	}
	return ids
}

// Toggle stars or unstars t and reports whether it is now a favorite.
func (f *Favorites) Toggle(ctx context.Context, t padel.Tournament) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := slices.Clone(f.list)
	added := false
	if i := f.indexLocked(string(t.ID)); i >= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next = append(next, t)
		added = true
	}
	if next == nil {
		next = []padel.Tournament{}
	}
	if err := putJSON(ctx, f.store, config.FavoritesKey, next); err != nil {
		return !added, err
	}
	f.list = next
	return added, nil
}

func (f *Favorites) indexLocked(id string) int {
	return slices.IndexFunc(f.list, func(t padel.Tournament) bool { return string(t.ID) == id })
}

// ----- Filters -----

// Filters is the saved tournament list filter selection.
type Filters struct {
	Types       []string `json:"types"`
	Month       string   `json:"month"`
	ShowFilters bool     `json:"showFilters"`
}

// TournamentFilter converts the saved selection, adding a free-text search.
func (f Filters) TournamentFilter(search string) padel.TournamentFilter {
	return padel.TournamentFilter{Types: f.Types, Month: f.Month, Search: search}
}

// FilterStore persists Filters.
type FilterStore struct {
	mu    sync.RWMutex
	cur   Filters
	store Store
}

func NewFilterStore(store Store) *FilterStore {
	return &FilterStore{store: store}
}

func (s *FilterStore) Load(ctx context.Context) error {
	var f Filters
	if err := getJSON(ctx, s.store, config.FiltersKey, &f); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = f
	s.mu.Unlock()
	return nil
}

func (s *FilterStore) Get() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.cur
	f.Types = slices.Clone(f.Types)
	return f
}

func (s *FilterStore) Save(ctx context.Context, f Filters) error {
	if f.Types == nil {
		f.Types = []string{}
	}
	if err := putJSON(ctx, s.store, config.FiltersKey, f); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = f
	s.mu.Unlock()
	return nil
}

// ----- Preferences -----

// Preferences bundles every preference kind over one store.
type Preferences struct {
	Names     *Names
	Favorites *Favorites
	Filters   *FilterStore

	logger *slog.Logger
}

// New creates the preference set. Call Load before use.
func New(store Store, logger *slog.Logger) *Preferences {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preferences{
		Names:     NewNames(store, logger),
		Favorites: NewFavorites(store),
		Filters:   NewFilterStore(store),
		logger:    logger,
	}
}

// Load reads every preference from the store.
func (p *Preferences) Load(ctx context.Context) error {
	if err := p.Names.Load(ctx); err != nil {
		return fmt.Errorf("load name mappings: %w", err)
	}
	if err := p.Favorites.Load(ctx); err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	if err := p.Filters.Load(ctx); err != nil {
		return fmt.Errorf("load filters: %w", err)
	}
	return nil
}

// Reload re-reads one key after another instance changed it. Unknown keys
// are ignored.
func (p *Preferences) Reload(ctx context.Context, key string) error {
	var err error
	switch key {
	case config.NameMappingsKey:
		err = p.Names.Load(ctx)
	case config.FavoritesKey:
		err = p.Favorites.Load(ctx)
	case config.FiltersKey:
		err = p.Filters.Load(ctx)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("reload %s: %w", key, err)
	}
	p.logger.Info("Preferences reloaded", "key", key)
	return nil
}

// Keys lists every preference key, for resyncing after missed changes.
var Keys = []string{config.NameMappingsKey, config.FavoritesKey, config.FiltersKey}

// OpenStore picks the backend: Postgres when a database URL is configured,
// the JSON file otherwise. The returned pool is nil for the file store and
// must be closed by the caller otherwise.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, *db.Pool, error) {
	if cfg.DatabaseURL == "" {
		store, err := NewFileStore(cfg.PrefsFile, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
	pool, err := db.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewPGStore(pool.Pool), pool, nil
}

// ----- helpers -----

// getJSON decodes key into v. A missing key leaves v untouched.
func getJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func putJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}
