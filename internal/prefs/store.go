// Package prefs persists user preferences (favorite tournaments, player name
// mappings, filter selections) as JSON values under fixed keys. Two stores
// exist: Postgres for the server and a JSON file for the CLI.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by Store.Get for a key that was never written.
var ErrNotFound = errors.New("preference not found")

// Store is a key-value store of JSON documents.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
	Keys(ctx context.Context) ([]string, error)
}

// --------------------------------------------------------------------------
// Postgres
// --------------------------------------------------------------------------

// PGStore keeps preferences in the preferences table. Writes notify the
// preferences_changed channel with the key as payload.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, "prefs_get", key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get preference %s: %w", key, err)
	}
	return raw, nil
}

func (s *PGStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	if _, err := s.pool.Exec(ctx, "prefs_put", key, []byte(value)); err != nil {
		return fmt.Errorf("put preference %s: %w", key, err)
	}
	return nil
}

func (s *PGStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "prefs_keys")
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan preference key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// --------------------------------------------------------------------------
// JSON file
// --------------------------------------------------------------------------

// FileStore keeps every preference in one indented JSON object on disk. The
// whole file is rewritten on each Put.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
	logger *slog.Logger
}

// NewFileStore opens path, creating its directory. A missing or unreadable
// file starts an empty store.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create preferences directory %s: %w", dir, err)
		}
	}
	s := &FileStore{path: path, values: make(map[string]json.RawMessage), logger: logger}
	s.load()
	return s, nil
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read preferences file, starting empty", "path", s.path, "error", err)
		}
		return
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Warn("Failed to parse preferences file, starting empty", "path", s.path, "error", err)
		return
	}
	s.values = values
	s.logger.Debug("Loaded preferences", "path", s.path, "keys", len(values))
}

func (s *FileStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return append(json.RawMessage(nil), v...), nil
}

func (s *FileStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]json.RawMessage, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[key] = append(json.RawMessage(nil), value...)

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write preferences file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace preferences file %s: %w", s.path, err)
	}
	s.values = next
	return nil
}

func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }
