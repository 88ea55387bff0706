package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/padely/padely/internal/config"
)

// ErrInvalidName is returned for an empty original or display name.
var ErrInvalidName = errors.New("player name must not be empty")

// DefaultMappings maps upstream player names to the names fans use.
var DefaultMappings = map[string]string{
	"A. Salazar Bengoechea": "Ale Salazar",
	"M. Calvo Santamaria":   "Martina Calvo",
	"A. Sanchez Fallada":    "Ari Sanchez",
	"P. Josemaria Martin":   "Paulita",
	"A. Tapia":              "Agustin Tapia",
	"A. Coello":             "Arturo Coello",
	"L. Campagnolo":         "Lucas Campagnolo",
	"J. Garrido":            "Javi Garrido",
	"D. Brea Senesi":        "Delfi Brea",
	"G. Triay Pons":         "Gemma Triay",
	"E. Alonso":             "Edu Alonso",
	"J. Tello":              "Juan Tello",
	"F. Chingotto":          "Fede Chingotto",
	"A. Galan":              "Ale Galan",
	"A. Ustero Prieto":      "Andrea Ustero",
	"S. Araujo":             "Sofia Araújo",
	"J. Sanz":               "Jon Sanz",
	"F. Navarro":            "Paquito Navarro",
	"A. Osoro Ulrich":       "Osoro",
	"V. Iglesias Segador":   "Victor Iglesias",
	"M. Ortega Gallego":     "Marta Ortega",
	"T. Icardo Alcorisa":    "Tamara Icaro",
	"C. Fernandez Sanchez":  "Claudia Fernandez",
	"B. Gonzalez Fernandez": "Bea Gonzalez",
	"A. Alonso De Villa":    "Alejandra Alonso",
	"C. Jensen":             "Claudia Jensen",
	"J. Leal":               "Javi Leal",
	"L. Bergamini":          "Luca Bergamini",
	"M. Arce Simo":          "Maxi Arce",
	"P. Lijo":               "Pablo Lijó",
	"J. De Pascual":         "Juani de Pascual",
	"M. Lamperti":           "Lamperti",
	"M. Di Nenno":           "Martin Di Nenno",
	"L. Roman Augsburguer":  "Leo Augsburguer",
	"V. Virseda Sanchez":    "Vera Virseda",
	"J. Gonzalez":           "Momo Gonzalez",
	"F. Guerrero":           "Fran Guerrero",
	"M. Deus":               "Miguel Deus",
	"N. Deus":               "Nuno Deus",
	"J. Lebron":             "Juan Lebron",
	"F. Stupaczuk":          "Franco Stupaczuk",
	"J. Nieto Ruiz":         "Coki Nieto",
	"M. Yanguas":            "Mike Yanguas",
	"M. Sanchez Aguero":     "Maxi Sanchez",
	"F. Gil Morales":        "Xisco Gil",
	"C. Goenaga Garcia":     "Carmen Goenaga",
	"B. Caldera Sanchez":    "Bea Caldera",
	"V. Libaak":             "Tino Libaak",
	"M. Guinart España":     "Marina Guinart",
}

// qualifierRe splits "P. Josemaria Martin (2)" into the base name and its
// ranking or qualifier suffix.
var qualifierRe = regexp.MustCompile(`^(.+?)(\s*\([A-Z0-9]+\))?\s*$`)

// Names holds the player name mappings. Every mutation is persisted before
// it becomes visible.
type Names struct {
	mu     sync.RWMutex
	m      map[string]string
	store  Store
	logger *slog.Logger
}

// NewNames starts with the default mappings; call Load to read the store.
func NewNames(store Store, logger *slog.Logger) *Names {
	if logger == nil {
		logger = slog.Default()
	}
	return &Names{m: maps.Clone(DefaultMappings), store: store, logger: logger}
}

// Load replaces the mappings with the stored ones. A missing key keeps the
// defaults.
func (n *Names) Load(ctx context.Context) error {
	raw, err := n.store.Get(ctx, config.NameMappingsKey)
	if errors.Is(err, ErrNotFound) {
		n.mu.Lock()
		n.m = maps.Clone(DefaultMappings)
		n.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("decode name mappings: %w", err)
	}
	if m == nil {
		m = map[string]string{}
	}
	n.mu.Lock()
	n.m = m
	n.mu.Unlock()
	n.logger.Debug("Loaded player name mappings", "count", len(m))
	return nil
}

// Transform returns the display name for an upstream name, keeping any
// ranking or qualifier suffix: "P. Josemaria Martin (2)" becomes
// "Paulita (2)". Unmapped names are returned unchanged.
func (n *Names) Transform(name string) string {
	if name == "" {
		return ""
	}
	sm := qualifierRe.FindStringSubmatch(name)
	if sm == nil {
		return name
	}
	n.mu.RLock()
	mapped, ok := n.m[strings.TrimSpace(sm[1])]
	n.mu.RUnlock()
	if !ok || mapped == "" {
		return name
	}
	return mapped + sm[2]
}

// Mappings returns a copy of the current mappings.
func (n *Names) Mappings() map[string]string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return maps.Clone(n.m)
}

// Originals returns the mapped upstream names, sorted.
func (n *Names) Originals() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Sorted(maps.Keys(n.m))
}

// Set adds or replaces one mapping.
func (n *Names) Set(ctx context.Context, original, preferred string) error {
	original, preferred = strings.TrimSpace(original), strings.TrimSpace(preferred)
	if original == "" || preferred == "" {
		return ErrInvalidName
	}
	return n.mutate(ctx, func(m map[string]string) { m[original] = preferred })
}

// Remove deletes one mapping. Removing an unknown name is not an error.
func (n *Names) Remove(ctx context.Context, original string) error {
	return n.mutate(ctx, func(m map[string]string) { delete(m, strings.TrimSpace(original)) })
}

// Reset restores the default mappings.
func (n *Names) Reset(ctx context.Context) error {
	return n.mutate(ctx, func(m map[string]string) {
		clear(m)
		maps.Copy(m, DefaultMappings)
	})
}

// Clear removes every mapping.
func (n *Names) Clear(ctx context.Context) error {
	return n.mutate(ctx, func(m map[string]string) { clear(m) })
}

func (n *Names) mutate(ctx context.Context, fn func(map[string]string)) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	next := maps.Clone(n.m)
	if next == nil {
		next = map[string]string{}
	}
	fn(next)
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode name mappings: %w", err)
	}
	if err := n.store.Put(ctx, config.NameMappingsKey, raw); err != nil {
		return err
	}
	n.m = next
	return nil
}
