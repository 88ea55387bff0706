package handler

import (
	"errors"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/padely/padely/internal/api/respond"
	"github.com/padely/padely/internal/prefs"
)

// NameMapping is one original to preferred player name entry.
type NameMapping struct {
	Original  string `json:"original"`
	Preferred string `json:"preferred"`
}

// ----- Player names -----

// ListNames returns every name mapping.
// @Summary List player name mappings
// @Tags preferences
// @Produce json
// @Success 200 {array} NameMapping
// @Router /names [get]
func (h *Handler) ListNames(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.nameList())
}

// SetName adds or replaces a mapping.
// @Summary Set player name mapping
// @Tags preferences
// @Accept json
// @Produce json
// @Param body body NameMapping true "Mapping"
// @Success 200 {array} NameMapping
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /names [put]
func (h *Handler) SetName(w http.ResponseWriter, r *http.Request) {
	var req NameMapping
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}
	err := h.prefs.Names.Set(r.Context(), req.Original, req.Preferred)
	if errors.Is(err, prefs.ErrInvalidName) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_NAME", "Both original and preferred names are required")
		return
	}
	if err != nil {
		h.prefsError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.nameList())
}

// RemoveName deletes one mapping.
// @Summary Remove player name mapping
// @Tags preferences
// @Produce json
// @Param original path string true "Original name (URL-escaped)"
// @Success 200 {array} NameMapping
// @Failure 500 {object} respond.ErrorResponse
// @Router /names/{original} [delete]
func (h *Handler) RemoveName(w http.ResponseWriter, r *http.Request) {
	original, err := url.PathUnescape(chi.URLParam(r, "original"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_NAME", "Malformed name")
		return
	}
	if err := h.prefs.Names.Remove(r.Context(), original); err != nil {
		h.prefsError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.nameList())
}

// ResetNames restores the default mappings.
// @Summary Reset player name mappings to defaults
// @Tags preferences
// @Produce json
// @Success 200 {array} NameMapping
// @Failure 500 {object} respond.ErrorResponse
// @Router /names/reset [post]
func (h *Handler) ResetNames(w http.ResponseWriter, r *http.Request) {
	if err := h.prefs.Names.Reset(r.Context()); err != nil {
		h.prefsError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.nameList())
}

// ClearNames removes every mapping.
// @Summary Clear all player name mappings
// @Tags preferences
// @Produce json
// @Success 200 {array} NameMapping
// @Failure 500 {object} respond.ErrorResponse
// @Router /names [delete]
func (h *Handler) ClearNames(w http.ResponseWriter, r *http.Request) {
	if err := h.prefs.Names.Clear(r.Context()); err != nil {
		h.prefsError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.nameList())
}

func (h *Handler) nameList() []NameMapping {
	m := h.prefs.Names.Mappings()
	out := make([]NameMapping, 0, len(m))
	for _, orig := range slices.Sorted(maps.Keys(m)) {
		out = append(out, NameMapping{Original: orig, Preferred: m[orig]})
	}
	return out
}

// ----- Favorites -----

// ListFavorites returns the favorite tournaments.
// @Summary List favorite tournaments
// @Tags preferences
// @Produce json
// @Success 200 {array} padel.Tournament
// @Router /favorites [get]
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.prefs.Favorites.List())
}

// ToggleFavorite adds or removes a tournament from favorites.
// @Summary Toggle favorite tournament
// @Tags preferences
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /favorites/{id}/toggle [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.upstream.GetTournament(r.Context(), id)
	if err != nil {
		h.upstreamError(w, err, "tournament")
		return
	}
	added, err := h.prefs.Favorites.Toggle(r.Context(), t)
	if err != nil {
		h.prefsError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"id":        id,
		"favorite":  added,
		"favorites": h.prefs.Favorites.List(),
	})
}

// ----- Filters -----

// GetFilters returns the saved tournament filter selection.
// @Summary Get saved filters
// @Tags preferences
// @Produce json
// @Success 200 {object} prefs.Filters
// @Router /filters [get]
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.prefs.Filters.Get())
}

// SaveFilters replaces the saved tournament filter selection.
// @Summary Save filters
// @Tags preferences
// @Accept json
// @Produce json
// @Param body body prefs.Filters true "Filters"
// @Success 200 {object} prefs.Filters
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /filters [put]
func (h *Handler) SaveFilters(w http.ResponseWriter, r *http.Request) {
	var f prefs.Filters
	if err := respond.DecodeJSON(r, &f); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}
	f.Month = strings.TrimSpace(f.Month)
	if err := h.prefs.Filters.Save(r.Context(), f); err != nil {
		h.prefsError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.prefs.Filters.Get())
}

func (h *Handler) prefsError(w http.ResponseWriter, err error) {
	h.logger.Error("Failed to save preferences", "error", err)
	respond.WriteError(w, http.StatusInternalServerError, "PREFS_SAVE_FAILED", "Failed to save preferences")
}
