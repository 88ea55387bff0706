package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/padely/padely/internal/api/respond"
	"github.com/padely/padely/internal/voice"
)

// GetAudio serves a synthesized announcement clip held in memory.
// @Summary Announcement audio clip
// @Description WAV clip referenced by a voice message. Clips expire after a few minutes.
// @Tags live
// @Produce audio/wav
// @Param id path string true "Clip ID"
// @Success 200 {file} binary
// @Failure 404 {object} respond.ErrorResponse
// @Router /audio/{id} [get]
func (h *Handler) GetAudio(w http.ResponseWriter, r *http.Request) {
	if h.clips == nil {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Audio clips are served from the bucket")
		return
	}
	data, err := h.clips.Get(chi.URLParam(r, "id"))
	if errors.Is(err, voice.ErrClipNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Audio clip not found or expired")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "AUDIO_FAILED", "Failed to load audio clip")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
