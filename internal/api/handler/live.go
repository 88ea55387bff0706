package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/padely/padely/internal/announce"
	"github.com/padely/padely/internal/api/respond"
	"github.com/padely/padely/internal/notifications"
	"github.com/padely/padely/internal/padel"
	"github.com/padely/padely/internal/poller"
)

const (
	minInterval = 5 * time.Second
	maxInterval = 5 * time.Minute
)

// StartLiveRequest selects the tournament day to poll.
type StartLiveRequest struct {
	TournamentID    string `json:"tournamentId"`
	Day             int    `json:"day,omitempty"`
	IntervalSeconds int    `json:"intervalSeconds,omitempty"`
}

// ToggleRequest sets a channel explicitly. Without a body the channel flips.
type ToggleRequest struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// ExpandRequest opens or closes the stats panel of a card.
type ExpandRequest struct {
	Expanded bool   `json:"expanded"`
	Tab      string `json:"tab,omitempty"`
}

// SubscriptionResponse is the channel state of one match after a toggle.
type SubscriptionResponse struct {
	Subscription announce.Subscription `json:"subscription"`
	Message      string                `json:"message,omitempty"`
}

// GetLive returns the live board.
// @Summary Live board
// @Description Current selection, matches with card state, refresh countdown and the index of the first live match.
// @Tags live
// @Produce json
// @Success 200 {object} poller.View
// @Router /live [get]
func (h *Handler) GetLive(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.poller.Board().View())
}

// StartLive starts polling a tournament day, replacing any previous one.
// @Summary Start live polling
// @Description Selects a tournament day. The first fetch runs immediately; later fetches run every interval (default 20s) while auto-refresh is on.
// @Tags live
// @Accept json
// @Produce json
// @Param body body StartLiveRequest true "Selection"
// @Success 202 {object} poller.View
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /live [post]
func (h *Handler) StartLive(w http.ResponseWriter, r *http.Request) {
	var req StartLiveRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}
	if req.TournamentID == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_TOURNAMENT", "tournamentId is required")
		return
	}

	t, err := h.upstream.GetTournament(r.Context(), req.TournamentID)
	if err != nil {
		h.upstreamError(w, err, "tournament")
		return
	}
	day := req.Day
	if day <= 0 {
		days, _ := t.Days(h.now())
		day = padel.DefaultDay(days)
	}

	var interval time.Duration
	if req.IntervalSeconds > 0 {
		interval = time.Duration(req.IntervalSeconds) * time.Second
		interval = min(max(interval, minInterval), maxInterval)
	} else if h.cfg != nil {
		interval = h.cfg.RefreshInterval
	}

	h.poller.Start(r.Context(), poller.Selection{
		TournamentID: string(t.ID),
		EventID:      string(t.EventID),
		Day:          day,
	}, interval)
	respond.WriteJSONObject(w, http.StatusAccepted, h.poller.Board().View())
}

// StopLive stops polling and cancels pending announcements.
// @Summary Stop live polling
// @Tags live
// @Produce json
// @Success 200 {object} poller.View
// @Router /live [delete]
func (h *Handler) StopLive(w http.ResponseWriter, r *http.Request) {
	h.poller.Stop()
	respond.WriteJSONObject(w, http.StatusOK, h.poller.Board().View())
}

// SetAutoRefresh enables or disables background polling.
// @Summary Toggle auto-refresh
// @Tags live
// @Accept json
// @Produce json
// @Param body body ToggleRequest true "enabled"
// @Success 200 {object} poller.View
// @Failure 400 {object} respond.ErrorResponse
// @Router /live/auto-refresh [put]
func (h *Handler) SetAutoRefresh(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}
	on := !h.poller.Board().AutoRefresh()
	if req.Enabled != nil {
		on = *req.Enabled
	}
	h.poller.SetAutoRefresh(on)
	respond.WriteJSONObject(w, http.StatusOK, h.poller.Board().View())
}

// RefreshLive fetches the current selection once and drops the cached
// statistics of its event so open stats panels reload.
// @Summary Refresh now
// @Description Runs one silent fetch and clears cached match statistics of the event. A failure keeps the last data.
// @Tags live
// @Produce json
// @Success 200 {object} poller.View
// @Failure 409 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /live/refresh [post]
func (h *Handler) RefreshLive(w http.ResponseWriter, r *http.Request) {
	sel, active := h.poller.Board().Selection()
	if !active {
		respond.WriteError(w, http.StatusConflict, "NOT_POLLING", "No tournament day is being polled")
		return
	}
	if err := h.poller.Refresh(r.Context()); err != nil {
		h.upstreamError(w, err, "matches")
		return
	}
	if inv, ok := h.upstream.(statsInvalidator); ok {
		n := inv.InvalidateStats(sel.EventID)
		h.logger.Debug("Cached stats invalidated", "event_id", sel.EventID, "entries", n)
	}
	respond.WriteJSONObject(w, http.StatusOK, h.poller.Board().View())
}

// SetExpanded opens or closes a card's stats panel.
// @Summary Expand match card
// @Tags live
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param body body ExpandRequest true "Card state"
// @Success 200 {object} poller.View
// @Failure 404 {object} respond.ErrorResponse
// @Router /live/matches/{matchID}/expanded [put]
func (h *Handler) SetExpanded(w http.ResponseWriter, r *http.Request) {
	var req ExpandRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}
	if !h.poller.Board().SetExpanded(chi.URLParam(r, "matchID"), req.Expanded, req.Tab) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Match is not on the live board")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.poller.Board().View())
}

// ToggleChannel flips or sets voice or notification announcements for a
// match on the live board.
// @Summary Toggle announcements
// @Description Voice or notification announcements for one match. Enabling on an ended match announces the final result once and stays off; on a match that has not started it announces a placeholder. Enabling notifications fails with 403 when every client denied permission.
// @Tags live
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param channel path string true "Channel" Enums(voice, notification)
// @Param body body ToggleRequest false "Explicit state"
// @Success 200 {object} SubscriptionResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} SubscriptionResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /live/matches/{matchID}/{channel} [post]
func (h *Handler) ToggleChannel(w http.ResponseWriter, r *http.Request) {
	ch, ok := announce.ParseChannel(chi.URLParam(r, "channel"))
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_CHANNEL", "channel must be voice or notification")
		return
	}
	var req ToggleRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", err.Error())
		return
	}
	m, seq, ok := h.poller.Board().Match(chi.URLParam(r, "matchID"))
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Match is not on the live board")
		return
	}

	var (
		sub announce.Subscription
		err error
	)
	if req.Enabled != nil {
		sub, err = h.announcer.SetChannel(r.Context(), ch, m, seq, *req.Enabled)
	} else {
		sub, err = h.announcer.Toggle(r.Context(), ch, m, seq)
	}
	if errors.Is(err, announce.ErrPermissionDenied) {
		respond.WriteJSONObject(w, http.StatusForbidden, SubscriptionResponse{
			Subscription: sub,
			Message:      announce.PermissionDeniedMessage,
		})
		return
	}
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "TOGGLE_FAILED", "Failed to update announcements", err.Error())
		return
	}

	if h.publisher != nil {
		h.publisher.Publish(notifications.TypeSubscription, sub)
	}
	respond.WriteJSONObject(w, http.StatusOK, SubscriptionResponse{Subscription: sub})
}

// ListSubscriptions returns every match with an enabled channel.
// @Summary Subscriptions
// @Tags live
// @Produce json
// @Success 200 {array} announce.Subscription
// @Router /subscriptions [get]
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.announcer.Subscriptions())
}

// ListAnnouncements returns recently delivered announcements.
// @Summary Recent announcements
// @Tags live
// @Produce json
// @Success 200 {array} announce.Announcement
// @Router /announcements [get]
func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.announcer.Recent())
}

// ServeWS upgrades to the browser feed.
// @Summary Websocket feed
// @Description Pushes board, subscription, toast, os_notification, voice and speech messages. Clients send visibility and permission reports.
// @Tags live
// @Success 101
// @Router /ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "NO_FEED", "Websocket feed is not running")
		return
	}
	h.hub.ServeWS(w, r)
}
