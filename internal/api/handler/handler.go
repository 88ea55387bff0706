// Package handler provides HTTP handlers for all API endpoints.
// Upstream reads go through the provider client (which caches slow data);
// live state comes from the poller, announcer and preferences in memory.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/padely/padely/internal/announce"
	"github.com/padely/padely/internal/api/respond"
	"github.com/padely/padely/internal/cache"
	"github.com/padely/padely/internal/config"
	"github.com/padely/padely/internal/db"
	"github.com/padely/padely/internal/notifications"
	"github.com/padely/padely/internal/padel"
	"github.com/padely/padely/internal/poller"
	"github.com/padely/padely/internal/prefs"
	"github.com/padely/padely/internal/voice"
)

// Upstream is the live-score API as the handlers use it.
type Upstream interface {
	GetTournaments(ctx context.Context) ([]padel.Tournament, error)
	GetTournament(ctx context.Context, id string) (padel.Tournament, error)
	GetEventMatches(ctx context.Context, eventID string, day int) ([]padel.Match, error)
	GetMatchStats(ctx context.Context, eventID, matchID string) (*padel.MatchStats, error)
	GetRankings(ctx context.Context, gender padel.Gender) ([]padel.RankedPlayer, error)
}

// statsInvalidator is implemented by upstreams that cache match statistics.
type statsInvalidator interface {
	InvalidateStats(eventID string) int
}

// Publisher pushes state messages to connected browsers.
type Publisher interface {
	Publish(msgType string, payload any)
}

// Deps are the services handlers read from. Pool, Clips and Hub may be nil.
type Deps struct {
	Upstream  Upstream
	Cache     *cache.Cache
	Config    *config.Config
	Poller    *poller.Poller
	Announcer *announce.Announcer
	Prefs     *prefs.Preferences
	Publisher Publisher
	Hub       *notifications.Hub
	Clips     *voice.MemoryStore
	Pool      *db.Pool
	Logger    *slog.Logger
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	upstream  Upstream
	cache     *cache.Cache
	cfg       *config.Config
	poller    *poller.Poller
	announcer *announce.Announcer
	prefs     *prefs.Preferences
	publisher Publisher
	hub       *notifications.Hub
	clips     *voice.MemoryStore
	pool      *db.Pool
	logger    *slog.Logger

	now func() time.Time
}

// New creates a Handler with shared dependencies.
func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		upstream:  d.Upstream,
		cache:     d.Cache,
		cfg:       d.Config,
		poller:    d.Poller,
		announcer: d.Announcer,
		prefs:     d.Prefs,
		publisher: d.Publisher,
		hub:       d.Hub,
		clips:     d.Clips,
		pool:      d.Pool,
		logger:    logger,
		now:       time.Now,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and enabled features.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	features := []string{"live_polling", "in_memory_cache", "etag_support", "gzip_compression", "websocket_feed"}
	if h.pool != nil {
		features = append(features, "postgres_preferences")
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":     "Padely Live API",
		"version":  "1.0.0",
		"status":   "running",
		"docs":     "/docs",
		"features": features,
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity. Reports "disabled" when preferences live in a file.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	ts := h.now().UTC().Format(time.RFC3339)
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"database":  "disabled",
			"timestamp": ts,
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": ts,
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": ts,
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys, hits, misses).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckUpstream verifies the live-score API answers.
// @Summary Upstream health check
// @Description Fetches the tournament list and reports the route that served it.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/upstream [get]
func (h *Handler) HealthCheckUpstream(w http.ResponseWriter, r *http.Request) {
	ts := h.now().UTC().Format(time.RFC3339)
	list, err := h.upstream.GetTournaments(r.Context())
	if err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"upstream":  "unreachable",
			"error":     err.Error(),
			"timestamp": ts,
		})
		return
	}
	body := map[string]any{
		"status":      "healthy",
		"upstream":    "reachable",
		"tournaments": len(list),
		"timestamp":   ts,
	}
	if rp, ok := h.upstream.(interface{ PreferredRoute() string }); ok {
		body["route"] = rp.PreferredRoute()
	}
	respond.WriteJSONObject(w, http.StatusOK, body)
}

// upstreamError maps a provider error onto a response.
func (h *Handler) upstreamError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, padel.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", what+" not found")
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	h.logger.Warn("Upstream request failed", "what", what, "error", err)
	respond.WriteErrorDetail(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to load "+what, err.Error())
}
