package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/padely/padely/internal/api/handler"
	"github.com/padely/padely/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps handler.Deps, cfg *config.Config) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	// --- Middleware stack ---
	// Writers wrapped by timing and gzip cannot be hijacked, so those two
	// are applied per group below and the websocket route stays outside.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag", "Retry-After"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(deps)

	// --- Routes ---
	r.Group(func(r chi.Router) {
		r.Use(TimingMiddleware)
		r.Use(middleware.Compress(5)) // gzip

		// Root
		r.Get("/", h.Root)

		// Health checks
		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.HealthCheck)
			r.Get("/db", h.HealthCheckDB)
			r.Get("/cache", h.HealthCheckCache)
			r.Get("/upstream", h.HealthCheckUpstream)
		})

		// Swagger UI
		r.Get("/docs/*", httpSwagger.Handler(
			httpSwagger.URL("/docs/doc.json"),
		))
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ws", h.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(TimingMiddleware)
			r.Use(middleware.Compress(5))

			// Tournaments
			r.Get("/tournaments", h.ListTournaments)
			r.Get("/tournaments/types", h.GetTournamentTypes)
			r.Get("/tournaments/{id}", h.GetTournament)
			r.Get("/tournaments/{id}/days/{day}/matches", h.GetDayMatches)
			r.Get("/tournaments/{id}/matches/{matchID}/stats", h.GetMatchStats)

			// Rankings
			r.Get("/rankings/{gender}", h.GetRankings)

			// Live board
			r.Get("/live", h.GetLive)
			r.Post("/live", h.StartLive)
			r.Delete("/live", h.StopLive)
			r.Put("/live/auto-refresh", h.SetAutoRefresh)
			r.Post("/live/refresh", h.RefreshLive)
			r.Put("/live/matches/{matchID}/expanded", h.SetExpanded)
			r.Post("/live/matches/{matchID}/{channel}", h.ToggleChannel)
			r.Get("/subscriptions", h.ListSubscriptions)
			r.Get("/announcements", h.ListAnnouncements)

			// Audio clips
			r.Get("/audio/{id}", h.GetAudio)

			// Player names
			r.Get("/names", h.ListNames)
			r.Put("/names", h.SetName)
			r.Delete("/names", h.ClearNames)
			r.Post("/names/reset", h.ResetNames)
			r.Delete("/names/{original}", h.RemoveName)

			// Favorites
			r.Get("/favorites", h.ListFavorites)
			r.Post("/favorites/{id}/toggle", h.ToggleFavorite)

			// Filters
			r.Get("/filters", h.GetFilters)
			r.Put("/filters", h.SaveFilters)
		})
	})

	return r
}
