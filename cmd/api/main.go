// Command api is the Padely live scoreboard server.
//
// Usage:
//
//	padely-api
//	API_PORT=8080 DATABASE_URL=postgres://... padely-api

// @title Padely Live API
// @version 1.0.0
// @description Live padel scoreboard: tournaments, day matches, statistics and rankings from the live-score API, a polled live board, and voice and notification announcements of score changes.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Padely
// @license.name MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/padely/padely/internal/announce"
	"github.com/padely/padely/internal/api"
	"github.com/padely/padely/internal/api/handler"
	"github.com/padely/padely/internal/cache"
	"github.com/padely/padely/internal/config"
	"github.com/padely/padely/internal/listener"
	"github.com/padely/padely/internal/maintenance"
	"github.com/padely/padely/internal/notifications"
	"github.com/padely/padely/internal/poller"
	"github.com/padely/padely/internal/prefs"
	"github.com/padely/padely/internal/provider/padelapi"
	"github.com/padely/padely/internal/voice"

	_ "github.com/padely/padely/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Preferences (Postgres when DATABASE_URL is set, JSON file otherwise)
	store, pool, err := prefs.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	} else {
		logger.Info("Preferences stored in file", "path", cfg.PrefsFile)
	}
	preferences := prefs.New(store, logger)
	if err := preferences.Load(ctx); err != nil {
		return err
	}

	// Initialize cache and upstream client
	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)
	client := padelapi.New(cfg, appCache, logger)

	// Browser feed and out-of-band sinks
	hub := notifications.NewHub(logger)
	email := notifications.NewEmailSender(notifications.EmailConfig{
		SMTPServer: cfg.SMTPServer,
		SMTPPort:   cfg.SMTPPort,
		SMTPUser:   cfg.SMTPUser,
		SMTPPass:   cfg.SMTPPass,
		FromEmail:  cfg.EmailFrom,
		ToEmail:    cfg.EmailTo,
	}, logger)
	telegram, err := notifications.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
	if err != nil {
		logger.Warn("Telegram sink disabled", "error", err)
	}
	dispatcher := notifications.NewDispatcher(hub, cfg.ToastTTL, logger, notifications.Sinks(email, telegram)...)
	logger.Info("Notification sinks",
		"email", cfg.EmailEnabled(),
		"telegram", telegram != nil)

	// Announcement text and speech
	var (
		gen   announce.Generator
		synth voice.Synthesizer
	)
	if cfg.GeminiAPIKey != "" {
		gc, err := announce.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("Gemini disabled, using template announcements", "error", err)
		} else {
			gen = announce.NewGeminiGenerator(gc, cfg.GeminiModel)
			synth = voice.NewGeminiSynthesizer(gc, cfg.TTSModel, cfg.TTSVoice)
			logger.Info("Gemini enabled", "model", cfg.GeminiModel, "tts_model", cfg.TTSModel)
		}
	} else {
		logger.Info("Gemini disabled (no GEMINI_API_KEY), using template announcements and browser speech")
	}

	// Audio clips: bucket when configured, memory otherwise
	memClips := voice.NewMemoryStore("/api/v1/audio")
	var clipStore voice.ClipStore = memClips
	if cfg.AudioBucket != "" {
		s3Store, err := voice.NewS3Store(ctx, voice.S3Config{
			Bucket:          cfg.AudioBucket,
			Endpoint:        cfg.AudioEndpoint,
			Region:          cfg.AudioRegion,
			AccessKeyID:     cfg.AudioAccessKeyID,
			SecretAccessKey: cfg.AudioSecretKey,
			PublicBaseURL:   cfg.AudioPublicBaseURL,
		})
		if err != nil {
			logger.Warn("Audio bucket unavailable, keeping clips in memory", "error", err)
		} else {
			clipStore = s3Store
			memClips = nil
			logger.Info("Audio clips stored in bucket", "bucket", cfg.AudioBucket)
		}
	}
	speaker := voice.NewSpeaker(synth, clipStore, dispatcher, logger)
	defer speaker.Cancel()

	// Announcer and live poller
	announcer := announce.New(
		announce.NewComposer(gen, preferences.Names.Transform, logger),
		speaker, dispatcher, cfg.SetWonDelay, logger)
	defer announcer.Close()

	live := poller.New(client, announcer, cfg.RefreshInterval, logger)
	live.SetAutoRefresh(cfg.AutoRefresh)
	live.OnUpdate(func(v poller.View) { dispatcher.Publish(notifications.TypeBoard, v) })
	defer live.Stop()

	// Create router
	router := api.NewRouter(handler.Deps{
		Upstream:  client,
		Cache:     appCache,
		Config:    cfg,
		Poller:    live,
		Announcer: announcer,
		Prefs:     preferences,
		Publisher: dispatcher,
		Hub:       hub,
		Clips:     memClips,
		Pool:      pool,
		Logger:    logger,
	}, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Websocket hub
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	// LISTEN/NOTIFY consumer keeps preferences in step with other instances
	if pool != nil {
		g.Go(func() error {
			listener.Start(gctx, cfg.DatabaseURL, preferences, prefs.Keys, logger)
			return nil
		})
	}

	// Maintenance tickers (ended subscriptions, expired clips)
	tasks := maintenance.Tasks{Subscriptions: announcer}
	if memClips != nil {
		tasks.Clips = memClips
	}
	mcfg := maintenance.DefaultConfig()
	if cfg.AudioClipTTL > 0 {
		mcfg.ClipMaxAge = cfg.AudioClipTTL
	}
	g.Go(func() error {
		maintenance.Start(gctx, tasks, mcfg, logger)
		return nil
	})

	// HTTP server
	g.Go(func() error {
		logger.Info("Starting Padely Live API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// Graceful shutdown with timeout
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
