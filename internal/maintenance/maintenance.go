// Package maintenance runs periodic background tasks as Go tickers: it drops
// announcement subscriptions of finished matches and expires in-memory
// audio clips.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	SubscriptionInterval time.Duration // Ended-match subscription sweep
	SubscriptionIdle     time.Duration // How long an ended match is kept
	ClipInterval         time.Duration // Audio clip expiry sweep
	ClipMaxAge           time.Duration
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		SubscriptionInterval: 5 * time.Minute,
		SubscriptionIdle:     30 * time.Minute,
		ClipInterval:         time.Minute,
		ClipMaxAge:           10 * time.Minute,
	}
}

// Pruner removes entries older than a cutoff and reports how many went.
type Pruner interface {
	Prune(maxAge time.Duration) int
}

// Tasks are the components swept. A nil field disables its task.
type Tasks struct {
	Subscriptions Pruner
	Clips         Pruner
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, tasks Tasks, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"subscriptions", cfg.SubscriptionInterval,
		"clips", cfg.ClipInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.SubscriptionInterval > 0 && tasks.Subscriptions != nil {
		t := time.NewTicker(cfg.SubscriptionInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "subscriptions", func() {
			prune(tasks.Subscriptions, cfg.SubscriptionIdle, "ended subscriptions", logger)
		})
	}

	if cfg.ClipInterval > 0 && tasks.Clips != nil {
		t := time.NewTicker(cfg.ClipInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, "clips", func() {
			prune(tasks.Clips, cfg.ClipMaxAge, "audio clips", logger)
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, name string, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// ----- Task implementations -----

func prune(p Pruner, maxAge time.Duration, what string, logger *slog.Logger) int {
	n := p.Prune(maxAge)
	if n > 0 {
		logger.Info("Cleanup: pruned "+what, "count", n)
	}
	return n
}
