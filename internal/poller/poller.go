// Package poller keeps the live board of one tournament day fresh. A single
// goroutine owns the ticker; changing the selection tears the previous loop
// down before the next one starts.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/padely/padely/internal/padel"
)

// Fetcher loads the matches of one tournament day.
type Fetcher interface {
	GetEventMatches(ctx context.Context, eventID string, day int) ([]padel.Match, error)
}

// Observer receives every match of every applied poll.
type Observer interface {
	Observe(ctx context.Context, seq uint64, m padel.Match)
	CancelAllPending()
}

// Poller drives a Board from a Fetcher.
type Poller struct {
	fetcher  Fetcher
	observer Observer
	board    *Board
	interval time.Duration
	logger   *slog.Logger

	seq atomic.Uint64

	onUpdate func(View)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a poller. observer may be nil.
func New(fetcher Fetcher, observer Observer, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher:  fetcher,
		observer: observer,
		board:    NewBoard(),
		interval: interval,
		logger:   logger,
	}
}

// Board returns the board the poller writes to.
func (p *Poller) Board() *Board { return p.board }

// OnUpdate registers fn to receive the board view after every applied poll
// and every foreground failure. Call before Start.
func (p *Poller) OnUpdate(fn func(View)) { p.onUpdate = fn }

func (p *Poller) notify() {
	if p.onUpdate != nil {
		p.onUpdate(p.board.View())
	}
}

// Start stops any running loop and begins polling sel. The first fetch runs
// immediately in the foreground: its failure is shown on the board and
// halts polling. interval <= 0 uses the poller's default.
func (p *Poller) Start(ctx context.Context, sel Selection, interval time.Duration) {
	if interval <= 0 {
		interval = p.interval
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	p.board.reset(sel)
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	p.logger.Info("Live polling started",
		"tournament_id", sel.TournamentID, "event_id", sel.EventID, "day", sel.Day, "interval", interval)
	go p.loop(loopCtx, sel, interval, done)
}

// Stop cancels the running loop and waits for it. Safe to call repeatedly or
// when nothing was started.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopLocked() {
		p.board.deactivate()
		p.logger.Info("Live polling stopped")
	}
}

func (p *Poller) stopLocked() bool {
	if p.cancel == nil {
		return false
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
	if p.observer != nil {
		p.observer.CancelAllPending()
	}
	return true
}

// SetAutoRefresh enables or disables background polls. The loop keeps
// running; disabled ticks are skipped.
func (p *Poller) SetAutoRefresh(on bool) {
	p.board.setAutoRefresh(on)
	p.logger.Info("Auto-refresh changed", "enabled", on)
}

// Refresh fetches the current selection once, silently.
func (p *Poller) Refresh(ctx context.Context) error {
	sel, active := p.board.Selection()
	if !active {
		return fmt.Errorf("no live selection")
	}
	return p.poll(ctx, sel, true)
}

func (p *Poller) loop(ctx context.Context, sel Selection, interval time.Duration, done chan struct{}) {
	defer close(done)

	if err := p.poll(ctx, sel, false); err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("Live board load failed", "tournament_id", sel.TournamentID, "day", sel.Day, "error", err)
		}
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	p.board.scheduled(sel, time.Now().Add(interval))

	for {
		select {
		case <-ticker.C:
			p.board.scheduled(sel, time.Now().Add(interval))
			if !p.board.AutoRefresh() {
				continue
			}
			if err := p.poll(ctx, sel, true); err != nil && ctx.Err() == nil {
				p.logger.Warn("Background refresh failed, keeping last data",
					"tournament_id", sel.TournamentID, "day", sel.Day, "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// poll runs one fetch. A silent poll never touches the board on failure.
func (p *Poller) poll(ctx context.Context, sel Selection, silent bool) error {
	seq := p.seq.Add(1)
	matches, err := p.fetcher.GetEventMatches(ctx, sel.TournamentID, sel.Day)
	if err != nil {
		if !silent && ctx.Err() == nil {
			p.board.fail(sel, "Failed to load matches. Please try again.")
			p.notify()
		}
		return fmt.Errorf("fetch matches: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !p.board.Apply(seq, sel, matches) {
		p.logger.Debug("Dropped stale poll result", "seq", seq)
		return nil
	}
	if p.observer != nil {
		for _, m := range matches {
			p.observer.Observe(ctx, seq, m)
		}
	}
	p.notify()
	return nil
}
