// Package listener provides a Postgres LISTEN/NOTIFY consumer that keeps
// in-memory preferences in step with writes made by other instances (or the
// CLI). It holds a dedicated pgx connection (not from the pool) listening on
// the `preferences_changed` channel, whose payload is the changed key.
package listener

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/padely/padely/internal/db"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Reloader re-reads one preference key.
type Reloader interface {
	Reload(ctx context.Context, key string) error
}

// Start opens a dedicated connection and listens on the preferences
// channel. It reconnects automatically on connection loss and reloads every
// key after a reconnect, since notifications sent meanwhile are lost.
// Blocks until ctx is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, prefs Reloader, keys []string, logger *slog.Logger) {
	backoff := reconnectBackoff
	first := true

	for {
		err := listenLoop(ctx, dbURL, prefs, keys, !first, logger)
		if ctx.Err() != nil {
			logger.Info("Preferences listener stopped (context cancelled)")
			return
		}
		first = false

		logger.Error("Preferences listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, prefs Reloader, keys []string, resync bool, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+db.PreferencesChannel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", db.PreferencesChannel, err)
	}
	logger.Info("Preferences listener connected", "channel", db.PreferencesChannel)

	if resync {
		for _, k := range keys {
			handle(ctx, prefs, k, logger)
		}
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		handle(ctx, prefs, n.Payload, logger)
	}
}

func handle(ctx context.Context, prefs Reloader, key string, logger *slog.Logger) {
	if key == "" {
		return
	}
	if err := prefs.Reload(ctx, key); err != nil {
		logger.Warn("Failed to reload preference", "key", key, "error", err)
	}
}
