package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/padely/padely/internal/announce"
	"github.com/padely/padely/internal/padel"
	"github.com/padely/padely/internal/poller"
)

func watchCmd() *cobra.Command {
	var (
		day      int
		interval time.Duration
		voiceIDs []string
		notifyID []string
	)
	cmd := &cobra.Command{
		Use:   "watch <tournament-id>",
		Short: "Poll a tournament day and print score changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(func(ctx context.Context, env *clientEnv) error {
				t, err := env.client.GetTournament(ctx, args[0])
				if err != nil {
					return err
				}
				if day == 0 {
					days, err := t.Days(time.Now())
					if err != nil {
						return fmt.Errorf("tournament %s: %w", t.ID, err)
					}
					day = padel.DefaultDay(days)
				}
				if interval <= 0 {
					interval = env.cfg.RefreshInterval
				}

				out := &terminal{w: cmd.OutOrStdout()}
				ann := announce.New(
					announce.NewComposer(nil, env.prefs.Names.Transform, logger),
					out, out, env.cfg.SetWonDelay, logger)
				defer ann.Close()

				ctx, stop := context.WithCancel(ctx)
				defer stop()
				var failure error

				live := poller.New(env.client, ann, interval, logger)
				live.SetAutoRefresh(true)
				subscribed := false
				live.OnUpdate(func(v poller.View) {
					if v.Error != "" {
						// A failed first load halts polling.
						failure = fmt.Errorf("load matches: %s", v.Error)
						stop()
						return
					}
					if !subscribed && !v.Loading && v.Seq > 0 {
						subscribed = true
						subscribe(ctx, live.Board(), ann, announce.Voice, voiceIDs)
						subscribe(ctx, live.Board(), ann, announce.Notification, notifyID)
					}
					out.board(v, env.prefs.Names.Transform)
				})

				logger.Info("Watching", "tournament", t.Name, "day", day, "interval", interval)
				live.Start(ctx, poller.Selection{
					TournamentID: string(t.ID),
					EventID:      string(t.EventID),
					Day:          day,
				}, interval)
				<-ctx.Done()
				live.Stop()
				return failure
			})
		},
	}
	cmd.Flags().IntVar(&day, "day", 0, "Tournament day (1-based); 0 = today or first day")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval; 0 = configured default")
	cmd.Flags().StringSliceVar(&voiceIDs, "voice", nil, "Match IDs to announce aloud")
	cmd.Flags().StringSliceVar(&notifyID, "notify", nil, "Match IDs to announce as notifications")
	return cmd
}

func subscribe(ctx context.Context, board *poller.Board, ann *announce.Announcer, ch announce.Channel, ids []string) {
	for _, id := range ids {
		m, seq, ok := board.Match(id)
		if !ok {
			logger.Warn("Match not on board", "match_id", id)
			continue
		}
		if _, err := ann.SetChannel(ctx, ch, m, seq, true); err != nil {
			logger.Warn("Subscribe failed", "match_id", id, "channel", ch, "error", err)
		}
	}
}

// terminal prints announcements and board refreshes. It is both the speaker
// and the notifier of the watch command.
type terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func (t *terminal) Speak(_ context.Context, a announce.Announcement) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "\n🔊 [%s] %s\n", a.Language, a.Text)
	return nil
}

func (t *terminal) Notify(_ context.Context, a announce.Announcement) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "\n🔔 %s: %s\n", a.Title, a.Text)
	return nil
}

func (t *terminal) Permission() announce.Permission { return announce.PermissionGranted }

func (t *terminal) board(v poller.View, names padel.NameFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "\n-- %s --\n", v.UpdatedAt.Local().Format("15:04:05"))
	w := newTable(t.w)
	for _, c := range v.Cards {
		printMatch(w, c.Match, names)
	}
	w.Flush()
}
