// Command padely is the Padely terminal client.
//
// Usage:
//
//	padely tournaments --type p1,major --month 2026-10
//	padely matches 10 --day 2
//	padely stats 10 12345 --tab set1
//	padely rankings women --search galan
//	padely watch 10 --day 2 --interval 15s --voice 12345 --notify 12346
//	padely names set "A. Galan" "Ale Galan"
//	padely favorites toggle 10
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/padely/padely/internal/cache"
	"github.com/padely/padely/internal/config"
	"github.com/padely/padely/internal/padel"
	"github.com/padely/padely/internal/prefs"
	"github.com/padely/padely/internal/provider/padelapi"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "padely",
		Short:        "Padely live padel scoreboard CLI",
		SilenceUsage: true,
	}

	root.AddCommand(tournamentsCmd())
	root.AddCommand(matchesCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(rankingsCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(namesCmd())
	root.AddCommand(favoritesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// Browse commands
// --------------------------------------------------------------------------

func tournamentsCmd() *cobra.Command {
	var (
		types  []string
		month  string
		search string
		saved  bool
	)
	cmd := &cobra.Command{
		Use:   "tournaments",
		Short: "List tournaments grouped into today, upcoming and past",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(func(ctx context.Context, env *clientEnv) error {
				ts, err := env.client.GetTournaments(ctx)
				if err != nil {
					return err
				}
				filter := padel.TournamentFilter{Types: types, Month: month, Search: search}
				if saved {
					filter = env.prefs.Filters.Get().TournamentFilter(search)
				}
				groups := padel.Categorize(ts, filter, time.Now())
				fav := env.prefs.Favorites.IDs()

				w := newTable(cmd.OutOrStdout())
				for _, g := range []struct {
					title string
					list  []padel.Tournament
				}{
					{"TODAY", groups.Today},
					{"UPCOMING", groups.Upcoming},
					{"PAST", groups.Past},
				} {
					if len(g.list) == 0 {
						continue
					}
					fmt.Fprintf(w, "%s\t\t\t\t\n", g.title)
					for _, t := range g.list {
						star := ""
						if fav[string(t.ID)] {
							star = "*"
						}
						fmt.Fprintf(w, "%s\t%s%s\t%s\t%s - %s\n",
							t.ID, star, t.Name, padel.FormatType(t.Type), t.StartDate, t.EndDate)
					}
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringSliceVar(&types, "type", nil, "Tournament types (p1, p2, major, finals); empty = all")
	cmd.Flags().StringVar(&month, "month", "", "Month (YYYY-MM); empty = all")
	cmd.Flags().StringVar(&search, "search", "", "Name substring")
	cmd.Flags().BoolVar(&saved, "saved", false, "Use the saved type and month filters")
	return cmd
}

func matchesCmd() *cobra.Command {
	var (
		day    int
		court  string
		gender string
		player string
	)
	cmd := &cobra.Command{
		Use:   "matches <tournament-id>",
		Short: "Show the matches of one tournament day",
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
				ms, err := env.client.GetEventMatches(ctx, string(t.ID), day)
				if err != nil {
					return err
				}
				ms = padel.MatchFilter{Gender: gender, Player: player, Court: court}.Apply(ms)

				fmt.Fprintf(cmd.OutOrStdout(), "%s, day %d\n", t.Name, day)
				w := newTable(cmd.OutOrStdout())
				for _, m := range ms {
					printMatch(w, m, env.prefs.Names.Transform)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&day, "day", 0, "Tournament day (1-based); 0 = today or first day")
	cmd.Flags().StringVar(&court, "court", "", "Court name")
	cmd.Flags().StringVar(&gender, "gender", "", "Draw (men, women); empty = both")
	cmd.Flags().StringVar(&player, "player", "", "Player name substring")
	return cmd
}

func statsCmd() *cobra.Command {
	var tab string
	cmd := &cobra.Command{
		Use:   "stats <tournament-id> <match-id>",
		Short: "Show match statistics",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(func(ctx context.Context, env *clientEnv) error {
				t, err := env.client.GetTournament(ctx, args[0])
				if err != nil {
					return err
				}
				stats, err := env.client.GetMatchStats(ctx, string(t.EventID), args[1])
				if err != nil {
					return err
				}
				if stats == nil || stats.IsEmpty() {
					return fmt.Errorf("no statistics for match %s", args[1])
				}
				if tab == "" {
					tab = stats.Tabs()[0]
				}
				period := stats.Period(tab)
				if period == nil {
					return fmt.Errorf("unknown tab %q (available: %s)", tab, strings.Join(stats.Tabs(), ", "))
				}
				w := newTable(cmd.OutOrStdout())
				group := ""
				for _, row := range period.Rows() {
					if row.Group != group {
						group = row.Group
						fmt.Fprintf(w, "%s\t\t\t\n", strings.ToUpper(group))
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\n", row.Label, row.Team1, row.Team2, row.Share())
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "", "Period (match, set1, set2, set3); empty = first available")
	return cmd
}

func rankingsCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "rankings <men|women>",
		Short: "Show the ranking table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gender := padel.Gender(strings.ToLower(args[0]))
			if !gender.Valid() {
				return fmt.Errorf("gender must be men or women, got %q", args[0])
			}
			return runClient(func(ctx context.Context, env *clientEnv) error {
				players, err := env.client.GetRankings(ctx, gender)
				if err != nil {
					return err
				}
				q := strings.ToLower(search)
				w := newTable(cmd.OutOrStdout())
				for _, p := range players {
					if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Position, p.Name, p.Country, p.Points)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Player name substring")
	return cmd
}

// --------------------------------------------------------------------------
// Preference commands
// --------------------------------------------------------------------------

func namesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "names",
		Short: "Manage preferred player names",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List name mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefs(func(ctx context.Context, p *prefs.Preferences) error {
				return printNames(cmd.OutOrStdout(), p.Names)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <original> <preferred>",
		Short: "Add or replace a mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefs(func(ctx context.Context, p *prefs.Preferences) error {
				if err := p.Names.Set(ctx, args[0], args[1]); err != nil {
					return err
				}
				logger.Info("Name mapping saved", "original", args[0], "preferred", args[1])
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <original>",
		Short: "Remove a mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefs(func(ctx context.Context, p *prefs.Preferences) error {
				return p.Names.Remove(ctx, args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefs(func(ctx context.Context, p *prefs.Preferences) error {
				return p.Names.Reset(ctx)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefs(func(ctx context.Context, p *prefs.Preferences) error {
				return p.Names.Clear(ctx)
			})
		},
	})
	return cmd
}

func printNames(out io.Writer, names *prefs.Names) error {
	m := names.Mappings()
	w := newTable(out)
	for _, orig := range names.Originals() {
		fmt.Fprintf(w, "%s\t%s\n", orig, m[orig])
	}
	return w.Flush()
}

func favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite tournaments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorite tournaments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefs(func(ctx context.Context, p *prefs.Preferences) error {
				w := newTable(cmd.OutOrStdout())
				for _, t := range p.Favorites.List() {
					fmt.Fprintf(w, "%s\t%s\t%s - %s\n", t.ID, t.Name, t.StartDate, t.EndDate)
				}
				return w.Flush()
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <tournament-id>",
		Short: "Add or remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(func(ctx context.Context, env *clientEnv) error {
				t, err := env.client.GetTournament(ctx, args[0])
				if err != nil {
					return err
				}
				added, err := env.prefs.Favorites.Toggle(ctx, t)
				if err != nil {
					return err
				}
				logger.Info("Favorite toggled", "tournament", t.Name, "favorite", added)
				return nil
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printMatch(w io.Writer, m padel.Match, names padel.NameFunc) {
	marker := " "
	if m.IsLive() {
		marker = "●"
	}
	for n := 1; n <= 2; n++ {
		t := m.Team(n)
		serve := " "
		if t.IsServing {
			serve = "•"
		}
		prefix, round := m.CourtName, m.RoundName
		if n == 2 {
			prefix, round, marker = "", "", " "
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s%s\t%s\t%s\t%s\t%s\n",
			marker, prefix, round, serve, padel.TeamName(t, names, " / "),
			t.Set1, t.Set2, t.Set3, t.Points)
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

type clientEnv struct {
	cfg    *config.Config
	client *padelapi.Client
	prefs  *prefs.Preferences
}

// runClient handles config loading, preferences, the upstream client and
// context cancellation.
func runClient(fn func(ctx context.Context, env *clientEnv) error) error {
	return runPrefsConfig(func(ctx context.Context, cfg *config.Config, p *prefs.Preferences) error {
		c := cache.New(cfg.CacheEnabled)
		defer c.Close()
		return fn(ctx, &clientEnv{
			cfg:    cfg,
			client: padelapi.New(cfg, c, logger),
			prefs:  p,
		})
	})
}

func runPrefs(fn func(ctx context.Context, p *prefs.Preferences) error) error {
	return runPrefsConfig(func(ctx context.Context, _ *config.Config, p *prefs.Preferences) error {
		return fn(ctx, p)
	})
}

func runPrefsConfig(fn func(ctx context.Context, cfg *config.Config, p *prefs.Preferences) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, pool, err := prefs.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}
	p := prefs.New(store, logger)
	if err := p.Load(ctx); err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	return fn(ctx, cfg, p)
}
