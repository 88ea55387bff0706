package announce

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/padely/padely/internal/padel"
)

// WaitingText is announced when a channel is enabled before play begins.
const WaitingText = "I'll let you know when the game begins and then update you on the score."

// SystemPrompt constrains the generator to a plain statement of facts.
const SystemPrompt = "You are a concise sports announcer. State only the facts: teams, scores, and who won. No commentary, no adjectives, no excitement. Just the information."

// teamSep joins partners in spoken team names.
const teamSep = " / "

// Generator produces a short sentence for a prompt. Implementations may be
// remote; any error makes the Composer fall back to a local template.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Composer builds announcement sentences.
type Composer struct {
	gen    Generator
	names  padel.NameFunc
	logger *slog.Logger
}

// NewComposer creates a composer. gen may be nil (templates only); names
// maps raw player names to display names and may be nil.
func NewComposer(gen Generator, names padel.NameFunc, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{gen: gen, names: names, logger: logger}
}

// Compose returns the sentence for ev on match m. prev is the snapshot the
// event was detected against and may be nil.
func (c *Composer) Compose(ctx context.Context, m padel.Match, ev Event, prev *padel.Match) string {
	if ev.Kind == Waiting {
		return WaitingText
	}
	fallback := c.Fallback(m, ev)
	if c.gen == nil {
		return fallback
	}

	prompt := c.Prompt(m, ev)
	if prompt == "" {
		return fallback
	}
	text, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("Announcement generation failed, using template",
			"match_id", m.ID(), "kind", ev.Kind, "error", err)
		return fallback
	}
	text = strings.Trim(strings.TrimSpace(text), `"`)
	if text == "" {
		return fallback
	}
	return text
}

// TeamNames returns the spoken names of both teams.
func (c *Composer) TeamNames(m padel.Match) (string, string) {
	return padel.TeamName(m.Team1, c.names, teamSep), padel.TeamName(m.Team2, c.names, teamSep)
}

// Prompt is the generator instruction for ev.
func (c *Composer) Prompt(m padel.Match, ev Event) string {
	t1, t2 := c.TeamNames(m)
	switch ev.Kind {
	case MatchStart:
		return fmt.Sprintf("Announce that the match between %s and %s is starting. Keep it under 10 words, no commentary.", t1, t2)
	case GameWon:
		set := setOf(m, ev)
		a, b := m.SetGames(set)
		switch {
		case a == b:
			return fmt.Sprintf("State that the score in set %d is %d all. Maximum 8 words.", set, a)
		case a > b:
			return fmt.Sprintf("State that %s lead %d-%d in set %d. Maximum 10 words.", t1, a, b, set)
		default:
			return fmt.Sprintf("State that %s lead %d-%d in set %d. Maximum 10 words.", t2, b, a, set)
		}
	case SetWon:
		set := setOf(m, ev)
		winner, score := setResult(m, set, t1, t2)
		return fmt.Sprintf("State that %s won set %d, %s. Maximum 8 words.", winner, set, score)
	case TiebreakPoint:
		p1, p2 := tiebreakPoints(m)
		return fmt.Sprintf("State the tiebreak score: %s %s, %s %s. Maximum 8 words.", t1, p1, t2, p2)
	case MatchEnd:
		winner, loser, score := finalResult(m, t1, t2)
		return fmt.Sprintf("State that %s defeated %s, %s. Maximum 10 words.", winner, loser, score)
	}
	return ""
}

// Fallback is the deterministic template for ev.
func (c *Composer) Fallback(m padel.Match, ev Event) string {
	t1, t2 := c.TeamNames(m)
	switch ev.Kind {
	case Waiting:
		return WaitingText
	case MatchStart:
		return fmt.Sprintf("%s versus %s", t1, t2)
	case GameWon:
		set := setOf(m, ev)
		a, b := m.SetGames(set)
		switch {
		case a == b:
			return fmt.Sprintf("%d all, set %d", a, set)
		case a > b:
			return fmt.Sprintf("%s lead %d-%d, set %d", t1, a, b, set)
		default:
			return fmt.Sprintf("%s lead %d-%d, set %d", t2, b, a, set)
		}
	case SetWon:
		set := setOf(m, ev)
		winner, score := setResult(m, set, t1, t2)
		return fmt.Sprintf("%s win set %d, %s", winner, set, score)
	case TiebreakPoint:
		p1, p2 := tiebreakPoints(m)
		return fmt.Sprintf("Tiebreak: %s %s, %s %s", t1, p1, t2, p2)
	case MatchEnd:
		winner, loser, score := finalResult(m, t1, t2)
		return fmt.Sprintf("%s defeat %s, %s", winner, loser, score)
	}
	return ""
}

// Title is the short heading used by notifications.
func (c *Composer) Title(m padel.Match, ev Event) string {
	t1, t2 := c.TeamNames(m)
	switch ev.Kind {
	case MatchEnd:
		return "Final: " + t1 + " vs " + t2
	case SetWon:
		return fmt.Sprintf("Set %d: %s vs %s", setOf(m, ev), t1, t2)
	}
	return t1 + " vs " + t2
}

func setOf(m padel.Match, ev Event) int {
	if ev.Set > 0 {
		return ev.Set
	}
	return m.ActiveSet()
}

// setResult names the set winner and the score with the winner first.
func setResult(m padel.Match, set int, t1, t2 string) (string, string) {
	a, b := m.SetGames(set)
	if a > b {
		return t1, fmt.Sprintf("%d-%d", a, b)
	}
	return t2, fmt.Sprintf("%d-%d", b, a)
}

func tiebreakPoints(m padel.Match) (string, string) {
	p1, p2 := string(m.Team1.Points), string(m.Team2.Points)
	if p1 == "" {
		p1 = "0"
	}
	if p2 == "" {
		p2 = "0"
	}
	return p1, p2
}

// finalResult lists every played set with the winner's games first. A set
// counts as played when either side has a non-zero game count.
func finalResult(m padel.Match, t1, t2 string) (winner, loser, score string) {
	team1Won := m.Winner() == 1
	winner, loser = t2, t1
	if team1Won {
		winner, loser = t1, t2
	}
	var sets []string
	for n := 1; n <= padel.MaxSets; n++ {
		s1, s2 := m.Team1.Set(n), m.Team2.Set(n)
		if !(s1.Present && s1.Games != 0) && !(s2.Present && s2.Games != 0) {
			continue
		}
		if team1Won {
			sets = append(sets, fmt.Sprintf("%d-%d", s1.Games, s2.Games))
		} else {
			sets = append(sets, fmt.Sprintf("%d-%d", s2.Games, s1.Games))
		}
	}
	return winner, loser, strings.Join(sets, ", ")
}
