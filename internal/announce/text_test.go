package announce

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/padely/padely/internal/padel"
)

type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func TestComposeFallsBackOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	c := NewComposer(gen, nil, nil)
	m := snapshot([]int{3}, []int{3})

	got := c.Compose(context.Background(), m, Event{Kind: GameWon, Set: 1}, nil)
	if want := "3 all, set 1"; got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "3 all") {
		t.Errorf("prompts = %v", gen.prompts)
	}
}

func TestComposeUsesGeneratedText(t *testing.T) {
	gen := &stubGenerator{text: "  \"Galan and Chingotto lead three-two.\"\n"}
	c := NewComposer(gen, nil, nil)
	got := c.Compose(context.Background(), snapshot([]int{3}, []int{2}), Event{Kind: GameWon, Set: 1}, nil)
	if want := "Galan and Chingotto lead three-two."; got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}

func TestComposeEmptyGenerationFallsBack(t *testing.T) {
	c := NewComposer(&stubGenerator{text: "   "}, nil, nil)
	m := snapshot([]int{0}, []int{0})
	if got, want := c.Compose(context.Background(), m, Event{Kind: MatchStart}, nil), "A. Galan / F. Chingotto versus A. Coello / A. Tapia"; got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}

func TestComposeWaitingSkipsGenerator(t *testing.T) {
	gen := &stubGenerator{text: "ignored"}
	c := NewComposer(gen, nil, nil)
	if got := c.Compose(context.Background(), padel.Match{}, Event{Kind: Waiting}, nil); got != WaitingText {
		t.Errorf("Compose() = %q, want placeholder", got)
	}
	if len(gen.prompts) != 0 {
		t.Errorf("generator called for placeholder")
	}
}

func TestComposeAppliesNameMapping(t *testing.T) {
	names := func(raw string) string {
		if strings.HasPrefix(raw, "A. Galan") {
			return "Ale Galan" + strings.TrimPrefix(raw, "A. Galan")
		}
		return raw
	}
	c := NewComposer(nil, names, nil)
	m := snapshot([]int{4}, []int{2})
	if got, want := c.Fallback(m, Event{Kind: GameWon, Set: 1}), "Ale Galan / F. Chingotto lead 4-2, set 1"; got != want {
		t.Errorf("Fallback() = %q, want %q", got, want)
	}
}

func TestTiebreakEmptyPointsReadZero(t *testing.T) {
	c := NewComposer(nil, nil, nil)
	m := snapshot([]int{6}, []int{6})
	m.Team2.Points = "1"
	if got, want := c.Fallback(m, Event{Kind: TiebreakPoint, Set: 1}), "Tiebreak: A. Galan / F. Chingotto 0, A. Coello / A. Tapia 1"; got != want {
		t.Errorf("Fallback() = %q, want %q", got, want)
	}
}
