package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/deck"
	"clue-detective/internal/events"
	"clue-detective/internal/game"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// scriptedLines feeds the shell one line per prompt, then reports EOF.
type scriptedLines struct {
	lines []string
}

func (s *scriptedLines) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedLines) AppendHistory(string) {}

var testSolution = deck.Solution{Suspect: "Colonel Mustard", Weapon: "Knife", Room: "Kitchen"}

var testHands = [][]string{
	{"Mrs. White", "Candlestick", "Hall"},
	{"Miss Scarlet", "Lead Pipe", "Ballroom"},
	{"Mr. Green", "Revolver", "Conservatory"},
	{"Mrs. Peacock", "Rope", "Dining Room"},
	{"Professor Plum", "Wrench", "Billiard Room"},
	{"Library", "Lounge", "Study"},
}

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func scriptedPlay(t *testing.T, humans int, lines ...string) string {
	t.Helper()
	cfg := config.Default()
	deal, err := deck.Fixed(cfg, testSolution, testHands)
	require.NoError(t, err)
	var out bytes.Buffer
	ui := New(silentLogger(), &scriptedLines{lines: lines}, &out)
	err = ui.Play(cfg, PlayOptions{Seed: 1, Humans: humans, Deal: deal, Roller: game.NewFixedRoller([2]int{2, 3})})
	require.NoError(t, err)
	return out.String()
}

func TestPlayToAWin(t *testing.T) {
	// GIVEN Miss Scarlet five steps from the Kitchen and nobody holding the solution
	// WHEN she suggests the solution there and accuses
	out := scriptedPlay(t, 1,
		"help",
		"roll",
		"moves",
		"move kitchen",
		"suggest colonel mustard, knife",
		"notes",
		"hint",
		"accuse Colonel Mustard, Knife, Kitchen",
		"y",
	)

	// THEN nobody disproves, the co-pilot sees the answer and the accusation wins
	assert.Contains(t, out, "Miss Scarlet rolls 2 + 3 = 5")
	assert.Contains(t, out, "Colonel Mustard is summoned")
	assert.Contains(t, out, "No player could show a card.")
	assert.Contains(t, out, "Your notes solve the case")
	assert.Contains(t, out, "Miss Scarlet's Detective Notes")
	assert.Contains(t, out, "Miss Scarlet wins!")
	assert.Contains(t, out, "The correct solution was: Colonel Mustard with the Knife in the Kitchen")
	assert.Contains(t, out, "Suggestion Quality")
}

func TestPlayReportsRejectedCommands(t *testing.T) {
	out := scriptedPlay(t, 6,
		"dance",
		"move nowhere",
		"roll",
		"roll",
		"end",
	)

	assert.Contains(t, out, "unknown command 'dance'")
	assert.Contains(t, out, `unknown position "nowhere"`)
	assert.Contains(t, out, "no roll left this turn")
	assert.Contains(t, out, "--- Turn 2: Colonel Mustard ---")
	assert.Contains(t, out, "Goodbye!")
}

func TestHumanDisproverChoosesTheCard(t *testing.T) {
	// GIVEN Colonel Mustard at the keyboard holding both Miss Scarlet and the Lead Pipe
	out := scriptedPlay(t, 2,
		"roll",
		"move kitchen",
		"suggest Miss Scarlet, Lead Pipe",
		"Lead Pipe",
		"quit",
	)

	// THEN he is asked which one to show and only the suggester learns it
	assert.Contains(t, out, "Which card do you show Miss Scarlet?")
	assert.Contains(t, out, "Colonel Mustard shows a card to Miss Scarlet.")
	assert.Contains(t, out, "Colonel Mustard shows you: Lead Pipe")
}

func TestPlayRejectsBadSeatCount(t *testing.T) {
	ui := New(silentLogger(), &scriptedLines{}, io.Discard)
	assert.Error(t, ui.Play(config.Default(), PlayOptions{Humans: 0}))
	assert.Error(t, ui.Play(config.Default(), PlayOptions{Humans: 7}))
}

func TestSimulate(t *testing.T) {
	t.Run("plays to the end", func(t *testing.T) {
		var out bytes.Buffer
		ui := New(silentLogger(), &scriptedLines{}, &out)
		status, err := ui.Simulate(context.Background(), config.Default(), 1)
		require.NoError(t, err)
		assert.NotEqual(t, game.StatusInProgress, status)
		assert.Contains(t, out.String(), "--- GAME OVER ---")
		assert.Contains(t, out.String(), "Suggestion Quality")
	})

	t.Run("stops when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out bytes.Buffer
		ui := New(silentLogger(), &scriptedLines{}, &out)
		status, err := ui.Simulate(ctx, config.Default(), 1)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, game.StatusInProgress, status)
		assert.NotContains(t, out.String(), "GAME OVER")
	})
}

func TestRenderBoard(t *testing.T) {
	cfg := config.Default()
	b := board.Classic()
	tokens := map[string]board.Position{}
	for i, s := range cfg.Suspects {
		start, _ := b.Start(i)
		tokens[s] = start
	}
	tokens["Mrs. White"] = board.InRoom("Kitchen")

	var out bytes.Buffer
	RenderBoard(&out, b, cfg.Suspects, tokens)

	assert.Contains(t, out.String(), "KKKK1·BBBBB2CCC")
	assert.Contains(t, out.String(), "K Kitchen")
	assert.Contains(t, out.String(), "Mrs. White")
	assert.NotContains(t, out.String(), "3·+")
}

func TestEventRenderer(t *testing.T) {
	var out bytes.Buffer
	r := NewEventRenderer(&out)

	r.HandleEvent(events.SuggestionMade{Suggester: "Mr. Green", Suspect: "Mrs. White", Weapon: "Rope", Room: "Hall", Forced: true})
	r.HandleEvent(events.Passed{Suggester: "Mr. Green", Player: "Mrs. Peacock"})
	r.HandleEvent(events.GameOver{Status: game.StatusStalled.String(), Solution: &testSolution})
	// private events are never printed
	r.HandleEvent(events.CardShown{Suggester: "Mr. Green", Disprover: "Mrs. Peacock", Card: "Rope"})

	assert.Equal(t, "Mr. Green suggests: Mrs. White with the Rope in the Hall (against their notes)\n"+
		"-> Mrs. Peacock cannot disprove.\n"+
		"\n--- GAME OVER ---\n"+
		"The turn limit was reached without a correct accusation.\n"+
		"The correct solution was: Colonel Mustard with the Knife in the Kitchen\n", out.String())
}
