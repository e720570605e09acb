package agent

import (
	"context"
	"io"
	"testing"

	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/deck"
	"clue-detective/internal/events"
	"clue-detective/internal/game"
	"clue-detective/internal/notebook"
	"clue-detective/internal/player"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

const (
	scarlet = "Miss Scarlet"
	mustard = "Colonel Mustard"
	white   = "Mrs. White"
	green   = "Mr. Green"
	peacock = "Mrs. Peacock"
	plum    = "Professor Plum"
)

var testSolution = deck.Solution{Suspect: mustard, Weapon: "Knife", Room: "Kitchen"}

var testHands = [][]string{
	{white, "Candlestick", "Hall"},
	{scarlet, "Lead Pipe", "Ballroom"},
	{green, "Revolver", "Conservatory"},
	{peacock, "Rope", "Dining Room"},
	{plum, "Wrench", "Billiard Room"},
	{"Library", "Lounge", "Study"},
}

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestGame(t *testing.T, throws ...[2]int) *game.Game {
	t.Helper()
	cfg := config.Default()
	deal, err := deck.Fixed(cfg, testSolution, testHands)
	require.NoError(t, err)
	g, err := game.NewBuilder(cfg, silentLogger()).WithDeal(deal).WithRoller(game.NewFixedRoller(throws...)).Build()
	require.NoError(t, err)
	return g
}

// notebookAgent builds an agent around a bare notebook, fed by hand.
func notebookAgent(t *testing.T) (*Agent, *notebook.Notebook) {
	t.Helper()
	cfg := config.Default()
	seats := cfg.Seats()
	nb := notebook.New(scarlet, cfg, seats, silentLogger())
	require.NoError(t, nb.Observe(events.HandDealt{
		Player: scarlet, Hand: testHands[0], Seats: seats, HandSizes: []int{3, 3, 3, 3, 3, 3},
	}))
	a := &Agent{
		name:                  scarlet,
		config:                cfg,
		board:                 board.Classic(),
		hand:                  map[string]struct{}{white: {}, "Candlestick": {}, "Hall": {}},
		notes:                 nb,
		strategies:            []SuggestionStrategy{&ExploitStrategy{}, &SurgicalStrikeStrategy{}, &ExploreStrategy{}},
		recentSurgicalTargets: NewStringDeque(3),
		shown:                 make(map[string]map[string]bool),
		log:                   silentLogger(),
		chooser:               &player.DeterministicChooser{},
		rand:                  rand.New(rand.NewSource(1)),
	}
	return a, nb
}

func TestExploreNamesUnplacedCards(t *testing.T) {
	a, _ := notebookAgent(t)

	for i := 0; i < 10; i++ {
		suspect, weapon := a.MakeSuggestion("Kitchen")
		require.NotEqual(t, white, suspect)
		require.NotEqual(t, "Candlestick", weapon)
		require.True(t, a.config.IsCategory(suspect, config.CategorySuspect))
		require.True(t, a.config.IsCategory(weapon, config.CategoryWeapon))
	}
}

func TestExploitUsesTheKnownSuspect(t *testing.T) {
	// GIVEN nobody could disprove Colonel Mustard with two of Scarlet's own cards
	a, nb := notebookAgent(t)
	require.NoError(t, nb.Observe(events.NoDisproof{Suggester: scarlet, Cards: [3]string{mustard, "Candlestick", "Hall"}}))
	require.Equal(t, notebook.StatusHas, nb.Status(mustard, notebook.Envelope))

	// WHEN she builds a suggestion
	suspect, weapon := a.MakeSuggestion("Kitchen")

	// THEN the solved suspect frees every answer to speak about the weapon
	require.Equal(t, mustard, suspect)
	require.Contains(t, []string{"Knife", "Lead Pipe", "Revolver", "Rope", "Wrench"}, weapon)
}

func TestSurgicalStrikeTargetsOpenDisproofs(t *testing.T) {
	// GIVEN two disproofs by Mr. Green that share Professor Plum
	a, nb := notebookAgent(t)
	require.NoError(t, nb.Observe(events.DisproveResult{Suggester: mustard, Disprover: green, Cards: [3]string{plum, "Rope", "Study"}}))
	require.NoError(t, nb.Observe(events.DisproveResult{Suggester: mustard, Disprover: green, Cards: [3]string{plum, "Wrench", "Lounge"}}))

	t.Run("the most frequent card is targeted and padded with an own card", func(t *testing.T) {
		suspect, weapon := a.MakeSuggestion("Kitchen")
		require.Equal(t, plum, suspect)
		require.Equal(t, "Candlestick", weapon)
	})

	t.Run("a recent target waits its turn", func(t *testing.T) {
		suspect, weapon := a.MakeSuggestion("Kitchen")
		require.Equal(t, white, suspect)
		require.Equal(t, "Rope", weapon)
	})
}

func TestPreviewSuggestionHasNoSideEffects(t *testing.T) {
	// GIVEN the same open disproofs by Mr. Green
	a, nb := notebookAgent(t)
	require.NoError(t, nb.Observe(events.DisproveResult{Suggester: mustard, Disprover: green, Cards: [3]string{plum, "Rope", "Study"}}))
	require.NoError(t, nb.Observe(events.DisproveResult{Suggester: mustard, Disprover: green, Cards: [3]string{plum, "Wrench", "Lounge"}}))

	// WHEN the co-pilot is asked twice
	for i := 0; i < 2; i++ {
		suspect, weapon := a.PreviewSuggestion("Kitchen")
		require.Equal(t, plum, suspect)
		require.Equal(t, "Candlestick", weapon)
	}

	// THEN the real suggestion still targets Professor Plum
	require.False(t, a.recentSurgicalTargets.Contains(plum))
	suspect, _ := a.MakeSuggestion("Kitchen")
	require.Equal(t, plum, suspect)
}

func TestChooseCardToShow(t *testing.T) {
	a, _ := notebookAgent(t)

	require.Equal(t, "Candlestick", a.ChooseCardToShow(green, []string{white, "Candlestick"}))
	require.Equal(t, "Hall", a.ChooseCardToShow(mustard, []string{white, "Hall"}))
	require.Equal(t, "Candlestick", a.ChooseCardToShow(green, []string{white, "Candlestick", "Hall"}), "repeat a card the suggester has seen")
}

func TestChooseDestination(t *testing.T) {
	a, _ := notebookAgent(t)

	t.Run("a wanted room in reach wins", func(t *testing.T) {
		dest, ok := a.ChooseDestination(board.Corridor(0, 4), []board.Position{
			board.InRoom("Hall"), board.InRoom("Kitchen"), board.Corridor(2, 4),
		})
		require.True(t, ok)
		require.Equal(t, board.InRoom("Kitchen"), dest)
	})

	t.Run("otherwise the square nearest a wanted room", func(t *testing.T) {
		dest, ok := a.ChooseDestination(board.Corridor(0, 4), []board.Position{
			board.Corridor(0, 5), board.Corridor(2, 3),
		})
		require.True(t, ok)
		require.Equal(t, board.Corridor(2, 3), dest)
	})

	t.Run("no moves", func(t *testing.T) {
		_, ok := a.ChooseDestination(board.Corridor(0, 4), nil)
		require.False(t, ok)
	})
}

func TestAgentAccusesWhenSolved(t *testing.T) {
	// GIVEN Miss Scarlet learned the envelope in her first turn
	g := newTestGame(t, [2]int{4, 4})
	_, err := g.RollDice(scarlet)
	require.NoError(t, err)
	_, err = g.Move(scarlet, board.InRoom("Kitchen"))
	require.NoError(t, err)
	_, err = g.Suggest(scarlet, mustard, "Knife", game.SuggestOptions{})
	require.NoError(t, err)
	for _, name := range g.Seats() {
		require.NoError(t, g.EndTurn(name))
	}

	var agents []*Agent
	for _, name := range g.Seats() {
		a, err := New(g, name, silentLogger(), rand.New(rand.NewSource(2)), &player.DeterministicChooser{})
		require.NoError(t, err)
		agents = append(agents, a)
	}

	// WHEN her agent plays the turn
	require.NoError(t, NewTable(g, agents, silentLogger()).PlayTurn())

	// THEN she accuses and wins
	require.Equal(t, game.StatusWon, g.Status())
	winner, _ := g.Winner()
	require.Equal(t, scarlet, winner)
}

func TestSimulatedSessionIsSound(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3} {
		// GIVEN six agents at a seeded table
		cfg := config.Default()
		g, err := game.NewBuilder(cfg, silentLogger()).WithSeed(seed).Build()
		require.NoError(t, err)
		var agents []*Agent
		for i, name := range g.Seats() {
			r := rand.New(rand.NewSource(seed*10 + uint64(i)))
			a, err := New(g, name, silentLogger(), r, player.NewRandomChooser(r))
			require.NoError(t, err)
			agents = append(agents, a)
		}

		// WHEN they play to the end
		status, err := NewTable(g, agents, silentLogger()).Run(context.Background())
		require.NoError(t, err)

		// THEN the session ends and nobody ever accused or deduced wrongly
		require.NotEqual(t, game.StatusInProgress, status)
		require.NotEqual(t, game.StatusAllEliminated, status)
		snap := g.Snapshot()
		for _, r := range snap.Log {
			if acc, ok := r.Event.(events.AccusationResult); ok {
				require.True(t, acc.Correct, "seed %d: %+v", seed, acc)
			}
		}
		truth := make(map[string]string)
		for _, p := range snap.Players {
			for _, c := range p.Hand {
				truth[c] = p.Name
			}
		}
		for _, c := range snap.Solution.Cards() {
			truth[c] = notebook.Envelope
		}
		for _, name := range g.Seats() {
			nb, _ := g.Notebook(name)
			for _, card := range cfg.AllCards {
				if holder, ok := nb.Holder(card); ok {
					require.Equal(t, truth[card], holder, "seed %d: %s's notebook misplaces %s", seed, name, card)
				}
			}
		}
	}
}
