package game

import (
	"encoding/json"
	"testing"

	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/notebook"

	"github.com/stretchr/testify/require"
)

func TestSnapshotResume(t *testing.T) {
	// GIVEN a session three turns in, with a disproof recorded
	g := newTestGame(t, config.Default(), testSolution, testHands, [2]int{4, 4}, [2]int{6, 5})
	scarletInKitchen(t, g)
	endTurns(t, g, scarlet)
	_, err := g.RollDice(mustard)
	require.NoError(t, err)
	_, err = g.Move(mustard, board.InRoom("Conservatory"))
	require.NoError(t, err)
	_, err = g.Suggest(mustard, green, "Revolver", SuggestOptions{})
	require.NoError(t, err)
	require.NoError(t, g.RecordDisprove(white, "Revolver"))

	// AND two refused commands, which the journal does not record
	_, err = g.RollDice(white)
	require.ErrorIs(t, err, ErrOutOfTurn)
	_, err = g.Accuse(mustard, scarlet, "Knife", "Kitchen")
	require.ErrorIs(t, err, ErrAccusationBlocked)

	// WHEN the snapshot goes through JSON and is resumed
	data, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	resumed, err := NewBuilder(config.Default(), silentLogger()).Resume(&snap)
	require.NoError(t, err)

	// THEN the replayed session is the same session
	want, got := g.Snapshot(), resumed.Snapshot()
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Log, got.Log)
	require.Equal(t, want.Notebooks, got.Notebooks)
	require.Equal(t, want.Players, got.Players)
	require.Equal(t, want.Tokens, got.Tokens)
	require.Equal(t, want.Journal, got.Journal)
	require.Equal(t, PhaseActed, got.Phase)
	require.Equal(t, mustard, got.Current)
	require.Equal(t, want.Log, snap.Log)

	t.Run("counters and the validation log survive", func(t *testing.T) {
		require.Equal(t, g.Report(), resumed.Report())
		require.Equal(t, g.ValidationLog(0), resumed.ValidationLog(0))
		m, err := resumed.Metrics(mustard)
		require.NoError(t, err)
		require.Equal(t, 1, m.RejectedCommands)
		m, err = resumed.Metrics(white)
		require.NoError(t, err)
		require.Equal(t, 1, m.RejectedCommands)
		require.Len(t, resumed.ValidationLog(0), 1)
		require.Equal(t, notebook.Blocked, resumed.ValidationLog(0)[0].Verdict)
	})

	t.Run("the resumed session keeps going", func(t *testing.T) {
		require.NoError(t, resumed.EndTurn(mustard))
		require.Equal(t, white, resumed.Current())
	})

	t.Run("a different catalog is refused", func(t *testing.T) {
		cfg := config.Default()
		cfg.Players = 3
		_, err := NewBuilder(cfg, silentLogger()).Resume(&snap)
		require.Error(t, err)
	})

	t.Run("a tampered journal is refused", func(t *testing.T) {
		bad := snap
		bad.Journal = append([]Command{{Kind: CommandMove, Player: scarlet, Dest: &board.Position{Room: "Hall"}}}, snap.Journal...)
		_, err := NewBuilder(config.Default(), silentLogger()).Resume(&bad)
		require.ErrorIs(t, err, ErrIllegalMove)
	})
}

func TestRandomRollerIsSeeded(t *testing.T) {
	a, b := NewRandomRoller(42), NewRandomRoller(42)
	for i := 0; i < 20; i++ {
		r := a.Roll()
		require.Equal(t, r, b.Roll())
		require.GreaterOrEqual(t, r[0], 1)
		require.LessOrEqual(t, r[1], 6)
	}
}

func TestSeededBuildsMatch(t *testing.T) {
	first, err := NewBuilder(config.Default(), silentLogger()).WithSeed(11).Build()
	require.NoError(t, err)
	second, err := NewBuilder(config.Default(), silentLogger()).WithSeed(11).Build()
	require.NoError(t, err)

	require.Equal(t, first.Snapshot().Solution, second.Snapshot().Solution)
	require.Equal(t, first.Snapshot().Players, second.Snapshot().Players)
	require.NotEqual(t, first.ID(), second.ID())

	sol := first.Snapshot().Solution
	require.True(t, first.Config().IsCategory(sol.Room, config.CategoryRoom))
}
