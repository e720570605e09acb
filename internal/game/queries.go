package game

import (
	"fmt"
	"sort"

	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/deck"
	"clue-detective/internal/events"
	"clue-detective/internal/notebook"
	"clue-detective/internal/player"

	"github.com/google/uuid"
)

// NotebookView is the read side of a player's notebook.
type NotebookView interface {
	Status(card, holder string) notebook.CardStatus
	Holder(card string) (string, bool)
	IsResolved(card string) bool
	Unknown() map[config.CardCategory][]string
	Possible() map[config.CardCategory][]string
	RecommendedAccusation() (deck.Solution, bool)
	ValidateSuggestion(suspect, weapon, room string) (notebook.Validation, error)
	ValidateAccusation(suspect, weapon, room string) (notebook.Validation, error)
	Constraints() []notebook.Constraint
	History() []notebook.Entry
	Snapshot() notebook.Grid
	Compact() string
}

func (g *Game) ID() uuid.UUID              { return g.id }
func (g *Game) Config() *config.GameConfig { return g.cfg }
func (g *Game) Board() *board.Board        { return g.board }
func (g *Game) Turn() int                  { return g.turn }
func (g *Game) Phase() Phase               { return g.phase }
func (g *Game) Status() Status             { return g.status }

// Current names the player whose turn it is.
func (g *Game) Current() string { return g.players[g.current].Name }

// Winner names the winner, if the game was won.
func (g *Game) Winner() (string, bool) { return g.winner, g.status == StatusWon }

// LastRoll returns this turn's roll, if the dice were thrown.
func (g *Game) LastRoll() (Roll, bool) {
	if g.roll == nil {
		return Roll{}, false
	}
	return *g.roll, true
}

// Seats returns the seated players in seating order.
func (g *Game) Seats() []string {
	out := make([]string, len(g.players))
	for i, p := range g.players {
		out[i] = p.Name
	}
	return out
}

// Player returns a copy of a seated player's state.
func (g *Game) Player(name string) (*player.State, error) {
	p, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not seated", ErrOutOfTurn, name)
	}
	return p.Clone(), nil
}

// Tokens returns where every suspect token stands, seated or not.
func (g *Game) Tokens() map[string]board.Position {
	out := make(map[string]board.Position, len(g.tokens))
	for k, v := range g.tokens {
		out[k] = v
	}
	return out
}

// Events returns a copy of the public log.
func (g *Game) Events() []events.Record { return g.bus.Log() }

// Notebook gives read access to a player's notebook.
func (g *Game) Notebook(name string) (NotebookView, error) {
	nb, ok := g.notebooks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not seated", ErrOutOfTurn, name)
	}
	return nb, nil
}

// NotebookSnapshot copies a player's grid.
func (g *Game) NotebookSnapshot(name string) (notebook.Grid, error) {
	nb, ok := g.notebooks[name]
	if !ok {
		return notebook.Grid{}, fmt.Errorf("%w: %q is not seated", ErrOutOfTurn, name)
	}
	return nb.Snapshot(), nil
}

// LegalMoves lists the destinations name may choose right now: the secret passage before
// moving and, once the dice are thrown, everything within the roll. Rooms come first in
// board order, then corridor squares by row and column.
func (g *Game) LegalMoves(name string) ([]board.Position, error) {
	p, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not seated", ErrOutOfTurn, name)
	}
	if g.status != StatusInProgress || g.players[g.current] != p || g.pending != nil || !p.Active {
		return nil, nil
	}
	dests := make(map[board.Position]bool)
	if target, ok := g.passageTarget(p); ok {
		dests[board.InRoom(target)] = true
	}
	if g.phase == PhaseMove {
		for pos := range g.board.Reachable(p.Position, g.roll.Total, g.occupied(name)) {
			dests[pos] = true
		}
	}
	order := make(map[string]int)
	for i, r := range g.board.Rooms() {
		order[r] = i
	}
	out := make([]board.Position, 0, len(dests))
	for pos := range dests {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsRoom() != b.IsRoom() {
			return a.IsRoom()
		}
		if a.IsRoom() {
			return order[a.Room] < order[b.Room]
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	return out, nil
}
