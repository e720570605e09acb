package game

import (
	"errors"
	"fmt"
	"slices"

	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/deck"
	"clue-detective/internal/events"
	"clue-detective/internal/notebook"
	"clue-detective/internal/player"

	"github.com/google/uuid"
)

type CommandKind string

const (
	CommandRoll     CommandKind = "roll"
	CommandMove     CommandKind = "move"
	CommandSuggest  CommandKind = "suggest"
	CommandDisprove CommandKind = "disprove"
	CommandAccuse   CommandKind = "accuse"
	CommandEndTurn  CommandKind = "end_turn"
)

// Command is one accepted command in the session journal.
type Command struct {
	Kind    CommandKind     `json:"kind"`
	Player  string          `json:"player"`
	Dice    [2]int          `json:"dice"`
	Dest    *board.Position `json:"dest,omitempty"`
	Suspect string          `json:"suspect,omitempty"`
	Weapon  string          `json:"weapon,omitempty"`
	Room    string          `json:"room,omitempty"`
	Card    string          `json:"card,omitempty"`
	Force   bool            `json:"force,omitempty"`
}

// Apply runs a journal command. Roll commands use the game's roller, not the recorded dice.
func (g *Game) Apply(cmd Command) error {
	var err error
	switch cmd.Kind {
	case CommandRoll:
		_, err = g.RollDice(cmd.Player)
	case CommandMove:
		if cmd.Dest == nil {
			return fmt.Errorf("%w: move without destination", ErrIllegalMove)
		}
		_, err = g.Move(cmd.Player, *cmd.Dest)
	case CommandSuggest:
		_, err = g.Suggest(cmd.Player, cmd.Suspect, cmd.Weapon, SuggestOptions{Force: cmd.Force})
	case CommandDisprove:
		err = g.RecordDisprove(cmd.Player, cmd.Card)
	case CommandAccuse:
		_, err = g.Accuse(cmd.Player, cmd.Suspect, cmd.Weapon, cmd.Room)
	case CommandEndTurn:
		err = g.EndTurn(cmd.Player)
	default:
		err = fmt.Errorf("unknown command %q", cmd.Kind)
	}
	return err
}

// Snapshot is everything needed to inspect or resume a session.
type Snapshot struct {
	ID          uuid.UUID                 `json:"id"`
	Board       string                    `json:"board"`
	Config      *config.GameConfig        `json:"config"`
	Solution    deck.Solution             `json:"solution"`
	Players     []*player.State           `json:"players"`
	Tokens      map[string]board.Position `json:"tokens"`
	Turn        int                       `json:"turn"`
	Current     string                    `json:"current"`
	Phase       Phase                     `json:"phase"`
	Status      Status                    `json:"status"`
	Winner      string                    `json:"winner,omitempty"`
	Log         []events.Record           `json:"log"`
	Notebooks   map[string]notebook.Grid  `json:"notebooks"`
	Metrics     []Metrics                 `json:"metrics"`
	// Validations and the rejected counts in Metrics come from refused commands, which the
	// journal does not hold.
	Validations []ValidationRecord        `json:"validations"`
	Journal     []Command                 `json:"journal"`
}

// Snapshot copies the session, envelope included.
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		ID:          g.id,
		Board:       "classic",
		Config:      g.cfg.DeepCopy(),
		Solution:    g.envelope.Reveal(),
		Tokens:      g.Tokens(),
		Turn:        g.turn,
		Current:     g.Current(),
		Phase:       g.phase,
		Status:      g.status,
		Winner:      g.winner,
		Log:         g.Events(),
		Notebooks:   make(map[string]notebook.Grid, len(g.notebooks)),
		Metrics:     g.Report(),
		Validations: g.ValidationLog(0),
		Journal:     append([]Command(nil), g.journal...),
	}
	for _, p := range g.players {
		s.Players = append(s.Players, p.Clone())
		s.Notebooks[p.Name] = g.notebooks[p.Name].Snapshot()
	}
	return s
}

// Resume rebuilds a session from a snapshot by dealing the recorded hands and replaying
// the journal with the recorded dice, then restores the counters and validation log. The
// builder's config must describe the same catalog.
func (b *GameBuilder) Resume(snap *Snapshot) (*Game, error) {
	if snap.Config == nil || !sameCatalog(b.cfg, snap.Config) {
		return nil, errors.New("snapshot was taken with a different catalog")
	}
	hands := make([][]string, len(snap.Players))
	for i, p := range snap.Players {
		hands[i] = p.Hand
	}
	deal, err := deck.Fixed(b.cfg, snap.Solution, hands)
	if err != nil {
		return nil, fmt.Errorf("snapshot deal: %w", err)
	}
	var dice [][2]int
	for _, cmd := range snap.Journal {
		if cmd.Kind == CommandRoll {
			dice = append(dice, cmd.Dice)
		}
	}
	g, err := b.WithDeal(deal).WithRoller(NewFixedRoller(dice...)).WithID(snap.ID).Build()
	if err != nil {
		return nil, err
	}
	for i, cmd := range snap.Journal {
		if err := g.Apply(cmd); err != nil {
			return nil, fmt.Errorf("replaying command %d (%s by %s): %w", i+1, cmd.Kind, cmd.Player, err)
		}
	}
	if got := len(g.Events()); got != len(snap.Log) {
		return nil, fmt.Errorf("replay produced %d events, snapshot has %d", got, len(snap.Log))
	}
	for _, m := range snap.Metrics {
		cur, ok := g.metrics[m.Player]
		if !ok {
			return nil, fmt.Errorf("snapshot has metrics for %q, who is not seated", m.Player)
		}
		*cur = m
	}
	g.validations = append([]ValidationRecord(nil), snap.Validations...)
	return g, nil
}

func sameCatalog(a, b *config.GameConfig) bool {
	return slices.Equal(a.Suspects, b.Suspects) &&
		slices.Equal(a.Weapons, b.Weapons) &&
		slices.Equal(a.Rooms, b.Rooms) &&
		a.Players == b.Players
}
