package agent

import (
	"context"
	"errors"
	"fmt"

	"clue-detective/internal/game"

	"github.com/sirupsen/logrus"
)

// Responder picks the card a disprover shows. Agents are responders; the interactive
// shell registers one per human seat.
type Responder interface {
	ChooseCardToShow(suggester string, options []string) string
}

// Table plays the agent seats of a session. Seats without an agent must be played by the
// caller between calls to PlayTurn.
type Table struct {
	game       *game.Game
	agents     map[string]*Agent
	responders map[string]Responder
	log        logrus.FieldLogger
}

func NewTable(g *game.Game, agents []*Agent, logger logrus.FieldLogger) *Table {
	t := &Table{
		game:       g,
		agents:     make(map[string]*Agent, len(agents)),
		responders: make(map[string]Responder, len(agents)),
		log:        logger,
	}
	for _, a := range agents {
		t.agents[a.Name()] = a
		t.responders[a.Name()] = a
	}
	return t
}

// SetResponder overrides who answers disproofs for name.
func (t *Table) SetResponder(name string, r Responder) {
	t.responders[name] = r
}

// Seated reports whether an agent plays name.
func (t *Table) Seated(name string) bool {
	_, ok := t.agents[name]
	return ok
}

// Run plays turns until the game ends or ctx is done. Every seat needs an agent.
func (t *Table) Run(ctx context.Context) (game.Status, error) {
	for t.game.Status() == game.StatusInProgress {
		if err := ctx.Err(); err != nil {
			return t.game.Status(), err
		}
		if err := t.PlayTurn(); err != nil {
			return t.game.Status(), err
		}
	}
	return t.game.Status(), nil
}

// PlayTurn plays the current player's whole turn: accuse if solved, otherwise reach a room,
// suggest, settle the disproof and accuse if that solved it.
func (t *Table) PlayTurn() error {
	g := t.game
	name := g.Current()
	a, ok := t.agents[name]
	if !ok {
		return fmt.Errorf("no agent for %s", name)
	}
	if done, err := t.tryAccuse(a); done || err != nil {
		return err
	}

	p, err := g.Player(name)
	if err != nil {
		return err
	}
	if p.Active {
		if err := t.moveAndSuggest(a); err != nil {
			return err
		}
		if done, err := t.tryAccuse(a); done || err != nil {
			return err
		}
	}
	return g.EndTurn(name)
}

func (t *Table) moveAndSuggest(a *Agent) error {
	g := t.game
	p, err := g.Player(a.Name())
	if err != nil {
		return err
	}

	summoned := p.CanSuggest() && a.wantsRoom(p.Position.Room)
	if !summoned {
		moves, err := g.LegalMoves(a.Name())
		if err != nil {
			return err
		}
		// a passage into a wanted room beats a roll
		dest, ok := a.ChooseDestination(p.Position, moves)
		if !ok || !dest.IsRoom() || !a.wantsRoom(dest.Room) {
			if _, err := g.RollDice(a.Name()); err != nil {
				return err
			}
			if moves, err = g.LegalMoves(a.Name()); err != nil {
				return err
			}
			dest, ok = a.ChooseDestination(p.Position, moves)
		}
		if ok {
			if _, err := g.Move(a.Name(), dest); err != nil {
				return err
			}
		}
		if p, err = g.Player(a.Name()); err != nil {
			return err
		}
		if !p.CanSuggest() {
			return nil
		}
	}

	suspect, weapon := a.MakeSuggestion(p.Position.Room)
	res, err := g.Suggest(a.Name(), suspect, weapon, game.SuggestOptions{})
	var warning *game.WarningError
	if errors.As(err, &warning) {
		a.log.Debugf("Skipping a wasted suggestion: %v", warning.Validation.Reasons)
		return nil
	}
	if err != nil {
		return err
	}
	if res.Disprover == "" {
		return nil
	}
	return t.Settle(a.Name(), res.Disprover)
}

// Settle asks the responder of disprover which card to show and records it.
func (t *Table) Settle(suggester, disprover string) error {
	d, ok := t.responders[disprover]
	if !ok {
		return fmt.Errorf("no responder for %s", disprover)
	}
	options, err := t.game.DisproofOptions(disprover)
	if err != nil {
		return err
	}
	return t.game.RecordDisprove(disprover, d.ChooseCardToShow(suggester, options))
}

func (t *Table) tryAccuse(a *Agent) (bool, error) {
	suspect, weapon, room, ok := a.ShouldAccuse()
	if !ok {
		return false, nil
	}
	res, err := t.game.Accuse(a.Name(), suspect, weapon, room)
	if err != nil {
		return false, err
	}
	if res.Status != game.StatusInProgress {
		t.log.Infof("%s ends the game: %s", a.Name(), res.Status)
		return true, nil
	}
	return true, t.game.EndTurn(a.Name())
}
