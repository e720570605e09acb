package game

import (
	"fmt"
	"slices"

	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/deck"
	"clue-detective/internal/events"
	"clue-detective/internal/notebook"
	"clue-detective/internal/player"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Phase is where the current turn stands.
type Phase int

const (
	PhaseRoll          Phase = iota // nothing done yet
	PhaseMove                       // dice thrown, token not yet moved
	PhaseActed                      // movement is over
	PhaseAwaitDisproof              // a suggestion waits for RecordDisprove
)

func (p Phase) String() string {
	return []string{"roll", "move", "acted", "await_disproof"}[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range []string{"roll", "move", "acted", "await_disproof"} {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

type Status int

const (
	StatusInProgress Status = iota
	StatusWon
	StatusAllEliminated
	StatusStalled
)

func (s Status) String() string {
	return []string{"in_progress", "won", "all_eliminated", "stalled"}[s]
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range []string{"in_progress", "won", "all_eliminated", "stalled"} {
		if name == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// SuggestOptions tunes Suggest.
type SuggestOptions struct {
	// Force makes a suggestion the notebook warned about.
	Force bool
}

// MoveResult describes a completed move.
type MoveResult struct {
	From    board.Position `json:"from"`
	To      board.Position `json:"to"`
	Passage bool           `json:"passage"`
}

// SuggestResult is the public outcome of a suggestion. When Disprover is set the game waits
// for RecordDisprove.
type SuggestResult struct {
	Cards      [3]string           `json:"cards"`
	Validation notebook.Validation `json:"validation"`
	Passed     []string            `json:"passed,omitempty"`
	Disprover  string              `json:"disprover,omitempty"`
}

// AccusationResult reports an accusation. Solution is only filled once the game is over.
type AccusationResult struct {
	Correct  bool           `json:"correct"`
	Status   Status         `json:"status"`
	Solution *deck.Solution `json:"solution,omitempty"`
}

type pendingDisproof struct {
	suggester string
	disprover string
	cards     [3]string
	matches   []string
}

// Game is the only mutator of a session: positions, hands, active flags and the envelope.
// It is not safe for concurrent use.
type Game struct {
	id        uuid.UUID
	cfg       *config.GameConfig
	board     *board.Board
	envelope  *deck.Envelope
	players   []*player.State
	byName    map[string]*player.State
	tokens    map[string]board.Position
	notebooks map[string]*notebook.Notebook
	bus       *events.Manager
	roller    Roller
	log       logrus.FieldLogger

	metrics     map[string]*Metrics
	validations []ValidationRecord
	journal     []Command

	turn    int
	current int
	phase   Phase
	roll    *Roll
	accused bool
	pending *pendingDisproof
	status  Status
	winner  string
}

// reject logs a refused command and counts it against the player.
func (g *Game) reject(name string, err error) error {
	g.log.WithField("player", name).Warnf("rejected: %v", err)
	if m, ok := g.metrics[name]; ok {
		m.RejectedCommands++
	}
	return err
}

// turnOf checks that name may act now.
func (g *Game) turnOf(name string) (*player.State, error) {
	if g.status != StatusInProgress {
		return nil, ErrGameOver
	}
	p, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not seated", ErrOutOfTurn, name)
	}
	if cur := g.players[g.current]; p != cur {
		return nil, fmt.Errorf("%w: it is %s's turn", ErrOutOfTurn, cur.Name)
	}
	return p, nil
}

// actor is turnOf plus the checks shared by every turn action.
func (g *Game) actor(name string) (*player.State, error) {
	p, err := g.turnOf(name)
	if err != nil {
		return nil, err
	}
	if g.pending != nil {
		return nil, fmt.Errorf("%w from %s", ErrAwaitingDisproof, g.pending.disprover)
	}
	if !p.Active {
		return nil, ErrEliminated
	}
	return p, nil
}

func (g *Game) checkCard(card string, cat config.CardCategory) error {
	if !g.cfg.IsCategory(card, cat) {
		return fmt.Errorf("%w: %q is not one of the %s", ErrInvalidCardReference, card, cat)
	}
	return nil
}

// place moves a suspect token. Seated players also open a new stay when arriving in a room.
func (g *Game) place(suspect string, pos board.Position) {
	g.tokens[suspect] = pos
	if p, ok := g.byName[suspect]; ok {
		p.MoveTo(pos)
	}
}

// occupied reports corridor cells holding any token but mover's.
func (g *Game) occupied(mover string) func(board.Position) bool {
	return func(pos board.Position) bool {
		if pos.IsRoom() {
			return false
		}
		for suspect, at := range g.tokens {
			if suspect != mover && at == pos {
				return true
			}
		}
		return false
	}
}

func (g *Game) passageTarget(p *player.State) (string, bool) {
	if !p.Position.IsRoom() || (g.phase != PhaseRoll && g.phase != PhaseMove) {
		return "", false
	}
	return g.board.Passage(p.Position.Room)
}

// RollDice throws the dice for the current player.
func (g *Game) RollDice(name string) (Roll, error) {
	p, err := g.actor(name)
	if err != nil {
		return Roll{}, g.reject(name, err)
	}
	if g.phase != PhaseRoll {
		return Roll{}, g.reject(name, fmt.Errorf("%w: no roll left this turn", ErrIllegalMove))
	}
	r := newRoll(g.roller.Roll())
	g.roll = &r
	g.phase = PhaseMove
	g.journal = append(g.journal, Command{Kind: CommandRoll, Player: name, Dice: r.Dice})
	g.log.WithField("player", name).Infof("rolled %d and %d", r.Dice[0], r.Dice[1])
	g.bus.Publish(events.DiceRolled{Player: p.Name, Dice: r.Dice, Total: r.Total, BonusClue: r.BonusClue})
	return r, nil
}

// Move moves the current player to dest: a square or room within the roll, or the far end of
// a secret passage. A passage may be taken before or instead of rolling.
func (g *Game) Move(name string, dest board.Position) (MoveResult, error) {
	p, err := g.actor(name)
	if err != nil {
		return MoveResult{}, g.reject(name, err)
	}
	from := p.Position
	passage := false
	if target, ok := g.passageTarget(p); ok && dest == board.InRoom(target) {
		passage = true
	} else {
		if g.phase != PhaseMove {
			if g.phase == PhaseRoll {
				return MoveResult{}, g.reject(name, fmt.Errorf("%w: roll the dice first", ErrIllegalMove))
			}
			return MoveResult{}, g.reject(name, fmt.Errorf("%w: movement is over this turn", ErrIllegalMove))
		}
		reach := g.board.Reachable(from, g.roll.Total, g.occupied(name))
		if _, ok := reach[dest]; !ok {
			return MoveResult{}, g.reject(name, fmt.Errorf("%w: %s is not reachable from %s in %d", ErrIllegalMove, dest, from, g.roll.Total))
		}
	}

	g.place(name, dest)
	g.phase = PhaseActed
	g.journal = append(g.journal, Command{Kind: CommandMove, Player: name, Dest: &dest})
	g.log.WithField("player", name).Infof("moved from %s to %s", from, dest)
	g.bus.Publish(events.MoveMade{Player: name, From: from, To: dest, Passage: passage})
	return MoveResult{From: from, To: dest, Passage: passage}, nil
}

// Suggest names a suspect and a weapon in the room the current player stands in. The named
// suspect's token is summoned to the room and the disprove round starts with the next seat.
func (g *Game) Suggest(name, suspect, weapon string, opts SuggestOptions) (SuggestResult, error) {
	p, err := g.actor(name)
	if err != nil {
		return SuggestResult{}, g.reject(name, err)
	}
	if !p.Position.IsRoom() {
		return SuggestResult{}, g.reject(name, fmt.Errorf("%w: %s is at %s", ErrNotInRoom, name, p.Position))
	}
	if !p.CanSuggest() {
		return SuggestResult{}, g.reject(name, fmt.Errorf("%w: %s", ErrRepeatedSuggestion, p.Position.Room))
	}
	if err := g.checkCard(suspect, config.CategorySuspect); err != nil {
		return SuggestResult{}, g.reject(name, err)
	}
	if err := g.checkCard(weapon, config.CategoryWeapon); err != nil {
		return SuggestResult{}, g.reject(name, err)
	}
	room := p.Position.Room
	validation, err := g.notebooks[name].ValidateSuggestion(suspect, weapon, room)
	if err != nil {
		return SuggestResult{}, g.reject(name, fmt.Errorf("%w: %v", ErrInvalidCardReference, err))
	}
	wasted := validation.Verdict == notebook.Warning
	if wasted {
		g.recordValidation(name, "wasted_suggestion", validation, opts.Force)
		if !opts.Force {
			return SuggestResult{}, g.reject(name, &WarningError{Player: name, Validation: validation})
		}
		g.metrics[name].WastedSuggestions++
	} else {
		g.metrics[name].LogicalSuggestions++
	}

	p.MarkSuggested()
	g.phase = PhaseActed
	g.journal = append(g.journal, Command{Kind: CommandSuggest, Player: name, Suspect: suspect, Weapon: weapon, Force: opts.Force})
	cards := [3]string{suspect, weapon, room}
	g.log.WithField("player", name).Infof("suggests %s with the %s in the %s", suspect, weapon, room)
	g.bus.Publish(events.SuggestionMade{Suggester: name, Suspect: suspect, Weapon: weapon, Room: room, Forced: wasted})

	if at := g.tokens[suspect]; suspect != name && at != board.InRoom(room) {
		g.place(suspect, board.InRoom(room))
		g.bus.Publish(events.TokenRelocated{Suspect: suspect, From: at, To: board.InRoom(room)})
	}

	res := SuggestResult{Cards: cards, Validation: validation}
	n := len(g.players)
	for i := 1; i < n; i++ {
		q := g.players[(p.Seat+i)%n]
		matches := q.Matching(cards)
		if len(matches) == 0 {
			res.Passed = append(res.Passed, q.Name)
			g.bus.Publish(events.Passed{Suggester: name, Player: q.Name, Cards: cards})
			continue
		}
		g.pending = &pendingDisproof{suggester: name, disprover: q.Name, cards: cards, matches: matches}
		g.phase = PhaseAwaitDisproof
		res.Disprover = q.Name
		return res, nil
	}
	g.bus.Publish(events.NoDisproof{Suggester: name, Cards: cards})
	return res, nil
}

// DisproofOptions returns the cards the pending disprover may show. Only the disprover
// should be told.
func (g *Game) DisproofOptions(disprover string) ([]string, error) {
	if g.pending == nil || g.pending.disprover != disprover {
		return nil, fmt.Errorf("%w: %s has nothing to disprove", ErrOutOfTurn, disprover)
	}
	return append([]string(nil), g.pending.matches...), nil
}

// PendingDisprover names the player who must answer the open suggestion.
func (g *Game) PendingDisprover() (string, bool) {
	if g.pending == nil {
		return "", false
	}
	return g.pending.disprover, true
}

// RecordDisprove completes a disproof with the card the disprover chose to show.
// Everyone learns who disproved; only the two players involved learn the card.
func (g *Game) RecordDisprove(disprover, card string) error {
	if g.status != StatusInProgress {
		return g.reject(disprover, ErrGameOver)
	}
	pd := g.pending
	if pd == nil || pd.disprover != disprover {
		return g.reject(disprover, fmt.Errorf("%w: %s has nothing to disprove", ErrOutOfTurn, disprover))
	}
	if !slices.Contains(pd.matches, card) {
		return g.reject(disprover, fmt.Errorf("%w: %q does not disprove %v", ErrInvalidCardReference, card, pd.cards))
	}
	g.pending = nil
	g.phase = PhaseActed
	g.journal = append(g.journal, Command{Kind: CommandDisprove, Player: disprover, Card: card})
	g.log.WithField("player", disprover).Debugf("shows %s to %s", card, pd.suggester)
	g.bus.Publish(events.DisproveResult{Suggester: pd.suggester, Disprover: disprover, Cards: pd.cards})
	g.bus.Deliver(events.CardShown{Suggester: pd.suggester, Disprover: disprover, Card: card}, pd.suggester, disprover)
	return nil
}

// Accuse checks a full accusation against the envelope. The room need not be the one the
// player stands in. An accusation the player's own notebook disproves is blocked without
// using up the turn's accusation.
func (g *Game) Accuse(name, suspect, weapon, room string) (AccusationResult, error) {
	p, err := g.turnOf(name)
	if err != nil {
		return AccusationResult{}, g.reject(name, err)
	}
	if g.pending != nil {
		return AccusationResult{}, g.reject(name, fmt.Errorf("%w from %s", ErrAwaitingDisproof, g.pending.disprover))
	}
	if g.accused {
		return AccusationResult{}, g.reject(name, ErrAlreadyAccused)
	}
	if !p.Active {
		return AccusationResult{}, g.reject(name, ErrEliminated)
	}
	for cat, card := range []string{suspect, weapon, room} {
		if err := g.checkCard(card, config.CardCategory(cat)); err != nil {
			return AccusationResult{}, g.reject(name, err)
		}
	}
	validation, err := g.notebooks[name].ValidateAccusation(suspect, weapon, room)
	if err != nil {
		return AccusationResult{}, g.reject(name, fmt.Errorf("%w: %v", ErrInvalidCardReference, err))
	}
	if validation.Verdict == notebook.Blocked {
		g.recordValidation(name, "illogical_accusation", validation, false)
		return AccusationResult{}, g.reject(name, fmt.Errorf("%w: %v", ErrAccusationBlocked, validation.Reasons))
	}

	g.accused = true
	g.metrics[name].Accusations++
	g.journal = append(g.journal, Command{Kind: CommandAccuse, Player: name, Suspect: suspect, Weapon: weapon, Room: room})
	correct := g.envelope.Matches(suspect, weapon, room)
	g.bus.Publish(events.AccusationResult{Accuser: name, Suspect: suspect, Weapon: weapon, Room: room, Correct: correct})

	if correct {
		g.log.WithField("player", name).Info("accusation is correct")
		g.finish(StatusWon, name)
	} else {
		g.log.WithField("player", name).Info("accusation is wrong, player is out")
		p.Eliminate()
		if g.activeCount() == 0 {
			g.finish(StatusAllEliminated, "")
		}
	}
	res := AccusationResult{Correct: correct, Status: g.status}
	if g.status != StatusInProgress {
		s := g.envelope.Reveal()
		res.Solution = &s
	}
	return res, nil
}

// EndTurn passes play to the next active seat.
func (g *Game) EndTurn(name string) error {
	p, err := g.turnOf(name)
	if err != nil {
		return g.reject(name, err)
	}
	if g.pending != nil {
		return g.reject(name, fmt.Errorf("%w from %s", ErrAwaitingDisproof, g.pending.disprover))
	}
	g.journal = append(g.journal, Command{Kind: CommandEndTurn, Player: name})
	g.bus.Publish(events.TurnEnded{Turn: g.turn, Player: p.Name})

	if g.cfg.MaxTurns > 0 && g.turn >= g.cfg.MaxTurns {
		g.log.Infof("turn limit of %d reached", g.cfg.MaxTurns)
		g.finish(StatusStalled, "")
		return nil
	}
	n := len(g.players)
	for i := 1; i <= n; i++ {
		if next := (g.current + i) % n; g.players[next].Active {
			g.current = next
			break
		}
	}
	g.turn++
	g.phase = PhaseRoll
	g.roll = nil
	g.accused = false
	g.bus.Publish(events.TurnStarted{Turn: g.turn, Player: g.players[g.current].Name})
	return nil
}

func (g *Game) finish(status Status, winner string) {
	g.status = status
	g.winner = winner
	s := g.envelope.Reveal()
	g.bus.Publish(events.GameOver{Status: status.String(), Winner: winner, Solution: &s})
}

func (g *Game) activeCount() int {
	n := 0
	for _, p := range g.players {
		if p.Active {
			n++
		}
	}
	return n
}
