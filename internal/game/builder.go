package game

import (
	"errors"
	"fmt"

	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/deck"
	"clue-detective/internal/events"
	"clue-detective/internal/notebook"
	"clue-detective/internal/player"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GameBuilder provides a step-by-step API for constructing a Game object.
type GameBuilder struct {
	cfg          *config.GameConfig
	board        *board.Board
	eventManager *events.Manager
	log          *logrus.Logger
	deal         *deck.Deal
	roller       Roller
	seed         uint64
	id           uuid.UUID
}

// NewBuilder creates a new GameBuilder with its required dependencies. The seed defaults to
// the configured one.
func NewBuilder(cfg *config.GameConfig, logger *logrus.Logger) *GameBuilder {
	return &GameBuilder{
		cfg:          cfg,
		log:          logger,
		seed:         cfg.Seed,
		board:        board.Classic(),
		eventManager: events.NewManager(),
	}
}

// EventManager is a public getter for the unexported field. Observers subscribed before
// Build see the whole session.
func (b *GameBuilder) EventManager() *events.Manager {
	return b.eventManager
}

func (b *GameBuilder) WithSeed(seed uint64) *GameBuilder {
	b.seed = seed
	return b
}

func (b *GameBuilder) WithBoard(bd *board.Board) *GameBuilder {
	b.board = bd
	return b
}

// WithDeal replaces the seeded deal, for scripted sessions.
func (b *GameBuilder) WithDeal(d *deck.Deal) *GameBuilder {
	b.deal = d
	return b
}

func (b *GameBuilder) WithRoller(r Roller) *GameBuilder {
	b.roller = r
	return b
}

func (b *GameBuilder) WithID(id uuid.UUID) *GameBuilder {
	b.id = id
	return b
}

// Build constructs the Game object after all options have been configured.
func (b *GameBuilder) Build() (*Game, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	for _, room := range b.cfg.Rooms {
		if _, ok := b.board.Room(room); !ok {
			return nil, fmt.Errorf("room %q is not on the board", room)
		}
	}
	if len(b.cfg.Rooms) != len(b.board.Rooms()) {
		return nil, errors.New("every board room needs a room card")
	}
	seats := b.cfg.Seats()

	deal := b.deal
	if deal == nil {
		var err error
		if deal, err = deck.New(b.cfg, len(seats), b.seed); err != nil {
			return nil, err
		}
	}
	if len(deal.Hands) != len(seats) {
		return nil, fmt.Errorf("deal has %d hands for %d players", len(deal.Hands), len(seats))
	}
	roller := b.roller
	if roller == nil {
		roller = NewRandomRoller(b.seed + 1)
	}
	id := b.id
	if id == uuid.Nil {
		id = uuid.New()
	}

	g := &Game{
		id:        id,
		cfg:       b.cfg,
		board:     b.board,
		envelope:  deal.Envelope,
		byName:    make(map[string]*player.State),
		tokens:    make(map[string]board.Position),
		notebooks: make(map[string]*notebook.Notebook),
		metrics:   make(map[string]*Metrics),
		bus:       b.eventManager,
		roller:    roller,
		log:       b.log.WithField("session", id.String()),
		turn:      1,
	}

	// Every suspect has a token, seated or not.
	for i, suspect := range b.cfg.Suspects {
		start, ok := b.board.Start(i)
		if !ok {
			return nil, fmt.Errorf("no start square for %s", suspect)
		}
		g.tokens[suspect] = start
	}

	for seat, name := range seats {
		p := player.New(name, seat, deal.Hands[seat], g.tokens[name])
		g.players = append(g.players, p)
		g.byName[name] = p
		g.metrics[name] = &Metrics{Player: name}

		nb := notebook.New(name, b.cfg, seats, b.log.WithField("player", name))
		g.notebooks[name] = nb
		b.eventManager.SubscribePlayer(name, nb)
	}

	sizes := deal.HandSizes()
	for _, p := range g.players {
		g.log.Debugf("%s holds %d cards", p.Name, len(p.Hand))
		b.eventManager.Deliver(events.HandDealt{
			Player:    p.Name,
			Hand:      append([]string(nil), p.Hand...),
			Seats:     append([]string(nil), seats...),
			HandSizes: sizes,
		}, p.Name)
	}
	g.bus.Publish(events.TurnStarted{Turn: g.turn, Player: g.players[0].Name})
	return g, nil
}
