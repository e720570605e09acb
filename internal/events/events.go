package events

import (
	"encoding/json"
	"fmt"

	"clue-detective/internal/board"
	"clue-detective/internal/deck"
)

// Event is implemented by every immutable record the game emits.
type Event interface {
	Kind() string
}

// Listener defines an interface for any component that wants to react to events.
type Listener interface {
	HandleEvent(e Event)
}

// Record is one entry of the public log.
type Record struct {
	Seq   int    `json:"seq"`
	Kind  string `json:"kind"`
	Event Event  `json:"event"`
}

// UnmarshalJSON restores the concrete event type from Kind.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Seq   int             `json:"seq"`
		Kind  string          `json:"kind"`
		Event json.RawMessage `json:"event"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e, err := Decode(raw.Kind, raw.Event)
	if err != nil {
		return err
	}
	*r = Record{Seq: raw.Seq, Kind: raw.Kind, Event: e}
	return nil
}

// Decode unmarshals the payload of an event of the given kind.
func Decode(kind string, data []byte) (Event, error) {
	var e Event
	switch kind {
	case TurnStarted{}.Kind():
		e = &TurnStarted{}
	case DiceRolled{}.Kind():
		e = &DiceRolled{}
	case MoveMade{}.Kind():
		e = &MoveMade{}
	case TokenRelocated{}.Kind():
		e = &TokenRelocated{}
	case SuggestionMade{}.Kind():
		e = &SuggestionMade{}
	case Passed{}.Kind():
		e = &Passed{}
	case DisproveResult{}.Kind():
		e = &DisproveResult{}
	case NoDisproof{}.Kind():
		e = &NoDisproof{}
	case AccusationResult{}.Kind():
		e = &AccusationResult{}
	case TurnEnded{}.Kind():
		e = &TurnEnded{}
	case GameOver{}.Kind():
		e = &GameOver{}
	case HandDealt{}.Kind():
		e = &HandDealt{}
	case CardShown{}.Kind():
		e = &CardShown{}
	default:
		return nil, fmt.Errorf("events: unknown kind %q", kind)
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("events: decoding %s: %w", kind, err)
	}
	return deref(e), nil
}

// deref turns the decoding target back into the value type the game publishes.
func deref(e Event) Event {
	switch v := e.(type) {
	case *TurnStarted:
		return *v
	case *DiceRolled:
		return *v
	case *MoveMade:
		return *v
	case *TokenRelocated:
		return *v
	case *SuggestionMade:
		return *v
	case *Passed:
		return *v
	case *DisproveResult:
		return *v
	case *NoDisproof:
		return *v
	case *AccusationResult:
		return *v
	case *TurnEnded:
		return *v
	case *GameOver:
		return *v
	case *HandDealt:
		return *v
	case *CardShown:
		return *v
	}
	return e
}

// Manager (or Event Bus) dispatches public events to everyone and private events to the
// named players only. Public events are appended to the log.
type Manager struct {
	listeners []Listener
	players   map[string]Listener
	order     []string
	log       []Record
}

func NewManager() *Manager {
	return &Manager{players: make(map[string]Listener)}
}

// Subscribe registers an observer of public events, e.g. a renderer.
func (em *Manager) Subscribe(l Listener) {
	em.listeners = append(em.listeners, l)
}

// SubscribePlayer registers the listener that receives public events plus any event
// delivered privately to name.
func (em *Manager) SubscribePlayer(name string, l Listener) {
	if _, ok := em.players[name]; !ok {
		em.order = append(em.order, name)
	}
	em.players[name] = l
}

// Publish appends e to the public log and broadcasts it.
func (em *Manager) Publish(e Event) {
	em.log = append(em.log, Record{Seq: len(em.log) + 1, Kind: e.Kind(), Event: e})
	for _, name := range em.order {
		em.players[name].HandleEvent(e)
	}
	for _, l := range em.listeners {
		l.HandleEvent(e)
	}
}

// Deliver hands e to the named players only. It never reaches the public log.
func (em *Manager) Deliver(e Event, to ...string) {
	for _, name := range to {
		if l, ok := em.players[name]; ok {
			l.HandleEvent(e)
		}
	}
}

// Log returns a copy of the public log.
func (em *Manager) Log() []Record {
	return append([]Record(nil), em.log...)
}

// --- Public events ---

type TurnStarted struct {
	Turn   int    `json:"turn"`
	Player string `json:"player"`
}

type DiceRolled struct {
	Player    string `json:"player"`
	Dice      [2]int `json:"dice"`
	Total     int    `json:"total"`
	BonusClue bool   `json:"bonus_clue"`
}

type MoveMade struct {
	Player  string         `json:"player"`
	From    board.Position `json:"from"`
	To      board.Position `json:"to"`
	Passage bool           `json:"passage,omitempty"`
}

// TokenRelocated is emitted when a suggestion pulls a suspect token into a room.
type TokenRelocated struct {
	Suspect string         `json:"suspect"`
	From    board.Position `json:"from"`
	To      board.Position `json:"to"`
}

type SuggestionMade struct {
	Suggester string `json:"suggester"`
	Suspect   string `json:"suspect"`
	Weapon    string `json:"weapon"`
	Room      string `json:"room"`
	Forced    bool   `json:"forced,omitempty"`
}

// Cards returns the three suggested cards.
func (s SuggestionMade) Cards() [3]string { return [3]string{s.Suspect, s.Weapon, s.Room} }

// Passed records that Player could not disprove the suggestion.
type Passed struct {
	Suggester string    `json:"suggester"`
	Player    string    `json:"player"`
	Cards     [3]string `json:"cards"`
}

// DisproveResult is the public half of a disproof: who showed a card, not which.
type DisproveResult struct {
	Suggester string    `json:"suggester"`
	Disprover string    `json:"disprover"`
	Cards     [3]string `json:"cards"`
}

type NoDisproof struct {
	Suggester string    `json:"suggester"`
	Cards     [3]string `json:"cards"`
}

type AccusationResult struct {
	Accuser string `json:"accuser"`
	Suspect string `json:"suspect"`
	Weapon  string `json:"weapon"`
	Room    string `json:"room"`
	Correct bool   `json:"correct"`
}

type TurnEnded struct {
	Turn   int    `json:"turn"`
	Player string `json:"player"`
}

type GameOver struct {
	Status   string         `json:"status"`
	Winner   string         `json:"winner,omitempty"`
	Solution *deck.Solution `json:"solution,omitempty"`
}

// --- Private events ---

// HandDealt tells one player their hand and the public hand sizes of the table.
type HandDealt struct {
	Player    string   `json:"player"`
	Hand      []string `json:"hand"`
	Seats     []string `json:"seats"`
	HandSizes []int    `json:"hand_sizes"`
}

// CardShown reaches only the suggester and the disprover.
type CardShown struct {
	Suggester string `json:"suggester"`
	Disprover string `json:"disprover"`
	Card      string `json:"card"`
}

func (TurnStarted) Kind() string      { return "turn_started" }
func (DiceRolled) Kind() string       { return "dice_rolled" }
func (MoveMade) Kind() string         { return "move_made" }
func (TokenRelocated) Kind() string   { return "token_relocated" }
func (SuggestionMade) Kind() string   { return "suggestion_made" }
func (Passed) Kind() string           { return "passed" }
func (DisproveResult) Kind() string   { return "disprove_result" }
func (NoDisproof) Kind() string       { return "no_disproof" }
func (AccusationResult) Kind() string { return "accusation_result" }
func (TurnEnded) Kind() string        { return "turn_ended" }
func (GameOver) Kind() string         { return "game_over" }
func (HandDealt) Kind() string        { return "hand_dealt" }
func (CardShown) Kind() string        { return "card_shown" }
