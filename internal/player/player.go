package player

import (
	"sort"

	"clue-detective/internal/board"
)

// State is one seated player as the game sees it.
type State struct {
	Name     string         `json:"name"`
	Seat     int            `json:"seat"`
	Hand     []string       `json:"hand"`
	Position board.Position `json:"position"`
	Active   bool           `json:"active"`
	// Epochs counts entries into each room; SuggestedIn stores the epoch of the last
	// suggestion made there.
	Epochs      map[string]int `json:"epochs"`
	SuggestedIn map[string]int `json:"suggested_in"`
}

// New seats a player at start with a sorted copy of hand.
func New(name string, seat int, hand []string, start board.Position) *State {
	h := append([]string(nil), hand...)
	sort.Strings(h)
	return &State{
		Name:        name,
		Seat:        seat,
		Hand:        h,
		Position:    start,
		Active:      true,
		Epochs:      make(map[string]int),
		SuggestedIn: make(map[string]int),
	}
}

// Holds reports whether card is in the hand.
func (p *State) Holds(card string) bool {
	for _, c := range p.Hand {
		if c == card {
			return true
		}
	}
	return false
}

// Matching returns the suggested cards found in the hand.
func (p *State) Matching(cards [3]string) []string {
	var out []string
	for _, c := range cards {
		if p.Holds(c) {
			out = append(out, c)
		}
	}
	return out
}

// MoveTo places the token. Arriving in a room, by any means, opens a new occupancy epoch.
func (p *State) MoveTo(pos board.Position) {
	p.Position = pos
	if pos.IsRoom() {
		p.Epochs[pos.Room]++
	}
}

// CanSuggest reports whether the current stay in the player's room is still unused.
func (p *State) CanSuggest() bool {
	if !p.Position.IsRoom() {
		return false
	}
	room := p.Position.Room
	return p.Epochs[room] > 0 && p.SuggestedIn[room] != p.Epochs[room]
}

// MarkSuggested spends the current occupancy epoch.
func (p *State) MarkSuggested() {
	if p.Position.IsRoom() {
		p.SuggestedIn[p.Position.Room] = p.Epochs[p.Position.Room]
	}
}

// Eliminate removes the player from play. It cannot be undone.
func (p *State) Eliminate() { p.Active = false }

// Clone returns a deep copy.
func (p *State) Clone() *State {
	cp := *p
	cp.Hand = append([]string(nil), p.Hand...)
	cp.Epochs = make(map[string]int, len(p.Epochs))
	for k, v := range p.Epochs {
		cp.Epochs[k] = v
	}
	cp.SuggestedIn = make(map[string]int, len(p.SuggestedIn))
	for k, v := range p.SuggestedIn {
		cp.SuggestedIn[k] = v
	}
	return &cp
}
