// Package deck deals the hidden solution and the player hands from a card catalog.
package deck

import (
	"errors"
	"fmt"
	"sort"

	"clue-detective/internal/config"

	"golang.org/x/exp/rand"
)

// Solution is one card per category.
type Solution struct {
	Suspect string `json:"suspect"`
	Weapon  string `json:"weapon"`
	Room    string `json:"room"`
}

// Cards returns the solution in category order.
func (s Solution) Cards() []string { return []string{s.Suspect, s.Weapon, s.Room} }

// Envelope holds the sealed solution. Only the game compares against it.
type Envelope struct {
	solution Solution
}

// Seal wraps a known solution, for scripted games.
func Seal(s Solution) *Envelope { return &Envelope{solution: s} }

// Matches reports whether an accusation names exactly the sealed cards.
func (e *Envelope) Matches(suspect, weapon, room string) bool {
	return e.solution == Solution{Suspect: suspect, Weapon: weapon, Room: room}
}

// Contains reports whether card is one of the sealed cards.
func (e *Envelope) Contains(card string) bool {
	for _, c := range e.solution.Cards() {
		if c == card {
			return true
		}
	}
	return false
}

// Reveal opens the envelope. It is meant for the end-of-game report and snapshots.
func (e *Envelope) Reveal() Solution { return e.solution }

// Deal is the result of dealing a catalog to a table.
type Deal struct {
	Envelope *Envelope
	Hands    [][]string
}

// HandSizes returns the number of cards dealt to each seat.
func (d *Deal) HandSizes() []int {
	sizes := make([]int, len(d.Hands))
	for i, h := range d.Hands {
		sizes[i] = len(h)
	}
	return sizes
}

// New deals cfg to playerCount seats. The same seed always yields the same deal.
func New(cfg *config.GameConfig, playerCount int, seed uint64) (*Deal, error) {
	if playerCount < 1 {
		return nil, errors.New("deck: at least one player is required")
	}
	rng := rand.New(rand.NewSource(seed))

	pick := func(cat config.CardCategory) string {
		cards := cfg.CardListForCategory(cat)
		return cards[rng.Intn(len(cards))]
	}
	solution := Solution{
		Suspect: pick(config.CategorySuspect),
		Weapon:  pick(config.CategoryWeapon),
		Room:    pick(config.CategoryRoom),
	}

	var rest []string
	for _, card := range cfg.AllCards {
		if card != solution.Suspect && card != solution.Weapon && card != solution.Room {
			rest = append(rest, card)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	hands := make([][]string, playerCount)
	for i, card := range rest {
		seat := i % playerCount
		hands[seat] = append(hands[seat], card)
	}
	for _, h := range hands {
		sort.Strings(h)
	}
	return &Deal{Envelope: Seal(solution), Hands: hands}, nil
}

// Fixed builds a deal from explicit hands, checking that hands and solution partition the
// catalog and that hand sizes differ by at most one.
func Fixed(cfg *config.GameConfig, solution Solution, hands [][]string) (*Deal, error) {
	for _, cat := range config.Categories {
		card := solution.Cards()[cat]
		if !cfg.IsCategory(card, cat) {
			return nil, fmt.Errorf("deck: %q is not one of the %s", card, cat)
		}
	}
	seen := make(map[string]bool)
	for _, c := range solution.Cards() {
		seen[c] = true
	}
	minSize, maxSize := len(cfg.AllCards), 0
	for seat, hand := range hands {
		for _, c := range hand {
			if _, ok := cfg.CardToType[c]; !ok {
				return nil, fmt.Errorf("deck: unknown card %q in hand %d", c, seat)
			}
			if seen[c] {
				return nil, fmt.Errorf("deck: card %q dealt twice", c)
			}
			seen[c] = true
		}
		minSize = min(minSize, len(hand))
		maxSize = max(maxSize, len(hand))
	}
	if len(seen) != len(cfg.AllCards) {
		return nil, fmt.Errorf("deck: %d of %d cards dealt", len(seen), len(cfg.AllCards))
	}
	if maxSize-minSize > 1 {
		return nil, errors.New("deck: hand sizes differ by more than one")
	}
	cp := make([][]string, len(hands))
	for i, h := range hands {
		cp[i] = append([]string(nil), h...)
		sort.Strings(cp[i])
	}
	return &Deal{Envelope: Seal(solution), Hands: cp}, nil
}
