package player

import (
	"sort"

	"golang.org/x/exp/rand"
)

// Chooser defines an interface for selecting a single card from a list of options, such as
// the card to reveal when several match a suggestion.
type Chooser interface {
	Choose(cards []string) string
}

// RandomChooser implements the Chooser interface by picking an element randomly.
type RandomChooser struct {
	rand *rand.Rand
}

// NewRandomChooser creates a new random chooser.
func NewRandomChooser(rand *rand.Rand) *RandomChooser {
	return &RandomChooser{rand: rand}
}

func (r *RandomChooser) Choose(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	return cards[r.rand.Intn(len(cards))]
}

// DeterministicChooser always picks the first card alphabetically. This is used for
// predictable testing.
type DeterministicChooser struct{}

func (d *DeterministicChooser) Choose(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	sorted := append([]string(nil), cards...)
	sort.Strings(sorted)
	return sorted[0]
}
