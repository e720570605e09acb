package agent

import (
	"sort"

	"clue-detective/internal/config"
)

// SuggestionStrategy picks the suspect and weapon of a suggestion. The room is wherever the
// agent stands.
type SuggestionStrategy interface {
	BuildSuggestion(a *Agent, room string) (suspect, weapon string, ok bool)
}

// ExploitStrategy names the envelope card of a solved category so that every answer
// speaks about the other one.
type ExploitStrategy struct{}

func (s *ExploitStrategy) BuildSuggestion(a *Agent, room string) (string, string, bool) {
	possible := a.notes.Possible()
	suspects, weapons := possible[config.CategorySuspect], possible[config.CategoryWeapon]
	switch {
	case len(suspects) == 1 && len(weapons) > 1:
		a.log.Infof("Strategy: EXPLOIT. The suspect is %s.", suspects[0])
		return suspects[0], a.pickUnknownCard(config.CategoryWeapon), true
	case len(weapons) == 1 && len(suspects) > 1:
		a.log.Infof("Strategy: EXPLOIT. The weapon is the %s.", weapons[0])
		return a.pickUnknownCard(config.CategorySuspect), weapons[0], true
	}
	return "", "", false
}

// SurgicalStrikeStrategy targets the card that appears most often in open disproofs and pads
// the other category with a card of the agent's own.
type SurgicalStrikeStrategy struct{}

func (s *SurgicalStrikeStrategy) BuildSuggestion(a *Agent, room string) (string, string, bool) {
	cardFrequency := make(map[string]int)
	for _, c := range a.notes.Constraints() {
		for _, card := range c.Cards {
			if a.config.IsCategory(card, config.CategoryRoom) || a.notes.IsResolved(card) {
				continue
			}
			cardFrequency[card]++
		}
	}
	if len(cardFrequency) == 0 {
		return "", "", false
	}

	sortedTargets := sortByValue(cardFrequency)
	var patientTargets []string
	for _, card := range sortedTargets {
		if !a.recentSurgicalTargets.Contains(card) {
			patientTargets = append(patientTargets, card)
		}
	}
	if len(patientTargets) == 0 {
		patientTargets = sortedTargets
	}
	var top []string
	for _, card := range patientTargets {
		if cardFrequency[card] == cardFrequency[patientTargets[0]] {
			top = append(top, card)
		}
	}
	targetCard := a.chooser.Choose(top)
	a.log.Infof("Strategy: SURGICAL STRIKE. Targeting '%s'.", targetCard)
	a.recentSurgicalTargets.Push(targetCard)

	if a.config.IsCategory(targetCard, config.CategorySuspect) {
		return targetCard, a.padCard(config.CategoryWeapon), true
	}
	return a.padCard(config.CategorySuspect), targetCard, true
}

// ExploreStrategy names cards nobody has been placed with yet.
type ExploreStrategy struct{}

func (s *ExploreStrategy) BuildSuggestion(a *Agent, room string) (string, string, bool) {
	a.log.Infof("Strategy: EXPLORE. Gathering new information.")
	suspect, weapon := s.mustBuild(a)
	return suspect, weapon, true
}

func (s *ExploreStrategy) mustBuild(a *Agent) (string, string) {
	return a.pickUnknownCard(config.CategorySuspect), a.pickUnknownCard(config.CategoryWeapon)
}

// --- Strategy Helpers ---

func (a *Agent) pickUnknownCard(cat config.CardCategory) string {
	if maybes := a.notes.Possible()[cat]; len(maybes) > 0 {
		return maybes[a.rand.Intn(len(maybes))]
	}
	var notMyCards []string
	for _, card := range a.config.CardListForCategory(cat) {
		if _, inHand := a.hand[card]; !inHand {
			notMyCards = append(notMyCards, card)
		}
	}
	if len(notMyCards) > 0 {
		return a.chooser.Choose(notMyCards)
	}
	return a.chooser.Choose(a.config.CardListForCategory(cat))
}

// padCard prefers an own card, which nobody else can show.
func (a *Agent) padCard(cat config.CardCategory) string {
	if own := a.ownCards(cat); len(own) > 0 {
		return a.chooser.Choose(own)
	}
	return a.pickUnknownCard(cat)
}

// --- Utility Types and Functions ---

// StringDeque keeps the last maxSize strings pushed.
type StringDeque struct {
	elements []string
	maxSize  int
}

func NewStringDeque(maxSize int) *StringDeque {
	return &StringDeque{maxSize: maxSize}
}

func (d *StringDeque) Push(s string) {
	d.elements = append(d.elements, s)
	if len(d.elements) > d.maxSize {
		d.elements = d.elements[1:]
	}
}

func (d *StringDeque) Clone() *StringDeque {
	return &StringDeque{elements: append([]string(nil), d.elements...), maxSize: d.maxSize}
}

func (d *StringDeque) Contains(s string) bool {
	for _, e := range d.elements {
		if e == s {
			return true
		}
	}
	return false
}

// sortByValue orders keys by descending value, then by name.
func sortByValue(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
