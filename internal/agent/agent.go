// Package agent is a scripted player that decides from its own notebook. It drives the
// simulate command and end-to-end tests through the game's command surface only.
package agent

import (
	"sort"

	"clue-detective/internal/board"
	"clue-detective/internal/config"
	"clue-detective/internal/game"
	"clue-detective/internal/player"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

// Agent plays one seat.
type Agent struct {
	name                  string
	config                *config.GameConfig
	board                 *board.Board
	hand                  map[string]struct{}
	notes                 game.NotebookView
	strategies            []SuggestionStrategy
	recentSurgicalTargets *StringDeque
	shown                 map[string]map[string]bool // suggester -> cards already shown to them
	log                   logrus.FieldLogger
	chooser               player.Chooser
	rand                  *rand.Rand
}

// New is the constructor for the agent playing name in g. It injects dependencies.
func New(g *game.Game, name string, logger logrus.FieldLogger, rand *rand.Rand, chooser player.Chooser) (*Agent, error) {
	p, err := g.Player(name)
	if err != nil {
		return nil, err
	}
	notes, err := g.Notebook(name)
	if err != nil {
		return nil, err
	}
	a := &Agent{
		name:                  name,
		config:                g.Config(),
		board:                 g.Board(),
		hand:                  make(map[string]struct{}),
		notes:                 notes,
		recentSurgicalTargets: NewStringDeque(3),
		shown:                 make(map[string]map[string]bool),
		log:                   logger.WithField("agent", name),
		chooser:               chooser,
		rand:                  rand,
	}
	for _, c := range p.Hand {
		a.hand[c] = struct{}{}
	}
	a.strategies = []SuggestionStrategy{
		&ExploitStrategy{},
		&SurgicalStrikeStrategy{},
		&ExploreStrategy{},
	}
	return a, nil
}

func (a *Agent) Name() string { return a.name }

// ChooseCardToShow picks the card to reveal. A card this suggester has already seen costs
// nothing, so it is preferred.
func (a *Agent) ChooseCardToShow(suggester string, options []string) string {
	var seen []string
	for _, c := range options {
		if a.shown[suggester][c] {
			seen = append(seen, c)
		}
	}
	card := a.chooser.Choose(seen)
	if card == "" {
		card = a.chooser.Choose(options)
	}
	if a.shown[suggester] == nil {
		a.shown[suggester] = make(map[string]bool)
	}
	a.shown[suggester][card] = true
	return card
}

// MakeSuggestion returns the suspect and weapon to name in room.
func (a *Agent) MakeSuggestion(room string) (string, string) {
	a.log.Debugf("Formulating a suggestion in the %s...", room)
	for _, s := range a.strategies {
		if suspect, weapon, ok := s.BuildSuggestion(a, room); ok {
			return suspect, weapon
		}
	}
	return (&ExploreStrategy{}).mustBuild(a)
}

// PreviewSuggestion answers like MakeSuggestion but leaves the agent untouched: recent
// targets are not pushed and choices are deterministic, so repeated previews agree.
func (a *Agent) PreviewSuggestion(room string) (string, string) {
	preview := *a
	preview.recentSurgicalTargets = a.recentSurgicalTargets.Clone()
	preview.chooser = &player.DeterministicChooser{}
	preview.rand = rand.New(rand.NewSource(0))
	return preview.MakeSuggestion(room)
}

// ShouldAccuse returns the accusation once the notebook has pinned the envelope down.
func (a *Agent) ShouldAccuse() (suspect, weapon, room string, ok bool) {
	sol, ok := a.notes.RecommendedAccusation()
	if !ok {
		return "", "", "", false
	}
	a.log.Infof("Notebook points at %s with the %s in the %s.", sol.Suspect, sol.Weapon, sol.Room)
	return sol.Suspect, sol.Weapon, sol.Room, true
}

// wantsRoom reports whether a suggestion in room could still teach something about it.
func (a *Agent) wantsRoom(room string) bool {
	return !a.notes.IsResolved(room)
}

func (a *Agent) targetRooms(exclude string) []string {
	var want, any []string
	for _, r := range a.board.Rooms() {
		if r == exclude {
			continue
		}
		any = append(any, r)
		if a.wantsRoom(r) {
			want = append(want, r)
		}
	}
	if len(want) == 0 {
		return any
	}
	return want
}

// ChooseDestination picks among legal moves: a wanted room if one is in reach, otherwise
// the corridor square closest to one.
func (a *Agent) ChooseDestination(from board.Position, moves []board.Position) (board.Position, bool) {
	if len(moves) == 0 {
		return board.Position{}, false
	}
	targets := a.targetRooms(from.Room)
	var rooms []string
	for _, m := range moves {
		if m.IsRoom() && contains(targets, m.Room) {
			rooms = append(rooms, m.Room)
		}
	}
	if len(rooms) > 0 {
		return board.InRoom(a.chooser.Choose(rooms)), true
	}

	best, bestDist := board.Position{}, -1
	for _, target := range targets {
		dist := a.board.Reachable(board.InRoom(target), len(a.board.Layout())*len(a.board.Layout()[0]), nil)
		for _, m := range moves {
			if m.IsRoom() {
				continue
			}
			if d, ok := dist[m]; ok && (bestDist < 0 || d < bestDist) {
				best, bestDist = m, d
			}
		}
	}
	if bestDist < 0 {
		return moves[0], true
	}
	return best, true
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func (a *Agent) ownCards(cat config.CardCategory) []string {
	var out []string
	for c := range a.hand {
		if a.config.IsCategory(c, cat) {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
