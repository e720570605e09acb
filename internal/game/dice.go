package game

import (
	"golang.org/x/exp/rand"
)

// Roller throws two six-sided dice.
type Roller interface {
	Roll() [2]int
}

// RandomRoller draws from a seeded source.
type RandomRoller struct {
	rand *rand.Rand
}

func NewRandomRoller(seed uint64) *RandomRoller {
	return &RandomRoller{rand: rand.New(rand.NewSource(seed))}
}

func (r *RandomRoller) Roll() [2]int {
	return [2]int{r.rand.Intn(6) + 1, r.rand.Intn(6) + 1}
}

// FixedRoller replays a script of throws and then repeats the last one. Used by tests and
// by Resume.
type FixedRoller struct {
	throws [][2]int
	next   int
}

func NewFixedRoller(throws ...[2]int) *FixedRoller {
	return &FixedRoller{throws: throws}
}

func (f *FixedRoller) Roll() [2]int {
	if len(f.throws) == 0 {
		return [2]int{1, 1}
	}
	i := min(f.next, len(f.throws)-1)
	f.next++
	return f.throws[i]
}

// Roll is the result of RollDice.
type Roll struct {
	Dice      [2]int `json:"dice"`
	Total     int    `json:"total"`
	BonusClue bool   `json:"bonus_clue"`
}

func newRoll(dice [2]int) Roll {
	return Roll{Dice: dice, Total: dice[0] + dice[1], BonusClue: dice[0] == 1 || dice[1] == 1}
}
