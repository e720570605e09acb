package game

import (
	"errors"
	"strings"

	"clue-detective/internal/notebook"
)

// Rejections. Every command that fails leaves the game untouched and wraps one of these.
var (
	ErrIllegalMove          = errors.New("illegal move")
	ErrNotInRoom            = errors.New("not in a room")
	ErrRepeatedSuggestion   = errors.New("already suggested during this stay")
	ErrAlreadyAccused       = errors.New("already accused this turn")
	ErrOutOfTurn            = errors.New("out of turn")
	ErrInvalidCardReference = errors.New("invalid card reference")
	ErrGameOver             = errors.New("game is over")
	ErrEliminated           = errors.New("player is eliminated")
	ErrAccusationBlocked    = errors.New("accusation contradicts the notebook")
	ErrAwaitingDisproof     = errors.New("waiting for a disproof")
)

// WarningError is returned by Suggest when the notebook judges the suggestion useless.
// Retrying with SuggestOptions.Force makes it anyway.
type WarningError struct {
	Player     string
	Validation notebook.Validation
}

func (e *WarningError) Error() string {
	return "suggestion by " + e.Player + " is wasted: " + strings.Join(e.Validation.Reasons, "; ")
}
