package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Construction errors, fatal to game creation.
var (
	ErrPlayerCount     = errors.New("player count out of range")
	ErrDuplicatePlayer = errors.New("duplicate player")
	ErrEmptyName       = errors.New("empty player name")
)

// ErrIllegalMove marks a rejected play, draw or pass. The turn is re-prompted
// and the state is left untouched.
var ErrIllegalMove = errors.New("illegal move")

// Specific rejections. Each wraps ErrIllegalMove.
var (
	ErrNotYourTurn     = fmt.Errorf("%w: not your turn", ErrIllegalMove)
	ErrNoTurn          = fmt.Errorf("%w: no turn in progress", ErrIllegalMove)
	ErrTurnOver        = fmt.Errorf("%w: turn already ended", ErrIllegalMove)
	ErrTurnNotOver     = fmt.Errorf("%w: play a card or pass first", ErrIllegalMove)
	ErrPassBeforeDraw  = fmt.Errorf("%w: can't pass without drawing at least once", ErrIllegalMove)
	ErrDrawTwice       = fmt.Errorf("%w: can't draw twice in the same turn, either pass or play a valid card", ErrIllegalMove)
	ErrUnplayable      = fmt.Errorf("%w: card does not match the active card", ErrIllegalMove)
	ErrCardNotHeld     = fmt.Errorf("%w: card not in hand", ErrIllegalMove)
	ErrInvalidMoveKind = fmt.Errorf("%w: unknown move", ErrIllegalMove)
)

// Parsing errors for malformed external input.
var (
	ErrInvalidCardFormat = errors.New("invalid card format")
	ErrInvalidIndex      = errors.New("invalid index")
)

// Internal invariant violations. These indicate a bug and end the game.
var (
	ErrPileExhausted = errors.New("draw pile exhausted after recycle")
	ErrUnknownAction = errors.New("unknown action card")
	ErrGameOver      = errors.New("game is already over")
	ErrNoColor       = errors.New("wild card needs a color chooser")
)

// IsRecoverable reports whether err should re-prompt the player rather than
// end the game.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrIllegalMove) ||
		errors.Is(err, ErrInvalidCardFormat) ||
		errors.Is(err, ErrInvalidIndex)
}

// Reason returns the player-facing part of a rejection error.
func Reason(err error) string {
	msg := err.Error()
	for _, base := range []error{ErrIllegalMove, ErrInvalidIndex, ErrInvalidCardFormat} {
		if errors.Is(err, base) {
			return strings.TrimPrefix(msg, base.Error()+": ")
		}
	}
	return msg
}

// GameplayError is a fatal error leaving the turn loop, annotated with
// enough state to reconstruct what went wrong.
type GameplayError struct {
	Player      string
	Card        *Card
	Turn        int
	DrawPile    int
	DiscardPile int
	HandSizes   map[string]int
	Err         error
}

func (e *GameplayError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gameplay error on turn %d", e.Turn)
	if e.Player != "" {
		fmt.Fprintf(&b, " (player %s", e.Player)
		if e.Card != nil {
			fmt.Fprintf(&b, ", card %s", e.Card)
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " [draw=%d discard=%d]: %v", e.DrawPile, e.DiscardPile, e.Err)
	return b.String()
}

func (e *GameplayError) Unwrap() error { return e.Err }

// Diagnose wraps err with the current game state. An error that is already a
// GameplayError is returned unchanged.
func (g *GameState) Diagnose(err error, player string, card *Card) error {
	if err == nil {
		return nil
	}
	var ge *GameplayError
	if errors.As(err, &ge) {
		return err
	}
	return &GameplayError{
		Player:      player,
		Card:        card,
		Turn:        g.TurnNumber,
		DrawPile:    len(g.Piles.DrawPile),
		DiscardPile: len(g.Piles.DiscardPile),
		HandSizes:   g.HandSizes(),
		Err:         err,
	}
}
