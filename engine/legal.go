package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Playable reports whether c may be played on top. With no active card any
// card is playable. Otherwise the color or value must match, and a wild is
// always playable since it rebinds the active color.
func Playable(top Card, hasTop bool, c Card) bool {
	if !hasTop {
		return true
	}
	return c.Color == top.Color || c.Value == top.Value || c.Value.IsWild()
}

// IsPlayable reports whether c may be played on the current active card.
func (g *GameState) IsPlayable(c Card) bool {
	top, ok := g.Piles.Top()
	return Playable(top, ok, c)
}

// PlayableCards returns the cards of hand that could be played now, in hand
// order.
func (g *GameState) PlayableCards(hand Hand) []Card {
	var out []Card
	for _, c := range hand {
		if g.IsPlayable(c) {
			out = append(out, c)
		}
	}
	return out
}

// LegalMoves lists the moves the current player may make right now.
func (g *GameState) LegalMoves() []Move {
	t := g.turn
	if t.player == nil || t.done || g.IsTerminal() {
		return nil
	}
	var moves []Move
	for _, c := range g.PlayableCards(t.player.Hand) {
		moves = append(moves, PlayMove(c))
	}
	if t.draws == 0 {
		moves = append(moves, DrawMove())
	} else {
		moves = append(moves, PassMove())
	}
	return moves
}

// ParseIndex converts a 1-based position typed by a player into a 0-based
// index into a list of n items.
func ParseIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidIndex, s)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("%w: %d is outside 1-%d", ErrInvalidIndex, i, n)
	}
	return i - 1, nil
}
