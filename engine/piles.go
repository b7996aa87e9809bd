package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Piles holds the draw pile and the discard pile. The last discard is the
// active card.
type Piles struct {
	DrawPile    []Card
	DiscardPile []Card

	// Recycles counts how many times the discard pile was shuffled back.
	Recycles int

	rng *rand.Rand
}

// NewPiles builds piles with the given draw pile and an empty discard pile.
func NewPiles(draw []Card, rng *rand.Rand) *Piles {
	return &Piles{DrawPile: slices.Clone(draw), rng: rng}
}

// Draw removes the front card of the draw pile and appends it to hand,
// recycling the discard pile first if the draw pile is empty.
func (p *Piles) Draw(hand *Hand) (Card, error) {
	if len(p.DrawPile) == 0 {
		p.recycle()
	}
	if len(p.DrawPile) == 0 {
		return Card{}, fmt.Errorf("%w: discard pile holds %d card(s)", ErrPileExhausted, len(p.DiscardPile))
	}
	c := p.DrawPile[0]
	p.DrawPile = slices.Delete(p.DrawPile, 0, 1)
	*hand = append(*hand, c)
	return c, nil
}

// recycle moves every discard except the active card into the draw pile and
// shuffles it. Wilds lose their bound color on the way back.
func (p *Piles) recycle() {
	n := len(p.DiscardPile)
	if n <= 1 {
		return
	}
	top := p.DiscardPile[n-1]
	rest := slices.Clone(p.DiscardPile[:n-1])
	for i := range rest {
		if rest[i].IsWild() {
			rest[i].Color = ColorColorless
		}
	}
	p.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	p.DrawPile = rest
	p.DiscardPile = []Card{top}
	p.Recycles++
}

// Top returns the active card, or false at the start of the game.
func (p *Piles) Top() (Card, bool) {
	if len(p.DiscardPile) == 0 {
		return Card{}, false
	}
	return p.DiscardPile[len(p.DiscardPile)-1], true
}

// Discard places c on top of the discard pile.
func (p *Piles) Discard(c Card) { p.DiscardPile = append(p.DiscardPile, c) }

// RebindTopColor binds an unassigned wild on top of the discard pile to color.
func (p *Piles) RebindTopColor(color Color) error {
	top, ok := p.Top()
	if !ok {
		return fmt.Errorf("rebind color: discard pile is empty")
	}
	if top.Color != ColorColorless {
		return fmt.Errorf("rebind color: active card %s already has a color", top)
	}
	if !color.IsReal() {
		return fmt.Errorf("rebind color: %s is not a playable color", color)
	}
	p.DiscardPile[len(p.DiscardPile)-1].Color = color
	return nil
}

// Size returns the number of cards in both piles.
func (p *Piles) Size() int { return len(p.DrawPile) + len(p.DiscardPile) }
