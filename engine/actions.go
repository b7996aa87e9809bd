package engine

import (
	"fmt"
	"slices"
)

// BeginTurn advances the turn order and starts the next player's turn.
func (g *GameState) BeginTurn() (*Player, error) {
	if g.IsTerminal() {
		return nil, ErrGameOver
	}
	p := g.Cycle.Advance(true)
	g.turn = turnState{player: p}
	g.TurnNumber++
	return p, nil
}

// TurnDone reports whether the current player has played or passed.
func (g *GameState) TurnDone() bool { return g.turn.player != nil && g.turn.done }

// actor checks that name may act in the running turn.
func (g *GameState) actor(name string) (*Player, error) {
	if g.IsTerminal() {
		return nil, ErrGameOver
	}
	p := g.turn.player
	if p == nil {
		return nil, ErrNoTurn
	}
	if p.Name != name {
		return nil, ErrNotYourTurn
	}
	if g.turn.done {
		return nil, ErrTurnOver
	}
	return p, nil
}

// ApplyMove dispatches m for the named player. colors is consulted when m
// plays a wild card.
func (g *GameState) ApplyMove(name string, m Move, colors ColorChooser) error {
	switch m.Kind {
	case MovePlay:
		_, err := g.ApplyPlay(name, m.Card, colors)
		return err
	case MoveDraw:
		_, err := g.Draw(name)
		return err
	case MovePass:
		return g.Pass(name)
	default:
		return ErrInvalidMoveKind
	}
}

// Draw is the voluntary draw, allowed once per turn.
func (g *GameState) Draw(name string) (Card, error) {
	p, err := g.actor(name)
	if err != nil {
		return Card{}, err
	}
	if g.turn.draws > 0 {
		return Card{}, ErrDrawTwice
	}
	c, err := g.drawFor(p)
	if err != nil {
		return Card{}, err
	}
	g.turn.draws++
	g.turn.lastDrawn = c
	return c, nil
}

// Pass ends the turn without playing. The player must have drawn first.
func (g *GameState) Pass(name string) error {
	if _, err := g.actor(name); err != nil {
		return err
	}
	if g.turn.draws == 0 {
		return ErrPassBeforeDraw
	}
	g.turn.done = true
	return nil
}

// ApplyPlay moves c from the player's hand to the discard pile and resolves
// its action. It returns whether c was an action card.
func (g *GameState) ApplyPlay(name string, c Card, colors ColorChooser) (bool, error) {
	p, err := g.actor(name)
	if err != nil {
		return false, err
	}
	if !g.IsPlayable(c) {
		top, _ := g.Piles.Top()
		return false, fmt.Errorf("%w: can't play %s on %s", ErrUnplayable, c, top)
	}
	if !p.Hand.Remove(c) {
		return false, fmt.Errorf("%w: %s", ErrCardNotHeld, c)
	}
	g.Piles.Discard(c)
	g.turn.done = true

	if !c.IsAction() {
		return false, nil
	}
	g.Phase = PhaseResolvingAction
	if err := g.resolveAction(p, c, colors); err != nil {
		return true, err
	}
	g.Phase = PhaseAwaitingMove
	return true, nil
}

// resolveAction applies the effect of the action card just played by acting.
// The next player is looked up without consuming their turn.
func (g *GameState) resolveAction(acting *Player, c Card, colors ColorChooser) error {
	next := g.Cycle.Advance(false)

	switch c.Value {
	case ValueWild:
		color, err := g.bindWildColor(acting, colors)
		if err != nil {
			return err
		}
		g.notify.Push(fmt.Sprintf("Color acceptable on wild card: %s", color))

	case ValueWildDrawFour:
		if err := g.drawN(next, 4); err != nil {
			return err
		}
		color, err := g.bindWildColor(acting, colors)
		if err != nil {
			return err
		}
		g.notify.Push(fmt.Sprintf("4 cards added on %s's hand\nColor acceptable on wild card: %s", next.Name, color))

	case ValueDrawTwo:
		if err := g.drawN(next, 2); err != nil {
			return err
		}
		g.notify.Push(fmt.Sprintf("2 cards added on %s's hand", next.Name))

	case ValueSkip:
		skipped := g.Cycle.Advance(true)
		g.notify.Push(fmt.Sprintf("%s's turn is skipped.", skipped.Name))

	case ValueReverse:
		if err := g.reverse(acting); err != nil {
			return err
		}
		g.notify.Push("Player order reversed.")

	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, c)
	}
	return nil
}

// reverse rebuilds the cycle so play runs the other way from acting. The
// order [acting, upcoming...] is reversed, which leaves acting last and the
// player before acting first. With two players this keeps the same order.
func (g *GameState) reverse(acting *Player) error {
	upcoming := g.Cycle.Snapshot()
	order := make([]*Player, 0, len(upcoming))
	order = append(order, acting)
	order = append(order, upcoming[:len(upcoming)-1]...)
	slices.Reverse(order)

	cycle, err := g.Cycle.Rebuild(order)
	if err != nil {
		return err
	}
	g.Cycle = cycle
	return nil
}

func (g *GameState) bindWildColor(acting *Player, colors ColorChooser) (Color, error) {
	if colors == nil {
		return ColorColorless, ErrNoColor
	}
	color, err := colors.ChooseColor(g.View(acting.Name))
	if err != nil {
		return ColorColorless, err
	}
	if err := g.Piles.RebindTopColor(color); err != nil {
		return ColorColorless, err
	}
	return color, nil
}

// drawFor draws one card into p's hand and announces a recycle if one
// happened.
func (g *GameState) drawFor(p *Player) (Card, error) {
	before := g.Piles.Recycles
	c, err := g.Piles.Draw(&p.Hand)
	if g.Piles.Recycles != before {
		g.notify.Push("Discard pile shuffled back into the draw pile.")
	}
	return c, err
}

func (g *GameState) drawN(p *Player, n int) error {
	for i := 0; i < n; i++ {
		if _, err := g.drawFor(p); err != nil {
			return err
		}
	}
	return nil
}

// EndTurn runs the win check for the player whose turn just completed and
// returns the winner once the game is over.
func (g *GameState) EndTurn() (*Player, error) {
	p := g.turn.player
	if p == nil {
		return nil, ErrNoTurn
	}
	if !g.turn.done {
		return nil, ErrTurnNotOver
	}
	switch len(p.Hand) {
	case 1:
		g.notify.Push(fmt.Sprintf("%s: UNO", p.Name))
	case 0:
		g.notify.Push(fmt.Sprintf("%s: UNO-finish", p.Name))
		g.Phase = PhaseFinished
		g.winner = p
	}
	g.turn = turnState{}
	return g.winner, nil
}
