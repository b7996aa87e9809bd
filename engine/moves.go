package engine

import "fmt"

// MoveKind is the kind of choice a player makes within a turn.
type MoveKind uint8

const (
	MovePlay MoveKind = iota
	MoveDraw
	MovePass
)

func (k MoveKind) String() string {
	switch k {
	case MovePlay:
		return "play"
	case MoveDraw:
		return "draw"
	case MovePass:
		return "pass"
	default:
		return fmt.Sprintf("MoveKind(%d)", uint8(k))
	}
}

// Move is one choice within a turn. Card is only meaningful for MovePlay.
type Move struct {
	Kind MoveKind
	Card Card
}

func (m Move) String() string {
	if m.Kind == MovePlay {
		return "play " + m.Card.String()
	}
	return m.Kind.String()
}

// PlayMove plays c from the hand.
func PlayMove(c Card) Move { return Move{Kind: MovePlay, Card: c} }

// DrawMove draws one card from the draw pile.
func DrawMove() Move { return Move{Kind: MoveDraw} }

// PassMove ends the turn without playing.
func PassMove() Move { return Move{Kind: MovePass} }

// View is what a player can observe when asked for a move.
type View struct {
	Player      string
	Hand        Hand
	Top         Card
	HasTop      bool
	Drawn       bool // the player already drew this turn
	LastDrawn   Card
	Order       []string // upcoming play order, starting after the current player
	HandSizes   map[string]int
	DrawPile    int
	DiscardPile int
	Turn        int
}

// Playable reports whether c may be played on the active card of this view.
func (v View) Playable(c Card) bool { return Playable(v.Top, v.HasTop, c) }

// ColorChooser picks the color a freshly played wild card binds to.
type ColorChooser interface {
	ChooseColor(v View) (Color, error)
}

// Mover supplies moves for one player.
type Mover interface {
	ColorChooser
	// ChooseMove returns the next move for v.Player.
	ChooseMove(v View) (Move, error)
	// Reject is told why the last move was refused. A non-nil return aborts
	// the game.
	Reject(v View, err error) error
}

// Notifier receives human-readable effect descriptions.
type Notifier interface {
	Push(text string)
}

type nopNotifier struct{}

func (nopNotifier) Push(string) {}
