// Package engine implements the UNO rules: the 108-card deck, the draw and
// discard piles, the circular turn order and action-card resolution.
//
// The engine is single-threaded. Callers drive it one turn at a time with
// BeginTurn, then Draw / Pass / ApplyPlay, then EndTurn.
package engine

import (
	"fmt"
	"math/rand/v2"
)

// DeckSize is the number of cards in a full deck. Cards are only ever moved
// between hands and piles, so the total never changes.
const DeckSize = 108

// Phase is the state of the game state machine.
type Phase uint8

const (
	PhaseAwaitingMove    Phase = iota // a turn is running or about to start
	PhaseResolvingAction              // an accepted action card is being resolved
	PhaseFinished                     // a player emptied their hand
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingMove:
		return "awaiting_move"
	case PhaseResolvingAction:
		return "resolving_action"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Player is a named participant and their hand.
type Player struct {
	Name string
	Hand Hand
}

// turnState tracks what the current player has done this turn.
type turnState struct {
	player    *Player
	draws     int
	lastDrawn Card
	done      bool
}

// GameState holds the complete state of one game.
type GameState struct {
	Players    map[string]*Player
	Seating    []string // seating order fixed at deal time
	Cycle      Cycle[*Player]
	Piles      *Piles
	Phase      Phase
	TurnNumber int

	turn   turnState
	winner *Player
	rng    *rand.Rand
	notify Notifier
}

// BuildDeck returns the 108-card deck in a fixed order: four WILD and four
// WILD_DRAW_FOUR, then for each color one 0 and two each of 1-9, +2, skip and
// reverse. Shuffling is left to the caller.
func BuildDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{Color: ColorColorless, Value: ValueWild})
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{Color: ColorColorless, Value: ValueWildDrawFour})
	}
	for _, color := range RealColors {
		for v := ValueZero; v <= ValueReverse; v++ {
			deck = append(deck, Card{Color: color, Value: v})
			if v != ValueZero {
				deck = append(deck, Card{Color: color, Value: v})
			}
		}
	}
	return deck
}

// NewGame validates the player names, shuffles and deals. The discard pile
// starts empty so the first play of the game is unrestricted.
func NewGame(names []string, opts Options) (*GameState, error) {
	if len(names) < MinPlayers || len(names) > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d, want %d-%d", ErrPlayerCount, len(names), MinPlayers, MaxPlayers)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return nil, ErrEmptyName
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, n)
		}
		seen[n] = true
	}
	handSize := opts.handSize()
	if handSize < 1 || handSize > MaxHandSize {
		return nil, fmt.Errorf("hand size %d out of range 1-%d", handSize, MaxHandSize)
	}

	rng := opts.Rand
	if rng == nil {
		rng = NewRand(0)
	}
	notify := opts.Notifier
	if notify == nil {
		notify = nopNotifier{}
	}

	deck := BuildDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	seating := append([]string(nil), names...)
	if opts.ShuffleSeating {
		rng.Shuffle(len(seating), func(i, j int) { seating[i], seating[j] = seating[j], seating[i] })
	}

	g := &GameState{
		Players: make(map[string]*Player, len(seating)),
		Seating: seating,
		rng:     rng,
		notify:  notify,
	}
	order := make([]*Player, len(seating))
	for i, name := range seating {
		hand := make(Hand, handSize)
		copy(hand, deck[i*handSize:(i+1)*handSize])
		p := &Player{Name: name, Hand: hand}
		g.Players[name] = p
		order[i] = p
	}
	g.Piles = NewPiles(deck[len(seating)*handSize:], rng)

	cycle, err := NewCycle(order)
	if err != nil {
		return nil, err
	}
	g.Cycle = cycle
	g.Phase = PhaseAwaitingMove
	return g, nil
}

// IsTerminal returns true once a player has won.
func (g *GameState) IsTerminal() bool { return g.Phase == PhaseFinished }

// Winner returns the winning player, or nil while the game is running.
func (g *GameState) Winner() *Player { return g.winner }

// Player returns the named player, or nil.
func (g *GameState) Player(name string) *Player { return g.Players[name] }

// CurrentPlayer returns the player whose turn is in progress, or nil.
func (g *GameState) CurrentPlayer() *Player { return g.turn.player }

// Rand exposes the game's random source so collaborators can share it.
func (g *GameState) Rand() *rand.Rand { return g.rng }

// Order returns the names in upcoming play order.
func (g *GameState) Order() []string {
	snap := g.Cycle.Snapshot()
	names := make([]string, len(snap))
	for i, p := range snap {
		names[i] = p.Name
	}
	return names
}

// HandSizes returns each player's hand size keyed by name.
func (g *GameState) HandSizes() map[string]int {
	out := make(map[string]int, len(g.Players))
	for name, p := range g.Players {
		out[name] = len(p.Hand)
	}
	return out
}

// HandLen returns the number of cards in the named player's hand.
func (g *GameState) HandLen(name string) int {
	if p := g.Players[name]; p != nil {
		return len(p.Hand)
	}
	return 0
}

// CardCount returns the number of cards across both piles and every hand.
// It equals DeckSize in every reachable state.
func (g *GameState) CardCount() int {
	n := g.Piles.Size()
	for _, p := range g.Players {
		n += len(p.Hand)
	}
	return n
}

// View builds the observable state for the named player.
func (g *GameState) View(name string) View {
	v := View{
		Player:      name,
		Order:       g.Order(),
		HandSizes:   g.HandSizes(),
		DrawPile:    len(g.Piles.DrawPile),
		DiscardPile: len(g.Piles.DiscardPile),
		Turn:        g.TurnNumber,
	}
	if p := g.Players[name]; p != nil {
		v.Hand = p.Hand.Clone()
	}
	v.Top, v.HasTop = g.Piles.Top()
	if g.turn.player != nil && g.turn.player.Name == name {
		v.Drawn = g.turn.draws > 0
		v.LastDrawn = g.turn.lastDrawn
	}
	return v
}
