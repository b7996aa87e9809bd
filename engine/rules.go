package engine

import (
	"math/rand/v2"
	"time"
)

const (
	MinPlayers      = 2
	MaxPlayers      = 10
	DefaultHandSize = 7
	MaxHandSize     = DeckSize / MaxPlayers
)

// Options holds the configurable parts of a game.
type Options struct {
	HandSize       int        // cards dealt to each player; 0 means DefaultHandSize
	ShuffleSeating bool       // shuffle the seating order once before dealing
	Rand           *rand.Rand // nil means time-seeded
	Notifier       Notifier   // receives effect descriptions; nil drops them
}

// DefaultOptions returns the standard rules: seven cards each, seats shuffled.
func DefaultOptions() Options {
	return Options{
		HandSize:       DefaultHandSize,
		ShuffleSeating: true,
	}
}

// NewRand returns a PCG-backed generator. Seed 0 picks a time-based seed.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (o *Options) handSize() int {
	if o.HandSize == 0 {
		return DefaultHandSize
	}
	return o.HandSize
}
