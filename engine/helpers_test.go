package engine

import (
	"strings"
	"testing"
)

// recorder collects notifications pushed by the engine.
type recorder struct {
	msgs []string
}

func (r *recorder) Push(text string) { r.msgs = append(r.msgs, text) }

func (r *recorder) last() string {
	if len(r.msgs) == 0 {
		return ""
	}
	return r.msgs[len(r.msgs)-1]
}

func (r *recorder) contains(sub string) bool {
	for _, m := range r.msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

// fixedColor always picks the same wild color.
type fixedColor Color

func (f fixedColor) ChooseColor(View) (Color, error) { return Color(f), nil }

// newTestGame deals a seeded game with seats in the given order.
func newTestGame(t *testing.T, names ...string) (*GameState, *recorder) {
	t.Helper()
	rec := &recorder{}
	g, err := NewGame(names, Options{Rand: NewRand(7), Notifier: rec})
	if err != nil {
		t.Fatalf("NewGame(%v): %v", names, err)
	}
	return g, rec
}

// beginTurn starts the next turn and checks whose it is.
func beginTurn(t *testing.T, g *GameState, want string) *Player {
	t.Helper()
	p, err := g.BeginTurn()
	if err != nil {
		t.Fatalf("BeginTurn: %v", err)
	}
	if p.Name != want {
		t.Fatalf("BeginTurn = %s, want %s", p.Name, want)
	}
	return p
}

// setTop puts c on the discard pile as the active card.
func setTop(g *GameState, c Card) { g.Piles.Discard(c) }

func card(t *testing.T, s string) Card {
	t.Helper()
	c, err := ParseCard(s)
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", s, err)
	}
	return c
}

func cards(t *testing.T, ss ...string) Hand {
	t.Helper()
	h := make(Hand, len(ss))
	for i, s := range ss {
		h[i] = card(t, s)
	}
	return h
}
