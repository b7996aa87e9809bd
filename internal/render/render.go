// Package render draws the game state shown before every prompt.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	engine "github.com/jason-s-yu/tuno/engine"
	"github.com/jason-s-yu/tuno/internal/alerts"
)

// Frame is the state shown to players at one point of a turn. Hand and
// Choices are only set when a human is being asked for a move.
type Frame struct {
	GameID      string
	Turn        int
	Current     string
	Order       []string
	Top         *engine.Card
	DrawPile    int
	DiscardPile int
	HandSizes   map[string]int
	Alerts      []alerts.Item
	Hand        engine.Hand
	Choices     []string
	Winner      string
}

// Renderer is a sink for frames.
type Renderer interface {
	Render(f Frame) error
}

// Text writes frames as plain text.
type Text struct {
	w io.Writer
}

func NewText(w io.Writer) *Text { return &Text{w: w} }

func (t *Text) Render(f Frame) error {
	var b strings.Builder
	b.WriteString("\n")
	if f.Winner != "" {
		fmt.Fprintf(&b, "%s wins the game!\n", f.Winner)
		_, err := io.WriteString(t.w, b.String())
		return err
	}

	fmt.Fprintf(&b, "== turn %d: %s ==\n", f.Turn, f.Current)
	top := "none"
	if f.Top != nil {
		top = f.Top.String()
	}
	fmt.Fprintf(&b, "Active card: %s   draw pile: %d   discard pile: %d\n", top, f.DrawPile, f.DiscardPile)
	if len(f.Order) > 0 {
		fmt.Fprintf(&b, "Up next: %s\n", strings.Join(f.Order, " -> "))
	}
	if len(f.HandSizes) > 0 {
		names := make([]string, 0, len(f.HandSizes))
		for n := range f.HandSizes {
			names = append(names, n)
		}
		slices.Sort(names)
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = fmt.Sprintf("%s=%d", n, f.HandSizes[n])
		}
		fmt.Fprintf(&b, "Cards held: %s\n", strings.Join(parts, " "))
	}

	b.WriteString("Alerts:\n")
	for _, a := range f.Alerts {
		for _, l := range strings.Split(a.Text, "\n") {
			fmt.Fprintf(&b, "  %s\n", strings.TrimSpace(l))
		}
	}

	if len(f.Choices) > 0 {
		fmt.Fprintf(&b, "%s's cards:\n", f.Current)
		for i, c := range f.Hand {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, c)
		}
		extra := f.Choices[min(len(f.Hand), len(f.Choices)):]
		if len(extra) > 0 {
			fmt.Fprintf(&b, "  or: %s\n", strings.Join(extra, ", "))
		}
	}

	_, err := io.WriteString(t.w, b.String())
	return err
}

// Multi fans a frame out to several renderers. Every renderer is called even
// if one fails; the first error is returned.
type Multi []Renderer

func (m Multi) Render(f Frame) error {
	var first error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Render(f); err != nil && first == nil {
			first = err
		}
	}
	return first
}
