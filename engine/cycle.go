package engine

import (
	"errors"
	"fmt"
	"slices"
)

// ErrEmptyCycle is returned when a cycle is built from no elements.
var ErrEmptyCycle = errors.New("cycle needs at least one element")

// Cycle is a circular play order with a cursor on the last-served element.
// The cursor is unset (-1) until the first Advance. A Cycle owns its backing
// slice; Rebuild returns a new value instead of rewriting indices in place.
type Cycle[T any] struct {
	items  []T
	cursor int
}

// NewCycle builds a cycle over a copy of items with the cursor unset.
func NewCycle[T any](items []T) (Cycle[T], error) {
	if len(items) == 0 {
		return Cycle[T]{}, ErrEmptyCycle
	}
	return Cycle[T]{items: slices.Clone(items), cursor: -1}, nil
}

// Len returns the number of elements in the cycle.
func (c Cycle[T]) Len() int { return len(c.items) }

// Cursor returns the last-served position and whether one has been served.
func (c Cycle[T]) Cursor() (int, bool) { return c.cursor, c.cursor >= 0 }

func (c Cycle[T]) index(n int) int {
	l := len(c.items)
	return ((n % l) + l) % l
}

// Peek returns the element n steps from the cursor without moving it.
// Before the first Advance the cursor is treated as position 0. Negative n
// looks backwards.
func (c Cycle[T]) Peek(n int) T {
	base := c.cursor
	if base < 0 {
		base = 0
	}
	return c.items[c.index(base+n)]
}

// Advance returns the element after the cursor. When consume is true the
// cursor moves onto it. The first Advance on a fresh cycle returns the first
// element.
func (c *Cycle[T]) Advance(consume bool) T {
	next := c.index(c.cursor + 1)
	if consume {
		c.cursor = next
	}
	return c.items[next]
}

// Snapshot returns the upcoming play order: Len elements starting right after
// the cursor.
func (c Cycle[T]) Snapshot() []T {
	out := make([]T, len(c.items))
	for i := range out {
		out[i] = c.items[c.index(c.cursor+1+i)]
	}
	return out
}

// Rebuild returns a new cycle over order with the cursor unset. The new order
// must hold as many elements as c.
func (c Cycle[T]) Rebuild(order []T) (Cycle[T], error) {
	if len(order) != len(c.items) {
		return c, fmt.Errorf("rebuild with %d elements, cycle has %d", len(order), len(c.items))
	}
	return NewCycle(order)
}
