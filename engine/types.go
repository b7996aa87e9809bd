package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// Color is the color of a card. ColorColorless is only valid on a wild card
// that has not yet been bound to a playing color.
type Color uint8

const (
	ColorRed       Color = 0
	ColorGreen     Color = 1
	ColorBlue      Color = 2
	ColorYellow    Color = 3
	ColorColorless Color = 4
)

// RealColors lists the four playable colors in deck order.
var RealColors = [4]Color{ColorRed, ColorGreen, ColorBlue, ColorYellow}

// Token returns the one-letter prefix used in the card text form.
func (c Color) Token() string {
	switch c {
	case ColorRed:
		return "R"
	case ColorGreen:
		return "G"
	case ColorBlue:
		return "B"
	case ColorYellow:
		return "Y"
	default:
		return ""
	}
}

// String returns the color name shown to players.
func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	case ColorYellow:
		return "yellow"
	case ColorColorless:
		return "colorless"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// IsReal reports whether c is one of the four playable colors.
func (c Color) IsReal() bool { return c <= ColorYellow }

// ParseColor converts a color token ("R", "G", "B", "Y") to a Color.
func ParseColor(s string) (Color, error) {
	switch s {
	case "R":
		return ColorRed, nil
	case "G":
		return ColorGreen, nil
	case "B":
		return ColorBlue, nil
	case "Y":
		return ColorYellow, nil
	}
	return ColorColorless, fmt.Errorf("%w: unknown color %q", ErrInvalidCardFormat, s)
}

// Value is the face value of a card.
type Value uint8

const (
	ValueZero         Value = 0
	ValueOne          Value = 1
	ValueTwo          Value = 2
	ValueThree        Value = 3
	ValueFour         Value = 4
	ValueFive         Value = 5
	ValueSix          Value = 6
	ValueSeven        Value = 7
	ValueEight        Value = 8
	ValueNine         Value = 9
	ValueDrawTwo      Value = 10
	ValueSkip         Value = 11
	ValueReverse      Value = 12
	ValueWild         Value = 13
	ValueWildDrawFour Value = 14
)

var valueTokens = [...]string{
	ValueZero:         "0",
	ValueOne:          "1",
	ValueTwo:          "2",
	ValueThree:        "3",
	ValueFour:         "4",
	ValueFive:         "5",
	ValueSix:          "6",
	ValueSeven:        "7",
	ValueEight:        "8",
	ValueNine:         "9",
	ValueDrawTwo:      "+2",
	ValueSkip:         "skip",
	ValueReverse:      "reverse",
	ValueWild:         "wild",
	ValueWildDrawFour: "wild +4",
}

// String returns the value token ("7", "+2", "skip", "wild +4", ...).
func (v Value) String() string {
	if int(v) < len(valueTokens) {
		return valueTokens[v]
	}
	return fmt.Sprintf("Value(%d)", uint8(v))
}

// IsWild reports whether v is WILD or WILD_DRAW_FOUR.
func (v Value) IsWild() bool { return v == ValueWild || v == ValueWildDrawFour }

// IsAction reports whether playing a card of this value triggers an effect.
func (v Value) IsAction() bool { return v >= ValueDrawTwo && v <= ValueWildDrawFour }

func parseValue(s string) (Value, bool) {
	for v, tok := range valueTokens {
		if tok == s {
			return Value(v), true
		}
	}
	return 0, false
}

// Card is an immutable (color, value) pair. Two cards are equal iff both
// fields are equal; hands may hold duplicates.
type Card struct {
	Color Color
	Value Value
}

// String renders the card text form: color token followed by value token,
// e.g. "R7", "G+2", "wild +4", or "Bwild" for a wild bound to blue.
func (c Card) String() string { return c.Color.Token() + c.Value.String() }

// IsAction reports whether the card triggers an action effect.
func (c Card) IsAction() bool { return c.Value.IsAction() }

// IsWild reports whether the card is a WILD or WILD_DRAW_FOUR.
func (c Card) IsWild() bool { return c.Value.IsWild() }

// IsAction is the free-function form of Card.IsAction.
func IsAction(c Card) bool { return c.IsAction() }

// ParseCard parses the card text form produced by Card.String.
func ParseCard(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("%w: %q is too short", ErrInvalidCardFormat, s)
	}
	switch s[0] {
	case 'R', 'G', 'B', 'Y':
		color, _ := ParseColor(s[:1])
		v, ok := parseValue(s[1:])
		if !ok {
			return Card{}, fmt.Errorf("%w: unknown value %q in %q", ErrInvalidCardFormat, s[1:], s)
		}
		return Card{Color: color, Value: v}, nil
	}
	v, ok := parseValue(s)
	if !ok || !v.IsWild() {
		return Card{}, fmt.Errorf("%w: %q is not a wild card", ErrInvalidCardFormat, s)
	}
	return Card{Color: ColorColorless, Value: v}, nil
}

// Compare orders cards by color, then value.
func Compare(a, b Card) int {
	if c := cmp.Compare(a.Color, b.Color); c != 0 {
		return c
	}
	return cmp.Compare(a.Value, b.Value)
}

// SortCards sorts cards in place in Compare order.
func SortCards(cards []Card) { slices.SortFunc(cards, Compare) }

// Hand is an ordered sequence of cards owned by one player. Order is
// insertion order.
type Hand []Card

// Index returns the position of the first card equal to c, or -1.
func (h Hand) Index(c Card) int { return slices.Index(h, c) }

// Contains reports whether the hand holds a card equal to c.
func (h Hand) Contains(c Card) bool { return h.Index(c) >= 0 }

// Remove deletes the first card equal to c and reports whether one was found.
func (h *Hand) Remove(c Card) bool {
	i := h.Index(c)
	if i < 0 {
		return false
	}
	*h = slices.Delete(*h, i, i+1)
	return true
}

// Clone returns a copy that does not alias h.
func (h Hand) Clone() Hand { return slices.Clone(h) }
