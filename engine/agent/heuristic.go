// Package agent implements the automated player.
package agent

import (
	"fmt"
	"math/rand/v2"

	engine "github.com/jason-s-yu/tuno/engine"
	"github.com/sirupsen/logrus"
)

// Heuristic is a deterministic hand-scanning player with no lookahead.
// Only the first move of an empty-discard game and color choice without
// colored cards use randomness.
type Heuristic struct {
	rng *rand.Rand
	log logrus.FieldLogger
}

// New returns a Heuristic drawing randomness from rng and tracing decisions
// to log at debug level.
func New(rng *rand.Rand, log logrus.FieldLogger) *Heuristic {
	if rng == nil {
		rng = engine.NewRand(0)
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Heuristic{rng: rng, log: log}
}

// ChooseMove picks the move in this order: a random card when nothing has been
// played yet, the first card matching the active color or value, the first
// wild, otherwise draw. After drawing it plays the drawn card if it fits and
// passes if not.
func (h *Heuristic) ChooseMove(v engine.View) (engine.Move, error) {
	log := h.log.WithFields(logrus.Fields{"player": v.Player, "turn": v.Turn})

	if v.Drawn {
		if v.Playable(v.LastDrawn) {
			log.WithField("card", v.LastDrawn.String()).Debug("playing the drawn card")
			return engine.PlayMove(v.LastDrawn), nil
		}
		log.Debug("drawn card does not fit, passing")
		return engine.PassMove(), nil
	}
	if len(v.Hand) == 0 {
		return engine.Move{}, fmt.Errorf("agent: %s has no cards to play", v.Player)
	}

	if !v.HasTop {
		c := v.Hand[h.rng.IntN(len(v.Hand))]
		log.WithField("card", c.String()).Debug("playing a random card because first")
		return engine.PlayMove(c), nil
	}

	for _, c := range v.Hand {
		if c.Color == v.Top.Color || c.Value == v.Top.Value {
			log.WithField("card", c.String()).Debug("playing card as per active card")
			return engine.PlayMove(c), nil
		}
	}
	for _, c := range v.Hand {
		if c.Color == engine.ColorColorless {
			log.WithField("card", c.String()).Debug("playing a wild card, no other option")
			return engine.PlayMove(c), nil
		}
	}

	log.Debug("drawing a card")
	return engine.DrawMove(), nil
}

// ChooseColor picks the most common color among the remaining colored cards,
// breaking ties by first appearance in the hand. With no colored cards left it
// picks one of the four colors at random.
func (h *Heuristic) ChooseColor(v engine.View) (engine.Color, error) {
	counts := make(map[engine.Color]int, 4)
	var seen []engine.Color
	for _, c := range v.Hand {
		if c.Color == engine.ColorColorless {
			continue
		}
		if counts[c.Color] == 0 {
			seen = append(seen, c.Color)
		}
		counts[c.Color]++
	}

	log := h.log.WithField("player", v.Player)
	if len(seen) == 0 {
		c := engine.RealColors[h.rng.IntN(len(engine.RealColors))]
		log.WithField("color", c.String()).Debug("chose wild color at random")
		return c, nil
	}
	best := seen[0]
	for _, c := range seen[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	log.WithField("color", best.String()).Debug("chose wild color as the mode of the hand")
	return best, nil
}

// Reject is fatal for the automated player: its moves are always legal, so a
// rejection means the engine and the heuristic disagree.
func (h *Heuristic) Reject(v engine.View, err error) error {
	return fmt.Errorf("agent: move for %s rejected: %w", v.Player, err)
}
