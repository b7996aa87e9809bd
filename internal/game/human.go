package game

import (
	"strconv"
	"strings"

	engine "github.com/jason-s-yu/tuno/engine"
	"github.com/jason-s-yu/tuno/internal/config"
	"github.com/jason-s-yu/tuno/internal/prompt"
)

const (
	choiceDraw = "draw"
	choicePass = "pass"
)

var colorChoices = []string{"R", "G", "B", "Y"}

// HumanMover asks a person for each move. Cards are chosen by their
// 1-based position in the hand; "draw" and "pass" are always offered and
// the engine decides whether they are allowed.
type HumanMover struct {
	asker prompt.Asker
	cfg   config.PromptConfig
	show  func(v engine.View, choices []string)
}

// NewHumanMover returns a mover reading answers from asker. show, if set,
// is called before every question.
func NewHumanMover(asker prompt.Asker, cfg config.PromptConfig, show func(engine.View, []string)) *HumanMover {
	return &HumanMover{asker: asker, cfg: cfg, show: show}
}

// MoveChoices lists the answers accepted for a hand of n cards.
func MoveChoices(n int) []string {
	out := make([]string, 0, n+2)
	for i := 1; i <= n; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return append(out, choiceDraw, choicePass)
}

func (h *HumanMover) ChooseMove(v engine.View) (engine.Move, error) {
	choices := MoveChoices(len(v.Hand))
	if h.show != nil {
		h.show(v, choices)
	}

	q := prompt.Question{
		Text:        "Choose the card to play",
		Choices:     choices,
		Normalize:   strings.ToLower,
		WrongInput:  h.cfg.WrongInput,
		HideChoices: true,
	}
	if h.cfg.TurnTimeout > 0 {
		q.Timeout = h.cfg.TurnTimeout
		q.Default = choiceDraw
		if v.Drawn {
			q.Default = choicePass
		}
	}
	ans, err := h.asker.Ask(q)
	if err != nil {
		return engine.Move{}, err
	}

	switch ans {
	case choiceDraw:
		return engine.DrawMove(), nil
	case choicePass:
		return engine.PassMove(), nil
	}
	i, err := engine.ParseIndex(ans, len(v.Hand))
	if err != nil {
		return engine.Move{}, err
	}
	return engine.PlayMove(v.Hand[i]), nil
}

func (h *HumanMover) ChooseColor(v engine.View) (engine.Color, error) {
	if h.show != nil {
		h.show(v, nil)
	}
	q := prompt.Question{
		Text:       "Choose the color to set for the wild card",
		Choices:    colorChoices,
		Normalize:  strings.ToUpper,
		WrongInput: h.cfg.WrongInput,
	}
	if h.cfg.TurnTimeout > 0 {
		q.Timeout = h.cfg.TurnTimeout
		q.Default = strings.ToUpper(h.cfg.TimeoutColor)
	}
	ans, err := h.asker.Ask(q)
	if err != nil {
		return engine.ColorColorless, err
	}
	return engine.ParseColor(ans)
}

// Reject is a no-op: the session has already pushed an alert that the next
// frame shows.
func (h *HumanMover) Reject(engine.View, error) error { return nil }
