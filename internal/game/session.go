// Package game runs one game of tuno from deal to winner: it owns the turn
// loop, routes each seat to its mover, keeps the alert sweeper alive for the
// lifetime of the game and reports actions to the optional telemetry sinks.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	engine "github.com/jason-s-yu/tuno/engine"
	"github.com/jason-s-yu/tuno/engine/agent"
	"github.com/jason-s-yu/tuno/internal/alerts"
	"github.com/jason-s-yu/tuno/internal/cache"
	"github.com/jason-s-yu/tuno/internal/config"
	"github.com/jason-s-yu/tuno/internal/database"
	"github.com/jason-s-yu/tuno/internal/prompt"
	"github.com/jason-s-yu/tuno/internal/render"
)

const (
	publishTimeout = 2 * time.Second
	recordTimeout  = 5 * time.Second
)

// ActionPublisher receives a record of every accepted action.
type ActionPublisher interface {
	PublishGameAction(ctx context.Context, rec cache.ActionRecord) error
}

// ResultRecorder stores the outcome of a finished game.
type ResultRecorder interface {
	RecordResult(ctx context.Context, r database.GameResult) error
}

// Options wires a session to its collaborators. Only Config is required;
// Asker is required when any seat is played by a human.
type Options struct {
	Config    config.Config
	Asker     prompt.Asker
	Renderer  render.Renderer
	Logger    logrus.FieldLogger
	Publisher ActionPublisher
	Recorder  ResultRecorder
	Rand      *rand.Rand
	Clock     func() time.Time
	// Movers overrides the mover of individual seats.
	Movers map[string]engine.Mover
}

// Session is a single game and everything it talks to.
type Session struct {
	ID uuid.UUID

	cfg    config.Config
	game   *engine.GameState
	alerts *alerts.Queue
	movers map[string]engine.Mover
	humans map[string]bool

	render render.Renderer
	log    *logrus.Entry
	pub    ActionPublisher
	rec    ResultRecorder
	now    func() time.Time

	actionIndex int
	pending     sync.WaitGroup
}

// New deals a game for names. The configured bot name is played by the
// heuristic agent, every other seat by a human answering through opts.Asker.
func New(names []string, opts Options) (*Session, error) {
	cfg := opts.Config
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	rng := opts.Rand
	if rng == nil {
		rng = engine.NewRand(cfg.Seed)
	}

	s := &Session{
		ID:     uuid.New(),
		cfg:    cfg,
		movers: make(map[string]engine.Mover, len(names)),
		humans: make(map[string]bool, len(names)),
		render: opts.Renderer,
		pub:    opts.Publisher,
		rec:    opts.Recorder,
		now:    now,
	}
	s.log = logger.WithField("game", s.ID.String())
	s.alerts = alerts.New(
		alerts.WithTTL(cfg.Alerts.TTL),
		alerts.WithClock(now),
		alerts.WithLogger(s.log),
	)

	g, err := engine.NewGame(names, engine.Options{
		HandSize:       cfg.HandSize,
		ShuffleSeating: !cfg.FixedSeating,
		Rand:           rng,
		Notifier:       s,
	})
	if err != nil {
		return nil, err
	}
	s.game = g

	for _, name := range names {
		switch {
		case opts.Movers[name] != nil:
			s.movers[name] = opts.Movers[name]
		case name == cfg.Bot:
			s.movers[name] = agent.New(rng, s.log.WithField("player", name))
		default:
			if opts.Asker == nil {
				return nil, fmt.Errorf("game: %s is a human player but no input is configured", name)
			}
			s.movers[name] = NewHumanMover(opts.Asker, cfg.Prompt, s.showHand)
		}
		if _, ok := s.movers[name].(*HumanMover); ok {
			s.humans[name] = true
		}
	}

	s.log.WithFields(logrus.Fields{
		"seating":   strings.Join(g.Seating, ","),
		"hand_size": cfg.HandSize,
	}).Info("game dealt")
	return s, nil
}

// Game exposes the engine state.
func (s *Session) Game() *engine.GameState { return s.game }

// Alerts exposes the notification queue.
func (s *Session) Alerts() *alerts.Queue { return s.alerts }

// Push adds a notification and traces it.
func (s *Session) Push(text string) {
	s.alerts.Push(text)
	s.log.WithField("alert", text).Debug("alert pushed")
}

// Run plays the game to completion and returns the winner's name. Fatal
// errors come back as *engine.GameplayError; cancellation of ctx comes back
// as the context error. The alert sweeper is stopped and joined on every
// path, and pending telemetry is flushed before Run returns.
func (s *Session) Run(ctx context.Context) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return s.alerts.Run(egCtx, s.cfg.Alerts.SweepInterval) })
	defer func() {
		cancel()
		_ = eg.Wait()
		s.pending.Wait()
	}()

	order := s.game.Order()
	s.Push("Alerts will show up here.")
	s.Push("Current player order: " + strings.Join(order, "->"))
	s.logAction("", "start", "", strings.Join(order, ","))

	for {
		if err := ctx.Err(); err != nil {
			s.log.WithError(err).Info("game interrupted")
			return "", err
		}
		p, err := s.game.BeginTurn()
		if err != nil {
			return "", s.fail(err, "", nil)
		}
		if err := s.playTurn(ctx, p); err != nil {
			return "", err
		}
		w, err := s.game.EndTurn()
		if err != nil {
			return "", s.fail(err, p.Name, nil)
		}
		if w != nil {
			s.finish(w)
			return w.Name, nil
		}
	}
}

// playTurn asks the current player's mover for moves until the turn ends.
// Rejected moves are reported and re-prompted.
func (s *Session) playTurn(ctx context.Context, p *engine.Player) error {
	mover := s.movers[p.Name]
	log := s.log.WithFields(logrus.Fields{"player": p.Name, "turn": s.game.TurnNumber})
	log.WithField("hand", len(p.Hand)).Debug("turn started")

	if !s.humans[p.Name] {
		s.show(s.frame())
	}

	for !s.game.TurnDone() {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := mover.ChooseMove(s.game.View(p.Name))
		if err != nil && !engine.IsRecoverable(err) {
			return s.fail(fmt.Errorf("choose move: %w", err), p.Name, nil)
		}
		var card *engine.Card
		if err == nil {
			card = moveCard(m)
			err = s.game.ApplyMove(p.Name, m, mover)
		}

		switch {
		case err == nil:
			s.recordMove(log, p.Name, m)
		case engine.IsRecoverable(err):
			log.WithError(err).WithField("move", m.String()).Info("move rejected")
			s.Push(s.rejection(m, err))
			if rerr := mover.Reject(s.game.View(p.Name), err); rerr != nil {
				return s.fail(rerr, p.Name, card)
			}
		default:
			return s.fail(err, p.Name, card)
		}
	}
	return nil
}

func moveCard(m engine.Move) *engine.Card {
	if m.Kind != engine.MovePlay {
		return nil
	}
	c := m.Card
	return &c
}

// fail turns err into the error Run returns. Cancellation passes through
// untouched; everything else is annotated with the game state.
func (s *Session) fail(err error, player string, card *engine.Card) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	err = s.game.Diagnose(err, player, card)
	s.log.WithError(err).Error("game aborted")
	return err
}

// rejection is the alert shown when a move is refused.
func (s *Session) rejection(m engine.Move, err error) string {
	switch {
	case errors.Is(err, engine.ErrPassBeforeDraw):
		return "Can't pass without drawing at least once!"
	case errors.Is(err, engine.ErrDrawTwice):
		return "Can't draw twice in the same turn. Either pass or play a valid card."
	case errors.Is(err, engine.ErrUnplayable):
		return fmt.Sprintf("%s %s (against the rules)!", s.cfg.Prompt.IllegalMove, m.Card)
	default:
		return fmt.Sprintf("%s: %s", s.cfg.Prompt.IllegalMove, engine.Reason(err))
	}
}

func (s *Session) recordMove(log *logrus.Entry, player string, m engine.Move) {
	var card, detail string
	switch m.Kind {
	case engine.MovePlay:
		card = m.Card.String()
		if m.Card.IsWild() {
			if top, ok := s.game.Piles.Top(); ok {
				detail = "color " + top.Color.String()
			}
		}
	case engine.MoveDraw:
		card = s.game.View(player).LastDrawn.String()
	}
	log.WithFields(logrus.Fields{
		"move":      m.Kind.String(),
		"card":      card,
		"draw_pile": len(s.game.Piles.DrawPile),
	}).Debug("move applied")
	s.logAction(player, m.Kind.String(), card, detail)
}

// logAction publishes an action record in the background. Failures are only
// logged.
func (s *Session) logAction(player, action, card, detail string) {
	if s.pub == nil {
		return
	}
	s.actionIndex++
	rec := cache.ActionRecord{
		ID:     uuid.New(),
		GameID: s.ID.String(),
		Turn:   s.game.TurnNumber,
		Player: player,
		Action: action,
		Card:   card,
		Detail: detail,
		At:     s.now(),
	}
	s.pending.Add(1)
	go func(idx int) {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.pub.PublishGameAction(ctx, rec); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"action": action, "index": idx}).Warn("publishing action failed")
		}
	}(s.actionIndex)
}

func (s *Session) finish(w *engine.Player) {
	s.log.WithFields(logrus.Fields{"winner": w.Name, "turns": s.game.TurnNumber}).Info("game finished")
	s.logAction(w.Name, "finish", "", "")
	s.show(s.frame())

	if s.rec == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	err := s.rec.RecordResult(ctx, database.GameResult{
		GameID:     s.ID.String(),
		Winner:     w.Name,
		Players:    append([]string(nil), s.game.Seating...),
		Turns:      s.game.TurnNumber,
		FinishedAt: s.now(),
	})
	if err != nil {
		s.log.WithError(err).Warn("recording result failed")
	}
}

// frame snapshots the public game state.
func (s *Session) frame() render.Frame {
	g := s.game
	f := render.Frame{
		GameID:      s.ID.String(),
		Turn:        g.TurnNumber,
		Order:       g.Order(),
		DrawPile:    len(g.Piles.DrawPile),
		DiscardPile: len(g.Piles.DiscardPile),
		HandSizes:   g.HandSizes(),
		Alerts:      s.alerts.Recent(min(s.cfg.Alerts.Recent, alerts.DefaultRecent)),
	}
	if p := g.CurrentPlayer(); p != nil {
		f.Current = p.Name
	}
	if top, ok := g.Piles.Top(); ok {
		f.Top = &top
	}
	if w := g.Winner(); w != nil {
		f.Winner = w.Name
	}
	return f
}

// showHand renders the frame a human sees before answering.
func (s *Session) showHand(v engine.View, choices []string) {
	f := s.frame()
	f.Hand = v.Hand
	f.Choices = choices
	s.show(f)
}

func (s *Session) show(f render.Frame) {
	if s.render == nil {
		return
	}
	if err := s.render.Render(f); err != nil {
		s.log.WithError(err).Warn("render failed")
	}
}
