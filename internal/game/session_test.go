package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/jason-s-yu/tuno/engine"
	"github.com/jason-s-yu/tuno/engine/agent"
	"github.com/jason-s-yu/tuno/internal/alerts"
	"github.com/jason-s-yu/tuno/internal/cache"
	"github.com/jason-s-yu/tuno/internal/config"
	"github.com/jason-s-yu/tuno/internal/database"
	"github.com/jason-s-yu/tuno/internal/prompt"
	"github.com/jason-s-yu/tuno/internal/render"
)

// scriptedAsker answers questions from a fixed list, skipping answers the
// question would reject the way the console does. It returns io.EOF once
// the script runs out.
type scriptedAsker struct {
	mu        sync.Mutex
	answers   []string
	questions []prompt.Question
	wrong     int
}

func (a *scriptedAsker) Ask(q prompt.Question) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.questions = append(a.questions, q)
	for len(a.answers) > 0 {
		raw := a.answers[0]
		a.answers = a.answers[1:]
		if ans, ok := q.Accept(raw); ok {
			return ans, nil
		}
		a.wrong++
	}
	return "", io.EOF
}

// mockPublisher captures action records.
type mockPublisher struct {
	mu   sync.Mutex
	recs []cache.ActionRecord
	err  error
}

func (p *mockPublisher) PublishGameAction(_ context.Context, rec cache.ActionRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recs = append(p.recs, rec)
	return p.err
}

func (p *mockPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.recs))
	for i, r := range p.recs {
		out[i] = r.Action
	}
	return out
}

type mockRecorder struct {
	results []database.GameResult
}

func (r *mockRecorder) RecordResult(_ context.Context, res database.GameResult) error {
	r.results = append(r.results, res)
	return nil
}

type captureRenderer struct {
	frames []render.Frame
}

func (c *captureRenderer) Render(f render.Frame) error {
	c.frames = append(c.frames, f)
	return nil
}

func (c *captureRenderer) last() render.Frame { return c.frames[len(c.frames)-1] }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.FixedSeating = true
	cfg.Seed = 11
	return cfg
}

func alertTexts(s *Session) []string {
	items := s.Alerts().Recent(1000)
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestRunBotsToCompletion(t *testing.T) {
	pub := &mockPublisher{}
	rec := &mockRecorder{}
	rnd := &captureRenderer{}
	s, err := New([]string{"a", "b", "c"}, Options{
		Config:    testConfig(),
		Renderer:  rnd,
		Publisher: pub,
		Recorder:  rec,
		Movers: map[string]engine.Mover{
			"a": agent.New(engine.NewRand(1), nil),
			"b": agent.New(engine.NewRand(2), nil),
			"c": agent.New(engine.NewRand(3), nil),
		},
	})
	require.NoError(t, err)

	winner, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, winner)

	g := s.Game()
	assert.True(t, g.IsTerminal())
	assert.Equal(t, winner, g.Winner().Name)
	assert.Equal(t, engine.DeckSize, g.CardCount())

	texts := alertTexts(s)
	require.GreaterOrEqual(t, len(texts), 2)
	assert.Equal(t, "Alerts will show up here.", texts[0])
	assert.Equal(t, "Current player order: a->b->c", texts[1])
	assert.Equal(t, winner+": UNO-finish", texts[len(texts)-1])

	actions := pub.actions()
	// Records are published concurrently, so only membership is stable.
	assert.Contains(t, actions, "start")
	assert.Contains(t, actions, "play")
	assert.Contains(t, actions, "finish")

	require.Len(t, rec.results, 1)
	assert.Equal(t, winner, rec.results[0].Winner)
	assert.Equal(t, []string{"a", "b", "c"}, rec.results[0].Players)
	assert.Equal(t, g.TurnNumber, rec.results[0].Turns)
	assert.Equal(t, s.ID.String(), rec.results[0].GameID)

	assert.False(t, s.Alerts().Sweeping(), "sweeper joined before Run returns")
	assert.Equal(t, winner, rnd.last().Winner)
	for _, f := range rnd.frames {
		assert.Empty(t, f.Hand, "bot frames never show a hand")
		assert.LessOrEqual(t, len(f.Alerts), 5)
	}
}

func TestConfiguredBotIsAgent(t *testing.T) {
	cfg := testConfig()
	cfg.Bot = "computer"
	s, err := New([]string{"ann", "computer"}, Options{Config: cfg, Asker: &scriptedAsker{}})
	require.NoError(t, err)

	_, isAgent := s.movers["computer"].(*agent.Heuristic)
	assert.True(t, isAgent)
	assert.True(t, s.humans["ann"])
	assert.False(t, s.humans["computer"])
}

func TestNewErrors(t *testing.T) {
	_, err := New([]string{"ann", "bo"}, Options{Config: testConfig()})
	assert.ErrorContains(t, err, "no input")

	_, err = New([]string{"solo"}, Options{Config: testConfig()})
	assert.ErrorIs(t, err, engine.ErrPlayerCount)

	_, err = New([]string{"computer", "computer"}, Options{Config: testConfig()})
	assert.ErrorIs(t, err, engine.ErrDuplicatePlayer)
}

func TestHumanProtocolRejections(t *testing.T) {
	asker := &scriptedAsker{answers: []string{"pass", "draw", "draw", "pass"}}
	rnd := &captureRenderer{}
	s, err := New([]string{"ann", "computer"}, Options{
		Config:   testConfig(),
		Asker:    asker,
		Renderer: rnd,
	})
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF, "the game stops once the script runs out")

	var ge *engine.GameplayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "ann", ge.Player)

	texts := alertTexts(s)
	assert.Contains(t, texts, "Can't pass without drawing at least once!")
	assert.Contains(t, texts, "Can't draw twice in the same turn. Either pass or play a valid card.")

	// The first human frame shows the hand and both pseudo-choices.
	var first *render.Frame
	for i := range rnd.frames {
		if len(rnd.frames[i].Choices) > 0 {
			first = &rnd.frames[i]
			break
		}
	}
	require.NotNil(t, first)
	assert.Equal(t, "ann", first.Current)
	assert.Len(t, first.Hand, engine.DefaultHandSize)
	assert.Equal(t, []string{"draw", "pass"}, first.Choices[len(first.Choices)-2:])
}

func TestUnplayableCardAlert(t *testing.T) {
	cfg := testConfig()
	s, err := New([]string{"ann", "bo"}, Options{Config: cfg, Asker: &scriptedAsker{}})
	require.NoError(t, err)

	msg := s.rejection(engine.PlayMove(engine.Card{Color: engine.ColorBlue, Value: engine.ValueFour}), engine.ErrUnplayable)
	assert.Equal(t, "Can't play the card B4 (against the rules)!", msg)

	cfg.Prompt.IllegalMove = "Nope"
	s.cfg = cfg
	msg = s.rejection(engine.Move{}, engine.ErrCardNotHeld)
	assert.Equal(t, "Nope: card not in hand", msg)
}

// stubbornMover always plays a card it does not hold.
type stubbornMover struct{ rejects int }

func (m *stubbornMover) ChooseMove(engine.View) (engine.Move, error) {
	return engine.PlayMove(engine.Card{Color: engine.ColorColorless, Value: engine.ValueWild}), nil
}
func (m *stubbornMover) ChooseColor(engine.View) (engine.Color, error) { return engine.ColorRed, nil }
func (m *stubbornMover) Reject(_ engine.View, err error) error {
	m.rejects++
	if m.rejects == 3 {
		return errors.New("giving up")
	}
	return nil
}

func TestRejectErrorIsFatal(t *testing.T) {
	mover := &stubbornMover{}
	s, err := New([]string{"x", "y"}, Options{
		Config: testConfig(),
		Movers: map[string]engine.Mover{"x": mover, "y": mover},
	})
	require.NoError(t, err)
	// Nobody holds a wild, so every play is refused.
	for _, p := range s.Game().Players {
		kept := p.Hand[:0]
		for _, c := range p.Hand {
			if !c.IsWild() {
				kept = append(kept, c)
			}
		}
		p.Hand = kept
	}

	_, err = s.Run(context.Background())
	var ge *engine.GameplayError
	require.ErrorAs(t, err, &ge)
	assert.EqualError(t, ge.Err, "giving up")
	assert.Equal(t, "x", ge.Player)
	require.NotNil(t, ge.Card)
	assert.Equal(t, "wild", ge.Card.String())
	assert.Equal(t, 3, mover.rejects)
	assert.False(t, s.Alerts().Sweeping(), "sweeper joined on the error path")
}

func TestPublishFailureDoesNotStopGame(t *testing.T) {
	pub := &mockPublisher{err: errors.New("redis down")}
	s, err := New([]string{"a", "b"}, Options{
		Config:    testConfig(),
		Publisher: pub,
		Movers: map[string]engine.Mover{
			"a": agent.New(engine.NewRand(4), nil),
			"b": agent.New(engine.NewRand(5), nil),
		},
	})
	require.NoError(t, err)

	winner, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, winner)
	assert.NotEmpty(t, pub.actions())
}

// blockingAsker waits until its context is cancelled, like a console whose
// player never answers.
type blockingAsker struct{ ctx context.Context }

func (a blockingAsker) Ask(prompt.Question) (string, error) {
	<-a.ctx.Done()
	return "", a.ctx.Err()
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := New([]string{"ann", "bo"}, Options{Config: testConfig(), Asker: blockingAsker{ctx}})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(ctx)
		done <- err
	}()
	require.Eventually(t, s.Alerts().Sweeping, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		var ge *engine.GameplayError
		assert.False(t, errors.As(err, &ge), "cancellation is not a gameplay error")
		assert.False(t, s.Alerts().Sweeping(), "sweeper joined on cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := New([]string{"a", "b"}, Options{
		Config: testConfig(),
		Movers: map[string]engine.Mover{
			"a": agent.New(engine.NewRand(1), nil),
			"b": agent.New(engine.NewRand(1), nil),
		},
	})
	require.NoError(t, err)

	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Game().TurnNumber)
}

func TestOrderAlertUsesSeating(t *testing.T) {
	cfg := testConfig()
	cfg.FixedSeating = false
	s, err := New([]string{"a", "b", "c", "d"}, Options{Config: cfg, Asker: &scriptedAsker{}})
	require.NoError(t, err)

	_, _ = s.Run(context.Background())
	want := "Current player order: " + strings.Join(s.Game().Seating, "->")
	assert.Contains(t, alertTexts(s), want)
}

func TestFrameShowsAtMostFiveAlerts(t *testing.T) {
	cfg := testConfig()
	cfg.Alerts.Recent = 12
	s, err := New([]string{"ann", "bo"}, Options{Config: cfg, Asker: &scriptedAsker{}})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		s.Push(fmt.Sprintf("alert %d", i))
	}

	f := s.frame()
	require.Len(t, f.Alerts, alerts.DefaultRecent)
	assert.Equal(t, "alert 9", f.Alerts[len(f.Alerts)-1].Text)
}
