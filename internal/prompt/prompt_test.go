package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer written by Ask and read by the test.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func console(t *testing.T, input string) (*Console, *syncBuffer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	out := &syncBuffer{}
	return NewConsole(ctx, strings.NewReader(input), out), out
}

func TestAskRetriesUntilValid(t *testing.T) {
	c, out := console(t, "purple\n  b \n")
	ans, err := c.Ask(Question{
		Text:       "Choose the color to set for the wild card",
		Choices:    []string{"R", "G", "B", "Y"},
		Normalize:  strings.ToUpper,
		WrongInput: "Wrong input!",
	})
	require.NoError(t, err)
	assert.Equal(t, "B", ans)
	assert.Equal(t, 1, strings.Count(out.String(), "Wrong input!"))
	assert.Contains(t, out.String(), "[R/G/B/Y]")
}

func TestAskWithoutChoicesAcceptsAnything(t *testing.T) {
	c, _ := console(t, "  hello there \n")
	ans, err := c.Ask(Question{Text: "Say something"})
	require.NoError(t, err)
	assert.Equal(t, "hello there", ans)
}

func TestAskTimeoutReturnsDefault(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pr, pw := io.Pipe()
	defer pw.Close()
	c := NewConsole(ctx, pr, io.Discard)

	start := time.Now()
	ans, err := c.Ask(Question{Text: "Move", Choices: []string{"draw", "pass"}, Default: "draw", Timeout: 20 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "draw", ans)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAskTimeoutNeedsDefault(t *testing.T) {
	c, _ := console(t, "")
	_, err := c.Ask(Question{Text: "Move", Timeout: time.Second})
	assert.ErrorIs(t, err, ErrDefaultRequired)
}

func TestAskEOF(t *testing.T) {
	c, _ := console(t, "nope\n")
	_, err := c.Ask(Question{Text: "Move", Choices: []string{"draw"}})
	assert.ErrorIs(t, err, io.EOF)
}

func TestAskCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	defer pw.Close()
	c := NewConsole(ctx, pr, io.Discard)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Ask(Question{Text: "Move"})
		errc <- err
	}()
	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Ask did not return after cancel")
	}
}

func TestAccept(t *testing.T) {
	q := Question{Choices: []string{"1", "2", "draw"}, Normalize: strings.ToLower}
	ans, ok := q.Accept(" DRAW ")
	assert.True(t, ok)
	assert.Equal(t, "draw", ans)
	_, ok = q.Accept("3")
	assert.False(t, ok)
}
