// Package prompt collects a line of input from a player, re-asking until the
// answer is one of the allowed choices.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// ErrDefaultRequired is returned when a question sets a timeout but no
// default answer.
var ErrDefaultRequired = errors.New("prompt: a timeout needs a default answer")

const defaultWrongInput = "Wrong input!"

// Question describes one prompt.
type Question struct {
	Text    string
	Choices []string // allowed answers after normalization; empty accepts anything
	Default string
	Timeout time.Duration // zero waits forever
	// Normalize runs after surrounding whitespace is trimmed and before the
	// answer is checked against Choices.
	Normalize  func(string) string
	WrongInput string
	// HideChoices keeps the choice list out of the prompt line.
	HideChoices bool
}

// Asker obtains an answer to a question.
type Asker interface {
	Ask(q Question) (string, error)
}

type line struct {
	text string
	err  error
}

// Console asks questions on a text stream. A single goroutine reads lines
// from in for the lifetime of ctx, so a timed-out question does not lose the
// next answer.
type Console struct {
	ctx   context.Context
	out   io.Writer
	lines chan line
}

// NewConsole starts reading from in. Cancelling ctx unblocks any pending Ask.
func NewConsole(ctx context.Context, in io.Reader, out io.Writer) *Console {
	c := &Console{ctx: ctx, out: out, lines: make(chan line)}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case c.lines <- line{text: sc.Text()}:
		case <-c.ctx.Done():
			return
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case c.lines <- line{err: err}:
	case <-c.ctx.Done():
	}
}

// Ask prints q and waits for a valid answer, the timeout, or cancellation.
func (c *Console) Ask(q Question) (string, error) {
	if q.Timeout > 0 && q.Default == "" {
		return "", ErrDefaultRequired
	}
	wrong := q.WrongInput
	if wrong == "" {
		wrong = defaultWrongInput
	}

	var timeout <-chan time.Time
	if q.Timeout > 0 {
		t := time.NewTimer(q.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	for {
		fmt.Fprint(c.out, q.prompt())
		select {
		case <-c.ctx.Done():
			return "", c.ctx.Err()
		case <-timeout:
			fmt.Fprintln(c.out)
			return q.Default, nil
		case l := <-c.lines:
			if l.err != nil {
				return "", l.err
			}
			ans, ok := q.Accept(l.text)
			if ok {
				return ans, nil
			}
			fmt.Fprintln(c.out, wrong)
		}
	}
}

// Accept normalizes raw and reports whether it is an allowed answer.
func (q Question) Accept(raw string) (string, bool) {
	ans := strings.TrimSpace(raw)
	if q.Normalize != nil {
		ans = q.Normalize(ans)
	}
	if len(q.Choices) > 0 && !slices.Contains(q.Choices, ans) {
		return ans, false
	}
	return ans, true
}

func (q Question) prompt() string {
	var b strings.Builder
	b.WriteString(q.Text)
	if len(q.Choices) > 0 && !q.HideChoices {
		fmt.Fprintf(&b, " [%s]", strings.Join(q.Choices, "/"))
	}
	if q.Default != "" {
		fmt.Fprintf(&b, " (%s)", q.Default)
	}
	b.WriteString(": ")
	return b.String()
}
