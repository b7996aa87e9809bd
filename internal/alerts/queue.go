// Package alerts holds the short-lived notifications shown next to the game
// state. Items expire after a fixed TTL and are removed by a sweeper that
// runs for the lifetime of a game.
package alerts

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTTL           = 30 * time.Second
	DefaultSweepInterval = time.Second
	DefaultRecent        = 5
)

// Item is a single notification.
type Item struct {
	ID        uuid.UUID
	Text      string
	CreatedAt time.Time
}

// Queue is an insertion-ordered, mutex-guarded list of notifications. Every
// read and write, including the sweeper's, goes through mu.
type Queue struct {
	mu    sync.Mutex
	items []Item

	ttl time.Duration
	now func() time.Time
	log logrus.FieldLogger

	sweeping atomic.Bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithTTL sets how long an item lives before the sweeper may remove it.
func WithTTL(d time.Duration) Option { return func(q *Queue) { q.ttl = d } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(q *Queue) { q.now = now } }

// WithLogger sets the logger used for sweep traces.
func WithLogger(l logrus.FieldLogger) Option { return func(q *Queue) { q.log = l } }

// New returns an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(q)
	}
	if q.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		q.log = l
	}
	return q
}

// Push appends a notification stamped with the current time.
func (q *Queue) Push(text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Item{ID: uuid.New(), Text: text, CreatedAt: q.now()})
}

// Recent returns a copy of the last k items, most recent last.
func (q *Queue) Recent(k int) []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	if k <= 0 {
		return nil
	}
	if k > len(q.items) {
		k = len(q.items)
	}
	out := make([]Item, k)
	copy(out, q.items[len(q.items)-k:])
	return out
}

// Len returns the number of items not yet swept.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Sweep removes every item older than the TTL and returns how many went.
func (q *Queue) Sweep() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	kept := q.items[:0]
	for _, it := range q.items {
		if now.Sub(it.CreatedAt) <= q.ttl {
			kept = append(kept, it)
		}
	}
	removed := len(q.items) - len(kept)
	clear(q.items[len(kept):])
	q.items = kept
	if removed > 0 {
		q.log.WithField("removed", removed).Debug("alerts: swept expired items")
	}
	return removed
}

// Run sweeps once per interval until ctx is done. It always returns nil so
// it can run under an errgroup without failing the group.
func (q *Queue) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	q.sweeping.Store(true)
	defer q.sweeping.Store(false)

	for {
		select {
		case <-ctx.Done():
			q.log.Debug("alerts: sweeper stopped")
			return nil
		case <-ticker.C:
			q.Sweep()
		}
	}
}

// Sweeping reports whether a Run loop is active.
func (q *Queue) Sweeping() bool { return q.sweeping.Load() }
