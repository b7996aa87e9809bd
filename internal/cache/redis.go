// Package cache publishes per-action game telemetry to Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRetention is how long a game's action list is kept after its last
// write.
const DefaultRetention = 24 * time.Hour

// ActionRecord is one logged game action.
type ActionRecord struct {
	ID     uuid.UUID `json:"id"`
	GameID string    `json:"game_id"`
	Turn   int       `json:"turn"`
	Player string    `json:"player"`
	Action string    `json:"action"`
	Card   string    `json:"card,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// ActionsKey is the Redis list holding a game's action records.
func ActionsKey(gameID string) string { return "tuno:game:" + gameID + ":actions" }

// Encode returns the JSON stored for rec, filling in a missing ID.
func Encode(rec ActionRecord) ([]byte, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return json.Marshal(rec)
}

// Publisher appends action records to per-game Redis lists. A nil
// *Publisher discards everything.
type Publisher struct {
	rdb       *redis.Client
	retention time.Duration
}

// NewPublisher connects to the Redis server at url, e.g.
// "redis://localhost:6379/0".
func NewPublisher(url string) (*Publisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse url: %w", err)
	}
	return &Publisher{rdb: redis.NewClient(opts), retention: DefaultRetention}, nil
}

// Ping checks the connection.
func (p *Publisher) Ping(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.rdb.Ping(ctx).Err()
}

// PublishGameAction appends rec to its game's list and refreshes the list's
// expiry in one round trip.
func (p *Publisher) PublishGameAction(ctx context.Context, rec ActionRecord) error {
	if p == nil {
		return nil
	}
	b, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("cache: encode action: %w", err)
	}
	key := ActionsKey(rec.GameID)
	_, err = p.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, b)
		pipe.Expire(ctx, key, p.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache: publish %s: %w", key, err)
	}
	return nil
}

// actions reads back every record stored for gameID.
func (p *Publisher) actions(ctx context.Context, gameID string) ([]ActionRecord, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := p.rdb.LRange(ctx, ActionsKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: read actions: %w", err)
	}
	out := make([]ActionRecord, 0, len(raw))
	for _, s := range raw {
		var rec ActionRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("cache: decode action: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close releases the connection pool.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
