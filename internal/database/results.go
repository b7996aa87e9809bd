// Package database records finished games in Postgres. Nothing is ever read
// back to resume a game.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_results (
	game_id     UUID PRIMARY KEY,
	winner      TEXT NOT NULL,
	players     TEXT[] NOT NULL,
	turns       INTEGER NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`

var errNoStore = errors.New("database: no store")

// GameResult is the audit row written when a game ends with a winner.
type GameResult struct {
	GameID     string
	Winner     string
	Players    []string
	Turns      int
	FinishedAt time.Time
}

// Store writes game results through a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database at url.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate creates the results table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

// RecordResult inserts r. Recording the same game twice is a no-op.
func (s *Store) RecordResult(ctx context.Context, r GameResult) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO game_results (game_id, winner, players, turns, finished_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (game_id) DO NOTHING`,
		r.GameID, r.Winner, r.Players, r.Turns, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("database: record game %s: %w", r.GameID, err)
	}
	return nil
}

// result loads the row for gameID.
func (s *Store) result(ctx context.Context, gameID string) (GameResult, error) {
	if s == nil {
		return GameResult{}, errNoStore
	}
	var r GameResult
	err := s.pool.QueryRow(ctx,
		`SELECT game_id::text, winner, players, turns, finished_at FROM game_results WHERE game_id = $1`,
		gameID,
	).Scan(&r.GameID, &r.Winner, &r.Players, &r.Turns, &r.FinishedAt)
	if err != nil {
		return GameResult{}, fmt.Errorf("database: load game %s: %w", gameID, err)
	}
	return r, nil
}

// Close closes the pool.
func (s *Store) Close() {
	if s != nil {
		s.pool.Close()
	}
}
