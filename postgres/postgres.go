// Package postgres persists canvas settings in PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/canvas"
)

// PGStore implements canvas.SettingsStore on a pgx pool.
type PGStore struct {
	db    *pgxpool.Pool
	owned bool
}

var _ canvas.SettingsStore = (*PGStore)(nil)

// New wraps a pool owned by the caller. Close leaves it open.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Open connects to databaseURL, verifies the connection and creates the
// settings table. Close releases the pool.
func Open(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("canvas: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("canvas: ping: %w", err)
	}

	s := &PGStore{db: pool, owned: true}
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("canvas: create schema: %w", err)
	}
	return s, nil
}

// Close releases the pool if the store opened it.
func (s *PGStore) Close() {
	if s.owned {
		s.db.Close()
	}
}
