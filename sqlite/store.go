// Package sqlite persists canvas settings in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meikuraledutech/canvas"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
    scope      TEXT NOT NULL,
    field      TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (scope, field)
);
`

// Field names stored for each scope.
const (
	fieldAnthropicKey = "anthropicKey"
	fieldStabilityKey = "stabilityKey"
)

// Store implements canvas.SettingsStore on top of SQLite.
type Store struct {
	conn *sql.DB
	Path string
}

// Open opens (or creates) the database at path with WAL mode and creates the schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: set WAL mode: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &Store{conn: conn, Path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Load returns the credentials saved under scope.
// Returns canvas.ErrSettingsNotFound if the scope has no rows.
func (s *Store) Load(ctx context.Context, scope string) (canvas.Credentials, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT field, value FROM settings WHERE scope = ?`, scope)
	if err != nil {
		return canvas.Credentials{}, fmt.Errorf("sqlite: query settings: %w", err)
	}
	defer rows.Close()

	var (
		c     canvas.Credentials
		found bool
	)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return canvas.Credentials{}, fmt.Errorf("sqlite: scan setting: %w", err)
		}
		found = true
		switch field {
		case fieldAnthropicKey:
			c.AnthropicKey = value
		case fieldStabilityKey:
			c.StabilityKey = value
		}
	}
	if err := rows.Err(); err != nil {
		return canvas.Credentials{}, fmt.Errorf("sqlite: rows settings: %w", err)
	}
	if !found {
		return canvas.Credentials{}, canvas.ErrSettingsNotFound
	}
	return c, nil
}

// Save writes both fields for scope in one transaction.
func (s *Store) Save(ctx context.Context, scope string, c canvas.Credentials) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	for field, value := range map[string]string{
		fieldAnthropicKey: c.AnthropicKey,
		fieldStabilityKey: c.StabilityKey,
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (scope, field, value) VALUES (?, ?, ?)
			 ON CONFLICT (scope, field) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
			scope, field, value,
		); err != nil {
			return fmt.Errorf("sqlite: upsert %s: %w", field, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Delete removes every field for scope.
// No error if the scope doesn't exist.
func (s *Store) Delete(ctx context.Context, scope string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM settings WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("sqlite: delete settings: %w", err)
	}
	return nil
}
