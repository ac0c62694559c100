package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/canvas"
)

const (
	fieldAnthropicKey = "anthropicKey"
	fieldStabilityKey = "stabilityKey"
)

// Load fetches every field saved for scope.
// Returns canvas.ErrSettingsNotFound if the scope has no rows.
func (s *PGStore) Load(ctx context.Context, scope string) (canvas.Credentials, error) {
	rows, err := s.db.Query(ctx,
		`SELECT field, value FROM canvas_settings WHERE scope = $1`, scope)
	if err != nil {
		return canvas.Credentials{}, fmt.Errorf("canvas: query settings: %w", err)
	}
	defer rows.Close()

	var (
		c     canvas.Credentials
		found bool
	)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return canvas.Credentials{}, fmt.Errorf("canvas: scan setting: %w", err)
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
		return canvas.Credentials{}, fmt.Errorf("canvas: rows settings: %w", err)
	}
	if !found {
		return canvas.Credentials{}, canvas.ErrSettingsNotFound
	}
	return c, nil
}

// Save upserts both fields for scope in one transaction.
func (s *PGStore) Save(ctx context.Context, scope string, c canvas.Credentials) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("canvas: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	fields := []struct{ name, value string }{
		{fieldAnthropicKey, c.AnthropicKey},
		{fieldStabilityKey, c.StabilityKey},
	}
	for _, f := range fields {
		if _, err := tx.Exec(ctx,
			`INSERT INTO canvas_settings (scope, field, value) VALUES ($1, $2, $3)
			 ON CONFLICT (scope, field) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
			scope, f.name, f.value,
		); err != nil {
			return fmt.Errorf("canvas: upsert %s: %w", f.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("canvas: commit: %w", err)
	}
	return nil
}

// Delete removes every field for scope.
// No error if the scope doesn't exist.
func (s *PGStore) Delete(ctx context.Context, scope string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM canvas_settings WHERE scope = $1`, scope)
	if err != nil {
		return fmt.Errorf("canvas: delete settings: %w", err)
	}
	return nil
}
