package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ziadkadry99/timemachine/internal/db"
)

const keyTheme = "theme"

// Store reads and writes visitor preferences.
type Store struct {
	db       *db.DB
	fallback Theme
}

// NewStore creates a Store backed by the given database. fallback is
// returned for visitors without a stored theme; an invalid fallback means
// DefaultTheme.
func NewStore(database *db.DB, fallback Theme) *Store {
	if !fallback.Valid() {
		fallback = DefaultTheme
	}
	return &Store{db: database, fallback: fallback}
}

// Theme returns the visitor's theme, or the fallback when none was stored
// or the stored value is unrecognised.
func (s *Store) Theme(ctx context.Context, visitorID string) (Theme, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE visitor_id = ? AND key = ?`,
		visitorID, keyTheme,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return s.fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading theme for %s: %w", visitorID, err)
	}

	t, err := ParseTheme(value)
	if err != nil {
		return s.fallback, nil
	}
	return t, nil
}

// SetTheme stores the visitor's theme.
func (s *Store) SetTheme(ctx context.Context, visitorID string, theme Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("invalid theme %q", theme)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (visitor_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(visitor_id, key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		visitorID, keyTheme, string(theme),
	)
	if err != nil {
		return fmt.Errorf("writing theme for %s: %w", visitorID, err)
	}
	return nil
}

// ToggleTheme flips the visitor's theme and writes it through.
func (s *Store) ToggleTheme(ctx context.Context, visitorID string) (Theme, error) {
	current, err := s.Theme(ctx, visitorID)
	if err != nil {
		return "", err
	}
	next := current.Toggle()
	if err := s.SetTheme(ctx, visitorID, next); err != nil {
		return "", err
	}
	return next, nil
}
