// Package preferences persists the last ZIP, state and station the user picked
package preferences

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ngmaloney/isitfrozen/internal/database"
)

// Keys under which selections are stored
const (
	KeyZip     = "saved-zip-code"
	KeyState   = "saved-state"
	KeyStation = "saved-station"
)

// Preferences is the last saved selection. Empty strings mean "not set".
type Preferences struct {
	Zip     string
	State   string
	Station string
}

// Store handles persistence for user preferences
type Store struct {
	db *sql.DB
}

// NewStore creates a store on db, creating the schema if needed
func NewStore(db *sql.DB) (*Store, error) {
	if err := database.EnsureUserSchema(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Load reads all saved preferences
func (s *Store) Load(ctx context.Context) (Preferences, error) {
	var p Preferences

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM preferences WHERE key IN (?, ?, ?)", KeyZip, KeyState, KeyStation)
	if err != nil {
		return p, fmt.Errorf("querying preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return p, fmt.Errorf("scanning preference: %w", err)
		}
		switch key {
		case KeyZip:
			p.Zip = value
		case KeyState:
			p.State = value
		case KeyStation:
			p.Station = value
		}
	}

	return p, rows.Err()
}

// SaveZip stores the last resolved ZIP code
func (s *Store) SaveZip(ctx context.Context, zip string) error {
	return s.set(ctx, s.db, KeyZip, zip)
}

// SaveState stores the selected state and clears any station saved for the
// previous selection, even when the same state is picked again.
func (s *Store) SaveState(ctx context.Context, state string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.set(ctx, tx, KeyState, state); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", KeyStation); err != nil {
		return fmt.Errorf("clearing saved station: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveStation stores the station picked for the saved state
func (s *Store) SaveStation(ctx context.Context, station string) error {
	return s.set(ctx, s.db, KeyStation, station)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) set(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("saving preference %s: %w", key, err)
	}
	return nil
}
