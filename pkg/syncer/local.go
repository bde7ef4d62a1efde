package syncer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Logical slot names for local persistence.
const (
	// SlotCache holds the cache entries as a JSON list of [question, record] pairs.
	SlotCache = "cache"
	// SlotStats holds the stats snapshot as JSON.
	SlotStats = "stats"
	// SlotBinID holds the remote blob identifier string.
	SlotBinID = "bin_id"
)

// SlotStore is the local persistence half of the sync gateway: a SQLite
// table of named JSON blobs.
type SlotStore struct {
	db *sql.DB
}

const createSlotsTable = `
CREATE TABLE IF NOT EXISTS slots (
	name TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// OpenSlots opens (and migrates) the slot database at the given path.
func OpenSlots(dbPath string) (*SlotStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open slot db: %w", err)
	}
	if _, err := db.Exec(createSlotsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate slot db: %w", err)
	}
	return &SlotStore{db: db}, nil
}

// Put stores a value under a slot name, replacing any previous value.
func (s *SlotStore) Put(ctx context.Context, name string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO slots (name, value, updated_at) VALUES (?, ?, ?)`,
		name, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("slot put %s: %w", name, err)
	}
	return nil
}

// Get returns the value stored under a slot name, with ok=false when the
// slot has never been written.
func (s *SlotStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE name = ?`, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("slot get %s: %w", name, err)
	}
	return value, true, nil
}

// Delete removes a slot. Deleting an absent slot is not an error.
func (s *SlotStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("slot delete %s: %w", name, err)
	}
	return nil
}

// Close releases the database connection.
func (s *SlotStore) Close() error {
	return s.db.Close()
}
