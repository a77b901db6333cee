// Package sqlite provides the durable store backing pending mutation
// proposals and per-user preferences.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS pending_actions (
	user_id    TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_id  TEXT PRIMARY KEY,
	timezone TEXT NOT NULL
);
`

// Store is the SQLite-backed storage shared by the repositories.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the assistant database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "assistant.db")

	// WAL keeps concurrent per-user handlers from tripping over each other
	// on the single writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// PendingActions returns the pending-action repository backed by this store.
func (s *Store) PendingActions() *PendingActionStore {
	return &PendingActionStore{db: s.db}
}

// Preferences returns the preference repository backed by this store.
func (s *Store) Preferences() *PreferenceStore {
	return &PreferenceStore{db: s.db}
}
