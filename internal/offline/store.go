// Package offline persists the last successful animal reads in a local
// sqlite file so listings and details stay available without a network
// connection. It is a write-behind sink for the query cache, never an
// authority: online reads always win.
package offline

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no snapshot exists for a key.
var ErrNotFound = errors.New("offline: snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key      TEXT PRIMARY KEY,
	family   TEXT NOT NULL,
	payload  BLOB NOT NULL,
	saved_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_family ON snapshots(family);
`

// Store is the sqlite-backed snapshot store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and migrates) the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate snapshot db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Put stores the JSON encoding of v under key, replacing any previous
// snapshot.
func (s *Store) Put(key, family string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (key, family, payload, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET family=excluded.family, payload=excluded.payload, saved_at=excluded.saved_at`,
		key, family, payload, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store snapshot %s: %w", key, err)
	}
	return nil
}

// Get decodes the snapshot under key into out and returns when it was
// saved.
func (s *Store) Get(key string, out any) (time.Time, error) {
	var payload []byte
	var savedAt int64
	err := s.db.QueryRow(`SELECT payload, saved_at FROM snapshots WHERE key = ?`, key).
		Scan(&payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return time.Time{}, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return time.Unix(savedAt, 0), nil
}

// Latest decodes the most recently saved snapshot of a family.
func (s *Store) Latest(family string, out any) (time.Time, error) {
	var payload []byte
	var savedAt int64
	err := s.db.QueryRow(
		`SELECT payload, saved_at FROM snapshots WHERE family = ? ORDER BY saved_at DESC LIMIT 1`,
		family,
	).Scan(&payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load latest %s: %w", family, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return time.Time{}, fmt.Errorf("decode latest %s: %w", family, err)
	}
	return time.Unix(savedAt, 0), nil
}

// Prune deletes snapshots older than the retention period.
func (s *Store) Prune(retention time.Duration) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE saved_at < ?`, s.now().Add(-retention).Unix())
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return res.RowsAffected()
}
