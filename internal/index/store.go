// Package index implements the durable fingerprint index.
//
// The index is a single SQLite table mapping a content fingerprint to the
// first path observed with that content. It uses modernc.org/sqlite, a pure
// Go driver, so the binary cross-compiles without CGO. Writes are batched:
// records accumulate inside an open transaction and a commit boundary is
// guaranteed at least once per batch size, so a crash loses at most one
// partial batch.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// Store is the durable fingerprint -> first-seen path mapping.
type Store struct {
	mu        sync.Mutex
	db        *sql.DB
	tx        *sql.Tx
	pending   int
	batchSize int
	path      string
}

// NewStore opens (creating if necessary) the index database inside dataDir.
// batchSize bounds how many records may sit in an uncommitted batch.
func NewStore(dataDir string, batchSize int) (*Store, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got: %d", batchSize)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, constants.IndexDBName)

	// WAL keeps readers unblocked while a batch transaction is open.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS hashes (
			hash TEXT PRIMARY KEY,
			filepath TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating hashes table: %w", err)
	}

	return &Store{
		db:        db,
		batchSize: batchSize,
		path:      dbPath,
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record inserts a fingerprint -> path mapping into the current batch.
// If the fingerprint already exists the call is a no-op, preserving
// first-seen semantics. The batch is committed once it reaches the
// configured size.
func (s *Store) Record(fingerprint, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning index batch: %w", err)
		}
		s.tx = tx
	}

	if _, err := s.tx.Exec(
		"INSERT OR IGNORE INTO hashes (hash, filepath) VALUES (?, ?)",
		fingerprint, path,
	); err != nil {
		return fmt.Errorf("recording fingerprint: %w", err)
	}

	s.pending++
	if s.pending >= s.batchSize {
		return s.commitLocked()
	}
	return nil
}

// Lookup returns the canonical path recorded for a fingerprint. Records
// sitting in an uncommitted batch are visible.
func (s *Store) Lookup(fingerprint string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row *sql.Row
	if s.tx != nil {
		row = s.tx.QueryRow("SELECT filepath FROM hashes WHERE hash = ?", fingerprint)
	} else {
		row = s.db.QueryRow("SELECT filepath FROM hashes WHERE hash = ?", fingerprint)
	}

	var path string
	if err := row.Scan(&path); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("looking up fingerprint: %w", err)
	}
	return path, true, nil
}

// LoadAll returns the full fingerprint -> path mapping, used to hydrate the
// in-memory working set at startup.
func (s *Store) LoadAll() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT hash, filepath FROM hashes")
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var fingerprint, path string
		if err := rows.Scan(&fingerprint, &path); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		entries[fingerprint] = path
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index rows: %w", err)
	}

	return entries, nil
}

// Count returns the number of persisted entries, including any pending batch.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row *sql.Row
	if s.tx != nil {
		row = s.tx.QueryRow("SELECT COUNT(*) FROM hashes")
	} else {
		row = s.db.QueryRow("SELECT COUNT(*) FROM hashes")
	}

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting index entries: %w", err)
	}
	return count, nil
}

// Flush commits any pending batch to durable storage.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked()
}

// Clear removes every entry. Used only on explicit user request, never
// automatically.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commitLocked(); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM hashes"); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	return nil
}

// Close flushes the pending batch and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commitLocked(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

func (s *Store) commitLocked() error {
	if s.tx == nil {
		return nil
	}
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("committing index batch: %w", err)
	}
	s.tx = nil
	s.pending = 0
	return nil
}
