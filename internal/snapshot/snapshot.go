// Package snapshot persists a best-effort copy of the in-memory fingerprint
// map. The snapshot only warm-starts the next run; the durable index remains
// the single source of truth and is never overridden by snapshot content.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot reads and writes the fingerprint map at a fixed path.
type Snapshot struct {
	path string
}

// New creates a snapshot handle for the given file path.
func New(path string) *Snapshot {
	return &Snapshot{path: path}
}

// Path returns the snapshot file path.
func (s *Snapshot) Path() string {
	return s.path
}

// Write persists the fingerprint map. The file is written to a temporary
// sibling and renamed into place so an interrupted write never leaves a
// truncated snapshot behind.
func (s *Snapshot) Write(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot map. A missing file yields an empty map; a corrupt
// file is reported as an error so the caller can fall back to the durable
// index alone.
func (s *Snapshot) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return entries, nil
}
