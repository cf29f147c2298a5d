// Package engine orchestrates a deduplication scan: hashing candidates,
// consulting the fingerprint index, routing files into the unique or
// duplicate destination and checkpointing progress so an interrupted scan
// can resume.
package engine

import (
	"context"
	"os"
	"sync"

	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/fingerprint"
	"github.com/substantialcattle5/stillsuit/internal/index"
	"github.com/substantialcattle5/stillsuit/internal/logger"
	"github.com/substantialcattle5/stillsuit/internal/placement"
	"github.com/substantialcattle5/stillsuit/internal/snapshot"
)

// Stats counts the terminal state of every file offered to the engine.
// Processed = Unique + Duplicates + Skipped always holds.
type Stats struct {
	Processed  int
	Unique     int
	Duplicates int
	Skipped    int
	Redundant  int // placements skipped because an identical copy already existed
}

// ProgressManager receives per-file progress callbacks.
type ProgressManager interface {
	FileProcessed()
	PrintVerbose(format string, args ...interface{})
}

// Engine owns the in-memory fingerprint map and drives files through the
// hash -> lookup -> place pipeline. One engine instance per durable store.
type Engine struct {
	cfg      config.Config
	hasher   *fingerprint.Hasher
	store    *index.Store
	resolver *placement.Resolver
	snap     *snapshot.Snapshot

	mu              sync.Mutex
	fingerprints    map[string]string
	stats           Stats
	sinceCheckpoint int
	interrupted     bool

	progressMgr ProgressManager
}

// New builds an engine and hydrates its in-memory fingerprint map. The
// durable store is authoritative; the snapshot only contributes entries the
// store lacks, and only when the recorded canonical path still exists.
func New(cfg config.Config, store *index.Store, snap *snapshot.Snapshot) (*Engine, error) {
	hasher, err := fingerprint.NewHasher(cfg.HashAlgorithm, cfg.ChunkSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		hasher:   hasher,
		store:    store,
		resolver: placement.NewResolver(hasher, cfg.RemoveSource),
		snap:     snap,
	}

	if err := e.hydrate(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetProgressManager sets the progress callbacks. Optional.
func (e *Engine) SetProgressManager(pm ProgressManager) {
	e.progressMgr = pm
}

func (e *Engine) hydrate() error {
	entries, err := e.store.LoadAll()
	if err != nil {
		return err
	}

	warm, err := e.snap.Load()
	if err != nil {
		// The snapshot is best-effort; a corrupt one is discarded.
		logger.Warn("ignoring unreadable snapshot: %v", err)
		warm = nil
	}

	recovered := 0
	for fp, path := range warm {
		if _, known := entries[fp]; known {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		entries[fp] = path
		recovered++
		if !e.cfg.DryRun {
			// Repair the store with the entry lost to a partial batch.
			if err := e.store.Record(fp, path); err != nil {
				return err
			}
		}
	}
	if recovered > 0 {
		logger.Info("recovered %d index entries from progress snapshot", recovered)
	}

	e.fingerprints = entries
	return nil
}

// IndexSize returns the number of fingerprints currently known in memory.
func (e *Engine) IndexSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.fingerprints)
}

// Stats returns a copy of the current counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Interrupted reports whether the last run stopped on cancellation.
func (e *Engine) Interrupted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interrupted
}

// Run processes every candidate file in order. Cancellation via ctx stops
// the run between files after persisting current progress; it is reported
// through Interrupted(), not as an error.
func (e *Engine) Run(ctx context.Context, files []string) error {
	for _, path := range files {
		select {
		case <-ctx.Done():
			e.RequestShutdown()
			return nil
		default:
		}

		e.Process(path)

		if e.progressMgr != nil {
			e.progressMgr.FileProcessed()
		}
	}

	return e.Checkpoint()
}

// Process routes a single file to exactly one terminal state: skipped,
// routed-unique or routed-duplicate. Per-file failures are logged and
// counted, never propagated.
func (e *Engine) Process(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.Processed++

	fp, err := e.hasher.HashFile(path)
	if err != nil {
		logger.Error("hashing %s: %v", path, err)
		e.stats.Skipped++
		return
	}

	canonical, seen := e.fingerprints[fp]

	if e.cfg.DryRun {
		// Classification only: the in-memory map keeps counts honest while
		// the filesystem and the store stay untouched.
		if seen {
			e.stats.Duplicates++
			logger.Info("dry-run: would copy %s to %s", path, e.cfg.DuplicateDir())
		} else {
			e.fingerprints[fp] = path
			e.stats.Unique++
			logger.Info("dry-run: would copy %s to %s", path, e.cfg.UniqueDir())
		}
		return
	}

	if !seen {
		e.fingerprints[fp] = path
		if err := e.store.Record(fp, path); err != nil {
			logger.Error("recording fingerprint for %s: %v", path, err)
		}
		e.route(path, fp, e.cfg.UniqueDir(), &e.stats.Unique)
	} else {
		logger.Info("duplicate found: %s (matches %s)", path, canonical)
		e.route(path, fp, e.cfg.DuplicateDir(), &e.stats.Duplicates)
	}

	e.sinceCheckpoint++
	if e.sinceCheckpoint >= e.cfg.CheckpointInterval {
		if err := e.checkpointLocked(); err != nil {
			logger.Error("checkpoint failed: %v", err)
		}
	}
}

func (e *Engine) route(path, fp, destDir string, counter *int) {
	result, err := e.resolver.Place(path, fp, destDir)
	if err != nil {
		logger.Error("placing %s: %v", path, err)
		e.stats.Skipped++
		return
	}

	*counter++
	if result.Redundant {
		e.stats.Redundant++
	}
	if e.progressMgr != nil {
		e.progressMgr.PrintVerbose("  └─ %s -> %s\n", path, result.DestPath)
	}
}

// Checkpoint flushes the pending index batch and writes the progress
// snapshot. Called on a fixed cadence and unconditionally at scan end.
func (e *Engine) Checkpoint() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checkpointLocked()
}

func (e *Engine) checkpointLocked() error {
	e.sinceCheckpoint = 0

	if e.cfg.DryRun {
		return nil
	}

	if err := e.store.Flush(); err != nil {
		return err
	}
	if err := e.snap.Write(e.fingerprints); err != nil {
		// Snapshot is an optimization; losing it never loses data.
		logger.Warn("writing progress snapshot: %v", err)
	}
	return nil
}

// RequestShutdown synchronously persists current progress. The host's
// interrupt handling invokes this before terminating the process; it is
// also safe to call redundantly.
func (e *Engine) RequestShutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.interrupted = true
	if err := e.checkpointLocked(); err != nil {
		logger.Error("persisting progress on shutdown: %v", err)
	}
}
