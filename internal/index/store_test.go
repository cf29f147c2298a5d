package index

import (
	"testing"

	"github.com/substantialcattle5/stillsuit/testutil"
)

func newTestStore(t *testing.T, batchSize int) *Store {
	t.Helper()
	dir := testutil.TempDir(t, "index-test")
	store, err := NewStore(dir, batchSize)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestRecordAndLookup(t *testing.T) {
	store := newTestStore(t, 10)

	if err := store.Record("fp-1", "/photos/a.jpg"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	path, found, err := store.Lookup("fp-1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !found {
		t.Fatal("Expected fingerprint to be found")
	}
	if path != "/photos/a.jpg" {
		t.Errorf("Lookup returned %s, want /photos/a.jpg", path)
	}

	_, found, err = store.Lookup("fp-absent")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if found {
		t.Error("Expected absent fingerprint to not be found")
	}
}

func TestRecordPreservesFirstSeen(t *testing.T) {
	store := newTestStore(t, 10)

	if err := store.Record("fp-1", "/first.jpg"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record("fp-1", "/second.jpg"); err != nil {
		t.Fatalf("Second record failed: %v", err)
	}

	path, found, err := store.Lookup("fp-1")
	if err != nil || !found {
		t.Fatalf("Lookup failed: found=%v err=%v", found, err)
	}
	if path != "/first.jpg" {
		t.Errorf("Re-recording overwrote first-seen path: got %s", path)
	}
}

func TestBatchCommitBoundary(t *testing.T) {
	dir := testutil.TempDir(t, "index-batch-test")
	store, err := NewStore(dir, 3)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	// Two records sit below the batch size: a second connection must not
	// see them yet.
	store.Record("fp-1", "/a")
	store.Record("fp-2", "/b")

	other, err := NewStore(dir, 3)
	if err != nil {
		t.Fatalf("Failed to open second connection: %v", err)
	}
	defer other.Close()

	entries, err := other.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Uncommitted batch visible to other connection: %v", entries)
	}

	// The third record crosses the batch boundary and must be durable.
	store.Record("fp-3", "/c")

	entries, err = other.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 committed entries after batch commit, got %d", len(entries))
	}
}

func TestFlushCommitsPartialBatch(t *testing.T) {
	dir := testutil.TempDir(t, "index-flush-test")
	store, err := NewStore(dir, 100)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	store.Record("fp-1", "/a")
	if err := store.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	other, err := NewStore(dir, 100)
	if err != nil {
		t.Fatalf("Failed to open second connection: %v", err)
	}
	defer other.Close()

	entries, err := other.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry after flush, got %d", len(entries))
	}
}

func TestLoadAllSurvivesReopen(t *testing.T) {
	dir := testutil.TempDir(t, "index-reopen-test")

	store, err := NewStore(dir, 2)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	store.Record("fp-1", "/a")
	store.Record("fp-2", "/b")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewStore(dir, 2)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries after reopen, got %d", len(entries))
	}
	if entries["fp-1"] != "/a" || entries["fp-2"] != "/b" {
		t.Errorf("Unexpected entries: %v", entries)
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t, 10)

	store.Record("fp-1", "/a")
	store.Record("fp-2", "/b")

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty index after clear, got %d entries", count)
	}
}

func TestCountIncludesPendingBatch(t *testing.T) {
	store := newTestStore(t, 100)

	store.Record("fp-1", "/a")
	store.Record("fp-2", "/b")

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected pending records in count, got %d", count)
	}
}
