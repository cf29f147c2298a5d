package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/substantialcattle5/stillsuit/testutil"
)

func TestWriteAndLoad(t *testing.T) {
	dir := testutil.TempDir(t, "snapshot-test")
	snap := New(filepath.Join(dir, "hashes.json"))

	entries := map[string]string{
		"fp-1": "/photos/a.jpg",
		"fp-2": "/photos/b.jpg",
	}
	if err := snap.Write(entries); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := snap.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(loaded))
	}
	if loaded["fp-1"] != "/photos/a.jpg" || loaded["fp-2"] != "/photos/b.jpg" {
		t.Errorf("Unexpected entries: %v", loaded)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := testutil.TempDir(t, "snapshot-missing-test")
	snap := New(filepath.Join(dir, "hashes.json"))

	loaded, err := snap.Load()
	if err != nil {
		t.Fatalf("Load of missing snapshot should not fail: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected empty map for missing snapshot, got %v", loaded)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := testutil.TempDir(t, "snapshot-corrupt-test")
	path := testutil.CreateTestFile(t, dir, "hashes.json", "{not json")

	if _, err := New(path).Load(); err == nil {
		t.Error("Expected error for corrupt snapshot")
	}
}

func TestWriteReplacesAtomically(t *testing.T) {
	dir := testutil.TempDir(t, "snapshot-replace-test")
	snap := New(filepath.Join(dir, "hashes.json"))

	if err := snap.Write(map[string]string{"fp-1": "/a"}); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := snap.Write(map[string]string{"fp-2": "/b"}); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	loaded, err := snap.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded["fp-2"] != "/b" {
		t.Errorf("Expected only second write's content, got %v", loaded)
	}

	// No temp file should be left behind.
	if _, err := os.Stat(snap.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary snapshot file left behind")
	}
}
