package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/substantialcattle5/stillsuit/testutil"
)

func TestCollect(t *testing.T) {
	root := testutil.TempDir(t, "walker-test")
	testutil.CreateTestFile(t, root, "a.jpg", "a")
	testutil.CreateTestFile(t, root, "nested/b.png", "b")
	testutil.CreateTestFile(t, root, "nested/notes.txt", "t")
	testutil.CreateTestFile(t, root, ".hidden.jpg", "h")
	testutil.CreateTestFile(t, root, ".cache/c.jpg", "c")

	t.Run("ExtensionFilter", func(t *testing.T) {
		files, err := Collect(root, Options{Extensions: []string{".jpg", ".png"}})
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("Expected 2 files, got %d: %v", len(files), files)
		}
	})

	t.Run("EmptyAllowListMeansAll", func(t *testing.T) {
		files, err := Collect(root, Options{})
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		if len(files) != 3 {
			t.Fatalf("Expected 3 files (hidden excluded), got %d: %v", len(files), files)
		}
	})

	t.Run("HiddenFilesExcluded", func(t *testing.T) {
		files, err := Collect(root, Options{})
		if err != nil {
			t.Fatalf("Collect failed: %v", err)
		}
		for _, f := range files {
			base := filepath.Base(f)
			if base[0] == '.' {
				t.Errorf("Hidden file yielded: %s", f)
			}
			if filepath.Base(filepath.Dir(f)) == ".cache" {
				t.Errorf("File under dot-directory yielded: %s", f)
			}
		}
	})
}

func TestCollectExcludesOutputSubtrees(t *testing.T) {
	root := testutil.TempDir(t, "walker-exclude-test")
	testutil.CreateTestFile(t, root, "a.jpg", "a")
	unique := testutil.CreateTestFile(t, root, "out/UniqueFiles/u.jpg", "u")
	dup := testutil.CreateTestFile(t, root, "out/DuplicateFiles/d.jpg", "d")

	files, err := Collect(root, Options{
		ExcludeDirs: []string{
			filepath.Join(root, "out", "UniqueFiles"),
			filepath.Join(root, "out", "DuplicateFiles"),
		},
	})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if f == unique || f == dup {
			t.Errorf("Output file yielded: %s", f)
		}
	}
}

func TestCollectSkipsSymlinkedDirectories(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	root := testutil.TempDir(t, "walker-symlink-test")
	outside := testutil.TempDir(t, "walker-symlink-target")
	testutil.CreateTestFile(t, outside, "looped.jpg", "x")
	testutil.CreateTestFile(t, root, "real.jpg", "r")

	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	files, err := Collect(root, Options{})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Expected symlinked directory to be skipped, got %v", files)
	}
}

func TestCollectMissingRoot(t *testing.T) {
	if _, err := Collect("/no/such/root", Options{}); err == nil {
		t.Error("Expected error for missing root")
	}
}

func TestCount(t *testing.T) {
	root := testutil.TempDir(t, "walker-count-test")
	testutil.CreateTestFile(t, root, "a.jpg", "a")
	testutil.CreateTestFile(t, root, "b.jpg", "b")
	testutil.CreateTestFile(t, root, "c.txt", "c")

	count, err := Count(root, Options{Extensions: []string{".jpg"}})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}
