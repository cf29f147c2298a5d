package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	defer SetOutput(os.Stderr)

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("processing %s", "a.jpg")
	Warn("collision between %s and %s", "a.jpg", "b.jpg")
	Error("hashing failed: %v", "permission denied")

	out := buf.String()
	for _, want := range []string{
		"INFO - processing a.jpg",
		"WARNING - collision between a.jpg and b.jpg",
		"ERROR - hashing failed: permission denied",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q, got:\n%s", want, out)
		}
	}
}

func TestOpenFile(t *testing.T) {
	defer Close()

	path := t.TempDir() + "/scan.log"
	if err := OpenFile(path); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	Info("started scan of %d files", 3)
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "started scan of 3 files") {
		t.Errorf("log file missing message, got: %s", data)
	}
}

func TestOpenFileAppends(t *testing.T) {
	defer Close()

	path := t.TempDir() + "/scan.log"
	if err := OpenFile(path); err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	Info("first run")
	Close()

	if err := OpenFile(path); err != nil {
		t.Fatalf("Reopening log file failed: %v", err)
	}
	Info("second run")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Errorf("expected both runs in log file, got: %s", data)
	}
}
