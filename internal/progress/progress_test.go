package progress

import (
	"context"
	"testing"
	"time"
)

func TestQuietModeSuppressesBar(t *testing.T) {
	pm := NewManager(Options{Quiet: true})
	pm.InitScanProgress(10, "Processing files")

	if pm.bar != nil {
		t.Error("Quiet mode must not create a progress bar")
	}

	// These must be safe no-ops without a bar.
	pm.FileProcessed()
	pm.FinishScanProgress()
}

func TestIsCancelledInitiallyFalse(t *testing.T) {
	pm := NewManager(Options{})
	if pm.IsCancelled() {
		t.Error("New manager should not be cancelled")
	}
}

func TestCleanupCancelsContext(t *testing.T) {
	pm := NewManager(Options{Quiet: true})
	ctx := pm.SetupCancellation(context.Background())

	pm.Cleanup()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("Cleanup should cancel the scan context")
	}
}
