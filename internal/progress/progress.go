package progress

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/schollz/progressbar/v3"
)

// Options configures progress output behavior
type Options struct {
	Quiet   bool
	Verbose bool
}

// Manager handles the scan progress bar and cancellation
type Manager struct {
	options    Options
	bar        *progressbar.ProgressBar
	cancelFunc context.CancelFunc
	cancelled  bool
	cancelMux  sync.Mutex
	signalChan chan os.Signal
}

// NewManager creates a new progress manager
func NewManager(options Options) *Manager {
	return &Manager{
		options:    options,
		signalChan: make(chan os.Signal, 1),
	}
}

// SetupCancellation sets up signal handling for cancellation. The returned
// context is cancelled on SIGINT/SIGTERM; the engine watches it so durable
// state can be flushed before the process exits.
func (pm *Manager) SetupCancellation(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	pm.cancelFunc = cancel

	signal.Notify(pm.signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-pm.signalChan:
			pm.cancelMux.Lock()
			pm.cancelled = true
			pm.cancelMux.Unlock()
			// #nosec G104 - cancellation message is not critical for functionality
			fmt.Println("\nScan interrupted, saving progress...")
			cancel()
		case <-ctx.Done():
			// Context already cancelled
		}
	}()

	return ctx
}

// IsCancelled checks if the operation was cancelled
func (pm *Manager) IsCancelled() bool {
	pm.cancelMux.Lock()
	defer pm.cancelMux.Unlock()
	return pm.cancelled
}

// Cleanup removes signal handlers
func (pm *Manager) Cleanup() {
	signal.Stop(pm.signalChan)
	if pm.cancelFunc != nil {
		pm.cancelFunc()
	}
}

// InitScanProgress initializes the file-count progress bar
func (pm *Manager) InitScanProgress(totalFiles int, description string) {
	if pm.options.Quiet {
		return
	}

	pm.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(65),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			// #nosec G104 - progress bar completion message is not critical
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
}

// FileProcessed advances the bar by one file
func (pm *Manager) FileProcessed() {
	if pm.options.Quiet || pm.bar == nil {
		return
	}
	// #nosec G104 - progress bar errors are not critical for functionality
	pm.bar.Add(1)
}

// FinishScanProgress marks the scan progress as complete
func (pm *Manager) FinishScanProgress() {
	if pm.options.Quiet || pm.bar == nil {
		return
	}
	// #nosec G104 - progress bar errors are not critical for functionality
	pm.bar.Finish()
}

// PrintVerbose prints verbose information if verbose mode is enabled
func (pm *Manager) PrintVerbose(format string, args ...interface{}) {
	if pm.options.Verbose {
		if pm.bar != nil {
			// #nosec G104 - progress bar clear is not critical for functionality
			pm.bar.Clear()
		}

		// #nosec G104 - verbose output errors are not critical for functionality
		fmt.Printf(format, args...)
		if len(format) == 0 || format[len(format)-1] != '\n' {
			// #nosec G104 - newline output is not critical for functionality
			fmt.Println()
		}
	}
}

// PrintInfo prints informational messages (unless quiet mode)
func (pm *Manager) PrintInfo(format string, args ...interface{}) {
	if !pm.options.Quiet {
		if pm.bar != nil {
			// #nosec G104 - progress bar clear is not critical for functionality
			pm.bar.Clear()
		}

		// #nosec G104 - info output errors are not critical for functionality
		fmt.Printf(format, args...)
	}
}
