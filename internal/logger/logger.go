// Package logger provides the leveled log sink for scan observability.
// Messages are appended to a log file in the output directory so long scans
// leave an auditable trail; when no file has been opened, messages fall back
// to stderr.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu     sync.RWMutex
	output io.Writer = os.Stderr
	closer io.Closer
)

// OpenFile directs log output to the given file path, appending if it exists.
func OpenFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
	}
	output = f
	closer = f
	return nil
}

// SetOutput sets the output writer for log messages.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closer = nil
	output = w
}

// Close releases the log file, if one is open, and reverts to stderr.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
		closer = nil
	}
	output = os.Stderr
}

func write(level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(output, ts+" - "+level+" - "+format+"\n", args...)
}

// Info records an informational message.
func Info(format string, args ...any) {
	write("INFO", format, args...)
}

// Warn records a warning message.
func Warn(format string, args ...any) {
	write("WARNING", format, args...)
}

// Error records an error message.
func Error(format string, args ...any) {
	write("ERROR", format, args...)
}
