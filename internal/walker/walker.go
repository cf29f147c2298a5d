// Package walker produces the candidate file sequence for a scan.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/substantialcattle5/stillsuit/internal/logger"
)

// Options controls which files a walk yields.
type Options struct {
	// Extensions is the allow-list of file extensions (lowercase, with
	// leading dot). Empty means every file is eligible.
	Extensions []string

	// ExcludeDirs are directory subtrees whose contents are never yielded,
	// used to keep the scan away from its own output.
	ExcludeDirs []string
}

// Collect walks root and returns every eligible candidate file, in
// traversal order. Hidden files and dot-directories are skipped, excluded
// subtrees are pruned, and symbolic links are not followed.
func Collect(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("accessing scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	excluded := make([]string, 0, len(opts.ExcludeDirs))
	for _, dir := range opts.ExcludeDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving excluded directory %s: %w", dir, err)
		}
		excluded = append(excluded, abs)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				logger.Warn("permission denied for %s, skipping", path)
				return nil
			}
			return err
		}

		name := d.Name()

		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if isWithinAny(path, excluded) {
				return filepath.SkipDir
			}
			return nil
		}

		// WalkDir does not follow symlinks, so a symlinked directory shows
		// up here as a non-regular entry and is dropped with the rest.
		if !d.Type().IsRegular() {
			if d.Type()&fs.ModeSymlink != 0 {
				logger.Warn("skipping symbolic link: %s", path)
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !matchesExtension(name, opts.Extensions) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Count returns how many files a Collect call over the same arguments would
// yield, for progress-total estimation.
func Count(root string, opts Options) (int, error) {
	files, err := Collect(root, opts)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

func matchesExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func isWithinAny(path string, dirs []string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range dirs {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
