// Package config carries the explicit scan configuration. A Config is built
// once by the command layer and passed into the engine and its
// collaborators; nothing reads ambient global state.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// Config is the full configuration for one scan run.
type Config struct {
	// RootDir is the directory tree to scan.
	RootDir string

	// OutputDir is where persisted state and the two destination
	// directories live.
	OutputDir string

	// Extensions is the allow-list of file extensions. Empty means scan
	// every file.
	Extensions []string

	// HashAlgorithm names the digest used for fingerprints.
	HashAlgorithm string

	// ChunkSize is the read size in bytes for hashing and comparison.
	ChunkSize int64

	// CheckpointInterval is the number of processed files between flushes
	// of the index batch and the progress snapshot.
	CheckpointInterval int

	// DryRun classifies files without copying or touching durable state.
	DryRun bool

	// RemoveSource deletes a source file after its copy has been verified.
	RemoveSource bool

	// MinFreeSpace is the free-space floor required on the output volume
	// before the scan starts.
	MinFreeSpace int64
}

// DefaultExtensions is the built-in allow-list, aimed at photo libraries.
func DefaultExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}
}

// New returns a Config for the given root and output directories with every
// tunable at its default.
func New(rootDir, outputDir string) Config {
	return Config{
		RootDir:            rootDir,
		OutputDir:          outputDir,
		Extensions:         DefaultExtensions(),
		HashAlgorithm:      constants.HashAlgorithmSHA256,
		ChunkSize:          constants.DefaultChunkSize,
		CheckpointInterval: constants.DefaultCheckpointInterval,
		MinFreeSpace:       constants.MinFreeSpace,
	}
}

// UniqueDir returns the destination for first-seen files.
func (c *Config) UniqueDir() string {
	return filepath.Join(c.OutputDir, constants.UniqueDirName)
}

// DuplicateDir returns the destination for second and later occurrences.
func (c *Config) DuplicateDir() string {
	return filepath.Join(c.OutputDir, constants.DuplicateDirName)
}

// IndexDir returns where the durable index database lives.
func (c *Config) IndexDir() string {
	return c.OutputDir
}

// SnapshotPath returns the progress snapshot file location.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.OutputDir, constants.SnapshotFileName)
}

// LogPath returns the scan log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.OutputDir, constants.LogFileName)
}

// Validate reports configuration errors that must abort before traversal.
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return fmt.Errorf("root directory must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must be set")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got: %d", c.ChunkSize)
	}
	if c.CheckpointInterval <= 0 {
		return fmt.Errorf("checkpoint interval must be positive, got: %d", c.CheckpointInterval)
	}
	return nil
}

// NormalizeExtensions lowercases extensions and ensures each carries a
// leading dot, so ".JPG", "jpg" and ".jpg" all match the same files.
func NormalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return normalized
}
