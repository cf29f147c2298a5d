// Package placement copies files into a destination directory without
// filename collisions. A file whose content already exists at the naive
// destination is skipped; a name taken by different content gets a numeric
// suffix; equal fingerprints with unequal bytes are treated as a hash
// collision and disambiguated rather than merged.
package placement

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/substantialcattle5/stillsuit/internal/constants"
	"github.com/substantialcattle5/stillsuit/internal/fingerprint"
	"github.com/substantialcattle5/stillsuit/internal/logger"
)

// ErrTooManyAttempts is returned when no free filename was found within the
// disambiguation bound. It is a per-file failure, never fatal to a scan.
var ErrTooManyAttempts = errors.New("exceeded maximum attempts to find a unique filename")

// Result describes where a file ended up.
type Result struct {
	// DestPath is the path the content lives at inside the destination
	// directory, whether it was copied now or already present.
	DestPath string

	// Copied is true when this call wrote the file.
	Copied bool

	// Redundant is true when an identical copy was already present and the
	// copy was skipped.
	Redundant bool

	// SourceRemoved is true when the source file was deleted after a
	// verified copy.
	SourceRemoved bool
}

// Resolver places files using a hasher for content checks.
type Resolver struct {
	hasher       *fingerprint.Hasher
	removeSource bool
}

// NewResolver creates a placement resolver. When removeSource is set, a
// source file is deleted after its copy has been re-hashed and verified.
func NewResolver(hasher *fingerprint.Hasher, removeSource bool) *Resolver {
	return &Resolver{hasher: hasher, removeSource: removeSource}
}

// Place copies srcPath into destDir under a collision-free name.
// srcFingerprint must be the already-computed fingerprint of srcPath.
func (r *Resolver) Place(srcPath, srcFingerprint, destDir string) (Result, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return Result{}, fmt.Errorf("accessing source %s: %w", srcPath, err)
	}

	if err := CheckFreeSpace(destDir, info.Size()); err != nil {
		return Result{}, err
	}

	destPath, redundant, err := r.resolveDestination(srcPath, srcFingerprint, destDir)
	if err != nil {
		return Result{}, err
	}
	if redundant {
		logger.Info("file already exists in destination: %s", destPath)
		return Result{DestPath: destPath, Redundant: true}, nil
	}

	if err := copyPreservingMetadata(srcPath, destPath, info); err != nil {
		return Result{}, err
	}

	result := Result{DestPath: destPath, Copied: true}
	if r.removeSource {
		removed, err := r.removeVerifiedSource(srcPath, destPath, srcFingerprint)
		if err != nil {
			return result, err
		}
		result.SourceRemoved = removed
	}
	return result, nil
}

// resolveDestination walks the numeric suffix sequence until it finds a free
// name or an identical pre-existing copy.
func (r *Resolver) resolveDestination(srcPath, srcFingerprint, destDir string) (string, bool, error) {
	base := filepath.Base(srcPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	destPath := filepath.Join(destDir, base)
	for attempt := 1; ; attempt++ {
		if _, err := os.Stat(destPath); err != nil {
			if os.IsNotExist(err) {
				return destPath, false, nil
			}
			return "", false, fmt.Errorf("checking destination %s: %w", destPath, err)
		}

		existingFingerprint, err := r.hasher.HashFile(destPath)
		if err != nil {
			// Unreadable occupant: treat as different content and keep
			// looking for a free name.
			logger.Error("hashing existing destination %s: %v", destPath, err)
		} else if existingFingerprint == srcFingerprint {
			identical, err := r.hasher.FilesIdentical(destPath, srcPath)
			if err != nil {
				logger.Error("comparing %s and %s: %v", destPath, srcPath, err)
			}
			if identical {
				return destPath, true, nil
			}
			if err == nil {
				logger.Warn("hash collision detected between %s and %s", destPath, srcPath)
			}
		}

		if attempt > constants.MaxPlacementAttempts {
			return "", false, fmt.Errorf("%w for %s", ErrTooManyAttempts, srcPath)
		}
		destPath = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", stem, attempt, ext))
	}
}

// removeVerifiedSource deletes the source only after the placed copy
// re-hashes to the same fingerprint.
func (r *Resolver) removeVerifiedSource(srcPath, destPath, srcFingerprint string) (bool, error) {
	placedFingerprint, err := r.hasher.HashFile(destPath)
	if err != nil {
		return false, fmt.Errorf("verifying copy %s: %w", destPath, err)
	}
	if placedFingerprint != srcFingerprint {
		return false, fmt.Errorf("copy verification failed for %s: fingerprint mismatch", destPath)
	}
	if err := os.Remove(srcPath); err != nil {
		return false, fmt.Errorf("removing source %s: %w", srcPath, err)
	}
	return true, nil
}

func copyPreservingMetadata(srcPath, destPath string, info os.FileInfo) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening source %s: %w", srcPath, err)
	}
	defer src.Close()

	dest, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating destination %s: %w", destPath, err)
	}

	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		return fmt.Errorf("copying %s to %s: %w", srcPath, destPath, err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("closing destination %s: %w", destPath, err)
	}

	// Timestamps carry over; a failure here does not undo the copy.
	modTime := info.ModTime()
	if err := os.Chtimes(destPath, modTime, modTime); err != nil {
		logger.Warn("preserving timestamps on %s: %v", destPath, err)
	}
	return nil
}
