package fingerprint

import (
	"crypto/sha1" // #nosec G401 - legacy algorithm kept for opt-in compatibility
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// Algorithm describes a supported content-digest algorithm.
type Algorithm struct {
	Name string
	New  func() hash.Hash
}

// NewAlgorithm returns the algorithm configuration for the given name.
// An empty name selects SHA-256.
func NewAlgorithm(name string) (*Algorithm, error) {
	switch name {
	case constants.HashAlgorithmSHA256, "":
		return &Algorithm{Name: constants.HashAlgorithmSHA256, New: sha256.New}, nil
	case constants.HashAlgorithmSHA512:
		return &Algorithm{Name: constants.HashAlgorithmSHA512, New: sha512.New}, nil
	case constants.HashAlgorithmSHA1:
		// #nosec G401
		return &Algorithm{Name: constants.HashAlgorithmSHA1, New: sha1.New}, nil
	case constants.HashAlgorithmBLAKE3:
		return &Algorithm{Name: constants.HashAlgorithmBLAKE3, New: func() hash.Hash { return blake3.New() }}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", name)
	}
}

// Hasher computes content fingerprints by streaming files through a digest
// in fixed-size chunks.
type Hasher struct {
	algorithm *Algorithm
	chunkSize int64
}

// NewHasher creates a hasher for the named algorithm. chunkSize tunes the
// read size and has no effect on the resulting fingerprint.
func NewHasher(algorithm string, chunkSize int64) (*Hasher, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got: %d", chunkSize)
	}

	alg, err := NewAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}

	return &Hasher{algorithm: alg, chunkSize: chunkSize}, nil
}

// Algorithm returns the name of the configured digest algorithm.
func (h *Hasher) Algorithm() string {
	return h.algorithm.Name
}

// HashFile returns the hex-encoded fingerprint of the file's full content.
// Any failure to open or read the file is returned to the caller, which must
// treat the file as skipped rather than aborting the scan.
func (h *Hasher) HashFile(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := h.algorithm.New()
	buffer := make([]byte, h.chunkSize)

	for {
		bytesRead, err := file.Read(buffer)
		if bytesRead > 0 {
			hasher.Write(buffer[:bytesRead])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filePath, err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
