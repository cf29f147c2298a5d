package fingerprint

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// FilesIdentical reports whether two files are byte-for-byte identical by
// streaming both in lockstep fixed-size chunks. It is the collision
// disambiguator for files that already share a fingerprint, never the
// primary duplicate test.
func (h *Hasher) FilesIdentical(pathA, pathB string) (bool, error) {
	fileA, err := os.Open(pathA)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", pathA, err)
	}
	defer fileA.Close()

	fileB, err := os.Open(pathB)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", pathB, err)
	}
	defer fileB.Close()

	bufA := make([]byte, h.chunkSize)
	bufB := make([]byte, h.chunkSize)

	for {
		nA, errA := io.ReadFull(fileA, bufA)
		nB, errB := io.ReadFull(fileB, bufB)

		if nA != nB || !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}

		endA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		endB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !endA {
			return false, fmt.Errorf("reading %s: %w", pathA, errA)
		}
		if errB != nil && !endB {
			return false, fmt.Errorf("reading %s: %w", pathB, errB)
		}
		if endA || endB {
			// Identical only when both streams ended on the same chunk.
			return endA && endB, nil
		}
	}
}
