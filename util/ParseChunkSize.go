package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseChunkSize parses a human-entered size such as "64KB", "4MB" or a bare
// byte count into bytes.
func ParseChunkSize(chunkSize string) (int64, error) {
	s := strings.TrimSpace(strings.ToUpper(chunkSize))
	if s == "" {
		return 0, fmt.Errorf("invalid size format: %q", chunkSize)
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	size, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size format: %q", chunkSize)
	}
	if size <= 0 {
		return 0, fmt.Errorf("size must be positive, got: %s", chunkSize)
	}

	return size * multiplier, nil
}
