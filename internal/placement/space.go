package placement

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/substantialcattle5/stillsuit/util"
)

// FreeSpace returns the number of bytes available to unprivileged users on
// the volume holding path.
func FreeSpace(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}

// CheckFreeSpace verifies the volume holding path has at least required
// bytes available.
func CheckFreeSpace(path string, required int64) error {
	free, err := FreeSpace(path)
	if err != nil {
		return err
	}
	if free < required {
		return fmt.Errorf("insufficient space on %s: %s free, %s required",
			path, util.HumanReadableSize(free), util.HumanReadableSize(required))
	}
	return nil
}
