package util

import "fmt"

// HumanReadableSize formats a byte count using binary units, one decimal
// place for anything above bytes.
func HumanReadableSize(size int64) string {
	const unit = 1024

	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	value := float64(size) / unit
	for _, suffix := range []string{"KB", "MB", "GB"} {
		if value < unit {
			return fmt.Sprintf("%.1f %s", value, suffix)
		}
		value /= unit
	}
	return fmt.Sprintf("%.1f TB", value)
}
