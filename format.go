package main

import "fmt"

// formatBytes renders a byte count with an adaptive unit and precision,
// e.g. 1536 -> "1.50 KB".
func formatBytes(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	const threshold = 1024.0

	if n == 0 {
		return "0 B"
	}

	size := float64(n)
	unit := 0
	for size >= threshold && unit < len(units)-1 {
		size /= threshold
		unit++
	}

	switch {
	case size == float64(int64(size)):
		return fmt.Sprintf("%.0f %s", size, units[unit])
	case size < 10:
		return fmt.Sprintf("%.2f %s", size, units[unit])
	case size < 100:
		return fmt.Sprintf("%.1f %s", size, units[unit])
	default:
		return fmt.Sprintf("%.0f %s", size, units[unit])
	}
}

// formatAsUnit renders a byte count in its exact unit without decimals,
// e.g. 5*1024*1024 -> "5MB". Used for limits in status messages.
func formatAsUnit(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)

	switch {
	case n >= gb && n%gb == 0:
		return fmt.Sprintf("%dGB", n/gb)
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n >= kb && n%kb == 0:
		return fmt.Sprintf("%dKB", n/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
