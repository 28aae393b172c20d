// Package formatter renders analysis reports for the CLI.
package formatter

import "fmt"

// formatBytes renders a byte count in human units.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatSignedBytes renders a signed byte delta with an explicit sign.
func formatSignedBytes(delta int64) string {
	if delta < 0 {
		return "-" + formatBytes(uint64(-delta))
	}
	return "+" + formatBytes(uint64(delta))
}

// truncateString shortens a string to max bytes with an ellipsis.
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
