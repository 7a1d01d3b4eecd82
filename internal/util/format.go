package util

import (
	"fmt"
	"time"
)

// Helper functions
func FormatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	} else {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

// FormatDuration renders a duration as "2h 15m" or "45m".
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatDurationMs renders a millisecond duration, switching to seconds
// below one minute so short event spans stay readable.
func FormatDurationMs(ms int64) string {
	if ms < 60_000 {
		return fmt.Sprintf("%.0fs", float64(ms)/1000)
	}
	return FormatDuration(time.Duration(ms) * time.Millisecond)
}

// FormatClock renders an epoch-millisecond instant as HH:MM:SS in the
// given timezone.
func FormatClock(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format("15:04:05")
}
