package cli

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration as 850ms, 12.3s or 2m5.5s.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Truncate(time.Millisecond)
	mins := d / time.Minute
	return fmt.Sprintf("%dm%.1fs", mins, (d - mins*time.Minute).Seconds())
}

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// FormatBytes formats a size in binary units: 512 B, 1.50 KB, 3.20 MB.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[unit])
}

// Plural formats a count with its noun, e.g. "1 slide" or "3 slides".
func Plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
