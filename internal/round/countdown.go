package round

import (
	"fmt"
	"time"
)

// FormatCountdown renders d as zero-padded HH:MM:SS, truncated to whole seconds.
// Hours are not wrapped at 24. Negative durations render as 00:00:00.
func FormatCountdown(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
