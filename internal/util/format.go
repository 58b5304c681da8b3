package util

import (
	"fmt"
	"math"
	"time"
)

// Timeify converts seconds to "HH:MM:SS" format.
func Timeify(seconds int) string {
	hours := int(math.Floor(float64(seconds) / 3600))
	seconds %= 3600
	minutes := int(math.Floor(float64(seconds) / 60))
	seconds %= 60
	hours = int(math.Max(float64(hours), 0))
	minutes = int(math.Max(float64(minutes), 0))
	seconds = int(math.Max(float64(seconds), 0))
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// TimedProgress reports fractional progress (0.0-1.0) and an ETA string
// given a target duration and a start time.
func TimedProgress(start time.Time, target time.Duration) (float32, string) {
	if target <= 0 {
		return 1, "00:00:00"
	}
	elapsed := time.Since(start)
	progress := float32(elapsed) / float32(target)
	if progress > 1 {
		progress = 1
	}
	remaining := target - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return progress, Timeify(int(remaining.Seconds()))
}
