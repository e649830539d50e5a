// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"math"
	"time"
)

// minPercentForEstimate is the progress below which an ETA is withheld;
// too little data to derive a stable reading speed.
const minPercentForEstimate = 5.0

// ComputePercentage derives a completion percentage from a position and
// a total. When the total is unknown or non-positive the previous
// percentage is returned unchanged. The result is clamped to [0,100].
func ComputePercentage(position, total, previous float64) float64 {
	if total <= 0 {
		return previous
	}
	pct := 100 * position / total
	if pct < 0 {
		return 0
	}
	return math.Min(100, pct)
}

// NextStatus advances a reading status from the computed percentage.
// Completed is terminal; not-started moves to reading on any progress.
func NextStatus(percentage float64, previous ReadingStatus) ReadingStatus {
	if previous == StatusCompleted {
		return StatusCompleted
	}
	if percentage >= 100 {
		return StatusCompleted
	}
	if previous == StatusNotStarted && percentage > 0 {
		return StatusReading
	}
	return previous
}

// CanAbandon reports whether the abandoned exit is reachable from the
// given status.
func CanAbandon(status ReadingStatus) bool {
	return status == StatusReading
}

// EstimatedTimeLeft derives the minutes remaining from historical
// reading speed. ok is false when there is not enough data:
// no accumulated reading time, or under minPercentForEstimate progress.
func EstimatedTimeLeft(percentage float64, readingTimeMinutes int) (int, bool) {
	if readingTimeMinutes <= 0 || percentage <= minPercentForEstimate {
		return 0, false
	}
	speed := percentage / float64(readingTimeMinutes) // percent per minute
	return int(math.Ceil((100 - percentage) / speed)), true
}

// SessionDurationMinutes is whole minutes elapsed between start and
// now, clamped to 0 when clock skew produces a negative delta.
func SessionDurationMinutes(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
