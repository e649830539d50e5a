// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"time"
)

// ReadingStats aggregates a progress record and the in-flight session
// into reader-facing statistics.
type ReadingStats struct {
	// TotalReadingTime is cumulative minutes including the current
	// session.
	TotalReadingTime int `json:"total_reading_time"`
	// AverageSessionTime is minutes per completed session.
	AverageSessionTime float64 `json:"average_session_time"`

	ProgressPercentage float64 `json:"progress_percentage"`
	EstimatedTimeLeft  int     `json:"estimated_time_left"`
	IsCompleted        bool    `json:"is_completed"`

	DaysSinceStart int `json:"days_since_start"`

	BookmarksCount int `json:"bookmarks_count"`
	NotesCount     int `json:"notes_count"`

	// CurrentSessionTime is minutes elapsed in the active session, 0
	// when idle.
	CurrentSessionTime int `json:"current_session_time"`
}

// ComputeReadingStats is a pure read over the record and session; it
// never mutates either. A nil progress yields zero stats.
func ComputeReadingStats(p *ReadingProgress, active *ReadingSession, now time.Time) ReadingStats {
	var stats ReadingStats
	if p == nil {
		return stats
	}

	current := 0
	if active.Active() {
		current = SessionDurationMinutes(active.StartTime, now)
	}

	stats.TotalReadingTime = p.ReadingTime + current
	if p.SessionCount > 0 {
		stats.AverageSessionTime = float64(p.ReadingTime) / float64(p.SessionCount)
	}
	stats.ProgressPercentage = p.ProgressPercentage
	stats.EstimatedTimeLeft = p.EstimatedTimeLeft
	stats.IsCompleted = p.Status == StatusCompleted
	if !p.FirstReadDate.IsZero() && now.After(p.FirstReadDate) {
		stats.DaysSinceStart = int(now.Sub(p.FirstReadDate) / (24 * time.Hour))
	}
	stats.BookmarksCount = len(p.Bookmarks)
	stats.NotesCount = len(p.Notes)
	stats.CurrentSessionTime = current

	return stats
}
