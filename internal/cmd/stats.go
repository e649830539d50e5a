// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mtreilly/arc-reading/internal/config"
	"github.com/mtreilly/arc-reading/internal/output"
	"github.com/mtreilly/arc-reading/internal/reading"
)

func newStatsCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var out output.OutputOptions

	cmd := &cobra.Command{
		Use:   "stats [book-id]",
		Short: "Show reading statistics",
		Long: `Display statistics for one book, or a summary across every book
the current user has progress on.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.Resolve(); err != nil {
				return err
			}

			if len(args) == 1 {
				return bookStats(cfg, store, args[0], out)
			}
			return userStats(cfg, store, out)
		},
	}

	out.AddOutputFlags(cmd, output.OutputTable)
	return cmd
}

func bookStats(cfg *config.Config, store reading.ProgressStore, bookID string, out output.OutputOptions) error {
	m, err := newManager(cfg, store, bookID, "")
	if err != nil {
		return err
	}
	defer m.Close()

	p := m.Progress()
	if p == nil {
		return fmt.Errorf("no progress record for %s", bookID)
	}
	stats := m.Stats()

	if out.Is(output.OutputJSON) {
		return output.JSON(stats)
	}

	fmt.Printf("Reading Statistics: %s\n", bookID)
	fmt.Printf("===================\n\n")
	fmt.Printf("Progress:       %.1f%%\n", stats.ProgressPercentage)
	fmt.Printf("Completed:      %v\n", stats.IsCompleted)
	fmt.Printf("Reading time:   %d min\n", stats.TotalReadingTime)
	fmt.Printf("Avg session:    %.1f min\n", stats.AverageSessionTime)
	if stats.EstimatedTimeLeft > 0 {
		fmt.Printf("Time left:      ~%d min\n", stats.EstimatedTimeLeft)
	}
	if stats.CurrentSessionTime > 0 {
		fmt.Printf("Current session: %d min\n", stats.CurrentSessionTime)
	}
	fmt.Printf("Days reading:   %d\n", stats.DaysSinceStart)
	fmt.Printf("Bookmarks:      %d\n", stats.BookmarksCount)
	fmt.Printf("Notes:          %d\n", stats.NotesCount)
	if !p.LastReadDate.IsZero() {
		fmt.Printf("Last read:      %s\n", humanize.Time(p.LastReadDate))
	}
	return nil
}

func userStats(cfg *config.Config, store reading.ProgressStore, out output.OutputOptions) error {
	records, err := store.ListProgress(cfg.User)
	if err != nil {
		return fmt.Errorf("list progress: %w", err)
	}

	totalMinutes := 0
	totalSessions := 0
	completed := 0
	inProgress := 0
	abandoned := 0
	var lastRead time.Time
	for _, p := range records {
		totalMinutes += p.ReadingTime
		totalSessions += p.SessionCount
		switch p.Status {
		case reading.StatusCompleted:
			completed++
		case reading.StatusReading:
			inProgress++
		case reading.StatusAbandoned:
			abandoned++
		}
		if p.LastReadDate.After(lastRead) {
			lastRead = p.LastReadDate
		}
	}

	if out.Is(output.OutputJSON) {
		stats := map[string]any{
			"books":         len(records),
			"completed":     completed,
			"reading":       inProgress,
			"abandoned":     abandoned,
			"sessions":      totalSessions,
			"total_minutes": totalMinutes,
		}
		return output.JSON(stats)
	}

	fmt.Printf("Reading Statistics\n")
	fmt.Printf("==================\n\n")
	fmt.Printf("Books:          %d\n", len(records))
	fmt.Printf("  completed:    %d\n", completed)
	fmt.Printf("  reading:      %d\n", inProgress)
	fmt.Printf("  abandoned:    %d\n", abandoned)
	fmt.Printf("Sessions:       %d\n", totalSessions)
	fmt.Printf("Reading time:   %s\n", formatMinutes(totalMinutes))
	if !lastRead.IsZero() {
		fmt.Printf("Last read:      %s\n", humanize.Time(lastRead))
	}
	return nil
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%d min", m)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}
