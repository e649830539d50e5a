// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtreilly/arc-reading/internal/config"
	"github.com/mtreilly/arc-reading/internal/output"
	"github.com/mtreilly/arc-reading/internal/reading"
)

func newProgressCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show reading progress",
		Long:  "Inspect per-book progress records",
	}

	cmd.AddCommand(newProgressShowCmd(cfg, store))
	cmd.AddCommand(newProgressListCmd(cfg, store))

	return cmd
}

func newProgressShowCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var out output.OutputOptions

	cmd := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show the progress record for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.Resolve(); err != nil {
				return err
			}

			bookID := args[0]
			p, err := store.LoadProgress(cfg.User, bookID)
			if err != nil {
				return fmt.Errorf("load progress: %w", err)
			}
			if p == nil {
				return fmt.Errorf("no progress record for %s", bookID)
			}

			if out.Is(output.OutputJSON) {
				return output.JSON(p)
			}

			fmt.Printf("Book: %s (%s)\n", p.BookID, p.BookType)
			fmt.Printf("Status: %s\n", p.Status)
			fmt.Printf("Progress: %.1f%%\n", p.ProgressPercentage)
			switch p.BookType {
			case reading.BookTypeAudio:
				fmt.Printf("Position: %.0fs of %.0fs\n", p.CurrentTime, p.TotalDuration)
			default:
				fmt.Printf("Position: page %d of %d\n", p.CurrentPage, p.TotalPages)
			}
			fmt.Printf("Reading time: %d min over %d session(s)\n", p.ReadingTime, p.SessionCount)
			if p.EstimatedTimeLeft > 0 {
				fmt.Printf("Estimated time left: %d min\n", p.EstimatedTimeLeft)
			}
			if !p.FirstReadDate.IsZero() {
				fmt.Printf("First read: %s\n", formatDate(p.FirstReadDate))
			}
			if !p.LastReadDate.IsZero() {
				fmt.Printf("Last read: %s\n", formatDate(p.LastReadDate))
			}
			if !p.CompletedDate.IsZero() {
				fmt.Printf("Completed: %s\n", formatDate(p.CompletedDate))
			}
			fmt.Printf("Bookmarks: %d, notes: %d\n", len(p.Bookmarks), len(p.Notes))
			return nil
		},
	}

	out.AddOutputFlags(cmd, output.OutputTable)
	return cmd
}

func newProgressListCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var (
		status string
		limit  int
		out    output.OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List progress records for the current user",
		Long: `List every book the current user has progress on.

Examples:
  arc-reading progress list
  arc-reading progress list --status reading
  arc-reading progress list --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.Resolve(); err != nil {
				return err
			}

			records, err := store.ListProgress(cfg.User)
			if err != nil {
				return fmt.Errorf("list progress: %w", err)
			}

			if status != "" {
				var filtered []*reading.ReadingProgress
				for _, p := range records {
					if string(p.Status) == status {
						filtered = append(filtered, p)
					}
				}
				records = filtered
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			if out.Is(output.OutputJSON) {
				return output.JSON(records)
			}

			if len(records) == 0 {
				fmt.Println("No progress records found.")
				fmt.Println("Use 'arc-reading session start <book-id>' to begin.")
				return nil
			}

			table := output.NewTable("Book", "Type", "Status", "Progress", "Time", "Last Read")
			for _, p := range records {
				table.AddRow(truncate(p.BookID, 24), string(p.BookType), string(p.Status),
					fmt.Sprintf("%.1f%%", p.ProgressPercentage),
					fmt.Sprintf("%d min", p.ReadingTime),
					formatDate(p.LastReadDate))
			}
			table.Render()

			fmt.Printf("\nTotal: %d book(s)\n", len(records))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (not-started, reading, completed, abandoned)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of results")
	out.AddOutputFlags(cmd, output.OutputTable)
	return cmd
}
