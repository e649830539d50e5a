// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtreilly/arc-reading/internal/config"
	"github.com/mtreilly/arc-reading/internal/output"
	"github.com/mtreilly/arc-reading/internal/reading"
)

func newSessionCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage reading sessions",
		Long:  "Start, update, and end reading sessions for a book",
	}

	cmd.AddCommand(newSessionStartCmd(cfg, store))
	cmd.AddCommand(newSessionUpdateCmd(cfg, store))
	cmd.AddCommand(newSessionEndCmd(cfg, store))
	cmd.AddCommand(newSessionAbandonCmd(cfg, store))
	cmd.AddCommand(newSessionListCmd(cfg, store))

	return cmd
}

func newSessionStartCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var (
		position float64
		bookType string
		out      output.OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "start <book-id>",
		Short: "Start a reading session for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.Resolve(); err != nil {
				return err
			}

			bookID := args[0]
			m, err := newManager(cfg, store, bookID, reading.BookType(bookType))
			if err != nil {
				return err
			}
			defer m.Close()

			if sess := m.ActiveSession(); sess != nil {
				return fmt.Errorf("session already active for %s (started %s)", bookID, formatDate(sess.StartTime))
			}

			m.Start(position)
			sess := m.ActiveSession()
			if sess == nil {
				return fmt.Errorf("start session for %s", bookID)
			}

			if out.Is(output.OutputJSON) {
				return output.JSON(sess)
			}

			fmt.Printf("Session started: %s\n", sess.ID)
			fmt.Printf("Book: %s\n", bookID)
			fmt.Printf("Position: %g\n", position)
			fmt.Printf("Started at: %s\n", sess.StartTime.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&position, "position", "p", 0, "Starting position (page or seconds)")
	cmd.Flags().StringVarP(&bookType, "type", "t", "", "Book type: ebook, audio, both")
	out.AddOutputFlags(cmd, output.OutputJSON)
	return cmd
}

func newSessionUpdateCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var (
		totalPages    int
		totalDuration float64
		chapter       int
		out           output.OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "update <book-id> <position>",
		Short: "Record a new position on the active session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.Resolve(); err != nil {
				return err
			}

			bookID := args[0]
			position, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[1], err)
			}

			m, err := newManager(cfg, store, bookID, "")
			if err != nil {
				return err
			}
			defer m.Close()

			if m.ActiveSession() == nil {
				return fmt.Errorf("no active session for %s (use 'arc-reading session start')", bookID)
			}

			opts := reading.UpdateOptions{
				TotalPages:    totalPages,
				TotalDuration: totalDuration,
			}
			if cmd.Flags().Changed("chapter") {
				opts.Chapter = &chapter
			}
			m.Update(position, opts)

			p := m.Progress()
			if out.Is(output.OutputJSON) {
				return output.JSON(p)
			}

			fmt.Printf("Position: %g (%.1f%%)\n", position, p.ProgressPercentage)
			fmt.Printf("Status: %s\n", p.Status)
			if p.EstimatedTimeLeft > 0 {
				fmt.Printf("Estimated time left: %d min\n", p.EstimatedTimeLeft)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&totalPages, "total-pages", 0, "Total pages in the book")
	cmd.Flags().Float64Var(&totalDuration, "total-duration", 0, "Total audiobook duration in seconds")
	cmd.Flags().IntVar(&chapter, "chapter", 0, "Current chapter index")
	out.AddOutputFlags(cmd, output.OutputJSON)
	return cmd
}

func newSessionEndCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var out output.OutputOptions

	cmd := &cobra.Command{
		Use:   "end <book-id>",
		Short: "End the active reading session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.Resolve(); err != nil {
				return err
			}

			bookID := args[0]
			m, err := newManager(cfg, store, bookID, "")
			if err != nil {
				return err
			}
			defer m.Close()

			sess := m.ActiveSession()
			if sess == nil {
				return fmt.Errorf("no active session for %s", bookID)
			}

			m.End()
			p := m.Progress()

			if out.Is(output.OutputJSON) {
				return output.JSON(p)
			}

			fmt.Printf("Session ended: %s\n", sess.ID)
			fmt.Printf("Progress: %.1f%% (%s)\n", p.ProgressPercentage, p.Status)
			fmt.Printf("Sessions so far: %d, total reading time: %d min\n", p.SessionCount, p.ReadingTime)
			return nil
		},
	}

	out.AddOutputFlags(cmd, output.OutputJSON)
	return cmd
}

func newSessionAbandonCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abandon <book-id>",
		Short: "Mark a book as abandoned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID := args[0]
			m, err := newManager(cfg, store, bookID, "")
			if err != nil {
				return err
			}
			defer m.Close()

			before := m.Progress()
			if before == nil {
				return fmt.Errorf("no progress record for %s", bookID)
			}

			m.Abandon()
			after := m.Progress()
			if after.Status != reading.StatusAbandoned {
				return fmt.Errorf("cannot abandon %s: status is %s", bookID, before.Status)
			}

			fmt.Printf("Abandoned: %s\n", bookID)
			return nil
		},
	}

	return cmd
}

func newSessionListCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var (
		limit int
		out   output.OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "list <book-id>",
		Short: "List completed reading sessions for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.Resolve(); err != nil {
				return err
			}

			bookID := args[0]
			sessions, err := store.LoadSessionHistory(cfg.User, bookID)
			if err != nil {
				return fmt.Errorf("load session history: %w", err)
			}

			// Most recent first
			for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
				sessions[i], sessions[j] = sessions[j], sessions[i]
			}
			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}

			if out.Is(output.OutputJSON) {
				return output.JSON(sessions)
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}

			table := output.NewTable("Session ID", "Start", "End", "Minutes", "Position", "Device")
			for _, s := range sessions {
				end := ""
				if !s.EndTime.IsZero() {
					end = s.EndTime.Format("15:04")
				}
				table.AddRow(truncate(s.ID, 8), formatDate(s.StartTime), end,
					fmt.Sprintf("%d", s.Duration),
					fmt.Sprintf("%g-%g", s.StartPosition, s.EndPosition),
					s.Device)
			}
			table.Render()

			fmt.Printf("\nTotal: %d session(s)\n", len(sessions))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of results")
	out.AddOutputFlags(cmd, output.OutputTable)
	return cmd
}
