// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mtreilly/arc-reading/internal/config"
	"github.com/mtreilly/arc-reading/internal/output"
	"github.com/mtreilly/arc-reading/internal/reading"
)

func newBookmarkCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmark",
		Aliases: []string{"bm"},
		Short:   "Manage bookmarks",
		Long:    "Add, remove, and list bookmarks on a book",
	}

	cmd.AddCommand(newBookmarkAddCmd(cfg, store))
	cmd.AddCommand(newBookmarkRemoveCmd(cfg, store))
	cmd.AddCommand(newBookmarkListCmd(cfg, store))

	return cmd
}

func newBookmarkAddCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var (
		title string
		note  string
		out   output.OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "add <book-id> <position>",
		Short: "Add a bookmark at a position",
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

			bm, err := m.Bookmarks().AddBookmark(position, title, note)
			if err != nil {
				return fmt.Errorf("add bookmark: %w", err)
			}
			if bm == nil {
				return fmt.Errorf("no progress record for %s", bookID)
			}

			if out.Is(output.OutputJSON) {
				return output.JSON(bm)
			}

			fmt.Printf("Bookmark added: %s\n", bm.ID)
			fmt.Printf("Position: %g\n", bm.Position)
			if bm.Title != "" {
				fmt.Printf("Title: %s\n", bm.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Bookmark title")
	cmd.Flags().StringVarP(&note, "note", "m", "", "Short note on the bookmark")
	out.AddOutputFlags(cmd, output.OutputJSON)
	return cmd
}

func newBookmarkRemoveCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <book-id> <bookmark-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a bookmark",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID := args[0]
			m, err := newManager(cfg, store, bookID, "")
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Bookmarks().RemoveBookmark(args[1]); err != nil {
				return fmt.Errorf("remove bookmark: %w", err)
			}
			fmt.Printf("Bookmark removed: %s\n", args[1])
			return nil
		},
	}

	return cmd
}

func newBookmarkListCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var out output.OutputOptions

	cmd := &cobra.Command{
		Use:   "list <book-id>",
		Short: "List bookmarks on a book",
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
				fmt.Println("No bookmarks found.")
				return nil
			}

			if out.Is(output.OutputJSON) {
				return output.JSON(p.Bookmarks)
			}

			if len(p.Bookmarks) == 0 {
				fmt.Println("No bookmarks found.")
				return nil
			}

			table := output.NewTable("ID", "Position", "Title", "Note", "Created")
			for _, bm := range p.Bookmarks {
				table.AddRow(truncate(bm.ID, 8), fmt.Sprintf("%g", bm.Position),
					truncate(bm.Title, 30), truncate(bm.Note, 30), formatDate(bm.CreatedDate))
			}
			table.Render()

			fmt.Printf("\nTotal: %d bookmark(s)\n", len(p.Bookmarks))
			return nil
		},
	}

	out.AddOutputFlags(cmd, output.OutputTable)
	return cmd
}
