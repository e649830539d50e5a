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

func newNoteCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
		Long:  "Add, remove, and list notes on a book",
	}

	cmd.AddCommand(newNoteAddCmd(cfg, store))
	cmd.AddCommand(newNoteRemoveCmd(cfg, store))
	cmd.AddCommand(newNoteListCmd(cfg, store))

	return cmd
}

func newNoteAddCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var (
		highlighted string
		out         output.OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "add <book-id> <position> <content>",
		Short: "Add a note at a position",
		Args:  cobra.ExactArgs(3),
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

			n, err := m.Bookmarks().AddNote(position, args[2], highlighted)
			if err != nil {
				return fmt.Errorf("add note: %w", err)
			}
			if n == nil {
				return fmt.Errorf("no progress record for %s", bookID)
			}

			if out.Is(output.OutputJSON) {
				return output.JSON(n)
			}

			fmt.Printf("Note added: %s\n", n.ID)
			fmt.Printf("Position: %g\n", n.Position)
			return nil
		},
	}

	cmd.Flags().StringVarP(&highlighted, "highlight", "l", "", "Highlighted passage the note refers to")
	out.AddOutputFlags(cmd, output.OutputJSON)
	return cmd
}

func newNoteRemoveCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <book-id> <note-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a note",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID := args[0]
			m, err := newManager(cfg, store, bookID, "")
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Bookmarks().RemoveNote(args[1]); err != nil {
				return fmt.Errorf("remove note: %w", err)
			}
			fmt.Printf("Note removed: %s\n", args[1])
			return nil
		},
	}

	return cmd
}

func newNoteListCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var out output.OutputOptions

	cmd := &cobra.Command{
		Use:   "list <book-id>",
		Short: "List notes on a book",
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
				fmt.Println("No notes found.")
				return nil
			}

			if out.Is(output.OutputJSON) {
				return output.JSON(p.Notes)
			}

			if len(p.Notes) == 0 {
				fmt.Println("No notes found.")
				return nil
			}

			table := output.NewTable("ID", "Position", "Content", "Highlight", "Created")
			for _, n := range p.Notes {
				table.AddRow(truncate(n.ID, 8), fmt.Sprintf("%g", n.Position),
					truncate(n.Content, 40), truncate(n.HighlightedText, 25), formatDate(n.CreatedDate))
			}
			table.Render()

			fmt.Printf("\nTotal: %d note(s)\n", len(p.Notes))
			return nil
		},
	}

	out.AddOutputFlags(cmd, output.OutputTable)
	return cmd
}
