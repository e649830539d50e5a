// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mtreilly/arc-reading/internal/config"
	"github.com/mtreilly/arc-reading/internal/reading"
)

// NewRootCmd creates the root command for arc-reading.
func NewRootCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {

	root := &cobra.Command{
		Use:   "arc-reading",
		Short: "Track reading progress and sessions",
		Long: `Track where you are in your books and audiobooks.

arc-reading provides tools to:
- Start, update, and end reading sessions
- Keep per-book progress with completion detection
- Add bookmarks and notes at positions
- Show reading statistics and time-left estimates
- Export progress and session history`,
	}

	root.PersistentFlags().StringVarP(&cfg.User, "user", "u", cfg.User, "Reader identity")

	root.AddCommand(newSessionCmd(cfg, store))
	root.AddCommand(newProgressCmd(cfg, store))
	root.AddCommand(newBookmarkCmd(cfg, store))
	root.AddCommand(newNoteCmd(cfg, store))
	root.AddCommand(newStatsCmd(cfg, store))
	root.AddCommand(newExportCmd(cfg, store))
	root.AddCommand(newWatchCmd(cfg, store))

	return root
}

// newManager builds and loads a SessionManager for one book. The
// autosave interval is left zero: CLI invocations are short-lived, only
// watch mode runs managers long enough for background flushing.
func newManager(cfg *config.Config, store reading.ProgressStore, bookID string, bookType reading.BookType) (*reading.SessionManager, error) {
	m := reading.NewSessionManager(reading.SessionManagerConfig{
		Store:    store,
		UserID:   cfg.User,
		BookID:   bookID,
		BookType: bookType,
		Device:   cfg.Device,
		Agent:    cfg.Agent,
	})
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
