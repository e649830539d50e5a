// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mtreilly/arc-reading/internal/config"
	"github.com/mtreilly/arc-reading/internal/reading"
)

// exportBundle is the document written by the export command: every
// progress record for the user with its session history inlined.
type exportBundle struct {
	User       string         `json:"user" yaml:"user"`
	ExportedAt time.Time      `json:"exported_at" yaml:"exported_at"`
	Books      []exportedBook `json:"books" yaml:"books"`
}

type exportedBook struct {
	Progress *reading.ReadingProgress  `json:"progress" yaml:"progress"`
	Sessions []*reading.ReadingSession `json:"sessions,omitempty" yaml:"sessions,omitempty"`
}

func newExportCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var (
		format  string
		outFile string
		bookID  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export progress and session history",
		Long:  "Export the user's progress records and session histories to JSON or YAML for backup or analysis.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []*reading.ReadingProgress
			var err error

			if bookID != "" {
				p, err := store.LoadProgress(cfg.User, bookID)
				if err != nil {
					return fmt.Errorf("load progress: %w", err)
				}
				if p == nil {
					return fmt.Errorf("no progress record for %s", bookID)
				}
				records = []*reading.ReadingProgress{p}
			} else {
				records, err = store.ListProgress(cfg.User)
				if err != nil {
					return fmt.Errorf("list progress: %w", err)
				}
			}

			bundle := exportBundle{
				User:       cfg.User,
				ExportedAt: time.Now(),
			}
			for _, p := range records {
				sessions, err := store.LoadSessionHistory(cfg.User, p.BookID)
				if err != nil {
					return fmt.Errorf("load session history for %s: %w", p.BookID, err)
				}
				bundle.Books = append(bundle.Books, exportedBook{Progress: p, Sessions: sessions})
			}

			var outBytes []byte
			switch format {
			case "json":
				outBytes, err = json.MarshalIndent(bundle, "", "  ")
			case "yaml":
				outBytes, err = yaml.Marshal(bundle)
			default:
				return fmt.Errorf("unsupported format: %s (choose json, yaml)", format)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", format, err)
			}

			if outFile == "-" || outFile == "" {
				fmt.Println(string(outBytes))
				return nil
			}
			if err := os.WriteFile(outFile, outBytes, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outFile, err)
			}
			fmt.Printf("Exported %d book(s) to %s\n", len(bundle.Books), outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json, yaml")
	cmd.Flags().StringVarP(&outFile, "output", "o", "-", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&bookID, "book", "b", "", "Export a single book")

	return cmd
}
