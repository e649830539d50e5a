// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/mtreilly/arc-reading/internal/config"
	"github.com/mtreilly/arc-reading/internal/reading"
)

// positionEvent is one spooled update dropped by a reading surface.
// Surfaces that cannot talk to the store directly (e-readers syncing
// over a mounted folder, media players) write these as JSON files; watch
// mode applies them and deletes the file.
type positionEvent struct {
	Book          string  `json:"book"`
	Type          string  `json:"type,omitempty"`
	Action        string  `json:"action,omitempty"` // "update" (default) or "end"
	Position      float64 `json:"position"`
	TotalPages    int     `json:"total_pages,omitempty"`
	TotalDuration float64 `json:"total_duration,omitempty"`
	Chapter       *int    `json:"chapter,omitempty"`
}

func newWatchCmd(cfg *config.Config, store reading.ProgressStore) *cobra.Command {
	var (
		dir        string
		debounceMs int
		oneShot    bool
	)

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a spool folder for position events",
		Long: `Monitor a directory for JSON position-event files and apply them to
the progress store. Sessions are started on the first event for a book
and flushed in the background while events keep arriving.

Event files look like:
  {"book": "moby-dick", "type": "ebook", "position": 42, "total_pages": 635}

Examples:
  arc-reading watch ~/.arc-reading/spool
  arc-reading watch ~/sync/reading-events --one-shot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				dir = filepath.Join(cfg.DataDir, "spool")
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create spool directory: %w", err)
				}
			}

			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("cannot access directory %s: %w", dir, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}

			w := &watcher{
				cfg:      cfg,
				store:    store,
				managers: make(map[string]*reading.SessionManager),
				pending:  make(map[string]*time.Timer),
			}

			if oneShot {
				defer w.closeAll()
				return w.processExisting(dir)
			}
			return w.run(dir, debounceMs)
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 1000, "Debounce milliseconds for file events")
	cmd.Flags().BoolVar(&oneShot, "one-shot", false, "Process existing files and exit (don't watch)")

	return cmd
}

// watcher applies spooled events through one SessionManager per book.
type watcher struct {
	cfg   *config.Config
	store reading.ProgressStore

	mu       sync.Mutex
	managers map[string]*reading.SessionManager

	pendingMu sync.Mutex
	pending   map[string]*time.Timer
}

func (w *watcher) run(dir string, debounceMs int) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	log.Printf("Watching: %s", dir)

	// Apply whatever accumulated before we started
	if err := w.processExisting(dir); err != nil {
		log.Printf("Process existing events: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	log.Println("Press Ctrl+C to stop watching")

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				w.closeAll()
				return nil
			}

			if !strings.HasSuffix(strings.ToLower(event.Name), ".json") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}

			// Debounce: reset timer if file is still being written
			w.pendingMu.Lock()
			if timer, exists := w.pending[event.Name]; exists {
				timer.Stop()
			}
			w.pending[event.Name] = time.AfterFunc(time.Duration(debounceMs)*time.Millisecond, func() {
				w.pendingMu.Lock()
				delete(w.pending, event.Name)
				w.pendingMu.Unlock()

				if err := w.applyFile(event.Name); err != nil {
					log.Printf("Failed to apply %s: %v", event.Name, err)
				}
			})
			w.pendingMu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				w.closeAll()
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-sig:
			log.Println("Shutting down, flushing sessions")
			w.closeAll()
			return nil
		}
	}
}

func (w *watcher) processExisting(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	applied := 0
	failed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := w.applyFile(path); err != nil {
			log.Printf("Failed: %s - %v", path, err)
			failed++
		} else {
			applied++
		}
	}

	if applied > 0 || failed > 0 {
		log.Printf("Applied: %d, failed: %d", applied, failed)
	}
	return nil
}

// applyFile reads, applies, and removes one event file.
func (w *watcher) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read event: %w", err)
	}

	var ev positionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if ev.Book == "" {
		return fmt.Errorf("event has no book")
	}

	if err := w.apply(ev); err != nil {
		return err
	}
	return os.Remove(path)
}

func (w *watcher) apply(ev positionEvent) error {
	m, err := w.managerFor(ev.Book, reading.BookType(ev.Type))
	if err != nil {
		return err
	}

	switch ev.Action {
	case "", "update":
		if m.ActiveSession() == nil {
			m.Start(ev.Position)
			log.Printf("Session started: %s at %g", ev.Book, ev.Position)
		}
		m.Update(ev.Position, reading.UpdateOptions{
			TotalPages:    ev.TotalPages,
			TotalDuration: ev.TotalDuration,
			Chapter:       ev.Chapter,
		})
	case "end":
		m.End()
		log.Printf("Session ended: %s", ev.Book)
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
	return nil
}

func (w *watcher) managerFor(bookID string, bookType reading.BookType) (*reading.SessionManager, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if m, ok := w.managers[bookID]; ok {
		return m, nil
	}

	m := reading.NewSessionManager(reading.SessionManagerConfig{
		Store:            w.store,
		UserID:           w.cfg.User,
		BookID:           bookID,
		BookType:         bookType,
		Device:           w.cfg.Device,
		Agent:            w.cfg.Agent,
		AutoSaveInterval: w.cfg.AutoSaveInterval,
	})
	if err := m.Load(); err != nil {
		return nil, err
	}
	w.managers[bookID] = m
	return m, nil
}

// closeAll flushes every manager; in-flight sessions stay resumable.
func (w *watcher) closeAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, m := range w.managers {
		m.Close()
	}
	w.managers = make(map[string]*reading.SessionManager)
}
