// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/mtreilly/arc-reading/internal/cmd"
	"github.com/mtreilly/arc-reading/internal/config"
	"github.com/mtreilly/arc-reading/internal/reading"
	"github.com/mtreilly/arc-reading/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "arc-reading: failed to load config: %v\n", err)
		os.Exit(1)
	}

	var progressStore reading.ProgressStore

	switch cfg.Storage {
	case "sqlite":
		// Relational schema in a single SQLite file.
		// If SQLite fails (missing, corrupted, permissions), fall back to
		// an in-memory store so reading remains possible without
		// persistence.
		progressStore = openSQLite(cfg)

	case "pebble":
		if err := cfg.EnsureDataDir(); err != nil {
			fmt.Fprintf(os.Stderr, "arc-reading: failed to create data dir: %v\n", err)
			os.Exit(1)
		}
		kv, err := store.OpenPebbleStore(cfg.PebblePath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "arc-reading: failed to open pebble store: %v\n", err)
			os.Exit(1)
		}
		kvStore, err := reading.NewKVStore(kv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "arc-reading: failed to init KV store: %v\n", err)
			os.Exit(1)
		}
		progressStore = kvStore

	case "memory":
		// In-memory only - degrades gracefully, no persistence
		progressStore = memoryStore()

	default:
		fmt.Fprintf(os.Stderr, "arc-reading: unknown storage backend %q (choose sqlite, pebble, or memory)\n", cfg.Storage)
		os.Exit(1)
	}

	root := cmd.NewRootCmd(cfg, progressStore)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openSQLite(cfg *config.Config) reading.ProgressStore {
	if err := cfg.EnsureDataDir(); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: cannot create data dir: %v\n", err)
		fmt.Fprintln(os.Stderr, "         falling back to in-memory store (no persistence)")
		return memoryStore()
	}
	db, err := reading.OpenDB(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: cannot open SQLite database: %v\n", err)
		fmt.Fprintln(os.Stderr, "         falling back to in-memory store (no persistence)")
		return memoryStore()
	}
	sqlStore, err := reading.NewSQLStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arc-reading: failed to init SQL store: %v\n", err)
		os.Exit(1)
	}
	return sqlStore
}

func memoryStore() reading.ProgressStore {
	kvStore, err := reading.NewKVStore(store.NewMemoryStore())
	if err != nil {
		fmt.Fprintf(os.Stderr, "arc-reading: failed to init memory store: %v\n", err)
		os.Exit(1)
	}
	return kvStore
}
