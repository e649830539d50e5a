// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for arc-reading.
type Config struct {
	// DataDir is where persistent backends keep their files.
	DataDir string
	// Storage selects the backend: "sqlite", "pebble", or "memory".
	Storage string
	// AutoSaveInterval is how often an active session is flushed in the
	// background.
	AutoSaveInterval time.Duration
	// Device identifies this machine on recorded sessions.
	Device string
	// Agent identifies the reading surface on recorded sessions.
	Agent string
	// User is the default reader identity when none is passed on the
	// command line.
	User string
}

// Load reads configuration from $XDG_CONFIG_HOME/arc-reading/config.yaml
// (if present) and ARC_READING_* environment variables, falling back to
// defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("storage", "sqlite")
	v.SetDefault("autosave_interval", "30s")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("device", defaultDevice())
	v.SetDefault("agent", "arc-reading-cli")
	v.SetDefault("user", defaultUser())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "arc-reading"))
	}

	v.SetEnvPrefix("ARC_READING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DataDir:          v.GetString("data_dir"),
		Storage:          v.GetString("storage"),
		AutoSaveInterval: v.GetDuration("autosave_interval"),
		Device:           v.GetString("device"),
		Agent:            v.GetString("agent"),
		User:             v.GetString("user"),
	}

	switch cfg.Storage {
	case "sqlite", "pebble", "memory":
	default:
		return nil, fmt.Errorf("unknown storage backend %q (choose sqlite, pebble, or memory)", cfg.Storage)
	}

	return cfg, nil
}

// DBPath is the SQLite database file under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "arc-reading.db")
}

// PebblePath is the Pebble directory under the data directory.
func (c *Config) PebblePath() string {
	return filepath.Join(c.DataDir, "pebble")
}

// EnsureDataDir creates the data directory if it does not exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o755)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arc-reading"
	}
	return filepath.Join(home, ".arc-reading")
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}

func defaultDevice() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}
