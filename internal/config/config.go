// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// analyst TUI.
//
// Configuration lives in TOML with sensible defaults and environment
// variable overrides:
//   - ~/.analyst/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete analyst-tui configuration.
type Config struct {
	Version string `toml:"version"`

	Backend   BackendConfig   `toml:"backend"`
	Upload    UploadConfig    `toml:"upload"`
	UI        UIConfig        `toml:"ui"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Session   SessionConfig   `toml:"session"`
}

// BackendConfig points the client at the Enterprise AI Analyst API.
type BackendConfig struct {
	// URL is the backend base URL.
	URL string `toml:"url"`
	// TimeoutSecs bounds non-streaming requests. The chat stream itself is
	// not subject to this timeout.
	TimeoutSecs int `toml:"timeout_secs"`
	// DownloadDir is where fetched reports are written.
	// Default: ~/.analyst/downloads
	DownloadDir string `toml:"download_dir"`
}

// UploadConfig bounds file uploads.
type UploadConfig struct {
	// MaxSizeMB is the largest file accepted for upload (0 = unlimited).
	MaxSizeMB int64 `toml:"max_size_mb"`
}

// UIConfig holds display options.
type UIConfig struct {
	// Markdown renders settled agent messages through glamour.
	Markdown bool `toml:"markdown"`
	// ShowToolEvents displays "Accessed Tool" lines in the transcript.
	ShowToolEvents bool `toml:"show_tool_events"`
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme"`
}

// TelemetryConfig controls the local usage log.
type TelemetryConfig struct {
	// Enabled turns per-request usage recording on.
	Enabled bool `toml:"enabled"`
	// DBPath overrides the SQLite file location (empty = default
	// ~/.analyst/usage.db).
	DBPath string `toml:"db_path"`
}

// SessionConfig holds session behavior.
type SessionConfig struct {
	// IdleTimeoutSecs warns after this long without activity (0 = never).
	IdleTimeoutSecs int `toml:"idle_timeout_secs"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Backend: BackendConfig{
			URL:         "http://127.0.0.1:8001",
			TimeoutSecs: 30,
		},
		Upload: UploadConfig{
			MaxSizeMB: 32,
		},
		UI: UIConfig{
			Markdown:       true,
			ShowToolEvents: true,
			Theme:          "dark",
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
		Session: SessionConfig{
			IdleTimeoutSecs: 0,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the analyst configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".analyst"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration: defaults, then the config file when present,
// then environment overrides, then validation.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file. A missing
// file is not an error; defaults apply.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default config path.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// =============================================================================
// ENV OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies ANALYST_* environment variables over the loaded
// values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ANALYST_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("ANALYST_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("ANALYST_DOWNLOAD_DIR"); v != "" {
		c.Backend.DownloadDir = v
	}
	if v := os.Getenv("ANALYST_TELEMETRY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Telemetry.Enabled = b
		}
	}
	if v := os.Getenv("ANALYST_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// fillDefaults replaces zero values that have a meaningful default.
func (c *Config) fillDefaults() {
	if c.Backend.URL == "" {
		c.Backend.URL = Default().Backend.URL
	}
	if c.Backend.TimeoutSecs <= 0 {
		c.Backend.TimeoutSecs = Default().Backend.TimeoutSecs
	}
	if c.Backend.DownloadDir == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Backend.DownloadDir = filepath.Join(dir, "downloads")
		}
	}
	if c.Telemetry.DBPath == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Telemetry.DBPath = filepath.Join(dir, "usage.db")
		}
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "dark"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.url %q is not a valid URL", c.Backend.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url scheme %q is not supported", u.Scheme)
	}
	if c.Upload.MaxSizeMB < 0 {
		return fmt.Errorf("upload.max_size_mb must not be negative")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme %q is not a known theme", c.UI.Theme)
	}
	return nil
}

// Timeout returns the configured request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Upload.MaxSizeMB * 1024 * 1024
}
