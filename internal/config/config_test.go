// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// DEFAULTS TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Backend.URL != "http://127.0.0.1:8001" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want 30", cfg.Backend.TimeoutSecs)
	}
	if !cfg.UI.Markdown {
		t.Error("Markdown should default on")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.UI.Theme)
	}
	if cfg.Upload.MaxSizeMB != 32 {
		t.Errorf("MaxSizeMB = %d, want 32", cfg.Upload.MaxSizeMB)
	}
}

func TestConfig_Timeout(t *testing.T) {
	cfg := Default()
	cfg.Backend.TimeoutSecs = 45

	if cfg.Timeout() != 45*time.Second {
		t.Errorf("Timeout() = %v, want 45s", cfg.Timeout())
	}
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestLoadFromPath_MissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v, missing file should mean defaults", err)
	}
	if cfg.Backend.URL != Default().Backend.URL {
		t.Errorf("Backend.URL = %q, want default", cfg.Backend.URL)
	}
}

func TestLoadFromPath_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1"

[backend]
url = "http://analyst.internal:8080"
timeout_secs = 60

[ui]
markdown = false
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Backend.URL != "http://analyst.internal:8080" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d", cfg.Backend.TimeoutSecs)
	}
	if cfg.UI.Markdown {
		t.Error("Markdown should be off")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}

	// Unset sections keep their defaults
	if cfg.Upload.MaxSizeMB != 32 {
		t.Errorf("MaxSizeMB = %d, want default 32", cfg.Upload.MaxSizeMB)
	}
	// Fill-defaults populate derived paths
	if cfg.Backend.DownloadDir == "" {
		t.Error("DownloadDir should be filled")
	}
	if cfg.Telemetry.DBPath == "" {
		t.Error("DBPath should be filled")
	}
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("this is not toml ["), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("malformed config should fail to load")
	}
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("ANALYST_BACKEND_URL", "http://env.example:1234")
	t.Setenv("ANALYST_TIMEOUT_SECS", "90")
	t.Setenv("ANALYST_TELEMETRY", "false")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Backend.URL != "http://env.example:1234" {
		t.Errorf("Backend.URL = %q, env should override", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSecs != 90 {
		t.Errorf("TimeoutSecs = %d", cfg.Backend.TimeoutSecs)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry should be disabled by env")
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"https", func(c *Config) { c.Backend.URL = "https://analyst.example" }, false},
		{"bad scheme", func(c *Config) { c.Backend.URL = "ftp://x" }, true},
		{"no host", func(c *Config) { c.Backend.URL = "http://" }, true},
		{"garbage url", func(c *Config) { c.Backend.URL = "not a url" }, true},
		{"negative upload", func(c *Config) { c.Upload.MaxSizeMB = -1 }, true},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"light theme", func(c *Config) { c.UI.Theme = "light" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
