// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"

	"github.com/jeranaias/analyst-tui/internal/config"
)

// =============================================================================
// COMMAND PARSING TESTS
// =============================================================================

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"no args", nil, CmdTUI},
		{"tui", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"upload", []string{"upload", "f.pdf"}, CmdUpload},
		{"download", []string{"download", "f.md"}, CmdDownload},
		{"fetch alias", []string{"fetch", "f.md"}, CmdDownload},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"usage", []string{"usage"}, CmdUsage},
		{"stats alias", []string{"stats"}, CmdUsage},
		{"config", []string{"config", "show"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"unknown", []string{"frobnicate"}, CmdHelp},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := ParseArgs(tc.argv)
			if got != tc.want {
				t.Errorf("ParseArgs(%v) = %v, want %v", tc.argv, got, tc.want)
			}
		})
	}
}

func TestParseArgs_GlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"-q", "--backend", "http://x:1", "ask", "hi", "there"})

	if cmd != CmdAsk {
		t.Fatalf("cmd = %v, want CmdAsk", cmd)
	}
	if !args.Quiet {
		t.Error("Quiet should be set")
	}
	if args.Backend != "http://x:1" {
		t.Errorf("Backend = %q", args.Backend)
	}
	if args.Query != "hi there" {
		t.Errorf("Query = %q, want 'hi there'", args.Query)
	}
}

func TestParseArgs_BackendEquals(t *testing.T) {
	_, args := ParseArgs([]string{"--backend=http://y:2", "status"})
	if args.Backend != "http://y:2" {
		t.Errorf("Backend = %q", args.Backend)
	}
}

func TestParseArgs_Download(t *testing.T) {
	_, args := ParseArgs([]string{"download", "report.md", "--out", "/tmp/reports"})

	if args.Query != "report.md" {
		t.Errorf("Query = %q", args.Query)
	}
	if args.OutDir != "/tmp/reports" {
		t.Errorf("OutDir = %q", args.OutDir)
	}
}

func TestParseArgs_ConfigSet(t *testing.T) {
	_, args := ParseArgs([]string{"config", "set", "ui.theme", "light"})

	if args.Subcommand != "set" {
		t.Errorf("Subcommand = %q", args.Subcommand)
	}
	if args.ConfigKey != "ui.theme" || args.ConfigVal != "light" {
		t.Errorf("key/val = %q/%q", args.ConfigKey, args.ConfigVal)
	}
}

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"show", "--out", "/tmp", "--json", "--since=2024-01-01", "extra"})

	if p.Subcommand() != "show" {
		t.Errorf("Subcommand() = %q", p.Subcommand())
	}
	if p.Flag("out") != "/tmp" {
		t.Errorf("Flag(out) = %q", p.Flag("out"))
	}
	if !p.BoolFlag("json") {
		t.Error("BoolFlag(json) should be true")
	}
	if p.Flag("since") != "2024-01-01" {
		t.Errorf("Flag(since) = %q", p.Flag("since"))
	}
	if p.Positional(1) != "extra" {
		t.Errorf("Positional(1) = %q", p.Positional(1))
	}
	if p.PositionalCount() != 2 {
		t.Errorf("PositionalCount() = %d", p.PositionalCount())
	}
	if p.Flag("missing") != "" || p.BoolFlag("missing") {
		t.Error("missing flags should be zero values")
	}
	if p.FlagOrDefault("missing", "dflt") != "dflt" {
		t.Error("FlagOrDefault should fall back")
	}
	if p.FlagIntOrDefault("out", 7) != 7 {
		t.Error("non-numeric flag should fall back to default")
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"true", "YES", "y", "1", "on"} {
		if got, err := ParseBoolString(s); err != nil || !got {
			t.Errorf("ParseBoolString(%q) = %v, %v", s, got, err)
		}
	}
	for _, s := range []string{"false", "No", "n", "0", "off"} {
		if got, err := ParseBoolString(s); err != nil || got {
			t.Errorf("ParseBoolString(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseBoolString("maybe"); err == nil {
		t.Error("ParseBoolString(maybe) should error")
	}
}

// =============================================================================
// CONFIG KEY TESTS
// =============================================================================

func TestApplyConfigKey(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(*config.Config) bool
	}{
		{"backend.url", "http://a:1", false, func(c *config.Config) bool { return c.Backend.URL == "http://a:1" }},
		{"backend.timeout_secs", "15", false, func(c *config.Config) bool { return c.Backend.TimeoutSecs == 15 }},
		{"backend.timeout_secs", "zero", true, nil},
		{"backend.timeout_secs", "-1", true, nil},
		{"ui.markdown", "off", false, func(c *config.Config) bool { return !c.UI.Markdown }},
		{"ui.theme", "light", false, func(c *config.Config) bool { return c.UI.Theme == "light" }},
		{"telemetry.enabled", "false", false, func(c *config.Config) bool { return !c.Telemetry.Enabled }},
		{"upload.max_size_mb", "64", false, func(c *config.Config) bool { return c.Upload.MaxSizeMB == 64 }},
		{"nonsense.key", "x", true, nil},
	}

	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			cfg := config.Default()
			err := applyConfigKey(cfg, tc.key, tc.value)
			if (err != nil) != tc.wantErr {
				t.Fatalf("applyConfigKey() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.check != nil && !tc.check(cfg) {
				t.Errorf("value not applied for %s", tc.key)
			}
		})
	}
}

// ===== CHAT PRECONDITIONS =====

func TestHandleChat_RequiresTTY(t *testing.T) {
	// Test binaries run with stdin detached from a terminal, so the
	// interactive REPL must refuse to start.
	err := HandleChat(config.Default(), Args{})
	if err == nil {
		t.Fatal("chat without a terminal should be rejected")
	}
	if !strings.Contains(err.Error(), "interactive terminal") {
		t.Errorf("unexpected error: %v", err)
	}
}
