// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command handler for the analyst CLI.
//
// Command: config
//
// Examples:
//
//	analyst config show                     Show current configuration
//	analyst config set backend.url URL      Point at a different backend
//	analyst config set ui.theme light       Switch theme
//	analyst config path                     Print the config file path
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/analyst-tui/internal/config"
	"github.com/jeranaias/analyst-tui/internal/util"
)

// HandleConfig handles the "config" command.
func HandleConfig(cfg *config.Config, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(cfg)
	case "set":
		return handleConfigSet(cfg, args.ConfigKey, args.ConfigVal)
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s (use show, set, or path)", args.Subcommand)
	}
}

// handleConfigShow prints the effective configuration.
func handleConfigShow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Configuration"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	rows := []struct {
		key string
		val string
	}{
		{"backend.url", cfg.Backend.URL},
		{"backend.timeout_secs", strconv.Itoa(cfg.Backend.TimeoutSecs)},
		{"backend.download_dir", cfg.Backend.DownloadDir},
		{"upload.max_size_mb", strconv.FormatInt(cfg.Upload.MaxSizeMB, 10)},
		{"ui.markdown", strconv.FormatBool(cfg.UI.Markdown)},
		{"ui.show_tool_events", strconv.FormatBool(cfg.UI.ShowToolEvents)},
		{"ui.theme", cfg.UI.Theme},
		{"telemetry.enabled", strconv.FormatBool(cfg.Telemetry.Enabled)},
		{"telemetry.db_path", cfg.Telemetry.DBPath},
		{"session.idle_timeout_secs", strconv.Itoa(cfg.Session.IdleTimeoutSecs)},
	}

	for _, row := range rows {
		fmt.Printf("  %s %s\n",
			infoStyle.Render(util.PadRight(row.key, 28)),
			commandStyle.Render(row.val))
	}

	fmt.Println()
	return nil
}

// handleConfigSet updates one key and saves the config file.
func handleConfigSet(cfg *config.Config, key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("usage: analyst config set KEY VALUE")
	}

	if err := applyConfigKey(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("%s %s = %s\n", commandStyle.Render("[OK]"), key, value)
	return nil
}

// applyConfigKey maps dotted keys onto config fields.
func applyConfigKey(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "backend.url":
		cfg.Backend.URL = value
	case "backend.timeout_secs":
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			return fmt.Errorf("backend.timeout_secs must be a positive integer")
		}
		cfg.Backend.TimeoutSecs = secs
	case "backend.download_dir":
		cfg.Backend.DownloadDir = value
	case "upload.max_size_mb":
		mb, err := strconv.ParseInt(value, 10, 64)
		if err != nil || mb < 0 {
			return fmt.Errorf("upload.max_size_mb must be a non-negative integer")
		}
		cfg.Upload.MaxSizeMB = mb
	case "ui.markdown":
		b, err := ParseBoolString(value)
		if err != nil {
			return err
		}
		cfg.UI.Markdown = b
	case "ui.show_tool_events":
		b, err := ParseBoolString(value)
		if err != nil {
			return err
		}
		cfg.UI.ShowToolEvents = b
	case "ui.theme":
		cfg.UI.Theme = value
	case "telemetry.enabled":
		b, err := ParseBoolString(value)
		if err != nil {
			return err
		}
		cfg.Telemetry.Enabled = b
	case "session.idle_timeout_secs":
		secs, err := strconv.Atoi(value)
		if err != nil || secs < 0 {
			return fmt.Errorf("session.idle_timeout_secs must be a non-negative integer")
		}
		cfg.Session.IdleTimeoutSecs = secs
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
