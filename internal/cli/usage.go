// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// usage.go - Usage statistics command handler for the analyst CLI.
//
// Command: usage (alias: stats)
//
// Reads the local usage log and prints lifetime aggregates. Transcript
// content is never recorded, only counts and timings.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/analyst-tui/internal/config"
	"github.com/jeranaias/analyst-tui/internal/telemetry"
)

// HandleUsage handles the "usage" command.
func HandleUsage(cfg *config.Config, args Args) error {
	if !cfg.Telemetry.Enabled {
		fmt.Println(infoStyle.Render("Telemetry is disabled. Enable with: analyst config set telemetry.enabled true"))
		return nil
	}

	if _, err := os.Stat(cfg.Telemetry.DBPath); err != nil {
		fmt.Println(infoStyle.Render("No usage recorded yet."))
		return nil
	}

	store, err := telemetry.Open(cfg.Telemetry.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open usage log: %w", err)
	}
	defer store.Close()

	totals, err := store.Totals()
	if err != nil {
		return fmt.Errorf("failed to read usage log: %w", err)
	}

	if totals.Requests == 0 {
		fmt.Println(infoStyle.Render("No usage recorded yet."))
		return nil
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Usage Statistics"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Requests:"),
		commandStyle.Render(formatNumber(totals.Requests)))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Sessions:"),
		commandStyle.Render(formatNumber(totals.Sessions)))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Chunks:"),
		commandStyle.Render(formatNumber(totals.Deltas)))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Tool calls:"),
		commandStyle.Render(formatNumber(totals.Tools)))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Log:"),
		cfg.Telemetry.DBPath)

	fmt.Println()
	return nil
}
