// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command handler for the analyst CLI.
//
// Command: status (alias: s)
//
// Shows backend reachability, effective configuration, and telemetry
// availability at a glance.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/analyst-tui/internal/config"
	"github.com/jeranaias/analyst-tui/internal/telemetry"
	"github.com/jeranaias/analyst-tui/internal/util"
)

// HandleStatus handles the "status" command.
func HandleStatus(cfg *config.Config, args Args) error {
	client := newBackendClient(cfg, args)

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Analyst Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	// Backend reachability
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := client.CheckReachable(ctx)
	cancel()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Backend:"),
		commandStyle.Render(client.BaseURL()))
	if err != nil {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Reachable:"),
			errorStyle.Render("no ("+util.TruncateRunes(err.Error(), 60)+")"))
	} else {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Reachable:"),
			commandStyle.Render("yes"))
	}

	// Effective configuration
	fmt.Println()
	fmt.Printf("  %s %ds\n",
		infoStyle.Render("Timeout:"),
		cfg.Backend.TimeoutSecs)
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Downloads:"),
		cfg.Backend.DownloadDir)
	fmt.Printf("  %s %dMB\n",
		infoStyle.Render("Max upload:"),
		cfg.Upload.MaxSizeMB)

	// Telemetry
	fmt.Println()
	if cfg.Telemetry.Enabled {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Telemetry:"),
			commandStyle.Render("enabled"))
		if _, statErr := os.Stat(cfg.Telemetry.DBPath); statErr == nil {
			if store, openErr := telemetry.Open(cfg.Telemetry.DBPath); openErr == nil {
				printUsageTotals(store)
				store.Close()
			}
		}
	} else {
		fmt.Printf("  %s %s\n",
			infoStyle.Render("Telemetry:"),
			infoStyle.Render("disabled"))
	}

	fmt.Println()
	if err != nil {
		return fmt.Errorf("backend is not reachable")
	}
	return nil
}

// printUsageTotals prints aggregate usage across all sessions.
func printUsageTotals(store *telemetry.Store) {
	totals, err := store.Totals()
	if err != nil || totals.Requests == 0 {
		return
	}
	fmt.Printf("  %s %s requests, %s chunks\n",
		infoStyle.Render("Recorded:"),
		formatNumber(totals.Requests),
		formatNumber(totals.Deltas))
}
