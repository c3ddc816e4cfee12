// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// transfer.go - Upload and download command handlers for the analyst CLI.
//
// Commands: upload, download
//
// Examples:
//
//	analyst upload report.pdf           Upload a report for analysis
//	analyst download summary.md         Fetch into the configured directory
//	analyst download summary.md --out . Fetch into the current directory
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/analyst-tui/internal/config"
)

// HandleUpload handles the "upload" command.
func HandleUpload(cfg *config.Config, args Args) error {
	if args.File == "" {
		return fmt.Errorf("usage: analyst upload FILE")
	}

	client := newBackendClient(cfg, args)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	filename, err := client.Upload(ctx, args.File)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if args.Quiet {
		fmt.Println(filename)
		return nil
	}

	fmt.Printf("%s %s\n", commandStyle.Render("[Uploaded]"), filename)
	fmt.Println(infoStyle.Render("Ask the analyst to read it, e.g.:"))
	fmt.Printf("  analyst ask %q\n", "Summarize "+filename)
	return nil
}

// HandleDownload handles the "download" command.
func HandleDownload(cfg *config.Config, args Args) error {
	if args.Query == "" {
		return fmt.Errorf("usage: analyst download NAME [--out DIR]")
	}

	client := newBackendClient(cfg, args)

	dstDir := args.OutDir
	if dstDir == "" {
		dstDir = cfg.Backend.DownloadDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dst, err := client.Download(ctx, args.Query, dstDir)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if args.Quiet {
		fmt.Println(dst)
		return nil
	}

	fmt.Printf("%s %s\n", commandStyle.Render("[Saved]"), dst)
	return nil
}
