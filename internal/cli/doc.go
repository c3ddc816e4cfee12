// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for
// analyst-tui.
//
// This package implements all CLI commands for the analyst terminal client,
// providing both interactive and non-interactive modes against the
// Enterprise AI Analyst backend.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - ArgParser: Unified flag/subcommand parsing for command handlers
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    return cli.HandleAsk(cfg, args)
//	case cli.CmdChat:
//	    return cli.HandleChat(cfg, args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - (none): Start the TUI (default)
//   - ask: Single question query with streamed response
//   - chat: Interactive chat session with input history
//   - upload: Upload a report for analysis
//   - download: Fetch a generated report
//   - status: Backend reachability and session status
//   - usage: Local usage statistics
//   - config: Configuration management
package cli
