// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for analyst-tui.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdUpload
	CmdDownload
	CmdStatus
	CmdUsage
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Backend string // Override backend URL
	NoMD    bool   // Disable markdown rendering

	// Command-specific
	Query      string
	File       string
	OutDir     string
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `analyst - terminal client for the Enterprise AI Analyst

Analyst is a terminal client for the Enterprise AI Analyst backend.

It provides:
  - Streaming chat with the analyst agent
  - Report upload for analysis
  - Generated report download
  - Local usage statistics

Usage:
  analyst                     Start TUI (default)
  analyst ask "question"      Ask a single question
  analyst chat                Interactive chat
  analyst upload FILE         Upload a report for analysis
  analyst download NAME       Download a generated report
    --out DIR                 Destination directory
  analyst status, s           Show backend and session status
  analyst usage               Show local usage statistics
  analyst config [show|set|path]  Configuration
  analyst version             Show version
  analyst help                Show this help

Config Commands:
  analyst config show         Show current configuration
  analyst config set KEY VAL  Set a configuration value
  analyst config path         Print the config file path

  Keys: backend.url, backend.timeout_secs, backend.download_dir,
        ui.markdown, ui.theme, telemetry.enabled

Global Flags:
  --backend URL   Override backend URL for this invocation
  --no-markdown   Disable markdown rendering
  -q, --quiet     Minimal output
  -v, --verbose   Debug output

Examples:
  analyst                               Start TUI interface
  analyst ask "Summarize Q3 revenue"    Ask a single question
  analyst chat                          Start interactive chat
  analyst upload report.pdf             Upload a report
  analyst download summary.md --out .   Download into the current directory
  analyst status                        Check backend status (alias: s)
  analyst config set ui.theme light     Switch to the light theme

Environment:
  ANALYST_BACKEND_URL     Backend URL override
  ANALYST_TIMEOUT_SECS    Request timeout override
  ANALYST_DOWNLOAD_DIR    Download directory override
  ANALYST_TELEMETRY       Enable/disable usage recording (true/false)
  ANALYST_THEME           Color theme (dark/light)
  NO_COLOR                Disable colored output
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("analyst version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split out from Parse for testing.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	// No remaining args: default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed

	case "chat":
		return CmdChat, parsed

	case "upload":
		if len(remaining) > 0 {
			parsed.File = remaining[0]
		}
		return CmdUpload, parsed

	case "download", "fetch":
		parseDownloadArgs(&parsed, remaining)
		return CmdDownload, parsed

	case "status", "s":
		return CmdStatus, parsed

	case "usage", "stats":
		return CmdUsage, parsed

	case "config":
		parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed

	case "version", "--version", "-V":
		return CmdVersion, parsed

	case "help", "--help", "-h":
		return CmdHelp, parsed

	default:
		// Unknown commands fall through to help with the raw args intact
		// so the caller can report what was attempted.
		parsed.Subcommand = cmd
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts flags valid for every command.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--no-markdown", "--no-md":
			parsed.NoMD = true
		case "--backend":
			if i+1 < len(argv) {
				i++
				parsed.Backend = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--backend=") {
				parsed.Backend = strings.TrimPrefix(arg, "--backend=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// parseAskArgs collects the query from positional arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-f", "--file":
			if i+1 < len(remaining) {
				i++
				args.File = remaining[i]
			}
		default:
			query = append(query, arg)
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseDownloadArgs collects the filename and destination.
func parseDownloadArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Query = parser.Positional(0)
	args.OutDir = parser.Flag("out")
}

// parseConfigArgs collects the subcommand and key/value.
func parseConfigArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Subcommand = parser.Subcommand()
	args.ConfigKey = parser.Positional(1)
	args.ConfigVal = strings.Join(parser.PositionalFrom(2), " ")
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp(args Args) {
	if args.Subcommand != "" {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args.Subcommand)
	}
	PrintUsage()
}
