// analyst - A terminal client for the Enterprise AI Analyst backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/analyst-tui/internal/backend"
	"github.com/jeranaias/analyst-tui/internal/cli"
	"github.com/jeranaias/analyst-tui/internal/config"
	"github.com/jeranaias/analyst-tui/internal/engine"
	"github.com/jeranaias/analyst-tui/internal/model"
	"github.com/jeranaias/analyst-tui/internal/session"
	"github.com/jeranaias/analyst-tui/internal/telemetry"
	"github.com/jeranaias/analyst-tui/internal/ui/chat"
	"github.com/jeranaias/analyst-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	styles.ApplyBackground(cfg.UI.Theme)

	switch cmd {
	case cli.CmdTUI:
		runTUI(cfg, args)
	case cli.CmdAsk:
		exitOn(cli.HandleAsk(cfg, args))
	case cli.CmdChat:
		exitOn(cli.HandleChat(cfg, args))
	case cli.CmdUpload:
		exitOn(cli.HandleUpload(cfg, args))
	case cli.CmdDownload:
		exitOn(cli.HandleDownload(cfg, args))
	case cli.CmdStatus:
		exitOn(cli.HandleStatus(cfg, args))
	case cli.CmdUsage:
		exitOn(cli.HandleUsage(cfg, args))
	case cli.CmdConfig:
		exitOn(cli.HandleConfig(cfg, args))
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp(args)
	default:
		cli.PrintUsage()
		os.Exit(1)
	}
}

// exitOn prints the error and exits non-zero, or returns on nil.
func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// TUI STARTUP
// =============================================================================

func runTUI(cfg *config.Config, args cli.Args) {
	// CLI args override config
	clientCfg := &backend.ClientConfig{
		BaseURL:       cfg.Backend.URL,
		Timeout:       cfg.Timeout(),
		MaxUploadSize: cfg.MaxUploadBytes(),
	}
	if args.Backend != "" {
		clientCfg.BaseURL = args.Backend
	}
	client := backend.NewClientWithConfig(clientCfg)

	sess := session.New(session.Config{
		IdleTimeout: time.Duration(cfg.Session.IdleTimeoutSecs) * time.Second,
		OnIdle: func(idle time.Duration) {
			send(chat.SessionIdleMsg{Idle: idle})
		},
	})

	// Usage log is best effort; the TUI runs without it
	var usage *telemetry.Store
	if cfg.Telemetry.Enabled {
		if store, err := telemetry.Open(cfg.Telemetry.DBPath); err == nil {
			usage = store
			defer store.Close()
		} else {
			fmt.Fprintf(os.Stderr, "Warning: usage log unavailable: %v\n", err)
		}
	}

	// The engine publishes snapshots from its own goroutine; program.Send
	// marshals them onto the Bubble Tea loop.
	engCfg := engine.Config{
		Client:    client,
		SessionID: sess.ID(),
		IDs:       model.RandomIDs(),
		OnUpdate: func(snapshot model.Transcript) {
			send(chat.TranscriptMsg{Snapshot: snapshot})
		},
		OnSettle: func(res engine.Result) {
			send(chat.SettledMsg{Result: res})
		},
	}
	if usage != nil {
		engCfg.Usage = usage
	}
	eng := engine.New(engCfg)
	defer eng.Close()

	uiCfg := cfg.UI
	if args.NoMD {
		uiCfg.Markdown = false
	}

	m := chat.New(eng, client, sess, uiCfg)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Pick up config edits while the TUI is running
	watcher := startConfigWatcher(args)
	if watcher != nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running analyst: %v\n", err)
		os.Exit(1)
	}
}

// send delivers a message to the running program, dropping it when the
// program has not started or already exited.
func send(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// startConfigWatcher reloads display options when the config file changes.
// Watcher failures are not fatal; the TUI keeps its startup config.
func startConfigWatcher(args cli.Args) *config.Watcher {
	path, err := config.ConfigPath()
	if err != nil {
		return nil
	}

	watcher, err := config.NewWatcher(path, 0, func(fresh *config.Config) {
		ui := fresh.UI
		if args.NoMD {
			ui.Markdown = false
		}
		send(chat.ConfigReloadedMsg{UI: ui})
	})
	if err != nil {
		return nil
	}
	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}
