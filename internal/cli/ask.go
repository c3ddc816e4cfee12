// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single-question command handler for the analyst CLI.
//
// Handles the "analyst ask" command which sends one question to the
// backend and streams the response to stdout.
//
// Command: ask
// Short:   Ask a single question
//
// Examples:
//
//	analyst ask "Summarize Q3 revenue"
//	analyst ask "What changed?" --no-markdown
//	analyst ask "Explain the anomaly" | less
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"github.com/jeranaias/analyst-tui/internal/backend"
	"github.com/jeranaias/analyst-tui/internal/config"
	"github.com/jeranaias/analyst-tui/internal/telemetry"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// initMarkdownRenderer creates the glamour renderer sized to the terminal.
func initMarkdownRenderer() {
	markdownRendererOnce.Do(func() {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()-2),
		)
		if err != nil {
			markdownRenderer = nil
			return
		}
		markdownRenderer = renderer
	})
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	initMarkdownRenderer()
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse displays a response with markdown rendering when appropriate.
// Only renders markdown when stdout is a TTY to avoid corrupting piped output.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Print(response)
	}
}

// streamToStdout prints tokens directly to stdout.
func streamToStdout(token string) {
	fmt.Print(token)
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk handles the "ask" command: one question, streamed answer, exit.
func HandleAsk(cfg *config.Config, args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("usage: analyst ask \"question\"")
	}

	client := newBackendClient(cfg, args)

	// Markdown rendering collects the full response and renders at the
	// end; plain mode streams tokens as they arrive.
	useMarkdown := IsStdoutTTY() && cfg.UI.Markdown && !args.NoMD

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID := uuid.NewString()
	startTime := time.Now()

	var response strings.Builder
	var toolsSeen []string

	stats, err := client.ChatStream(ctx, query, sessionID, backend.StreamHandler{
		OnEvent: func(ev backend.Event) {
			switch ev.Kind {
			case backend.EventDelta:
				response.WriteString(ev.Content)
				if !useMarkdown {
					streamToStdout(ev.Content)
				}
			case backend.EventTool:
				toolsSeen = append(toolsSeen, ev.Content)
				if !args.Quiet {
					fmt.Fprintf(os.Stderr, "%s %s\n",
						toolStyle.Render("[tool]"),
						ev.Content)
				}
			}
		},
		OnParseFailure: func(line string, parseErr error) {
			if args.Verbose {
				fmt.Fprintf(os.Stderr, "%s skipped malformed line: %v\n",
					warningStyle.Render("[warn]"),
					parseErr)
			}
		},
	})

	recordUsage(cfg, sessionID, startTime, stats, err)

	if err != nil {
		// Print what arrived before the failure so partial answers are
		// not lost on a dropped connection.
		if useMarkdown && response.Len() > 0 {
			displayResponse(response.String())
			fmt.Println()
		}
		return fmt.Errorf("request failed: %w", err)
	}

	if useMarkdown {
		displayResponse(response.String())
	}
	fmt.Println()

	if !args.Quiet {
		showAskStats(stats, len(toolsSeen), time.Since(startTime))
	}
	return nil
}

// showAskStats prints a brief summary line to stderr.
func showAskStats(stats *backend.StreamStats, tools int, duration time.Duration) {
	if stats == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %d chunks | %d tools | %s\n",
		infoStyle.Render("[Stats]"),
		stats.Deltas,
		tools,
		duration.Round(time.Millisecond))
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// newBackendClient builds a client from config plus CLI overrides.
func newBackendClient(cfg *config.Config, args Args) *backend.Client {
	clientCfg := &backend.ClientConfig{
		BaseURL:       cfg.Backend.URL,
		Timeout:       cfg.Timeout(),
		MaxUploadSize: cfg.MaxUploadBytes(),
	}
	if args.Backend != "" {
		clientCfg.BaseURL = args.Backend
	}
	return backend.NewClientWithConfig(clientCfg)
}

// recordUsage writes one usage record when telemetry is enabled. Recording
// failures never affect the command outcome.
func recordUsage(cfg *config.Config, sessionID string, started time.Time, stats *backend.StreamStats, reqErr error) {
	if !cfg.Telemetry.Enabled {
		return
	}
	store, err := telemetry.Open(cfg.Telemetry.DBPath)
	if err != nil {
		return
	}
	defer store.Close()

	req := telemetry.Request{
		SessionID:  sessionID,
		StartedAt:  started,
		DurationMs: time.Since(started).Milliseconds(),
		Outcome:    telemetry.OutcomeSuccess,
	}
	if stats != nil {
		req.FirstEventMs = stats.FirstEventLatency().Milliseconds()
		req.Deltas = stats.Deltas
		req.Tools = stats.Tools
		req.ParseFailures = stats.ParseFailures
	}
	if reqErr != nil {
		req.Outcome = telemetry.OutcomeError
		req.Error = reqErr.Error()
	}
	_ = store.Record(req)
}

// formatNumber formats an integer with commas for thousands.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+len(s)/3)

	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	return string(result)
}
