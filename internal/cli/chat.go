// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the analyst CLI.
//
// Handles the "analyst chat" command which provides an interactive REPL
// for conversing with the analyst agent.
//
// Command: chat
// Short:   Start an interactive chat session
//
// Examples:
//
//	analyst chat                      Start interactive chat
//	analyst chat --no-markdown        Stream raw text
//	analyst chat -q                   Minimal output
//
// Interactive Commands (during chat):
//
//	/help, /h           Show available commands
//	/clear, /c          Clear the transcript
//	/upload PATH        Upload a report for analysis
//	/download NAME      Download a generated report
//	/status, /s         Show session statistics
//	/quit, /q           Exit chat
//	Ctrl+C              Cancel current response
//	Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/analyst-tui/internal/backend"
	"github.com/jeranaias/analyst-tui/internal/config"
	"github.com/jeranaias/analyst-tui/internal/engine"
	"github.com/jeranaias/analyst-tui/internal/model"
	"github.com/jeranaias/analyst-tui/internal/session"
	"github.com/jeranaias/analyst-tui/internal/telemetry"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	Config  *config.Config
	Client  *backend.Client
	Engine  *engine.Engine
	Session *session.Session
	Usage   *telemetry.Store

	Quiet       bool
	UseMarkdown bool
	StartTime   time.Time

	// Input history handler
	InputCLI *ChatCLI

	// Streaming print state, written by the engine goroutine and reset by
	// the REPL between requests. The settled channel orders the two.
	mu         sync.Mutex
	printed    int
	toolsShown int
	settled    chan engine.Result
}

// NewChatSession creates a new chat session wired to the engine.
func NewChatSession(cfg *config.Config, args Args) *ChatSession {
	client := newBackendClient(cfg, args)

	// The REPL blocks at the prompt between requests, so idle tracking is
	// left to the TUI.
	sess := session.New(session.Config{})

	var usage *telemetry.Store
	if cfg.Telemetry.Enabled {
		if store, err := telemetry.Open(cfg.Telemetry.DBPath); err == nil {
			usage = store
		}
	}

	s := &ChatSession{
		Config:      cfg,
		Client:      client,
		Session:     sess,
		Usage:       usage,
		Quiet:       args.Quiet,
		UseMarkdown: IsStdoutTTY() && cfg.UI.Markdown && !args.NoMD,
		StartTime:   time.Now(),
		InputCLI:    NewChatCLI(),
		settled:     make(chan engine.Result, 1),
	}

	engCfg := engine.Config{
		Client:    client,
		SessionID: sess.ID(),
		OnUpdate:  s.observe,
		OnSettle: func(res engine.Result) {
			s.settled <- res
		},
		OnParseFailure: func(line string, parseErr error) {
			if args.Verbose {
				fmt.Fprintf(os.Stderr, "%s skipped malformed line: %v\n",
					warningStyle.Render("[warn]"),
					parseErr)
			}
		},
	}
	if usage != nil {
		engCfg.Usage = usage
	}
	s.Engine = engine.New(engCfg)

	return s
}

// Close releases session resources.
func (s *ChatSession) Close() {
	s.Engine.Close()
	s.InputCLI.Close()
	if s.Usage != nil {
		s.Usage.Close()
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command with full interactive support.
func HandleChat(cfg *config.Config, args Args) error {
	if !IsTTY() {
		return fmt.Errorf("chat requires an interactive terminal (use 'analyst ask' for scripted queries)")
	}

	session := NewChatSession(cfg, args)
	defer session.Close()

	// Check the backend before entering the loop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := session.Client.CheckReachable(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("backend is not reachable at %s: %w", session.Client.BaseURL(), err)
	}

	if !session.Quiet {
		printWelcome(session)
	}

	// First Ctrl+C during streaming cancels the response
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			session.Engine.Cancel()
		}
	}()

	// Main REPL loop using liner for input history
	for {
		input, err := session.InputCLI.ReadInput(promptStyle.Render("analyst> "))
		if err != nil {
			// Ctrl+C at the prompt or EOF (Ctrl+D): exit gracefully
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		session.Session.Touch()

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		if err := processMessage(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage submits a message to the engine and waits for it to settle.
func processMessage(s *ChatSession, input string) error {
	s.mu.Lock()
	s.printed = 0
	s.toolsShown = 0
	s.mu.Unlock()

	if !s.Engine.Submit(input) {
		return fmt.Errorf("a request is already in flight")
	}
	s.Session.RecordRequest()

	fmt.Println() // Space before response

	res := <-s.settled

	if s.UseMarkdown {
		if last := s.Engine.Transcript().Last(); last != nil && !last.IsEmpty() {
			displayResponse(last.Content)
		}
	}

	fmt.Println()
	fmt.Println() // Extra space after response

	if res.Err != nil && !s.Quiet {
		fmt.Fprintf(os.Stderr, "%s %v\n", warningStyle.Render("[Interrupted]"), res.Err)
	}
	return nil
}

// observe streams transcript updates to the terminal as they arrive.
// Runs on the engine goroutine; plain mode prints content increments, while
// markdown mode defers content to processMessage and renders once settled.
func (s *ChatSession) observe(snapshot model.Transcript) {
	last := snapshot.Last()
	if last == nil || last.Role != model.RoleAgent {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Quiet {
		for _, tool := range last.Tools[min(s.toolsShown, len(last.Tools)):] {
			fmt.Fprintf(os.Stderr, "%s %s\n", toolStyle.Render("[tool]"), tool)
		}
	}
	s.toolsShown = len(last.Tools)

	if !s.UseMarkdown && len(last.Content) > s.printed {
		streamToStdout(last.Content[s.printed:])
		s.printed = len(last.Content)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, s *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printChatHelp()
		return true, nil

	case "/clear", "/c":
		if !s.Engine.Reset() {
			return true, fmt.Errorf("cannot clear while a response is streaming")
		}
		fmt.Println(commandStyle.Render("[Transcript cleared]"))
		return true, nil

	case "/upload", "/u":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: /upload PATH")
		}
		return true, uploadFromChat(s, strings.Join(args, " "))

	case "/download", "/d":
		if len(args) == 0 {
			return true, fmt.Errorf("usage: /download NAME")
		}
		return true, downloadFromChat(s, args[0])

	case "/status", "/s":
		printChatStatus(s)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printChatHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// uploadFromChat uploads a file mid-conversation.
func uploadFromChat(s *ChatSession, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	filename, err := s.Client.Upload(ctx, path)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s (ask the analyst to read it)\n",
		commandStyle.Render("[Uploaded]"),
		filename)
	return nil
}

// downloadFromChat fetches a generated report into the download directory.
func downloadFromChat(s *ChatSession, filename string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dst, err := s.Client.Download(ctx, filename, s.Config.Backend.DownloadDir)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", commandStyle.Render("[Saved]"), dst)
	return nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(s *ChatSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("analyst interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Backend:"),
		commandStyle.Render(s.Client.BaseURL()))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Session:"),
		commandStyle.Render(s.Session.ID()))

	if s.UseMarkdown {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Output:"),
			commandStyle.Render("Markdown"))
	} else {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Output:"),
			commandStyle.Render("Plain text"))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints available commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear the transcript"},
		{"/upload PATH", "Upload a report for analysis"},
		{"/download NAME", "Download a generated report"},
		{"/status, /s", "Show session statistics"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels the current response, Ctrl+D exits"))
	fmt.Println()
}

// printChatStatus prints session statistics.
func printChatStatus(s *ChatSession) {
	status := s.Session.Status()

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	fmt.Printf("  %s %s\n",
		infoStyle.Render("Session:"),
		commandStyle.Render(status.ID))
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		status.Duration.Round(time.Second).String())
	fmt.Printf("  %s %d\n",
		infoStyle.Render("Requests:"),
		status.Requests)
	fmt.Printf("  %s %d messages\n",
		infoStyle.Render("Transcript:"),
		s.Engine.Transcript().Len())

	if s.Usage != nil {
		if summary, err := s.Usage.Summarize(status.ID); err == nil && summary.Requests > 0 {
			fmt.Println()
			fmt.Println(infoStyle.Render("Statistics:"))
			fmt.Printf("  %s %d (%d ok, %d failed, %d cancelled)\n",
				infoStyle.Render("Settled:"),
				summary.Requests,
				summary.Succeeded,
				summary.Failed,
				summary.Cancelled)
			fmt.Printf("  %s %s chunks, %d tool calls\n",
				infoStyle.Render("Received:"),
				formatNumber(summary.Deltas),
				summary.Tools)
			if summary.AvgFirstMs > 0 {
				fmt.Printf("  %s %dms\n",
					infoStyle.Render("Avg first chunk:"),
					summary.AvgFirstMs)
			}
		}
	}

	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(s *ChatSession) {
	status := s.Session.Status()

	if status.Requests == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d\n",
		infoStyle.Render("Requests:"),
		status.Requests)
	fmt.Printf("  %s %d messages\n",
		infoStyle.Render("Transcript:"),
		s.Engine.Transcript().Len())
	fmt.Printf("  %s %s\n",
		infoStyle.Render("Duration:"),
		status.Duration.Round(time.Second).String())

	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
