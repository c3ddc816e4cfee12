// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/analyst-tui/internal/backend"
	"github.com/jeranaias/analyst-tui/internal/config"
	"github.com/jeranaias/analyst-tui/internal/engine"
	"github.com/jeranaias/analyst-tui/internal/model"
	"github.com/jeranaias/analyst-tui/internal/session"
	"github.com/jeranaias/analyst-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODE
// =============================================================================

// Mode selects which input surface is active.
type Mode int

const (
	ModeInput  Mode = iota // Text input focused
	ModePicker             // File picker overlay for uploads
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. It renders transcript
// snapshots published by the engine and forwards user intent (submit,
// cancel, upload) back to it. The engine owns all conversation state; the
// view keeps only the last snapshot it was handed.
type Model struct {
	// Collaborators
	engine  *engine.Engine
	client  *backend.Client
	session *session.Session
	cfg     config.UIConfig

	// Styling
	theme    *styles.Theme
	renderer *glamour.TermRenderer

	// Last published snapshot
	snapshot model.Transcript

	// Dimensions
	width  int
	height int

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	picker   filepicker.Model

	// Key bindings
	keyMap KeyMap

	// Mode and transient state
	mode      Mode
	uploading bool
	notice    string
	noticeErr bool
}

// New creates the chat view.
func New(eng *engine.Engine, client *backend.Client, sess *session.Session, cfg config.UIConfig) Model {
	theme := styles.NewTheme(cfg.Theme)

	input := textinput.New()
	input.Placeholder = "Ask the analyst anything..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.StatusBusy

	picker := filepicker.New()
	picker.AllowedTypes = nil // Any file; the backend decides what it accepts
	picker.ShowHidden = false

	return Model{
		engine:   eng,
		client:   client,
		session:  sess,
		cfg:      cfg,
		theme:    theme,
		snapshot: eng.Transcript(),
		viewport: viewport.New(0, 0),
		input:    input,
		spinner:  sp,
		picker:   picker,
		keyMap:   DefaultKeyMap(),
	}
}

// Init starts the spinner and idle ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, idleTickCmd())
}

// busy reports whether a request is in flight.
func (m Model) busy() bool {
	return m.engine.State() != engine.StateIdle
}

// idleTickCmd emits IdleTickMsg once per second for session idle tracking.
func idleTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return IdleTickMsg{Time: t}
	})
}

// noticeCmd schedules a transient notice to clear.
func noticeCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return NoticeExpiredMsg{}
	})
}
