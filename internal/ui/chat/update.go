// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/analyst-tui/internal/backend"
	"github.com/jeranaias/analyst-tui/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages for the chat view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TranscriptMsg:
		m.snapshot = msg.Snapshot
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case SettledMsg:
		// The transcript already shows the outcome (including the error
		// suffix); only the status line needs refreshing, which View does.
		return m, nil

	case UploadDoneMsg:
		m.uploading = false
		if msg.Err != nil {
			m.notice = "Upload failed: " + msg.Err.Error()
			m.noticeErr = true
		} else {
			m.notice = "Uploaded " + msg.Filename + " (ask the analyst to read it)"
			m.noticeErr = false
		}
		return m, noticeCmd()

	case NoticeExpiredMsg:
		// Error notices stay until dismissed by the next action.
		if !m.noticeErr {
			m.notice = ""
		}
		return m, nil

	case IdleTickMsg:
		m.session.CheckIdle()
		return m, idleTickCmd()

	case SessionIdleMsg:
		m.notice = "Session idle for " + msg.Idle.Round(time.Minute).String()
		m.noticeErr = false
		return m, noticeCmd()

	case ConfigReloadedMsg:
		m.cfg = msg.UI
		m.theme = styles.NewTheme(msg.UI.Theme)
		m.input.PromptStyle = m.theme.InputPrompt
		m.input.PlaceholderStyle = m.theme.InputPlaceholder
		m.spinner.Style = m.theme.StatusBusy
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Everything else belongs to whichever surface is active.
	if m.mode == ModePicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey routes key presses for the active mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.session.Touch()

	if key.Matches(msg, m.keyMap.Quit) {
		m.engine.Close()
		return m, tea.Quit
	}

	if m.mode == ModePicker {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		text := m.input.Value()
		if m.engine.Submit(text) {
			m.input.Reset()
			m.session.RecordRequest()
			m.notice = ""
			m.noticeErr = false
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		if m.busy() {
			m.engine.Cancel()
		}
		m.notice = ""
		m.noticeErr = false
		return m, nil

	case key.Matches(msg, m.keyMap.Upload):
		if m.uploading {
			return m, nil
		}
		m.mode = ModePicker
		m.picker.Height = m.viewport.Height
		return m, m.picker.Init()

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handlePickerKey drives the upload file picker.
func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Cancel) {
		m.mode = ModeInput
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.mode = ModeInput
		m.uploading = true
		m.notice = "Uploading..."
		m.noticeErr = false
		return m, tea.Batch(cmd, uploadCmd(m.client, path))
	}
	return m, cmd
}

// =============================================================================
// COMMANDS
// =============================================================================

// uploadCmd performs the upload off the UI loop.
func uploadCmd(client *backend.Client, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		filename, err := client.Upload(ctx, path)
		return UploadDoneMsg{Filename: filename, Err: err}
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout recomputes component dimensions after a resize.
func (m *Model) layout() {
	headerHeight := 1
	inputHeight := 1
	statusHeight := 1

	vpHeight := m.height - headerHeight - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.input.Width = m.width - 4
	m.picker.Height = vpHeight

	// Rebuild the markdown renderer at the new wrap width.
	if m.cfg.Markdown && m.width > 0 {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(m.width-2),
		)
		if err == nil {
			m.renderer = renderer
		}
	}
}
