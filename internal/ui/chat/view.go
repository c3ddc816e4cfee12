// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/analyst-tui/internal/engine"
	"github.com/jeranaias/analyst-tui/internal/model"
	"github.com/jeranaias/analyst-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.mode == ModePicker {
		b.WriteString(m.picker.View())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Enterprise AI Analyst")
	return m.theme.Header.Width(m.width).Render(title)
}

func (m Model) renderInput() string {
	if m.mode == ModePicker {
		return m.theme.InputPlaceholder.Render("  select a file to upload (esc to cancel)")
	}
	return m.input.View()
}

func (m Model) renderStatus() string {
	var left string
	switch {
	case m.uploading:
		left = m.theme.StatusBusy.Render(m.spinner.View() + " uploading")
	case m.busy():
		label := "thinking"
		if m.engine.State() == engine.StateStreaming {
			label = "streaming"
		}
		left = m.theme.StatusBusy.Render(m.spinner.View() + " " + label)
	default:
		left = m.theme.StatusReady.Render("ready")
	}

	if m.notice != "" {
		style := m.theme.Notice
		if m.noticeErr {
			style = m.theme.NoticeError
		}
		// Long upload errors must not push the shortcuts off screen.
		left += "  " + style.Render(util.TruncateWidth(m.notice, m.width/2))
	}

	keys := m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" send  ") +
		m.theme.ShortcutKey.Render("ctrl+u") + m.theme.ShortcutDesc.Render(" upload  ") +
		m.theme.ShortcutKey.Render("esc") + m.theme.ShortcutDesc.Render(" cancel  ") +
		m.theme.ShortcutKey.Render("ctrl+c") + m.theme.ShortcutDesc.Render(" quit")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(keys)
	if gap < 1 {
		return m.theme.StatusBar.Width(m.width).Render(left)
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + keys)
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshViewport re-renders the transcript into the viewport buffer.
func (m *Model) refreshViewport() {
	if m.viewport.Width == 0 {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}

func (m Model) renderTranscript() string {
	if m.snapshot.IsEmpty() {
		return m.theme.InputPlaceholder.Render(
			"\n  Start a conversation. Upload reports with ctrl+u and ask questions about them.")
	}

	msgs := m.snapshot.Messages()
	var parts []string
	for i, msg := range msgs {
		streaming := m.busy() && i == len(msgs)-1
		parts = append(parts, m.renderMessage(msg, streaming))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderMessage(msg *model.Message, streaming bool) string {
	var b strings.Builder

	switch msg.Role {
	case model.RoleUser:
		b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.UserText.Width(m.viewport.Width - 2).Render(msg.Content))

	case model.RoleAgent:
		label := msg.Role.DisplayName()
		if streaming {
			label += " " + m.spinner.View()
		}
		b.WriteString(m.theme.AgentLabel.Render(label))

		if m.cfg.ShowToolEvents && msg.HasTools() {
			for _, tool := range msg.Tools {
				b.WriteString("\n")
				b.WriteString(m.theme.ToolActivity.Render("  ⚙ " + tool))
			}
		}

		b.WriteString("\n")
		b.WriteString(m.renderAgentContent(msg, streaming))
	}
	return b.String()
}

// renderAgentContent picks between raw and markdown output. Streaming
// text stays raw so partial markdown never garbles the display; settled
// messages get the full glamour treatment.
func (m Model) renderAgentContent(msg *model.Message, streaming bool) string {
	if msg.IsEmpty() {
		if streaming {
			return m.theme.InputPlaceholder.Render("...")
		}
		return ""
	}

	if !streaming && m.cfg.Markdown && m.renderer != nil {
		rendered, err := m.renderer.Render(msg.Content)
		if err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return m.theme.AgentText.Width(m.viewport.Width - 2).Render(msg.Content)
}
