// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// Transcript
	UserLabel    lipgloss.Style
	AgentLabel   lipgloss.Style
	UserText     lipgloss.Style
	AgentText    lipgloss.Style
	ToolActivity lipgloss.Style

	// Input area
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusBusy   lipgloss.Style
	StatusReady  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Notices
	Notice      lipgloss.Style
	NoticeError lipgloss.Style
}

// ApplyBackground forces the light or dark variant of every adaptive color.
// Any other value keeps terminal background autodetection.
func ApplyBackground(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// NewTheme builds the theme for the configured background variant.
func NewTheme(theme string) *Theme {
	ApplyBackground(theme)

	t := &Theme{}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.AgentLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)
	t.UserText = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.AgentText = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.ToolActivity = lipgloss.NewStyle().
		Foreground(Emerald).
		Italic(true)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusBusy = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
	t.StatusReady = lipgloss.NewStyle().
		Foreground(Emerald)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Notice = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	t.NoticeError = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Foreground(Rose).
		Padding(0, 1)

	return t
}
