// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Centralized styling for all CLI commands.
//
// Color handling:
// - Colors are automatically disabled for non-TTY output (piped, redirected)
// - Respects NO_COLOR environment variable (https://no-color.org/)
// - Supports FORCE_COLOR environment variable to override detection
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/analyst-tui/internal/ui/styles"
)

// init configures lipgloss color profile based on terminal capabilities.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// promptStyle is used for the interactive input prompt
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// welcomeStyle is used for the chat welcome banner
	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	// infoStyle is used for secondary information
	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	// commandStyle is used for command names and confirmations
	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	// warningStyle is used for warnings
	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// errorStyle is used for error messages
	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// toolStyle is used for tool activity lines
	toolStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// summaryHeaderStyle is used for section headers
	summaryHeaderStyle = lipgloss.NewStyle().
				Foreground(styles.Cyan).
				Bold(true)
)
