// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// ===== BACKGROUND SELECTION =====

func TestApplyBackground(t *testing.T) {
	ApplyBackground("light")
	if lipgloss.HasDarkBackground() {
		t.Error("light theme should clear the dark background flag")
	}

	ApplyBackground("dark")
	if !lipgloss.HasDarkBackground() {
		t.Error("dark theme should set the dark background flag")
	}

	// Unrecognized values keep the current setting.
	ApplyBackground("sepia")
	if !lipgloss.HasDarkBackground() {
		t.Error("unknown theme should not change the background flag")
	}
}

func TestNewTheme_HonorsConfiguredTheme(t *testing.T) {
	NewTheme("light")
	if lipgloss.HasDarkBackground() {
		t.Error("NewTheme(light) should render the light palette variant")
	}

	theme := NewTheme("dark")
	if !lipgloss.HasDarkBackground() {
		t.Error("NewTheme(dark) should render the dark palette variant")
	}
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
}
