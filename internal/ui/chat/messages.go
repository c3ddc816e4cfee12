// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat interface.
// Messages are organized into the following categories:
//   - Transcript: new snapshots published by the engine
//   - Settlement: request completion (success or error)
//   - Upload: file upload lifecycle
//   - UI State: resize and tick events
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"time"

	"github.com/jeranaias/analyst-tui/internal/config"
	"github.com/jeranaias/analyst-tui/internal/engine"
	"github.com/jeranaias/analyst-tui/internal/model"
)

// =============================================================================
// TRANSCRIPT MESSAGES
// =============================================================================

// TranscriptMsg delivers a new transcript snapshot from the engine.
// Snapshots are immutable; the view renders whichever one arrived last.
type TranscriptMsg struct {
	Snapshot model.Transcript
}

// SettledMsg signals that the in-flight request finished.
type SettledMsg struct {
	Result engine.Result
}

// =============================================================================
// UPLOAD MESSAGES
// =============================================================================

// UploadDoneMsg reports the outcome of a file upload.
type UploadDoneMsg struct {
	Filename string
	Err      error
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// IdleTickMsg drives periodic session idle checks.
type IdleTickMsg struct {
	Time time.Time
}

// SessionIdleMsg reports that the session crossed its idle threshold.
type SessionIdleMsg struct {
	Idle time.Duration
}

// NoticeExpiredMsg clears a transient notice from the status area.
type NoticeExpiredMsg struct{}

// ConfigReloadedMsg carries fresh display options after a config file
// change is picked up by the watcher.
type ConfigReloadedMsg struct {
	UI config.UIConfig
}
