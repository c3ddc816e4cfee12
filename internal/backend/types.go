// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the Enterprise AI Analyst API.
package backend

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the request body for the /chat endpoint.
type ChatRequest struct {
	Message   string `json:"message"`    // The user's submitted text
	SessionID string `json:"session_id"` // Opaque client-generated session token
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// UploadResponse is the response from the /upload endpoint.
type UploadResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status,omitempty"`
	Path     string `json:"path,omitempty"`
}

// streamLine is the wire format of one NDJSON line on the /chat stream.
// Each line is a complete, self-contained JSON object; there is no framing
// beyond the newline.
type streamLine struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind tags the recognized stream event kinds.
type EventKind int

const (
	// EventUnknown marks a structurally valid line whose type we do not
	// recognize. Unknown events are ignored for forward compatibility.
	EventUnknown EventKind = iota

	// EventDelta carries an incremental fragment of agent text.
	EventDelta

	// EventTool reports that the agent invoked a named tool.
	EventTool
)

// String returns a short name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventDelta:
		return "delta"
	case EventTool:
		return "tool"
	default:
		return "unknown"
	}
}

// Event is one decoded stream event. Content holds the delta text for
// EventDelta and the tool name for EventTool, verbatim from the wire with no
// trimming beyond the structural JSON decode.
type Event struct {
	Kind    EventKind
	Content string
}
