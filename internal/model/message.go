// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAgent:
		return "Analyst"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. Messages are treated as immutable
// values: mutation helpers return a modified copy and never touch the
// receiver, so older transcript snapshots stay valid for concurrent readers.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content accumulated so far. Append-only: deltas are concatenated in
	// arrival order and nothing ever rewrites or truncates earlier text.
	Content string `json:"content"`

	// Tools the agent reported using while producing this message, in
	// first-seen order with duplicates collapsed. Empty for user messages.
	Tools []string `json:"tools,omitempty"`
}

// NewUserMessage creates a user message carrying the submitted text.
func NewUserMessage(id, content string) *Message {
	return &Message{
		ID:        id,
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewPlaceholder creates the empty agent message that accompanies a user
// submission and accumulates the streamed response.
func NewPlaceholder(id string) *Message {
	return &Message{
		ID:        id,
		Role:      RoleAgent,
		Timestamp: time.Now(),
	}
}

// withDelta returns a copy of the message with text appended to its content.
func (m *Message) withDelta(text string) *Message {
	out := *m
	out.Content = m.Content + text
	return &out
}

// withTool returns a copy of the message with the tool name appended to its
// tool list, or the receiver unchanged if the name is already present.
func (m *Message) withTool(name string) *Message {
	for _, t := range m.Tools {
		if t == name {
			return m
		}
	}
	out := *m
	out.Tools = make([]string, 0, len(m.Tools)+1)
	out.Tools = append(out.Tools, m.Tools...)
	out.Tools = append(out.Tools, name)
	return &out
}

// HasTools returns true if the message recorded any tool usage.
func (m *Message) HasTools() bool {
	return len(m.Tools) > 0
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// =============================================================================
// ID GENERATION
// =============================================================================

// IDGenerator produces message identifiers. It is injected wherever messages
// are created so that submission ordering is deterministic under test.
type IDGenerator func() string

// RandomIDs returns the production generator: 8 random bytes, hex encoded,
// with a "msg_" prefix.
func RandomIDs() IDGenerator {
	return func() string {
		bytes := make([]byte, 8)
		rand.Read(bytes)
		return "msg_" + hex.EncodeToString(bytes)
	}
}

// SequentialIDs returns a generator that yields msg_1, msg_2, ... for tests
// and anywhere collision-free, ordered identifiers are required.
func SequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return "msg_" + formatInt(n)
	}
}

// formatInt formats a non-negative integer without using fmt.
func formatInt(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
