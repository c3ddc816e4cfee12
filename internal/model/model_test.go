// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"

	"github.com/jeranaias/analyst-tui/internal/backend"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("msg_1", "Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want 'user'", msg.Role)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", msg.Content)
	}
	if msg.ID != "msg_1" {
		t.Errorf("ID = %q, want 'msg_1'", msg.ID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewPlaceholder(t *testing.T) {
	msg := NewPlaceholder("msg_2")

	if msg.Role != RoleAgent {
		t.Errorf("Role = %q, want 'agent'", msg.Role)
	}
	if !msg.IsEmpty() {
		t.Error("placeholder should start empty")
	}
	if msg.HasTools() {
		t.Error("placeholder should start with no tools")
	}
}

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAgent, "Analyst"},
		{Role("other"), "other"},
	}

	for _, tc := range tests {
		if got := tc.role.DisplayName(); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}

// =============================================================================
// ID GENERATOR TESTS
// =============================================================================

func TestSequentialIDs(t *testing.T) {
	ids := SequentialIDs()

	want := []string{"msg_1", "msg_2", "msg_3"}
	for _, w := range want {
		if got := ids(); got != w {
			t.Errorf("SequentialIDs() = %q, want %q", got, w)
		}
	}
}

func TestRandomIDs(t *testing.T) {
	ids := RandomIDs()

	a := ids()
	b := ids()

	if !strings.HasPrefix(a, "msg_") {
		t.Errorf("RandomIDs() = %q, want msg_ prefix", a)
	}
	if len(a) != len("msg_")+16 {
		t.Errorf("RandomIDs() length = %d, want %d", len(a), len("msg_")+16)
	}
	if a == b {
		t.Error("consecutive random ids should differ")
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_Append(t *testing.T) {
	empty := NewTranscript()
	if !empty.IsEmpty() {
		t.Error("new transcript should be empty")
	}

	one := empty.Append(NewUserMessage("msg_1", "Hi"))
	two := one.Append(NewPlaceholder("msg_2"))

	// Earlier snapshots are untouched
	if empty.Len() != 0 {
		t.Errorf("empty.Len() = %d after appends, want 0", empty.Len())
	}
	if one.Len() != 1 {
		t.Errorf("one.Len() = %d after second append, want 1", one.Len())
	}
	if two.Len() != 2 {
		t.Errorf("two.Len() = %d, want 2", two.Len())
	}

	if two.Last().ID != "msg_2" {
		t.Errorf("Last().ID = %q, want 'msg_2'", two.Last().ID)
	}
	if two.ByID("msg_1").Content != "Hi" {
		t.Error("ByID should find the user message")
	}
	if two.ByID("missing") != nil {
		t.Error("ByID for an absent id should return nil")
	}
}

func TestTranscript_ApplyDelta(t *testing.T) {
	tr := NewTranscript().Append(
		NewUserMessage("msg_1", "Hi"),
		NewPlaceholder("msg_2"),
	)

	tr2 := tr.Apply("msg_2", backend.Event{Kind: backend.EventDelta, Content: "Hello"})
	tr3 := tr2.Apply("msg_2", backend.Event{Kind: backend.EventDelta, Content: " there"})

	if got := tr3.ByID("msg_2").Content; got != "Hello there" {
		t.Errorf("Content = %q, want 'Hello there'", got)
	}

	// Deltas concatenate in arrival order and never rewrite earlier text
	if got := tr2.ByID("msg_2").Content; got != "Hello" {
		t.Errorf("earlier snapshot Content = %q, want 'Hello'", got)
	}
	if got := tr.ByID("msg_2").Content; got != "" {
		t.Errorf("original snapshot Content = %q, want empty", got)
	}
}

func TestTranscript_ApplyTool(t *testing.T) {
	tr := NewTranscript().Append(NewPlaceholder("msg_1"))

	tr2 := tr.Apply("msg_1", backend.Event{Kind: backend.EventTool, Content: "search"})
	tr3 := tr2.Apply("msg_1", backend.Event{Kind: backend.EventTool, Content: "browse"})

	tools := tr3.ByID("msg_1").Tools
	if len(tools) != 2 || tools[0] != "search" || tools[1] != "browse" {
		t.Errorf("Tools = %v, want [search browse]", tools)
	}
}

func TestTranscript_ApplyToolDuplicate(t *testing.T) {
	tr := NewTranscript().Append(NewPlaceholder("msg_1"))

	tr2 := tr.Apply("msg_1", backend.Event{Kind: backend.EventTool, Content: "search"})
	tr3 := tr2.Apply("msg_1", backend.Event{Kind: backend.EventTool, Content: "search"})

	tools := tr3.ByID("msg_1").Tools
	if len(tools) != 1 {
		t.Errorf("Tools = %v, want one entry", tools)
	}

	// A duplicate is a no-op: the snapshot is returned unchanged
	if tr3.ByID("msg_1") != tr2.ByID("msg_1") {
		t.Error("no-op tool event should not produce a new message")
	}
}

func TestTranscript_ApplyMissingID(t *testing.T) {
	tr := NewTranscript().Append(NewPlaceholder("msg_1"))

	got := tr.Apply("msg_99", backend.Event{Kind: backend.EventDelta, Content: "x"})

	if got.ByID("msg_1") != tr.ByID("msg_1") {
		t.Error("event for an absent id should leave the transcript unchanged")
	}
}

func TestTranscript_ApplyUnknownKind(t *testing.T) {
	tr := NewTranscript().Append(NewPlaceholder("msg_1"))

	got := tr.Apply("msg_1", backend.Event{Kind: backend.EventUnknown, Content: "x"})

	if got.ByID("msg_1") != tr.ByID("msg_1") {
		t.Error("unknown event kind should leave the transcript unchanged")
	}
}

func TestTranscript_ApplySharesUntouchedMessages(t *testing.T) {
	user := NewUserMessage("msg_1", "Hi")
	tr := NewTranscript().Append(user, NewPlaceholder("msg_2"))

	tr2 := tr.Apply("msg_2", backend.Event{Kind: backend.EventDelta, Content: "Hello"})

	// The untouched user message is shared pointer-for-pointer
	if tr2.Messages()[0] != user {
		t.Error("untouched message should be shared between snapshots")
	}
	if tr2.Messages()[1] == tr.Messages()[1] {
		t.Error("updated message should be a fresh copy")
	}
}
