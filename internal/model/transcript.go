// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"github.com/jeranaias/analyst-tui/internal/backend"
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is an ordered, append-only view of the conversation. It is a
// persistent structure: Append and Apply return new snapshots and leave the
// receiver untouched, so a renderer holding an old snapshot never observes a
// half-applied event. Messages not touched by an operation are shared
// pointer-for-pointer between snapshots, which lets observers detect
// "no relevant change" with a cheap identity comparison.
type Transcript struct {
	msgs []*Message
}

// NewTranscript returns an empty transcript.
func NewTranscript() Transcript {
	return Transcript{}
}

// Len returns the number of messages.
func (t Transcript) Len() int {
	return len(t.msgs)
}

// IsEmpty returns true if there are no messages.
func (t Transcript) IsEmpty() bool {
	return len(t.msgs) == 0
}

// Messages returns the messages in conversation order. The returned slice is
// shared with the snapshot and must not be modified by callers.
func (t Transcript) Messages() []*Message {
	return t.msgs
}

// Last returns the most recent message, or nil if the transcript is empty.
func (t Transcript) Last() *Message {
	if len(t.msgs) == 0 {
		return nil
	}
	return t.msgs[len(t.msgs)-1]
}

// ByID returns the message with the given id, or nil if absent.
func (t Transcript) ByID(id string) *Message {
	for _, m := range t.msgs {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Append returns a new snapshot with the given messages added at the end.
// Appending the user message and its placeholder together keeps the pair
// atomic from an observer's point of view.
func (t Transcript) Append(msgs ...*Message) Transcript {
	out := make([]*Message, 0, len(t.msgs)+len(msgs))
	out = append(out, t.msgs...)
	out = append(out, msgs...)
	return Transcript{msgs: out}
}

// =============================================================================
// EVENT APPLIER
// =============================================================================

// Apply produces the snapshot that results from applying one stream event to
// the message identified by activeID.
//
//   - Delta events append their text to the message content, in arrival
//     order, never coalesced or reordered.
//   - Tool events append the tool name unless it was already recorded.
//   - Events for an id not present in the transcript, unknown event kinds,
//     and events that change nothing all return the receiver unchanged.
func (t Transcript) Apply(activeID string, ev backend.Event) Transcript {
	idx := -1
	for i, m := range t.msgs {
		if m.ID == activeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return t
	}

	var updated *Message
	switch ev.Kind {
	case backend.EventDelta:
		updated = t.msgs[idx].withDelta(ev.Content)
	case backend.EventTool:
		updated = t.msgs[idx].withTool(ev.Content)
	default:
		return t
	}
	if updated == t.msgs[idx] {
		return t
	}

	out := make([]*Message, len(t.msgs))
	copy(out, t.msgs)
	out[idx] = updated
	return Transcript{msgs: out}
}
