// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"
)

func TestNew_UniqueTokens(t *testing.T) {
	a := New(Config{})
	b := New(Config{})

	if a.ID() == "" {
		t.Fatal("session token should not be empty")
	}
	if a.ID() == b.ID() {
		t.Error("two sessions must not share a token")
	}
}

func TestSession_RecordRequest(t *testing.T) {
	s := New(Config{})

	s.RecordRequest()
	s.RecordRequest()

	status := s.Status()
	if status.Requests != 2 {
		t.Errorf("Requests = %d, want 2", status.Requests)
	}
	if status.ID != s.ID() {
		t.Errorf("Status.ID = %q, want %q", status.ID, s.ID())
	}
}

func TestSession_CheckIdle(t *testing.T) {
	fired := 0
	s := New(Config{
		IdleTimeout: 10 * time.Millisecond,
		OnIdle:      func(time.Duration) { fired++ },
	})

	// Not idle yet
	s.CheckIdle()
	if fired != 0 {
		t.Error("OnIdle fired before the timeout elapsed")
	}

	time.Sleep(20 * time.Millisecond)

	// Fires once per idle period, not on every check
	s.CheckIdle()
	s.CheckIdle()
	if fired != 1 {
		t.Errorf("OnIdle fired %d times, want 1", fired)
	}

	// Activity resets the idle state
	s.Touch()
	time.Sleep(20 * time.Millisecond)
	s.CheckIdle()
	if fired != 2 {
		t.Errorf("OnIdle fired %d times after new idle period, want 2", fired)
	}
}

func TestSession_CheckIdleDisabled(t *testing.T) {
	fired := false
	s := New(Config{OnIdle: func(time.Duration) { fired = true }})

	time.Sleep(5 * time.Millisecond)
	s.CheckIdle()

	if fired {
		t.Error("OnIdle must never fire with a zero timeout")
	}
}
