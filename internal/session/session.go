// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the lifetime of one UI session: the opaque session
// token forwarded to the backend and basic activity accounting.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SESSION
// =============================================================================

// Session holds the client-generated session token and activity state.
// The token is opaque to this client; the backend uses it to correlate
// conversation memory across requests. It is stable for the lifetime of one
// UI session and never persisted.
type Session struct {
	mu sync.Mutex

	id           string
	startTime    time.Time
	lastActivity time.Time
	requests     int

	idleTimeout  time.Duration
	onIdle       func(idle time.Duration)
	idleNotified bool
}

// Config holds configuration for a session.
type Config struct {
	// IdleTimeout fires OnIdle after this long without activity
	// (0 = disabled).
	IdleTimeout time.Duration

	// OnIdle is called at most once per idle period. May be nil.
	OnIdle func(idle time.Duration)
}

// New creates a session with a fresh random token.
func New(cfg Config) *Session {
	now := time.Now()
	return &Session{
		id:           uuid.NewString(),
		startTime:    now,
		lastActivity: now,
		idleTimeout:  cfg.IdleTimeout,
		onIdle:       cfg.OnIdle,
	}
}

// ID returns the session token.
func (s *Session) ID() string {
	return s.id
}

// Touch records user activity and resets the idle state.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
	s.idleNotified = false
}

// RecordRequest counts one submitted chat request as activity.
func (s *Session) RecordRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	s.lastActivity = time.Now()
	s.idleNotified = false
}

// CheckIdle fires the idle callback when the idle timeout has elapsed since
// the last activity. Intended to be called from a periodic tick.
func (s *Session) CheckIdle() {
	s.mu.Lock()
	if s.idleTimeout <= 0 || s.idleNotified {
		s.mu.Unlock()
		return
	}
	idle := time.Since(s.lastActivity)
	if idle < s.idleTimeout {
		s.mu.Unlock()
		return
	}
	s.idleNotified = true
	cb := s.onIdle
	s.mu.Unlock()

	if cb != nil {
		cb(idle)
	}
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a point-in-time view of the session.
type Status struct {
	ID        string
	StartTime time.Time
	Duration  time.Duration
	IdleTime  time.Duration
	Requests  int
}

// Status returns the current session status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	return Status{
		ID:        s.id,
		StartTime: s.startTime,
		Duration:  now.Sub(s.startTime),
		IdleTime:  now.Sub(s.lastActivity),
		Requests:  s.requests,
	}
}
