// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine drives the submit-to-settle lifecycle of one chat request:
// it creates the user/placeholder pair, pumps the backend stream, applies
// each decoded event to the transcript, and settles as success or error.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/analyst-tui/internal/backend"
	"github.com/jeranaias/analyst-tui/internal/model"
	"github.com/jeranaias/analyst-tui/internal/telemetry"
)

// ErrorSuffix is appended to whatever content the placeholder accumulated
// when a request settles with an error. Prior deltas are never discarded.
const ErrorSuffix = "\n\n[Error: assistant connection lost]"

// =============================================================================
// STATE
// =============================================================================

// State is the engine's request lifecycle state.
type State int

const (
	// StateIdle means no request is in flight; Submit is accepted.
	StateIdle State = iota

	// StateSubmitting means a request was issued but no event has arrived.
	StateSubmitting

	// StateStreaming means events are being applied to the placeholder.
	StateStreaming
)

// String returns a short name for the state.
func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateStreaming:
		return "streaming"
	default:
		return "idle"
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// Result describes how a request settled.
type Result struct {
	// PlaceholderID identifies the agent message the request produced.
	PlaceholderID string

	// Err is nil on clean stream end. Cancellation and transport or backend
	// failures settle with a non-nil Err; the visible error suffix has
	// already been appended to the placeholder in that case.
	Err error
}

// UsageLog receives one record per settled request. Implemented by
// telemetry.Store; nil disables recording.
type UsageLog interface {
	Record(req telemetry.Request) error
}

// Config holds the engine's collaborators.
type Config struct {
	// Client performs the backend requests. Required.
	Client *backend.Client

	// SessionID is the opaque session token forwarded on every chat
	// request. Required.
	SessionID string

	// IDs generates message identifiers. Defaults to model.RandomIDs().
	IDs model.IDGenerator

	// OnUpdate observes every new transcript snapshot. Called outside the
	// engine lock, once per applied event. May be nil.
	OnUpdate func(model.Transcript)

	// OnSettle observes request settlement. May be nil.
	OnSettle func(Result)

	// OnParseFailure observes recoverable stream decode failures. May be nil.
	OnParseFailure func(line string, err error)

	// Usage records per-request statistics. May be nil.
	Usage UsageLog
}

// Engine owns the transcript and runs at most one request at a time.
// A second submission while a request is in flight is dropped, not queued.
//
// All state transitions happen under one lock; observers always see a
// snapshot that reflects a whole number of applied events.
type Engine struct {
	mu         sync.Mutex
	state      State
	transcript model.Transcript
	activeID   string
	cancel     context.CancelFunc
	closed     bool

	client         *backend.Client
	sessionID      string
	ids            model.IDGenerator
	onUpdate       func(model.Transcript)
	onSettle       func(Result)
	onParseFailure func(line string, err error)
	usage          UsageLog
}

// New creates an engine in the Idle state with an empty transcript.
func New(cfg Config) *Engine {
	ids := cfg.IDs
	if ids == nil {
		ids = model.RandomIDs()
	}
	return &Engine{
		transcript:     model.NewTranscript(),
		client:         cfg.Client,
		sessionID:      cfg.SessionID,
		ids:            ids,
		onUpdate:       cfg.OnUpdate,
		onSettle:       cfg.OnSettle,
		onParseFailure: cfg.OnParseFailure,
		usage:          cfg.Usage,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Transcript returns the current snapshot.
func (e *Engine) Transcript() model.Transcript {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transcript
}

// SessionID returns the session token forwarded to the backend.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit starts one request lifecycle for the given text. It returns false
// without any state change when the text is blank, a request is already in
// flight, or the engine is closed. On acceptance the user message and its
// empty placeholder are appended in one snapshot, the busy guard is set, and
// the request is issued in the background.
func (e *Engine) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	e.mu.Lock()
	if e.closed || e.state != StateIdle {
		e.mu.Unlock()
		return false
	}

	user := model.NewUserMessage(e.ids(), text)
	placeholder := model.NewPlaceholder(e.ids())
	e.transcript = e.transcript.Append(user, placeholder)
	e.activeID = placeholder.ID
	e.state = StateSubmitting

	// The guard is set before the network call is issued and cleared in
	// settle on every exit path.
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	snapshot := e.transcript
	e.mu.Unlock()

	e.notify(snapshot)
	go e.run(ctx, text, placeholder.ID)
	return true
}

// Reset discards the transcript and starts fresh. It returns false while a
// request is in flight; cancel or wait for it first.
func (e *Engine) Reset() bool {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return false
	}
	e.transcript = model.NewTranscript()
	snapshot := e.transcript
	e.mu.Unlock()

	e.notify(snapshot)
	return true
}

// Cancel aborts the in-flight request, if any. The request settles as an
// error, preserving deltas received so far. No-op when idle.
func (e *Engine) Cancel() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close cancels any in-flight request and rejects future submissions.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// =============================================================================
// REQUEST LIFECYCLE
// =============================================================================

// run executes one request to completion. Always ends in settle.
func (e *Engine) run(ctx context.Context, text, placeholderID string) {
	started := time.Now()
	stats, err := e.client.ChatStream(ctx, text, e.sessionID, backend.StreamHandler{
		OnOpen: func() {
			e.markStreaming(placeholderID)
		},
		OnEvent: func(ev backend.Event) {
			e.applyEvent(placeholderID, ev)
		},
		OnParseFailure: e.onParseFailure,
	})
	e.settle(placeholderID, started, stats, err)
}

// markStreaming flips Submitting to Streaming as soon as the response
// stream opens, before the first line arrives. A stream that opens with
// blank or malformed lines still reads as streaming.
func (e *Engine) markStreaming(placeholderID string) {
	e.mu.Lock()
	if e.activeID == placeholderID && e.state == StateSubmitting {
		e.state = StateStreaming
	}
	e.mu.Unlock()
}

// applyEvent folds one recognized event into the transcript and publishes
// the resulting snapshot.
func (e *Engine) applyEvent(placeholderID string, ev backend.Event) {
	e.mu.Lock()
	if e.activeID != placeholderID {
		e.mu.Unlock()
		return
	}
	e.transcript = e.transcript.Apply(placeholderID, ev)
	snapshot := e.transcript
	e.mu.Unlock()

	e.notify(snapshot)
}

// settle finishes the lifecycle: on error it appends the visible error
// suffix (exactly once) to whatever the placeholder accumulated, then clears
// the busy guard and the active placeholder so the entry becomes immutable.
func (e *Engine) settle(placeholderID string, started time.Time, stats *backend.StreamStats, err error) {
	e.mu.Lock()
	if e.activeID != placeholderID {
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.transcript = e.transcript.Apply(placeholderID, backend.Event{
			Kind:    backend.EventDelta,
			Content: ErrorSuffix,
		})
	}
	e.state = StateIdle
	e.activeID = ""
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	snapshot := e.transcript
	e.mu.Unlock()

	e.notify(snapshot)
	if e.onSettle != nil {
		e.onSettle(Result{PlaceholderID: placeholderID, Err: err})
	}
	e.record(started, stats, err)
}

// notify hands a snapshot to the observer, outside the engine lock.
func (e *Engine) notify(snapshot model.Transcript) {
	if e.onUpdate != nil {
		e.onUpdate(snapshot)
	}
}

// record writes one usage entry for a settled request.
func (e *Engine) record(started time.Time, stats *backend.StreamStats, err error) {
	if e.usage == nil {
		return
	}

	req := telemetry.Request{
		SessionID:  e.sessionID,
		StartedAt:  started,
		DurationMs: time.Since(started).Milliseconds(),
		Outcome:    telemetry.OutcomeSuccess,
	}
	if stats != nil {
		req.FirstEventMs = stats.FirstEventLatency().Milliseconds()
		req.Deltas = stats.Deltas
		req.Tools = stats.Tools
		req.ParseFailures = stats.ParseFailures
	}
	if err != nil {
		req.Outcome = telemetry.OutcomeError
		if errors.Is(err, context.Canceled) {
			req.Outcome = telemetry.OutcomeCancelled
		}
		req.Error = err.Error()
	}

	// Recording failures are not worth interrupting the user over.
	_ = e.usage.Record(req)
}
