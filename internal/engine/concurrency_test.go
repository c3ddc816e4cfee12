// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Concurrency tests for the request engine: the public methods are
// called from the UI goroutine, the stream goroutine, and signal
// handlers, so they must be safe to interleave freely.
package engine

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

// TestEngine_ConcurrentSubmit verifies that racing Submit calls admit
// exactly one request while the engine is busy.
func TestEngine_ConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		ndjson(w, `{"type":"agent","content":"working"}`)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}, nil)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.engine.Submit("racing") {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), accepted.Load(), "exactly one Submit must win")

	close(release)
	h.wait(t)
	require.Equal(t, StateIdle, h.engine.State())
}

// TestEngine_ConcurrentReadsDuringStream hammers the read-side accessors
// while a stream is applying deltas. Should not race or panic.
func TestEngine_ConcurrentReadsDuringStream(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 200; i++ {
			ndjson(w, `{"type":"agent","content":"x"}`)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}, nil)

	require.True(t, h.engine.Submit("go"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr := h.engine.Transcript()
				_ = tr.Len()
				if last := tr.Last(); last != nil {
					_ = last.Content
				}
				_ = h.engine.State()
				_ = h.engine.SessionID()
			}
		}()
	}
	wg.Wait()

	res := h.wait(t)
	require.NoError(t, res.Err)
	require.Len(t, h.engine.Transcript().Last().Content, 200)
}

// TestEngine_ConcurrentCancel races Cancel against the stream goroutine
// and against other Cancel calls.
func TestEngine_ConcurrentCancel(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		ndjson(w, `{"type":"agent","content":"begun"}`)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}, nil)
	defer close(release)

	require.True(t, h.engine.Submit("go"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.engine.Cancel()
		}()
	}
	wg.Wait()

	res := h.wait(t)
	require.Error(t, res.Err)
	require.Equal(t, StateIdle, h.engine.State())
}

// TestEngine_SnapshotsAreStable verifies that a snapshot taken mid-stream
// never changes afterward, even as the engine keeps appending.
func TestEngine_SnapshotsAreStable(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		ndjson(w,
			`{"type":"agent","content":"one"}`,
			`{"type":"agent","content":" two"}`,
			`{"type":"agent","content":" three"}`,
		)
	}, nil)

	require.True(t, h.engine.Submit("go"))
	res := h.wait(t)
	require.NoError(t, res.Err)

	h.mu.Lock()
	snapshots := h.snapshots
	h.mu.Unlock()

	// Earlier snapshots must show strictly shorter prefixes of the final
	// content. A mutable transcript would make them all identical.
	final := h.engine.Transcript().Last().Content
	require.Equal(t, "one two three", final)

	prev := -1
	for _, snap := range snapshots {
		last := snap.Last()
		if last == nil || last.ID != h.engine.Transcript().Last().ID {
			continue
		}
		require.LessOrEqual(t, prev, len(last.Content))
		require.True(t, len(final) >= len(last.Content))
		prev = len(last.Content)
	}
	require.Equal(t, len(final), prev, "final snapshot must carry the full content")
}
