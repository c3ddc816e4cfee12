// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the Enterprise AI Analyst API.
package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader handles line-by-line decoding of an NDJSON chat stream.
//
// Chunk boundaries on the wire are arbitrary: a line, or a multi-byte UTF-8
// sequence inside one, may arrive split across reads. The reader buffers
// until a terminator arrives and runs the bytes through a stateful UTF-8
// decoder, so a rune split across chunks decodes once whole and invalid
// bytes degrade to U+FFFD instead of corrupting the line.
//
// Malformed lines are recoverable: they are counted, reported through
// OnParseFailure when set, and never stop processing of subsequent lines.
type StreamReader struct {
	reader *bufio.Reader
	stats  StreamStats

	// OnParseFailure, when non-nil, is called with each line that failed to
	// decode and the decode error. Informational only.
	OnParseFailure func(line string, err error)
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(transform.NewReader(r, unicode.UTF8.NewDecoder())),
		stats:  StreamStats{StartTime: time.Now()},
	}
}

// Process reads the stream and calls onEvent for each recognized event, in
// stream order. Blocks until the stream ends, the backend reports an error
// event, or the context is cancelled.
//
// A trailing line without a terminator is still decoded at EOF: the backend
// terminates every event with '\n', so an unterminated tail only occurs when
// the connection dropped mid-line, and parsing it preserves the final delta
// rather than silently discarding it.
func (s *StreamReader) Process(ctx context.Context, onEvent func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			line, err := s.reader.ReadString('\n')

			if line != "" {
				if evErr := s.handleLine(line, onEvent); evErr != nil {
					return evErr
				}
			}

			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}
	}
}

// handleLine decodes one line and dispatches the resulting event.
// Returns a non-nil error only for backend-reported error events.
func (s *StreamReader) handleLine(line string, onEvent func(Event)) error {
	// Blank and whitespace-only lines are suppressed before any parse
	// attempt.
	if strings.TrimSpace(line) == "" {
		return nil
	}

	var decoded streamLine
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		s.stats.ParseFailures++
		if s.OnParseFailure != nil {
			s.OnParseFailure(line, err)
		}
		return nil
	}

	switch decoded.Type {
	case "agent":
		s.recordFirstEvent()
		s.stats.Deltas++
		onEvent(Event{Kind: EventDelta, Content: decoded.Content})
	case "tool":
		s.recordFirstEvent()
		s.stats.Tools++
		onEvent(Event{Kind: EventTool, Content: decoded.Content})
	case "error":
		// The backend emits one of these when its own generation fails.
		return &BackendError{Message: decoded.Content}
	default:
		// Unrecognized types are ignored for forward compatibility.
		s.stats.Unknown++
	}
	return nil
}

// recordFirstEvent marks the arrival time of the first recognized event.
func (s *StreamReader) recordFirstEvent() {
	if s.stats.FirstEventTime.IsZero() {
		s.stats.FirstEventTime = time.Now()
	}
}

// Stats returns the counters collected so far.
func (s *StreamReader) Stats() *StreamStats {
	out := s.stats
	return &out
}

// =============================================================================
// STREAM STATISTICS
// =============================================================================

// StreamStats holds counters collected while reading one chat stream.
type StreamStats struct {
	StartTime      time.Time
	FirstEventTime time.Time

	Deltas        int
	Tools         int
	ParseFailures int
	Unknown       int
}

// FirstEventLatency returns the delay between the request start and the
// first recognized event, or zero if no event arrived.
func (s *StreamStats) FirstEventLatency() time.Duration {
	if s.FirstEventTime.IsZero() {
		return 0
	}
	return s.FirstEventTime.Sub(s.StartTime)
}
