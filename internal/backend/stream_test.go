// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkedReader returns its payload in fixed-size reads to simulate
// arbitrary network chunk boundaries.
type chunkedReader struct {
	data  []byte
	chunk int
	pos   int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.chunk
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

// collect runs the reader to completion and gathers events.
func collect(t *testing.T, r io.Reader) ([]Event, *StreamStats, error) {
	t.Helper()
	sr := NewStreamReader(r)
	var events []Event
	err := sr.Process(context.Background(), func(ev Event) {
		events = append(events, ev)
	})
	return events, sr.Stats(), err
}

// =============================================================================
// LINE DECODE TESTS
// =============================================================================

func TestStreamReader_Basic(t *testing.T) {
	stream := `{"type":"agent","content":"Hello"}
{"type":"tool","content":"search"}
{"type":"agent","content":" there"}
`
	events, stats, err := collect(t, strings.NewReader(stream))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := []Event{
		{Kind: EventDelta, Content: "Hello"},
		{Kind: EventTool, Content: "search"},
		{Kind: EventDelta, Content: " there"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if ev != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, ev, want[i])
		}
	}

	if stats.Deltas != 2 || stats.Tools != 1 {
		t.Errorf("stats = %d deltas, %d tools, want 2, 1", stats.Deltas, stats.Tools)
	}
	if stats.FirstEventLatency() <= 0 {
		t.Error("FirstEventLatency should be positive after events arrived")
	}
}

func TestStreamReader_ChunkBoundaries(t *testing.T) {
	stream := `{"type":"agent","content":"Hello"}
{"type":"agent","content":" world"}
`
	// Every chunk size must produce identical events; lines and even single
	// JSON tokens get split across reads.
	for chunk := 1; chunk <= len(stream); chunk++ {
		events, _, err := collect(t, &chunkedReader{data: []byte(stream), chunk: chunk})
		if err != nil {
			t.Fatalf("chunk=%d: Process() error = %v", chunk, err)
		}
		if len(events) != 2 {
			t.Fatalf("chunk=%d: got %d events, want 2", chunk, len(events))
		}
		if events[0].Content != "Hello" || events[1].Content != " world" {
			t.Errorf("chunk=%d: contents = %q, %q", chunk, events[0].Content, events[1].Content)
		}
	}
}

func TestStreamReader_SplitMultibyteRune(t *testing.T) {
	// "héllo" with é (2 bytes) forced to straddle every chunk boundary
	stream := "{\"type\":\"agent\",\"content\":\"héllo 世界\"}\n"

	for chunk := 1; chunk <= 4; chunk++ {
		events, _, err := collect(t, &chunkedReader{data: []byte(stream), chunk: chunk})
		if err != nil {
			t.Fatalf("chunk=%d: Process() error = %v", chunk, err)
		}
		if len(events) != 1 {
			t.Fatalf("chunk=%d: got %d events, want 1", chunk, len(events))
		}
		if events[0].Content != "héllo 世界" {
			t.Errorf("chunk=%d: content = %q, split rune decoded wrong", chunk, events[0].Content)
		}
	}
}

func TestStreamReader_InvalidUTF8(t *testing.T) {
	// A lone 0xFF is not valid UTF-8 anywhere; it must degrade to U+FFFD
	// without killing the stream.
	stream := []byte("{\"type\":\"agent\",\"content\":\"ab\"}\n")
	stream = append(stream, 0xFF, '\n')
	stream = append(stream, []byte("{\"type\":\"agent\",\"content\":\"cd\"}\n")...)

	events, stats, err := collect(t, &chunkedReader{data: stream, chunk: 3})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if stats.ParseFailures != 1 {
		t.Errorf("ParseFailures = %d, want 1", stats.ParseFailures)
	}
}

func TestStreamReader_BlankLines(t *testing.T) {
	stream := "\n\n{\"type\":\"agent\",\"content\":\"hi\"}\n   \n\t\n"

	events, stats, err := collect(t, strings.NewReader(stream))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if stats.ParseFailures != 0 {
		t.Errorf("ParseFailures = %d, blank lines must not count as failures", stats.ParseFailures)
	}
}

func TestStreamReader_MalformedLines(t *testing.T) {
	stream := `{"type":"agent","content":"one"}
{not json at all
{"type":"agent","content":"two"}
"just a string"
{"type":"agent","content":"three"}
`
	var reported []string
	sr := NewStreamReader(strings.NewReader(stream))
	sr.OnParseFailure = func(line string, err error) {
		reported = append(reported, line)
	}

	var events []Event
	err := sr.Process(context.Background(), func(ev Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	// All three well-formed lines survive the bad ones in order
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []string{"one", "two", "three"} {
		if events[i].Content != want {
			t.Errorf("event %d = %q, want %q", i, events[i].Content, want)
		}
	}

	if sr.Stats().ParseFailures != 2 {
		t.Errorf("ParseFailures = %d, want 2", sr.Stats().ParseFailures)
	}
	if len(reported) != 2 {
		t.Errorf("OnParseFailure called %d times, want 2", len(reported))
	}
}

func TestStreamReader_UnknownType(t *testing.T) {
	stream := `{"type":"agent","content":"hi"}
{"type":"metrics","content":"42"}
{"type":"agent","content":"!"}
`
	events, stats, err := collect(t, strings.NewReader(stream))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if stats.Unknown != 1 {
		t.Errorf("Unknown = %d, want 1", stats.Unknown)
	}
	if stats.ParseFailures != 0 {
		t.Errorf("ParseFailures = %d, unknown types are not parse failures", stats.ParseFailures)
	}
}

func TestStreamReader_TrailingUnterminatedLine(t *testing.T) {
	// Connection dropped mid-stream: the final line has no terminator but
	// its delta must not be lost.
	stream := "{\"type\":\"agent\",\"content\":\"partial\"}\n{\"type\":\"agent\",\"content\":\" answer\"}"

	events, _, err := collect(t, strings.NewReader(stream))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].Content != " answer" {
		t.Errorf("trailing event = %q, want ' answer'", events[1].Content)
	}
}

func TestStreamReader_ErrorEvent(t *testing.T) {
	stream := `{"type":"agent","content":"par"}
{"type":"error","content":"model exploded"}
{"type":"agent","content":"never seen"}
`
	events, _, err := collect(t, strings.NewReader(stream))

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("Process() error = %v, want *BackendError", err)
	}
	if backendErr.Message != "model exploded" {
		t.Errorf("Message = %q, want 'model exploded'", backendErr.Message)
	}

	// Processing stops at the error event
	if len(events) != 1 {
		t.Errorf("got %d events before error, want 1", len(events))
	}
}

func TestStreamReader_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sr := NewStreamReader(strings.NewReader("{\"type\":\"agent\",\"content\":\"hi\"}\n"))
	err := sr.Process(ctx, func(Event) {})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
}

func TestStreamReader_EmptyStream(t *testing.T) {
	events, stats, err := collect(t, strings.NewReader(""))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
	if stats.FirstEventLatency() != 0 {
		t.Error("FirstEventLatency should be zero with no events")
	}
}
