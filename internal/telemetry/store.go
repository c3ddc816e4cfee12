// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry records per-request usage statistics in a local SQLite
// database: timings, event counts, and how each request settled. Message
// content is never stored.
package telemetry

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Outcome values for a settled request.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Request is one usage record, written when a chat request settles.
type Request struct {
	SessionID     string
	StartedAt     time.Time
	DurationMs    int64
	FirstEventMs  int64
	Deltas        int
	Tools         int
	ParseFailures int
	Outcome       string
	Error         string
}

// SessionSummary aggregates the records of one session.
type SessionSummary struct {
	SessionID     string
	Requests      int
	Succeeded     int
	Failed        int
	Cancelled     int
	Deltas        int
	Tools         int
	ParseFailures int
	AvgFirstMs    int64
}

// =============================================================================
// STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT    NOT NULL,
	started_at     TEXT    NOT NULL,
	duration_ms    INTEGER NOT NULL,
	first_event_ms INTEGER NOT NULL,
	deltas         INTEGER NOT NULL,
	tools          INTEGER NOT NULL,
	parse_failures INTEGER NOT NULL,
	outcome        TEXT    NOT NULL,
	error          TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_requests_session ON requests(session_id);
`

// Store persists usage records. Safe for concurrent use; SQLite serializes
// writers, so the connection pool is capped at one.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the usage database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("telemetry: database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Record writes one request record.
func (s *Store) Record(req Request) error {
	_, err := s.db.Exec(
		`INSERT INTO requests
		 (session_id, started_at, duration_ms, first_event_ms, deltas, tools, parse_failures, outcome, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.SessionID,
		req.StartedAt.UTC().Format(time.RFC3339Nano),
		req.DurationMs,
		req.FirstEventMs,
		req.Deltas,
		req.Tools,
		req.ParseFailures,
		req.Outcome,
		req.Error,
	)
	return err
}

// Summarize aggregates all records for a session.
func (s *Store) Summarize(sessionID string) (*SessionSummary, error) {
	row := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(outcome = ?), 0),
		        COALESCE(SUM(outcome = ?), 0),
		        COALESCE(SUM(outcome = ?), 0),
		        COALESCE(SUM(deltas), 0),
		        COALESCE(SUM(tools), 0),
		        COALESCE(SUM(parse_failures), 0),
		        COALESCE(AVG(first_event_ms), 0)
		 FROM requests WHERE session_id = ?`,
		OutcomeSuccess, OutcomeError, OutcomeCancelled, sessionID,
	)

	summary := &SessionSummary{SessionID: sessionID}
	var avgFirst float64
	err := row.Scan(
		&summary.Requests,
		&summary.Succeeded,
		&summary.Failed,
		&summary.Cancelled,
		&summary.Deltas,
		&summary.Tools,
		&summary.ParseFailures,
		&avgFirst,
	)
	if err != nil {
		return nil, err
	}
	summary.AvgFirstMs = int64(avgFirst)
	return summary, nil
}

// Totals aggregates all recorded requests across sessions.
type Totals struct {
	Requests int
	Sessions int
	Deltas   int
	Tools    int
}

// Totals returns lifetime aggregates for the whole log.
func (s *Store) Totals() (*Totals, error) {
	row := s.db.QueryRow(
		`SELECT COUNT(*),
		        COUNT(DISTINCT session_id),
		        COALESCE(SUM(deltas), 0),
		        COALESCE(SUM(tools), 0)
		 FROM requests`,
	)

	totals := &Totals{}
	err := row.Scan(&totals.Requests, &totals.Sessions, &totals.Deltas, &totals.Tools)
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
