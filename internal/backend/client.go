// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the Enterprise AI Analyst API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend API base URL (default: http://127.0.0.1:8001)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows
	BaseURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// UploadTimeout for file uploads, which can be large (default: 2m)
	UploadTimeout time.Duration

	// MaxUploadSize is the largest file accepted for upload in bytes
	// (default: 32MB). Zero means no client-side limit.
	MaxUploadSize int64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://127.0.0.1:8001",
		Timeout:       30 * time.Second,
		UploadTimeout: 2 * time.Minute,
		MaxUploadSize: 32 * 1024 * 1024,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Enterprise AI Analyst API.
// It is safe for concurrent use.
//
// Example:
//
//	client := backend.NewClient()
//	stats, err := client.ChatStream(ctx, "summarize rfp.pdf", sessionID, handler)
type Client struct {
	config *ClientConfig

	// httpClient serves bounded requests (upload, download).
	httpClient *http.Client

	// streamClient serves /chat. It carries no client timeout: a response
	// stream lives as long as the agent generates, bounded only by ctx.
	streamClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8001"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UploadTimeout == 0 {
		config.UploadTimeout = 2 * time.Minute
	}

	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		streamClient: &http.Client{
			Transport: transport,
			// No timeout for streaming - controlled via context
		},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckReachable verifies that the backend answers HTTP at all. Any status
// code counts as reachable; only a transport-level failure does not.
func (c *Client) CheckReachable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	resp.Body.Close()
	return nil
}

// =============================================================================
// CHAT STREAMING
// =============================================================================

// StreamHandler receives decoded stream events and recoverable decode
// failures. OnEvent is required; OnOpen and OnParseFailure may be nil.
type StreamHandler struct {
	// OnOpen is called once when the response stream opens, before any
	// line has been decoded.
	OnOpen func()

	// OnEvent is called once per recognized event, in stream order.
	OnEvent func(Event)

	// OnParseFailure is called for each malformed line. The stream
	// continues; the failure is informational.
	OnParseFailure func(line string, err error)
}

// ChatStream POSTs one chat request and pumps the NDJSON response through
// the handler until the stream ends. The response body is closed on every
// exit path, including mid-stream decode errors and context cancellation.
//
// A nil error means the stream ended cleanly. Transport failures, context
// cancellation, and {"type":"error"} lines from the backend all surface as
// a non-nil error; events delivered before the failure have already been
// handed to the handler and remain valid.
func (c *Client) ChatStream(ctx context.Context, message, sessionID string, h StreamHandler) (*StreamStats, error) {
	body, err := json.Marshal(ChatRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "chat request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}
	if resp.Body == nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "response has no body"}
	}

	if h.OnOpen != nil {
		h.OnOpen()
	}

	reader := NewStreamReader(resp.Body)
	reader.OnParseFailure = h.OnParseFailure
	err = reader.Process(ctx, h.OnEvent)
	return reader.Stats(), err
}

// =============================================================================
// FILE OPERATIONS
// =============================================================================

// Upload sends the file at path to the backend as a multipart request and
// returns the filename the backend stored it under.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ClientError{Type: ErrTypeUploadRejected, Message: "cannot open file", Cause: err}
	}
	defer f.Close()

	if c.config.MaxUploadSize > 0 {
		info, err := f.Stat()
		if err != nil {
			return "", &ClientError{Type: ErrTypeUploadRejected, Message: "cannot stat file", Cause: err}
		}
		if info.Size() > c.config.MaxUploadSize {
			return "", &ClientError{Type: ErrTypeUploadRejected, Message: "file exceeds upload size limit"}
		}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", &ClientError{Type: ErrTypeUploadRejected, Message: "failed to build multipart body", Cause: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", &ClientError{Type: ErrTypeUploadRejected, Message: "failed to read file", Cause: err}
	}
	if err := writer.Close(); err != nil {
		return "", &ClientError{Type: ErrTypeUploadRejected, Message: "failed to finish multipart body", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/upload", &buf)
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	uploadClient := &http.Client{
		Transport: c.httpClient.Transport,
		Timeout:   c.config.UploadTimeout,
	}
	resp, err := uploadClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &ClientError{Type: ErrTypeUnreachable, Message: "upload request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ClientError{
			Type:    ErrTypeUploadRejected,
			Message: "upload rejected by backend: " + resp.Status,
		}
	}

	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode upload response", Cause: err}
	}
	return result.Filename, nil
}

// Download fetches a generated file from the backend into dstDir and returns
// the local path it was written to. Filenames containing path separators are
// rejected before any request is made.
func (c *Client) Download(ctx context.Context, filename, dstDir string) (string, error) {
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return "", &ClientError{Type: ErrTypeNotFound, Message: "invalid filename"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/download/"+filename, nil)
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &ClientError{Type: ErrTypeUnreachable, Message: "download request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "cannot create download directory", Cause: err}
	}
	dst := filepath.Join(dstDir, filename)
	out, err := os.Create(dst)
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "cannot create file", Cause: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(dst)
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "download interrupted", Cause: err}
	}
	return dst, nil
}
