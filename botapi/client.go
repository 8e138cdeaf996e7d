// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/botwire/lib/clock"
	"github.com/bureau-foundation/botwire/lib/secret"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

const (
	// DefaultTimeout bounds an ordinary call.
	DefaultTimeout = 30 * time.Second

	// DefaultUploadTimeout bounds calls carrying attachments and file
	// downloads.
	DefaultUploadTimeout = 5 * time.Minute

	// DefaultRetryCount is the total number of attempts for a
	// rate-limited call.
	DefaultRetryCount = 3

	// DefaultRetryThreshold is the longest retry_after the client waits
	// out on its own.
	DefaultRetryThreshold = 60 * time.Second

	// DefaultMaxDownloadSize matches the file size limit of a
	// self-hosted API server.
	DefaultMaxDownloadSize int64 = 2000 << 20

	// longPollMargin is added to a call's long-poll timeout so the HTTP
	// deadline falls after the server's own.
	longPollMargin = 5 * time.Second
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// Token is the bot token. Required. The Client borrows it; the
	// caller closes it after the Client is no longer used.
	Token *secret.Buffer

	// BaseURL overrides DefaultBaseURL with a self-hosted API server.
	// Only scheme and host are used; any path, query or fragment is
	// dropped.
	BaseURL string

	// TestEnvironment routes calls and downloads to the test
	// environment ("/bot<token>/test/<method>").
	TestEnvironment bool

	// HTTPClient performs requests. If nil, a client with no overall
	// timeout is used; deadlines come from Timeout and UploadTimeout.
	HTTPClient *http.Client

	// Timeout bounds an ordinary call. Zero means DefaultTimeout.
	Timeout time.Duration

	// UploadTimeout bounds calls with attachments and downloads. Zero
	// means DefaultUploadTimeout.
	UploadTimeout time.Duration

	// RetryCount is the total number of attempts for a rate-limited
	// call. Zero means DefaultRetryCount; 1 disables retries.
	RetryCount int

	// RetryThreshold is the longest retry_after the client waits out.
	// Zero means DefaultRetryThreshold.
	RetryThreshold time.Duration

	// MaxDownloadSize bounds Download. Zero means
	// DefaultMaxDownloadSize.
	MaxDownloadSize int64

	// Logger is used for structured logging. If nil, slog.Default() is
	// used.
	Logger *slog.Logger

	// Clock times retry waits. If nil, the real clock is used.
	Clock clock.Clock
}

// Client executes requests against one bot's API endpoint. A Client is
// safe for concurrent use; the only mutable state is the one-way
// "token rejected" latch.
type Client struct {
	token           *secret.Buffer
	baseURL         string
	testEnvironment bool
	httpClient      *http.Client
	timeout         time.Duration
	uploadTimeout   time.Duration
	maxDownloadSize int64
	retry           retryPolicy
	logger          *slog.Logger
	clock           clock.Clock

	unauthorized atomic.Bool
}

// NewClient creates a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Token == nil || config.Token.Len() == 0 {
		return nil, fmt.Errorf("botapi: Token is required")
	}

	baseURL := DefaultBaseURL
	if config.BaseURL != "" {
		normalized, err := normalizeBaseURL(config.BaseURL)
		if err != nil {
			return nil, err
		}
		baseURL = normalized
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	client := &Client{
		token:           config.Token,
		baseURL:         baseURL,
		testEnvironment: config.TestEnvironment,
		httpClient:      httpClient,
		timeout:         orDefault(config.Timeout, DefaultTimeout),
		uploadTimeout:   orDefault(config.UploadTimeout, DefaultUploadTimeout),
		maxDownloadSize: config.MaxDownloadSize,
		logger:          logger,
		clock:           clk,
	}
	if client.maxDownloadSize <= 0 {
		client.maxDownloadSize = DefaultMaxDownloadSize
	}
	client.retry = retryPolicy{
		attempts:  config.RetryCount,
		threshold: orDefault(config.RetryThreshold, DefaultRetryThreshold),
		clock:     clk,
		logger:    logger,
	}
	if client.retry.attempts <= 0 {
		client.retry.attempts = DefaultRetryCount
	}
	return client, nil
}

// normalizeBaseURL keeps only scheme and authority of a self-hosted base.
func normalizeBaseURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("botapi: invalid BaseURL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("botapi: BaseURL %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("botapi: BaseURL %q has no host", raw)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

// BaseURL returns the scheme and host requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Unauthorized reports whether the server has rejected this client's
// token. Once true it stays true.
func (c *Client) Unauthorized() bool { return c.unauthorized.Load() }

// CloseIdleConnections drops pooled connections, forcing the next call
// to dial afresh.
func (c *Client) CloseIdleConnections() { c.httpClient.CloseIdleConnections() }

// methodURL builds <base>/bot<token>[/test]/<method>. The URL is built
// by concatenation; method names never need escaping.
func (c *Client) methodURL(method string) string {
	return c.botPrefix("/bot") + "/" + method
}

// FileURL returns the download URL of a file path obtained from getFile.
// The URL embeds the token; do not log or share it.
func (c *Client) FileURL(filePath string) string {
	return c.botPrefix("/file/bot") + "/" + strings.TrimPrefix(filePath, "/")
}

func (c *Client) botPrefix(prefix string) string {
	var builder strings.Builder
	builder.WriteString(c.baseURL)
	builder.WriteString(prefix)
	builder.Write(c.token.Bytes())
	if c.testEnvironment {
		builder.WriteString("/test")
	}
	return builder.String()
}

// redact replaces the token in text so it can be logged.
func (c *Client) redact(text string) string {
	return c.token.Redact(text, "<token>")
}
