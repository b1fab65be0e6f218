// Package central talks to the central store, the HTTP service that owns
// long-term persistence of analysis results and feedback. Writes are
// fire-and-forget from the request path; failures degrade, never block.
package central

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/models"
)

// Client posts analysis results and feedback batches to the central store.
// A Client with an empty base URL is a no-op sink.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a central-store client for baseURL. An empty baseURL
// disables persistence.
func NewClient(baseURL, apiKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a central store is configured.
func (c *Client) Enabled() bool { return c != nil && c.baseURL != "" }

// PersistAnalysis sends one analysis result to the central store.
func (c *Client) PersistAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	if !c.Enabled() {
		return nil
	}
	return c.post(ctx, "/api/v1/analyses", result)
}

// PersistFeedbackBatch sends queued feedback records one at a time and
// returns how many were accepted. A mid-batch failure stops the batch; the
// caller confirms only the accepted prefix so the rest re-delivers later.
func (c *Client) PersistFeedbackBatch(ctx context.Context, records []models.FeedbackRecord) (int, error) {
	if !c.Enabled() {
		return len(records), nil
	}
	for i, rec := range records {
		if err := c.post(ctx, "/api/v1/feedback", rec); err != nil {
			return i, err
		}
	}
	return len(records), nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("central store unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("central store rejected %s: status %d", path, resp.StatusCode)
	}
	return nil
}
