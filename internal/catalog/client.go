package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to the metadata store's REST API. All mutating calls are
// retried per the configured RetryOptions.
type Client struct {
	baseURL    *url.URL
	apiToken   string
	httpClient *http.Client
	retryOpts  RetryOptions
	logger     *zap.Logger
}

// Config holds configuration for the metadata store client.
type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// NewClient creates a metadata store client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("cannot create metadata store client: base URL is missing")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata store URL %q: %w", cfg.BaseURL, err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("metadata store URL %q is not absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    base,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: timeout},
		retryOpts:  DefaultRetryOptions,
		logger:     logger,
	}, nil
}

// Health verifies the metadata store is reachable.
func (c *Client) Health(ctx context.Context) error {
	_, err := withRetry(ctx, c.logger, c.retryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodGet, "/api/v1/system/version", nil, nil)
	})
	return err
}

// CreateOrUpdateTable upserts one normalized table entity.
func (c *Client) CreateOrUpdateTable(ctx context.Context, rec TableRecord) error {
	if rec.Name == "" {
		return &ErrInvalidRequest{Msg: "table record has no name"}
	}
	_, err := withRetry(ctx, c.logger, c.retryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPut, "/api/v1/tables", rec, nil)
	})
	return err
}

// AddLineage submits one lineage edge.
func (c *Client) AddLineage(ctx context.Context, req AddLineageRequest) error {
	if err := req.Validate(); err != nil {
		return &ErrInvalidRequest{Msg: "lineage request rejected", Err: err}
	}
	_, err := withRetry(ctx, c.logger, c.retryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPut, "/api/v1/lineage", req, nil)
	})
	return err
}

// UpdatePipelineService updates the pipeline-service entity named name.
func (c *Client) UpdatePipelineService(ctx context.Context, name string, req UpdatePipelineServiceRequest) error {
	if name == "" {
		return &ErrInvalidRequest{Msg: "pipeline service name is required"}
	}
	if err := req.Validate(); err != nil {
		return &ErrInvalidRequest{Msg: "pipeline service update rejected", Err: err}
	}
	path := "/api/v1/services/pipelineServices/" + name
	_, err := withRetry(ctx, c.logger, c.retryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.do(ctx, http.MethodPut, path, req, nil)
	})
	return err
}

// do performs one JSON request against the metadata store. path is the
// decoded request path; it is escaped exactly once when the URL is
// serialized. A nil body sends no payload; a non-nil out decodes the
// response into it.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &ErrInvalidRequest{Msg: "encoding request body", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return &ErrInvalidRequest{Msg: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &ErrCancelled{Msg: method + " " + path, Err: ctx.Err()}
		}
		return &ErrServerUnavailable{Msg: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ErrRequestFailed{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}
