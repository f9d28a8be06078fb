// Package transport issues chat-completion and model-listing calls against an
// OpenAI-compatible endpoint, with per-call timeout, retry with exponential
// backoff, and a fixed taxonomy of terminal vs. retryable failures.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/toolgauge/toolgauge/internal/models"
)

const (
	// DefaultBaseURL targets the local gateway most setups run.
	DefaultBaseURL = "http://localhost:8317/v1"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// maxResponseBodySize caps how much of a response body is read.
	maxResponseBodySize = 1 << 20

	// bodyExcerptSize caps the error-body excerpt carried in APIError.
	bodyExcerptSize = 512
)

// Client is a chat-completion client for one endpoint. It holds no per-call
// state; a single Client is safe for use from multiple goroutines.
type Client struct {
	baseURL string
	httpc   *http.Client
	policy  RetryPolicy
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpc.Timeout = d
		}
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.policy = p }
}

// WithHTTPClient replaces the underlying http.Client, e.g. for tests.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.httpc = h
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the given base URL (trailing slash trimmed).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: DefaultTimeout},
		policy:  DefaultRetryPolicy(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// ChatCompletion issues one chat-completion call. When req.Stream is set the
// response is reconstructed from the SSE chunk sequence into the same shape
// the blocking path returns. Timeouts and connection failures are retried per
// the policy; HTTP 429 and model-unsupported responses are terminal.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	state := c.policy.start()
	for {
		resp, err := c.doChat(ctx, req)
		if err == nil {
			return resp, nil
		}

		apiErr, ok := asAPIError(err)
		if !ok || !apiErr.Retryable() || state.exhausted(c.policy) {
			return nil, err
		}

		c.logger.Warn("chat completion failed, retrying",
			"model", req.Model,
			"attempt", state.attempt+1,
			"max_retries", c.policy.MaxRetries,
			"delay", state.delay,
			"error", err)

		if werr := state.wait(ctx); werr != nil {
			return nil, &APIError{Kind: KindTimeout, Err: werr}
		}
		state = state.next(c.policy)
	}
}

// ListModels fetches the candidate model list. It uses the same retry policy
// as chat calls; a terminal failure here is the caller's fatal condition.
func (c *Client) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	state := c.policy.start()
	for {
		infos, err := c.doListModels(ctx)
		if err == nil {
			return infos, nil
		}

		apiErr, ok := asAPIError(err)
		if !ok || !apiErr.Retryable() || state.exhausted(c.policy) {
			return nil, err
		}

		c.logger.Warn("model listing failed, retrying",
			"attempt", state.attempt+1,
			"delay", state.delay,
			"error", err)

		if werr := state.wait(ctx); werr != nil {
			return nil, &APIError{Kind: KindTimeout, Err: werr}
		}
		state = state.next(c.policy)
	}
}

func (c *Client) doChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer httpResp.Body.Close() //nolint:errcheck

	if apiErr := checkStatus(httpResp); apiErr != nil {
		return nil, apiErr
	}

	if req.Stream {
		return collectStream(httpResp.Body)
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodySize))
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &APIError{Kind: KindMalformed, Body: excerpt(body), Err: err}
	}

	// Some gateways report an unavailable model as an error object inside a
	// 200 body rather than a status code.
	if resp.Error != nil {
		return nil, &APIError{Kind: KindModelUnsupported, Body: resp.Error.Message}
	}

	return &resp, nil
}

func (c *Client) doListModels(ctx context.Context) ([]models.ModelInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("building model list request: %w", err)
	}

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer httpResp.Body.Close() //nolint:errcheck

	if apiErr := checkStatus(httpResp); apiErr != nil {
		return nil, apiErr
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodySize))
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	var list modelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &APIError{Kind: KindMalformed, Body: excerpt(body), Err: err}
	}
	return list.Data, nil
}

// checkStatus maps non-2xx statuses onto the taxonomy. 429 is never retried.
func checkStatus(resp *http.Response) *APIError {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &APIError{Kind: KindRateLimited, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
	if looksUnsupported(string(body)) {
		return &APIError{Kind: KindModelUnsupported, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
	if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout {
		return &APIError{Kind: KindTimeout, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
	return &APIError{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, Body: excerpt(body)}
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodyExcerptSize {
		return s[:bodyExcerptSize] + "..."
	}
	return s
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
