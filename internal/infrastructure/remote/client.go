// Package remote implements the order and inventory stores over the retail HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/storefront/console/internal/domain/shared"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// maxResponseSize is the maximum accepted response body (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ErrInvalidBaseURL is returned when the API base URL is not absolute
var ErrInvalidBaseURL = errors.New("remote: base URL must be absolute")

// Config configures the retail API client
type Config struct {
	BaseURL string
	Token   string
	// Timeout bounds each request; zero means no client-side timeout
	Timeout time.Duration
}

// CallMetrics observes every request sent to the retail API
type CallMetrics interface {
	RecordRemoteCall(ctx context.Context, route string, status int, d time.Duration)
}

type nopCallMetrics struct{}

func (nopCallMetrics) RecordRemoteCall(context.Context, string, int, time.Duration) {}

// Client is a JSON client for the retail API
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    CallMetrics
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCallMetrics records request counts and latency
func WithCallMetrics(m CallMetrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient creates a retail API client. Requests are traced with otelhttp.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	c := &Client{
		baseURL: base,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:  logger,
		metrics: nopCallMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// request describes one API call
type request struct {
	op     string // operation name used in errors
	route  string // low-cardinality route used in metrics
	method string
	path   []string
	query  url.Values
	body   any
}

func (c *Client) endpoint(segments []string, query url.Values) string {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	u := c.baseURL.JoinPath(escaped...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends the request and decodes a 2xx JSON body into out when out is non-nil.
// Non-2xx responses become *shared.RemoteError carrying the server's message.
func (c *Client) do(ctx context.Context, r request, out any) error {
	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", r.op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordRemoteCall(ctx, r.route, 0, time.Since(start))
		return shared.NewRemoteError(r.op, 0, "", err)
	}
	defer resp.Body.Close()
	c.metrics.RecordRemoteCall(ctx, r.route, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return shared.NewRemoteError(r.op, resp.StatusCode, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(data, resp.StatusCode)
		c.logger.Debug("Remote request failed",
			zap.String("op", r.op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return shared.NewRemoteError(r.op, resp.StatusCode, msg, nil)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return shared.NewRemoteError(r.op, resp.StatusCode, "invalid response body", err)
	}
	return nil
}

// errorMessage extracts {message} or {error} from an error body
func errorMessage(data []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// isNotFound reports a 404 from the API
func isNotFound(err error) bool {
	var re *shared.RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
