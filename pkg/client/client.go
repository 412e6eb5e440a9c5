package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/marketsearch/internal/version"
)

const defaultTimeout = 30 * time.Second

// Client calls the marketsearch HTTP API.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	userAgent string
}

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sends key as a Bearer token. Required for Train when the
// service has admin keys configured.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the request timeout of the default HTTP client. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the service at baseURL (e.g. http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: "marketsearch-client/" + version.Version,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// QueryOption adjusts a query request.
type QueryOption func(url.Values)

// Page selects the page and page size. Zero values use the service defaults.
func Page(page, pageSize int) QueryOption {
	return func(v url.Values) {
		if page != 0 {
			v.Set("page", strconv.Itoa(page))
		}
		if pageSize != 0 {
			v.Set("pageSize", strconv.Itoa(pageSize))
		}
	}
}

// Train asks the service to rebuild its corpus from the catalog.
func (c *Client) Train(ctx context.Context) (TrainResult, error) {
	var out TrainResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/nlp/train", nil, nil, &out); err != nil {
		return TrainResult{}, err
	}
	return out, nil
}

// Query searches the catalog with free text.
func (c *Client) Query(ctx context.Context, text string, opts ...QueryOption) (QueryResult, error) {
	params := url.Values{}
	for _, o := range opts {
		o(params)
	}
	body := struct {
		Query string `json:"query"`
	}{Query: text}

	var out QueryResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/nlp/query", params, body, &out); err != nil {
		return QueryResult{}, err
	}
	return out, nil
}

// Status reports the corpus the service is serving and its last retrain.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	if err := c.do(ctx, http.MethodGet, "/api/v1/nlp/status", nil, nil, &out); err != nil {
		return Status{}, err
	}
	return out, nil
}

// Health returns the service health. A degraded or unhealthy service is
// reported through Health.Status, not as an error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	resp, err := c.send(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return Health{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return Health{}, decodeError(resp)
	}
	var out Health
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Health{}, fmt.Errorf("decode health: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	resp, err := c.send(ctx, method, path, params, in)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, in any) (*http.Response, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
