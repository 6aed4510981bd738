// Package supabase is a small client for the Supabase REST surface this
// service consumes: GoTrue user lookup and PostgREST table access.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultTimeout = 10 * time.Second

// Config holds client configuration.
type Config struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// Client is a Supabase REST client. It holds no mutable state, so one can be
// built per request over a shared *http.Client.
type Client struct {
	restURL    string
	authURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new Supabase client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	base := strings.TrimSuffix(cfg.URL, "/")
	return &Client{
		restURL:    base + "/rest/v1",
		authURL:    base + "/auth/v1",
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// Response is a raw REST response.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	// Count is the total from Content-Range when an exact count was requested.
	Count *int
}

// Error is a failure reported by PostgREST or GoTrue.
type Error struct {
	Code       string
	Message    string
	Details    string
	Hint       string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %s (code %s, status %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("supabase: %s (status %d)", e.Message, e.StatusCode)
}

// request performs an HTTP call authorised with the project API key.
func (c *Client) request(ctx context.Context, method, url string, body []byte, headers map[string]string) (*Response, error) {
	return c.requestWithToken(ctx, method, url, body, headers, c.apiKey)
}

// requestWithToken performs an HTTP call with the given bearer token. The
// project API key is always sent as apikey.
func (c *Client) requestWithToken(ctx context.Context, method, url string, body []byte, headers map[string]string, token string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Header:     resp.Header,
		Count:      parseContentRange(resp.Header.Get("Content-Range")),
	}

	if resp.StatusCode >= 400 {
		return out, parseError(respBody, resp.StatusCode)
	}

	return out, nil
}

// parseError builds an *Error from a PostgREST or GoTrue error body.
func parseError(body []byte, statusCode int) error {
	e := &Error{StatusCode: statusCode}

	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		e.Code = firstString(parsed, "code", "error_code")
		e.Message = firstString(parsed, "message", "msg", "error_description", "error")
		e.Details = parsed.Get("details").String()
		e.Hint = parsed.Get("hint").String()
	}

	if e.Message == "" {
		e.Message = http.StatusText(statusCode)
	}

	return e
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// parseContentRange returns the total from "0-9/42" or "*/42".
func parseContentRange(v string) *int {
	idx := strings.LastIndexByte(v, '/')
	if idx < 0 || idx == len(v)-1 {
		return nil
	}
	n, err := strconv.Atoi(v[idx+1:])
	if err != nil {
		return nil
	}
	return &n
}

// Factory builds a fresh Client for each call.
type Factory func() *Client

// NewFactory validates cfg once and returns a Factory. Clients built by the
// factory share cfg.HTTPClient and nothing else.
func NewFactory(cfg Config) (Factory, error) {
	if _, err := New(cfg); err != nil {
		return nil, err
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	return func() *Client {
		c, _ := New(cfg)
		return c
	}, nil
}
