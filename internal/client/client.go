// Package client talks to the remote domain REST API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultBaseURL is the resource endpoint used when nothing else is configured.
const DefaultBaseURL = "https://domain-danajo.liara.run/api/Domain/"

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// APIError is returned for every failed call. StatusCode is zero when the
// request never got a response.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Client is the domain API client. Use Domains for the resource calls.
type Client struct {
	base       *url.URL
	httpClient *http.Client

	Domains *DomainsAPI
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New builds a client for the resource at baseURL. A trailing slash is added
// when missing so item paths resolve beneath the collection.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url %q: %w", baseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q in base url", base.Scheme)
	}

	c := &Client{
		base:       base,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Domains = &DomainsAPI{c: c}
	return c, nil
}

// BaseURL returns the resolved collection URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// NewRequest sends one request relative to the base URL; path is already
// escaped. Non-2xx responses are closed and turned into *APIError.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("invalid request path %q", path), Err: err}
	}
	target := c.base.ResolveReference(&url.URL{Path: unescaped, RawPath: path})

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("build %s request: %v", method, err), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("domain api request failed", "method", method, "url", target.String(), "error", err)
		return nil, &APIError{Message: fmt.Sprintf("%s %s: %v", method, target.Path, rootCause(err)), Err: err}
	}

	log.Debug("domain api request", "method", method, "url", target.String(), "status", resp.StatusCode)

	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}

	return resp, nil
}

func parseResponse[T any](resp *http.Response) (T, error) {
	var ret T
	if resp.Body == nil {
		return ret, &APIError{StatusCode: resp.StatusCode, Message: "empty response body"}
	}
	if err := json.NewDecoder(resp.Body).Decode(&ret); err != nil {
		return ret, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	return ret, nil
}

// errorMessage pulls a human-readable message out of an error body. Known
// keys win, then the first field error, then the status line.
func errorMessage(raw []byte, status string) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil && len(body) > 0 {
		for _, key := range []string{"message", "detail", "error"} {
			if msg, ok := body[key].(string); ok && strings.TrimSpace(msg) != "" {
				return msg
			}
		}

		fields := make([]string, 0, len(body))
		for field := range body {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			if msg := firstString(body[field]); msg != "" {
				return field + ": " + msg
			}
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	return "request failed: " + status
}

func firstString(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case []any:
		for _, item := range value {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func rootCause(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}
