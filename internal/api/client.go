package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the base URL for the Capacities API.
	DefaultBaseURL = "https://api.capacities.io"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// Error types for specific API errors
type (
	// AuthenticationError indicates an invalid or expired API token.
	AuthenticationError struct{ Message string }
	// RateLimitError indicates the per-endpoint rate limit was exceeded.
	RateLimitError struct{ Message string }
	// NotFoundError indicates a space or object was not found.
	NotFoundError struct{ Message string }
	// ValidationError indicates the API rejected the request body.
	ValidationError struct{ Message string }
	// APIError is any other non-2xx response.
	APIError struct {
		StatusCode int
		Message    string
	}
)

func (e AuthenticationError) Error() string { return e.Message }
func (e RateLimitError) Error() string      { return e.Message }
func (e NotFoundError) Error() string       { return e.Message }
func (e ValidationError) Error() string     { return e.Message }
func (e APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Client is a Capacities REST API client.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	debug      bool
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL for the client.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets a custom timeout for the HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithDebug enables request/response dumps on stderr.
func WithDebug(debug bool) ClientOption {
	return func(c *Client) {
		c.debug = debug
	}
}

// NewClient creates a new Capacities API client.
func NewClient(apiToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetDebug enables or disables debug output.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// call makes a single API call using background context.
func (c *Client) call(method, path string, query url.Values, body interface{}) ([]byte, error) {
	return c.callCtx(context.Background(), method, path, query, body)
}

// callCtx makes a single API call with context support. Every endpoint is a
// single request; there is no retry policy.
func (c *Client) callCtx(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
		if c.debug {
			fmt.Fprintf(os.Stderr, "DEBUG %s %s %s\n", method, u, jsonBody)
		}
	} else if c.debug {
		fmt.Fprintf(os.Stderr, "DEBUG %s %s\n", method, u)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		fmt.Fprintf(os.Stderr, "DEBUG %d %s\n", resp.StatusCode, respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, AuthenticationError{Message: "invalid API token"}
		case http.StatusTooManyRequests:
			return nil, RateLimitError{Message: fmt.Sprintf("rate limit exceeded: %s", apiMessage(respBody))}
		case http.StatusBadRequest:
			return nil, ValidationError{Message: fmt.Sprintf("invalid request: %s", apiMessage(respBody))}
		case http.StatusNotFound:
			return nil, NotFoundError{Message: fmt.Sprintf("not found: %s", apiMessage(respBody))}
		default:
			return nil, APIError{StatusCode: resp.StatusCode, Message: apiMessage(respBody)}
		}
	}

	return respBody, nil
}

// apiMessage extracts the error message from a Capacities error body,
// falling back to the raw body.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// decode unmarshals an API response body into v. Some endpoints return an
// empty body on success; that is treated as a successful zero value.
func decode(body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Spaces returns the spaces the token has access to.
func (c *Client) Spaces() ([]Space, error) {
	resp, err := c.call(http.MethodGet, "/spaces", nil, nil)
	if err != nil {
		return nil, err
	}

	var result SpacesResponse
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return result.Spaces, nil
}

// SpaceInfo returns the structures and collections defined in a space.
// The endpoint is heavily rate limited; callers should go through a cache.
func (c *Client) SpaceInfo(spaceID string) (SpaceInfo, error) {
	query := url.Values{}
	query.Set("spaceid", spaceID)

	resp, err := c.call(http.MethodGet, "/space-info", query, nil)
	if err != nil {
		return SpaceInfo{}, err
	}

	var result SpaceInfo
	if err := decode(resp, &result); err != nil {
		return SpaceInfo{}, err
	}
	return result, nil
}

// Search runs a content search across the given spaces.
func (c *Client) Search(req SearchRequest) ([]SearchResult, error) {
	if req.Mode == "" {
		req.Mode = SearchModeFullText
	}

	resp, err := c.call(http.MethodPost, "/search", nil, req)
	if err != nil {
		return nil, err
	}

	var result SearchResponse
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// SaveWeblink saves a URL as a Web Resource object in a space.
func (c *Client) SaveWeblink(req SaveWeblinkRequest) error {
	_, err := c.call(http.MethodPost, "/save-weblink", nil, req)
	return err
}

// SaveToDailyNote appends markdown text to today's daily note in a space.
func (c *Client) SaveToDailyNote(req DailyNoteRequest) error {
	_, err := c.call(http.MethodPost, "/save-to-daily-note", nil, req)
	return err
}

// Ensure Client implements CapacitiesAPI at compile time
var _ CapacitiesAPI = (*Client)(nil)
