package client

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

	"github.com/terra-clan/code-golf/internal/models"
)

// DefaultBaseURL is the public golf API
const DefaultBaseURL = "https://code-golf.iannis.io"

// Error classes, matched with errors.Is
var (
	ErrNetwork = errors.New("network error")
	ErrStatus  = errors.New("unexpected status")
	ErrDecode  = errors.New("malformed response")
)

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// Unwrap lets errors.Is(err, ErrStatus) match
func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Client is a Go SDK for the code golf API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout. Zero keeps requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new golf API client
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "golf-web",
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListChallenges retrieves every challenge
func (c *Client) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := c.getJSON(ctx, "/challenges", &challenges); err != nil {
		return nil, err
	}
	if challenges == nil {
		return nil, fmt.Errorf("%w: challenge list is null", ErrDecode)
	}
	return challenges, nil
}

// ListLanguages retrieves the languages submissions may be written in
func (c *Client) ListLanguages(ctx context.Context) ([]string, error) {
	var langs []string
	if err := c.getJSON(ctx, "/languages", &langs); err != nil {
		return nil, err
	}
	if langs == nil {
		return nil, fmt.Errorf("%w: language list is null", ErrDecode)
	}
	return langs, nil
}

// GetLeaderboard retrieves the public leaderboard of a challenge
func (c *Client) GetLeaderboard(ctx context.Context, challengeID string) (models.PublicLeaderboard, error) {
	path := "/leaderboard?challenge=" + url.QueryEscape(challengeID)

	var board models.PublicLeaderboard
	if err := c.getJSON(ctx, path, &board); err != nil {
		return nil, err
	}
	if board == nil {
		board = models.PublicLeaderboard{}
	}
	return board, nil
}

// Submit sends code to be run against the hidden test cases of a challenge
func (c *Client) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/submit", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result models.SubmitResult
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	if !result.State.Valid() {
		return nil, fmt.Errorf("%w: unknown submission state %q", ErrDecode, result.State)
	}

	return &result, nil
}

// Health checks if the API is reachable
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/languages", nil)
	return err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}
