// Package backend talks to the authoritative content-management system: the
// show catalog and the per-show episode listing. Everything else the
// pipeline knows about a show arrives through metadata sources instead.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnreachable signals that the authoritative backend could not be queried.
// Unlike a metadata source outage this is fatal for the affected show: a feed
// generated without the canonical episode list would be wrong, not degraded.
var ErrUnreachable = errors.New("backend unreachable")

const defaultTimeout = 30 * time.Second

// Client queries the backend's JSON API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a client for the given base URL. A nil httpc gets a
// default client with a request timeout.
func NewClient(baseURL string, httpc *http.Client) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("backend base URL is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("backend base URL: %w", err)
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: trimmed, httpc: httpc}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "podcast-feed-gen")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrUnreachable, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnreachable, path, err)
	}
	return nil
}
