package feed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"release-watch-service/internal/gateway"
)

const (
	recentPath = "/release/recent"

	// Fixed query shape of the recent-uploads endpoint. Only the first page
	// is ever requested.
	feedType = "l"
	page     = 1
	pageSize = 100
)

// Client issues recent-uploads fetches against the feed through a gateway.
type Client struct {
	baseURL string
	gw      gateway.Gateway
}

// NewClient constructs a feed client for the given base URL.
func NewClient(baseURL string, gw gateway.Gateway) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("feed: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("feed: invalid base URL: %w", err)
	}
	return &Client{baseURL: baseURL, gw: gw}, nil
}

// RecentURL returns the fully qualified recent-uploads URL.
func (c *Client) RecentURL() string {
	q := url.Values{}
	q.Set("type", feedType)
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	return c.baseURL + recentPath + "?" + q.Encode()
}

// FetchRecent performs one fetch of the recent-uploads page. The raw response
// is returned untouched; interpreting it is the processor's job.
func (c *Client) FetchRecent(ctx context.Context) (*gateway.Response, error) {
	return c.gw.Get(ctx, c.RecentURL())
}
