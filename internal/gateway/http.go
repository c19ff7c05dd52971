package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxRedirects = 5
	defaultUserAgent    = "release-watch-service"

	// maxBodyBytes caps how much of a response body is buffered.
	maxBodyBytes = 4 << 20
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls how the HTTP gateway reaches remote endpoints.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
	HTTPClient   *http.Client
}

// HTTPGateway is the net/http backed Gateway implementation.
type HTTPGateway struct {
	client    httpDoer
	userAgent string
}

// New constructs an HTTP gateway with the provided configuration.
func New(cfg Config) *HTTPGateway {
	return &HTTPGateway{
		client:    resolveClient(cfg),
		userAgent: resolveUserAgent(cfg.UserAgent),
	}
}

// Get issues a GET request and buffers the response body.
func (g *HTTPGateway) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}

// Close releases idle connections held by an auto-provisioned transport.
// Only the owner of the gateway should call it.
func (g *HTTPGateway) Close() {
	if c, ok := g.client.(*http.Client); ok {
		c.CloseIdleConnections()
	}
}

func resolveClient(cfg Config) httpDoer {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}

	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("gateway: stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

func resolveUserAgent(ua string) string {
	if ua == "" {
		return defaultUserAgent
	}
	return ua
}
