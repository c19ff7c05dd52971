// Package sink provides subscriber implementations for dispatched release
// events. Sinks absorb their own delivery failures; a failed delivery never
// stops the watcher.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"release-watch-service/internal/domain/releases"
	"release-watch-service/internal/logging"
)

const defaultWebhookTimeout = 10 * time.Second

// LogSink logs each dispatched release.
type LogSink struct {
	id     string
	logger *slog.Logger
}

// NewLogSink constructs a logging subscriber.
func NewLogSink(id string, logger *slog.Logger) *LogSink {
	if id == "" {
		id = "log-sink"
	}
	return &LogSink{id: id, logger: logger}
}

func (s *LogSink) ID() string { return s.id }

// Deliver logs the event. It never fails.
func (s *LogSink) Deliver(ctx context.Context, ev releases.Event) error {
	logging.Info(s.logger, "release discovered",
		logging.FieldEvent, ev.Name,
		"name", ev.Release.StringField("name"),
		"date", ev.Release.Date.Format(time.RFC3339),
	)
	return nil
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookSink POSTs each dispatched release to a configured URL.
type WebhookSink struct {
	id     string
	url    string
	client httpDoer
	logger *slog.Logger
}

// WebhookConfig controls webhook delivery.
type WebhookConfig struct {
	ID         string
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewWebhookSink constructs a webhook subscriber.
func NewWebhookSink(cfg WebhookConfig, logger *slog.Logger) (*WebhookSink, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("sink: webhook URL is required")
	}
	id := cfg.ID
	if id == "" {
		id = "webhook-sink"
	}
	var client httpDoer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultWebhookTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &WebhookSink{id: id, url: cfg.URL, client: client, logger: logger}, nil
}

func (s *WebhookSink) ID() string { return s.id }

// Deliver posts the event payload as JSON.
func (s *WebhookSink) Deliver(ctx context.Context, ev releases.Event) error {
	payload, err := json.Marshal(map[string]any{
		"event":   ev.Name,
		"release": ev.Release.Fields,
	})
	if err != nil {
		return fmt.Errorf("sink: encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		logging.Warn(s.logger, "webhook delivery failed", logging.FieldEvent, ev.Name, "error", err)
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("sink: webhook returned status %d", resp.StatusCode)
		logging.Warn(s.logger, "webhook delivery rejected", logging.FieldEvent, ev.Name, logging.FieldStatusCode, resp.StatusCode)
		return err
	}
	return nil
}
