package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "4000" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.EventName != "release" {
		t.Fatalf("expected default event name, got %s", cfg.EventName)
	}
	if cfg.PollDelay != 180*time.Second {
		t.Fatalf("expected 180s poll delay, got %s", cfg.PollDelay)
	}
	if cfg.Gateway.Timeout != 15*time.Second {
		t.Fatalf("expected default HTTP timeout, got %s", cfg.Gateway.Timeout)
	}
	if cfg.Gateway.MaxRedirects != 5 {
		t.Fatalf("expected default redirect limit, got %d", cfg.Gateway.MaxRedirects)
	}
	if cfg.Sink.Kind != "log" {
		t.Fatalf("expected log sink by default, got %s", cfg.Sink.Kind)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("expected metrics enabled by default")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("EVENT_NAME", "upload")
	t.Setenv("POLL_DELAY", "30s")
	t.Setenv("SESSION", "ops-channel")
	t.Setenv("FEED_BASE_URL", "https://feed.example.com")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("HTTP_MAX_REDIRECTS", "2")
	t.Setenv("SINK", "webhook")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/x")

	cfg := Load()

	if cfg.Port != "8080" || cfg.EventName != "upload" || cfg.SessionID != "ops-channel" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.PollDelay != 30*time.Second {
		t.Fatalf("expected 30s poll delay, got %s", cfg.PollDelay)
	}
	if cfg.Feed.BaseURL != "https://feed.example.com" {
		t.Fatalf("expected feed base URL, got %s", cfg.Feed.BaseURL)
	}
	if cfg.Gateway.Timeout != 5*time.Second || cfg.Gateway.MaxRedirects != 2 {
		t.Fatalf("unexpected gateway config: %+v", cfg.Gateway)
	}
	if cfg.Sink.Kind != "webhook" || cfg.Sink.WebhookURL != "https://hooks.example.com/x" {
		t.Fatalf("unexpected sink config: %+v", cfg.Sink)
	}
}

func TestInvalidDurationsFallBack(t *testing.T) {
	t.Setenv("POLL_DELAY", "not-a-duration")
	t.Setenv("HTTP_TIMEOUT", "-5s")

	cfg := Load()
	if cfg.PollDelay != 180*time.Second {
		t.Fatalf("expected fallback poll delay, got %s", cfg.PollDelay)
	}
	if cfg.Gateway.Timeout != 15*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.Gateway.Timeout)
	}
}
