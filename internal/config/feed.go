package config

import "time"

// FeedConfig locates the remote release feed.
type FeedConfig struct {
	BaseURL string
}

func loadFeed() FeedConfig {
	return FeedConfig{
		BaseURL: envOrDefault(envFeedBaseURL, ""),
	}
}

// GatewayConfig carries pass-through HTTP transport settings.
type GatewayConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
}

func loadGateway() GatewayConfig {
	return GatewayConfig{
		Timeout:      durationEnvOrDefault(envHTTPTimeout, defaultHTTPTimeout),
		MaxRedirects: intEnvOrDefault(envMaxRedirects, defaultMaxRedirects),
		UserAgent:    envOrDefault(envUserAgent, ""),
	}
}

// SinkConfig selects the subscriber implementation.
type SinkConfig struct {
	Kind       string // log or webhook
	WebhookURL string
}

func loadSink() SinkConfig {
	return SinkConfig{
		Kind:       envOrDefault(envSinkKind, defaultSinkKind),
		WebhookURL: envOrDefault(envWebhookURL, ""),
	}
}
