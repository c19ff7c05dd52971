package config

import "time"

const (
	envPort         = "PORT"
	envEventName    = "EVENT_NAME"
	envPollDelay    = "POLL_DELAY"
	envSession      = "SESSION"
	envFeedBaseURL  = "FEED_BASE_URL"
	envHTTPTimeout  = "HTTP_TIMEOUT"
	envMaxRedirects = "HTTP_MAX_REDIRECTS"
	envUserAgent    = "HTTP_USER_AGENT"
	envSinkKind     = "SINK"
	envWebhookURL   = "WEBHOOK_URL"
	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort      = "4000"
	defaultEventName = "release"
	// Conservative default poll cadence; the feed only shows the newest 100
	// uploads, so anything under a few minutes is wasted traffic.
	defaultPollDelay    = 180 * Duration(time.Second)
	defaultHTTPTimeout  = 15 * Duration(time.Second)
	defaultMaxRedirects = 5
	defaultSinkKind     = "log"
	defaultMetricsPort  = "9090"
)
