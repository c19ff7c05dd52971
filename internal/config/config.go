package config

// Config holds runtime configuration for the service.
type Config struct {
	Port      string
	EventName string
	PollDelay Duration
	SessionID string
	Feed      FeedConfig
	Gateway   GatewayConfig
	Sink      SinkConfig
	Metrics   MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:      envOrDefault(envPort, defaultPort),
		EventName: envOrDefault(envEventName, defaultEventName),
		PollDelay: durationEnvOrDefault(envPollDelay, defaultPollDelay),
		SessionID: envOrDefault(envSession, ""),
		Feed:      loadFeed(),
		Gateway:   loadGateway(),
		Sink:      loadSink(),
		Metrics:   loadMetrics(),
	}
}
