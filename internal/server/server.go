package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"release-watch-service/internal/config"
	"release-watch-service/internal/gateway"
	httpapi "release-watch-service/internal/http"
	"release-watch-service/internal/logging"
	"release-watch-service/internal/metrics"
	"release-watch-service/internal/session"
	"release-watch-service/internal/sink"
	"release-watch-service/internal/watcher"
)

var metricsSetup = metrics.Setup

// Server owns the watcher plus the HTTP and metrics surfaces.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	watcher       Watcher
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New wires the full service and spawns the watcher. Configuration problems
// (missing feed URL, unresolvable session, bad sink config) fail here and the
// watcher never starts polling.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithGateway(cfg, logger, nil)
}

// newServerWithGateway lets tests inject a borrowed gateway.
func newServerWithGateway(cfg config.Config, logger *slog.Logger, gw gateway.Gateway) (*Server, error) {
	recorder, metricsSrv, metricsShutdown, err := buildMetrics(cfg, logger)
	if err != nil {
		return nil, err
	}

	subscriber, err := buildSink(cfg, logger)
	if err != nil {
		return nil, err
	}

	watchCfg := watcher.Config{
		Event:       cfg.EventName,
		Delay:       cfg.PollDelay,
		FeedBaseURL: cfg.Feed.BaseURL,
		Gateway:     gw,
		GatewayConfig: gateway.Config{
			Timeout:      cfg.Gateway.Timeout,
			MaxRedirects: cfg.Gateway.MaxRedirects,
			UserAgent:    cfg.Gateway.UserAgent,
		},
		Logger:  logger,
		Metrics: recorder,
	}

	if cfg.SessionID != "" {
		// An explicit session identity resolves through a registry; the sink
		// is registered under that identity first.
		registry := session.NewRegistry()
		named := sink.Named(cfg.SessionID, subscriber)
		if err := registry.Register(named); err != nil {
			return nil, err
		}
		watchCfg.SessionID = cfg.SessionID
		watchCfg.Registry = registry
	} else {
		watchCfg.Subscriber = subscriber
	}

	w, err := watcher.Spawn(watchCfg)
	if err != nil {
		return nil, err
	}

	httpSrv := buildHTTPServer(cfg, w, logger, recorder)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		watcher:       w,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}, nil
}

func buildSink(cfg config.Config, logger *slog.Logger) (session.Subscriber, error) {
	if strings.EqualFold(cfg.Sink.Kind, "webhook") {
		return sink.NewWebhookSink(sink.WebhookConfig{URL: cfg.Sink.WebhookURL}, logger)
	}
	return sink.NewLogSink("", logger), nil
}

func buildMetrics(cfg config.Config, logger *slog.Logger) (*metrics.Recorder, httpServer, func(context.Context) error, error) {
	recorder, promHandler, shutdown, err := metricsSetup(context.Background(), metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	var metricsSrv httpServer
	if promHandler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promHandler)
		metricsSrv = netHTTPServer{srv: &http.Server{
			Addr:         ":" + cfg.Metrics.Port,
			Handler:      mux,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		}}
	}
	return recorder, metricsSrv, shutdown, nil
}

func buildHTTPServer(cfg config.Config, w Watcher, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	handler := httpapi.NewHandler(w, logger)
	router := httpapi.NewRouter(handler)
	wrapped := httpapi.LoggingMiddleware(logger, recorder, router)

	return netHTTPServer{srv: &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}}
}

// Run starts the HTTP surfaces, then waits for context cancellation to shut
// down gracefully. The watcher is already polling by the time Run is called.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, stop)
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func launchServer(name string, srv httpServer, logger *slog.Logger, stop context.CancelFunc) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(logger, name+" server failed", err)
			if stop != nil {
				stop()
			}
		}
	}()
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	// The watcher drains any outstanding exchange before tearing down; give
	// it the same bounded window as everything else.
	s.watcher.Shutdown()
	select {
	case <-s.watcher.Done():
	case <-shutdownCtx.Done():
		logging.Warn(s.logger, "watcher teardown timed out")
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	logging.Info(s.logger, "shutdown complete")
}
