package http

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"release-watch-service/internal/logging"
	"release-watch-service/internal/metrics"
)

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	var seenID string
	inner := nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		seenID = requestIDFromContext(r.Context())
		w.WriteHeader(nethttp.StatusNoContent)
	})

	wrapped := LoggingMiddleware(logging.NewLogger(logging.Config{}), metrics.NewRecorder(), inner)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/health", nil))

	if seenID == "" {
		t.Fatal("expected request id in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seenID {
		t.Fatalf("expected request id echoed in header, got %q want %q", got, seenID)
	}
	if rec.Code != nethttp.StatusNoContent {
		t.Fatalf("expected inner status preserved, got %d", rec.Code)
	}
}

func TestMiddlewarePreservesIncomingRequestID(t *testing.T) {
	inner := nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {})
	wrapped := LoggingMiddleware(nil, nil, inner)

	req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Fatalf("expected upstream request id preserved, got %q", got)
	}
}

func TestRequestIDContextRoundTrip(t *testing.T) {
	ctx := withRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if got := requestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}
