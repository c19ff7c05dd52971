package http

import (
	"encoding/json"
	"log/slog"
	nethttp "net/http"
	"time"

	"release-watch-service/internal/watcher"
)

// StatusSource exposes the watcher state the HTTP surface reports on.
type StatusSource interface {
	ID() string
	Status() watcher.Status
}

// Handler wires HTTP routes to the watcher.
type Handler struct {
	source StatusSource
	logger *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(source StatusSource, logger *slog.Logger) *Handler {
	return &Handler{source: source, logger: logger}
}

// Health reports the service liveness.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the watcher has polled successfully recently.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.source == nil {
		h.writeJSON(w, nethttp.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	st := h.source.Status()
	if !st.IsReady() {
		h.writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
			"status":               "unavailable",
			"consecutive_failures": st.ConsecutiveFailures,
			"last_error":           st.LastError,
		})
		return
	}
	h.writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"})
}

type statusResponse struct {
	WatcherID           string `json:"watcher_id"`
	Watermark           string `json:"watermark"`
	LastAttempt         string `json:"last_attempt,omitempty"`
	LastSuccess         string `json:"last_success,omitempty"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastError           string `json:"last_error,omitempty"`
	Dispatched          int64  `json:"dispatched"`
}

// Status returns a JSON snapshot of the watcher state.
func (h *Handler) Status(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.source == nil {
		h.writeError(w, nethttp.StatusServiceUnavailable, "watcher not running")
		return
	}
	st := h.source.Status()
	h.writeJSON(w, nethttp.StatusOK, statusResponse{
		WatcherID:           h.source.ID(),
		Watermark:           formatTime(st.Watermark),
		LastAttempt:         formatTime(st.LastAttempt),
		LastSuccess:         formatTime(st.LastSuccess),
		ConsecutiveFailures: st.ConsecutiveFailures,
		LastError:           st.LastError,
		Dispatched:          st.Dispatched,
	})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (h *Handler) writeJSON(w nethttp.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w nethttp.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
