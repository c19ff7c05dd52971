// Package watcher implements the poll/dedup/lifecycle core: it fetches the
// recent-uploads feed on a fixed interval, dispatches one event per release
// newer than the running watermark, and coordinates a shutdown that never
// truncates an in-flight exchange.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"release-watch-service/internal/domain/releases"
	"release-watch-service/internal/feed"
	"release-watch-service/internal/gateway"
	"release-watch-service/internal/logging"
	"release-watch-service/internal/metrics"
	"release-watch-service/internal/session"
)

const defaultDelay = 180 * time.Second

// Config describes one watcher instance.
type Config struct {
	// Event is the notification name delivered per new release. Required.
	Event string

	// Delay is the interval between a processed response and the next fetch.
	Delay time.Duration

	// FeedBaseURL is the feed origin. Required.
	FeedBaseURL string

	// Subscriber is the caller's own subscriber, used when SessionID is
	// empty. One of Subscriber or SessionID must be set.
	Subscriber session.Subscriber

	// SessionID names an explicit subscriber to resolve from the registry.
	// Resolution failure is fatal to startup.
	SessionID string

	// Registry resolves subscriber identities and issues ownership leases.
	// A private registry is created when nil.
	Registry *session.Registry

	// Gateway, when set, is borrowed from the caller and never torn down by
	// the watcher. When nil a gateway is provisioned from GatewayConfig and
	// owned (closed at teardown).
	Gateway gateway.Gateway

	// GatewayConfig configures an auto-provisioned gateway. Ignored when
	// Gateway is set.
	GatewayConfig gateway.Config

	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Watcher is a running poll loop. Obtain one through Spawn.
type Watcher struct {
	id        string
	event     string
	delay     time.Duration
	client    *feed.Client
	processor *feed.Processor

	subscriber session.Subscriber
	lease      *session.Lease

	gw          gateway.Gateway
	ownsGateway bool

	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	// watermark is owned by the run goroutine; the copy in status is for
	// observers.
	watermark time.Time

	outstanding  atomic.Int32
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	teardownOnce sync.Once
	done         chan struct{}

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the watcher loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	Watermark           time.Time
	Dispatched          int64
}

// IsReady reports whether the watcher has had a recent success and is not
// failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

type fetchResult struct {
	resp *gateway.Response
	err  error
}

// Spawn validates cfg, wires the watcher, and starts its poll loop. The first
// fetch issues immediately. Configuration problems fail synchronously and the
// loop never starts.
func Spawn(cfg Config) (*Watcher, error) {
	if cfg.Event == "" {
		return nil, fmt.Errorf("watcher: event name is required")
	}
	if cfg.Delay <= 0 {
		cfg.Delay = defaultDelay
	}
	if cfg.Registry == nil {
		cfg.Registry = session.NewRegistry()
	}

	sub, lease, err := resolveSubscriber(cfg)
	if err != nil {
		return nil, err
	}

	gw := cfg.Gateway
	ownsGateway := false
	if gw == nil {
		gw = gateway.New(cfg.GatewayConfig)
		ownsGateway = true
	}

	client, err := feed.NewClient(cfg.FeedBaseURL, gw)
	if err != nil {
		lease.Release()
		if ownsGateway {
			if c, ok := gw.(interface{ Close() }); ok {
				c.Close()
			}
		}
		return nil, err
	}

	w := &Watcher{
		id:          uuid.NewString(),
		event:       cfg.Event,
		delay:       cfg.Delay,
		client:      client,
		processor:   feed.NewProcessor(cfg.Logger),
		subscriber:  sub,
		lease:       lease,
		gw:          gw,
		ownsGateway: ownsGateway,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		now:         time.Now,
		shutdownCh:  make(chan struct{}),
		done:        make(chan struct{}),
	}
	w.watermark = w.now()
	w.setWatermark(w.watermark)

	if w.logger != nil {
		w.logger = w.logger.With(slog.String(logging.FieldWatcherID, w.id))
	}
	logging.Info(w.logger, "watcher started",
		logging.FieldEvent, w.event,
		logging.FieldDurationMS, w.delay.Milliseconds(),
	)

	go w.run()
	return w, nil
}

func resolveSubscriber(cfg Config) (session.Subscriber, *session.Lease, error) {
	if cfg.SessionID != "" {
		sub, lease, err := cfg.Registry.Acquire(cfg.SessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("watcher: %w", err)
		}
		return sub, lease, nil
	}
	if cfg.Subscriber == nil {
		return nil, nil, fmt.Errorf("watcher: a subscriber or session id is required")
	}
	return cfg.Subscriber, cfg.Registry.AcquireFor(cfg.Subscriber), nil
}

// ID returns the opaque identity of this watcher session.
func (w *Watcher) ID() string { return w.id }

// Shutdown requests teardown. Idempotent and deliverable at any time: when no
// fetch is outstanding teardown runs immediately, otherwise it is deferred
// until the outstanding response has been processed. The in-flight exchange
// is never cancelled.
func (w *Watcher) Shutdown() {
	w.shutdownOnce.Do(func() { close(w.shutdownCh) })
}

// Done is closed once teardown has completed.
func (w *Watcher) Done() <-chan struct{} { return w.done }

// Outstanding reports the number of fetches issued but not yet processed.
func (w *Watcher) Outstanding() int { return int(w.outstanding.Load()) }

// Status returns a snapshot of the watcher's recent health.
func (w *Watcher) Status() Status {
	w.statusMu.RLock()
	defer w.statusMu.RUnlock()
	return w.status
}

// run is the single goroutine that owns all watcher state. Its only
// suspension points are the in-flight fetch and the delay timer; shutdown is
// observed at both and at the loop top.
func (w *Watcher) run() {
	for {
		if w.isShuttingDown() {
			w.teardown()
			return
		}

		w.cycle()

		if w.isShuttingDown() {
			w.teardown()
			return
		}

		timer := time.NewTimer(w.delay)
		select {
		case <-timer.C:
		case <-w.shutdownCh:
			timer.Stop()
			w.teardown()
			return
		}
	}
}

// cycle issues one fetch and processes its response. The response is always
// awaited, shutdown or not, so the outstanding count returns to zero before
// any teardown.
func (w *Watcher) cycle() {
	start := w.now()
	w.recordAttempt(start)
	w.outstanding.Add(1)

	resCh := make(chan fetchResult, 1)
	go func() {
		resp, err := w.client.FetchRecent(context.Background())
		resCh <- fetchResult{resp: resp, err: err}
	}()

	var res fetchResult
	select {
	case res = <-resCh:
	case <-w.shutdownCh:
		// Shutdown noted; keep waiting for the in-flight exchange.
		res = <-resCh
	}

	w.process(res, start)
	w.outstanding.Add(-1)
}

func (w *Watcher) process(res fetchResult, start time.Time) {
	elapsed := time.Since(start)
	w.metrics.RecordFetchAttempt(elapsed, res.err)

	var fresh []releases.Release
	if res.err != nil {
		logging.Warn(w.logger, "feed fetch failed",
			"error", res.err,
			logging.FieldDurationMS, elapsed.Milliseconds(),
		)
		w.recordFailure(res.err)
	} else {
		fresh = w.processor.NewSince(res.resp, w.watermark)
		w.recordOutcome(res.resp)
	}

	for _, rel := range fresh {
		ev := releases.Event{Name: w.event, Release: rel}
		if err := w.subscriber.Deliver(context.Background(), ev); err != nil {
			logging.Warn(w.logger, "event delivery failed", logging.FieldEvent, w.event, "error", err)
		}
		w.metrics.RecordDispatch(w.event)
		w.addDispatched()
	}

	// The dedup boundary moves to wall clock at cycle completion, not to the
	// newest dispatched record. Empty and failed cycles advance it too.
	w.watermark = w.now()
	w.setWatermark(w.watermark)

	w.metrics.RecordCycle(len(fresh), time.Since(start))
	logging.Info(w.logger, "cycle complete",
		logging.FieldCount, len(fresh),
		logging.FieldWatermark, w.watermark.UTC().Format(time.RFC3339),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
}

// teardown releases resources exactly once: the subscriber lease always, the
// gateway only when auto-provisioned.
func (w *Watcher) teardown() {
	w.teardownOnce.Do(func() {
		w.lease.Release()
		if w.ownsGateway {
			if c, ok := w.gw.(interface{ Close() }); ok {
				c.Close()
			}
		}
		logging.Info(w.logger, "watcher stopped")
		close(w.done)
	})
}

func (w *Watcher) isShuttingDown() bool {
	select {
	case <-w.shutdownCh:
		return true
	default:
		return false
	}
}

func (w *Watcher) recordAttempt(at time.Time) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.LastAttempt = at
}

func (w *Watcher) recordOutcome(resp *gateway.Response) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	if resp != nil && resp.Status == http.StatusOK {
		w.status.ConsecutiveFailures = 0
		w.status.LastError = ""
		w.status.LastSuccess = w.now()
		return
	}
	w.status.ConsecutiveFailures++
	if resp != nil {
		w.status.LastError = fmt.Sprintf("feed returned status %d", resp.Status)
	}
}

func (w *Watcher) recordFailure(err error) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.ConsecutiveFailures++
	if err != nil {
		w.status.LastError = err.Error()
	}
}

func (w *Watcher) setWatermark(ts time.Time) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.Watermark = ts
}

func (w *Watcher) addDispatched() {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()
	w.status.Dispatched++
}
