package metrics

import (
	"sync"
	"time"
)

type watcherStats struct {
	fetches          int
	fetchErrors      int
	cycles           int
	dispatched       int
	lastFetchLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about watcher activity.
// It is intentionally simple so it can be swapped for a real backend later.
type Recorder struct {
	mu    sync.Mutex
	stats watcherStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{otel: otel}
}

// RecordFetchAttempt counts a feed fetch and stores its latency.
func (r *Recorder) RecordFetchAttempt(duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.stats.fetches++
	r.stats.lastFetchLatency = duration
	if err != nil {
		r.stats.fetchErrors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFetchAttempt(duration, err)
	}
}

// RecordCycle counts one completed poll cycle and the releases it dispatched.
func (r *Recorder) RecordCycle(dispatched int, duration time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.stats.cycles++
	r.stats.dispatched += dispatched
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCycle(duration)
	}
}

// RecordDispatch counts a single delivered event.
func (r *Recorder) RecordDispatch(event string) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordDispatch(event)
}

// RecordHTTPRequest tracks basic HTTP metrics for the status surface.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// Snapshot is a copy of the current in-memory stats.
type Snapshot struct {
	Fetches          int
	FetchErrors      int
	Cycles           int
	Dispatched       int
	LastFetchLatency time.Duration
}

func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Fetches:          r.stats.fetches,
		FetchErrors:      r.stats.fetchErrors,
		Cycles:           r.stats.cycles,
		Dispatched:       r.stats.dispatched,
		LastFetchLatency: r.stats.lastFetchLatency,
	}
}

// Fetches returns the total fetch attempts recorded.
func (r *Recorder) Fetches() int { return r.Snapshot().Fetches }

// FetchErrors returns the total failed fetches recorded.
func (r *Recorder) FetchErrors() int { return r.Snapshot().FetchErrors }

// Cycles returns the total completed poll cycles.
func (r *Recorder) Cycles() int { return r.Snapshot().Cycles }

// Dispatched returns the total releases dispatched.
func (r *Recorder) Dispatched() int { return r.Snapshot().Dispatched }
