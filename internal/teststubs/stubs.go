// Package teststubs holds shared test doubles for watcher and server tests.
package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"release-watch-service/internal/domain/releases"
	"release-watch-service/internal/gateway"
)

// StubGateway is a scriptable gateway.Gateway.
type StubGateway struct {
	// Respond decides the result per call (1-based). When nil, Resp/Err are
	// returned for every call.
	Respond func(call int32) (*gateway.Response, error)
	Resp    *gateway.Response
	Err     error

	// Started receives one value per Get issued, when set.
	Started chan struct{}
	// Release, when set, blocks every Get until it receives or closes.
	Release chan struct{}

	Calls  atomic.Int32
	Closed atomic.Bool
}

// Get returns the scripted result, signalling and blocking as configured.
func (s *StubGateway) Get(ctx context.Context, url string) (*gateway.Response, error) {
	call := s.Calls.Add(1)
	if s.Started != nil {
		select {
		case s.Started <- struct{}{}:
		default:
		}
	}
	if s.Release != nil {
		<-s.Release
	}
	if s.Respond != nil {
		return s.Respond(call)
	}
	return s.Resp, s.Err
}

// Close records that the watcher tore the gateway down.
func (s *StubGateway) Close() { s.Closed.Store(true) }

// RecordingSubscriber captures delivered events.
type RecordingSubscriber struct {
	Name string
	Fail error

	mu     sync.Mutex
	events []releases.Event
}

func (r *RecordingSubscriber) ID() string {
	if r.Name == "" {
		return "recording-subscriber"
	}
	return r.Name
}

// Deliver records the event and returns the configured failure.
func (r *RecordingSubscriber) Deliver(ctx context.Context, ev releases.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return r.Fail
}

// Events returns a copy of everything delivered so far.
func (r *RecordingSubscriber) Events() []releases.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]releases.Event, len(r.events))
	copy(out, r.events)
	return out
}
