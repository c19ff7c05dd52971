package session

import (
	"context"
	"fmt"
	"sync"

	"release-watch-service/internal/domain/releases"
)

// Subscriber is the execution context that receives dispatched events and may
// own a watcher handle. Deliver is invoked once per new release, in feed
// order; delivery failures are the subscriber's to report but never stop the
// watcher.
type Subscriber interface {
	ID() string
	Deliver(ctx context.Context, ev releases.Event) error
}

// Lease is a counted ownership reference on a subscriber. Holding a lease
// keeps the subscriber resolvable; Release is idempotent and returns the
// reference exactly once.
type Lease struct {
	once    sync.Once
	release func()
}

// Release returns the ownership reference. Safe to call more than once.
func (l *Lease) Release() {
	l.once.Do(l.release)
}

type entry struct {
	sub  Subscriber
	refs int
}

// Registry resolves subscriber identities and tracks outstanding leases.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a subscriber under its own identity.
func (r *Registry) Register(sub Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[sub.ID()]; exists {
		return fmt.Errorf("session: subscriber %q already registered", sub.ID())
	}
	r.entries[sub.ID()] = &entry{sub: sub}
	return nil
}

// Acquire resolves a subscriber by identity and takes an ownership lease on
// it. An unknown identity is a configuration error.
func (r *Registry) Acquire(id string) (Subscriber, *Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, nil, fmt.Errorf("session: unknown subscriber %q", id)
	}
	e.refs++
	return e.sub, r.leaseFor(id), nil
}

// AcquireFor takes an ownership lease on a caller-supplied subscriber,
// registering it if the registry has not seen it yet.
func (r *Registry) AcquireFor(sub Subscriber) *Lease {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sub.ID()]
	if !ok {
		e = &entry{sub: sub}
		r.entries[sub.ID()] = e
	}
	e.refs++
	return r.leaseFor(sub.ID())
}

// Refs reports the number of outstanding leases for an identity.
func (r *Registry) Refs(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e.refs
	}
	return 0
}

// Remove deletes a subscriber. It fails while leases are outstanding.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	if e.refs > 0 {
		return fmt.Errorf("session: subscriber %q still has %d outstanding leases", id, e.refs)
	}
	delete(r.entries, id)
	return nil
}

// leaseFor builds the release closure; callers must hold r.mu.
func (r *Registry) leaseFor(id string) *Lease {
	return &Lease{release: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if e, ok := r.entries[id]; ok && e.refs > 0 {
			e.refs--
		}
	}}
}
