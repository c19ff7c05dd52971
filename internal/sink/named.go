package sink

import (
	"context"

	"release-watch-service/internal/domain/releases"
	"release-watch-service/internal/session"
)

type namedSubscriber struct {
	id    string
	inner session.Subscriber
}

// Named wraps a subscriber under an explicit identity, for registration in a
// session registry under a caller-chosen name.
func Named(id string, inner session.Subscriber) session.Subscriber {
	return &namedSubscriber{id: id, inner: inner}
}

func (n *namedSubscriber) ID() string { return n.id }

func (n *namedSubscriber) Deliver(ctx context.Context, ev releases.Event) error {
	return n.inner.Deliver(ctx, ev)
}
