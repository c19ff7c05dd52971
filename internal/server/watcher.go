package server

import (
	"release-watch-service/internal/watcher"
)

// Watcher defines the minimal watcher behavior needed by the server.
type Watcher interface {
	ID() string
	Status() watcher.Status
	Shutdown()
	Done() <-chan struct{}
}
