package gateway

import "context"

// Response is the raw outcome of one completed HTTP exchange.
type Response struct {
	Status int
	Body   []byte
}

// Gateway issues GET requests against a remote endpoint. Implementations
// return exactly one result per call: a response for any status code, or an
// error for transport failures (timeouts included).
type Gateway interface {
	Get(ctx context.Context, url string) (*Response, error)
}
