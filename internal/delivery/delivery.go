// Package delivery defines the contract every transport (HTTP, workers)
// implements so main can start them uniformly.
package delivery

import "context"

// Delivery is a long-running transport endpoint. Serve blocks until the
// endpoint stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
