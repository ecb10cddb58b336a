// Package delivery defines the contract every transport entry point fulfils.
package delivery

import "context"

// Delivery is implemented by servers that accept external traffic.
type Delivery interface {
	Serve(ctx context.Context) error
}
