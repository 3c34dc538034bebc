package tokenstore

import (
	"context"
	"errors"
)

// ErrNoToken reports that a store holds no token. Callers distinguish
// "unauthenticated" from storage failures with errors.Is.
var ErrNoToken = errors.New("tokenstore: no token stored")

// Store reads, writes and clears a single authentication token.
type Store interface {
	// Read returns the stored token. Returns ErrNoToken if the store is empty.
	Read(ctx context.Context) (string, error)

	// Write persists the token, overwriting any prior value. The token is
	// treated as opaque; no shape validation is performed.
	Write(ctx context.Context, token string) error

	// Clear removes the token. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
