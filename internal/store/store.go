package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// Store is the persistent key-value collaborator: durable storage of
// JSON-serializable values under string keys. The ledger core treats a
// missing key as "no data" and never distinguishes empty from absent.
type Store interface {
	// Get unmarshals the value stored under key into out. Returns
	// ErrNotFound when the key is absent.
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
