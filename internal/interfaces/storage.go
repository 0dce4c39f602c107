package interfaces

import "context"

// StorageBackend is a durable key/value store holding serialized store snapshots
type StorageBackend interface {
	// Get returns the stored bytes for key, or state.ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
