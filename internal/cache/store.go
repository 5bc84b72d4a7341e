// Package cache provides the shared key-value cache that sits in front of
// the user database, and best-effort invalidation on top of it.
package cache

import "context"

// Store is a key-value cache. Get returns model.ErrorCacheMiss for a key that
// is not present. Deleting an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteMulti(ctx context.Context, keys []string) error
	Flush(ctx context.Context) error
	Close() error
}
