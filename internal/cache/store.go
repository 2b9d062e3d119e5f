// Package cache holds the process-wide lookup stores. Stores are built once at
// startup and handed to the services that use them.
package cache

import "context"

// Store is a keyed cache. A miss is reported with ok=false and a nil error.
type Store[V any] interface {
	Get(ctx context.Context, key string) (value V, ok bool, err error)
	Put(ctx context.Context, key string, value V) error
	Delete(ctx context.Context, key string) error
}
