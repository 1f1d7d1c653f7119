// Package kv holds the storage backends of the key-value server: an
// in-memory map, a PostgreSQL table and an S3 bucket.
package kv

import (
	"context"

	"github.com/dmitrijs2005/drawersync/internal/shared"
)

// Repository stores opaque string values under validated keys.
type Repository interface {
	// Get returns common.ErrNotFound when key was never written.
	Get(ctx context.Context, key string) (shared.Item, error)
	// Put overwrites key unconditionally with value stamped updatedAt.
	Put(ctx context.Context, key, value string, updatedAt int64) error
	// List returns every item ordered by key.
	List(ctx context.Context) ([]shared.Item, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
