// Package documents stores the raw JSON documents of the client, one row per
// well-known key.
package documents

import "context"

// Repository is the local key-value store for document payloads.
type Repository interface {
	// Get reports found=false when key was never written.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
}
