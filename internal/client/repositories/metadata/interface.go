package metadata

import (
	"context"
)

// SyncMeta is the per-key sync bookkeeping kept beside each local document:
// the timestamp the local payload logically represents. It is never sent to
// the server.
type SyncMeta struct {
	UpdatedAt int64 `json:"updatedAt"`
}

// Repository persists SyncMeta per document key.
type Repository interface {
	// Get returns (nil, nil) when no metadata is stored for key.
	Get(ctx context.Context, key string) (*SyncMeta, error)
	Set(ctx context.Context, key string, meta SyncMeta) error
}
