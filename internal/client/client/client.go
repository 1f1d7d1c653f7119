package client

import (
	"context"

	"github.com/dmitrijs2005/drawersync/internal/shared"
)

// RemoteValue is a value stored on the server and its server-side timestamp.
type RemoteValue struct {
	Value     string
	UpdatedAt int64
}

// Remote is the contract the syncer relies on.
type Remote interface {
	// Fetch reports missing=true, with a nil error, when the key was never
	// stored on the server.
	Fetch(ctx context.Context, key string) (v RemoteValue, missing bool, err error)
	// Put stores value and returns the timestamp the server recorded.
	// updatedAt <= 0 lets the server stamp its own receipt time.
	Put(ctx context.Context, key, value string, updatedAt int64) (int64, error)
	List(ctx context.Context) ([]shared.Item, error)
	Health(ctx context.Context) error
}
