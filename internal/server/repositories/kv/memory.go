package kv

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/shared"
)

type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]shared.Item
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]shared.Item)}
}

func (r *InMemoryRepository) Get(_ context.Context, key string) (shared.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[key]
	if !ok {
		return shared.Item{}, common.ErrNotFound
	}
	return it, nil
}

func (r *InMemoryRepository) Put(_ context.Context, key, value string, updatedAt int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[key] = shared.Item{Key: key, Value: value, UpdatedAt: updatedAt}
	return nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]shared.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shared.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *InMemoryRepository) Ping(context.Context) error { return nil }
