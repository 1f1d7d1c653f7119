package syncer

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/drawersync/internal/client/client"
	"github.com/dmitrijs2005/drawersync/internal/client/store"
	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/shared"
)

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	metas  map[string]store.SyncMeta
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}, metas: map[string]store.SyncMeta{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memStore) GetMeta(_ context.Context, key string) (store.SyncMeta, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.metas[key]
	return v, ok, nil
}

func (m *memStore) SetMeta(_ context.Context, key string, meta store.SyncMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metas[key] = meta
	return nil
}

func (m *memStore) SetWithMeta(_ context.Context, key, value string, meta store.SyncMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.metas[key] = meta
	return nil
}

func (m *memStore) SetIfUnchanged(_ context.Context, key, expected, value string, meta store.SyncMeta) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[key] != expected {
		return false, nil
	}
	m.values[key] = value
	m.metas[key] = meta
	return true, nil
}

func (m *memStore) value(key string) (string, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], m.metas[key].UpdatedAt
}

// memRemote behaves like the KV server: it keeps the client timestamp when
// positive and otherwise stamps its own clock.
type memRemote struct {
	mu      sync.Mutex
	items   map[string]client.RemoteValue
	err     error
	clock   int64
	puts    int
	onFetch func()
}

var _ client.Remote = (*memRemote)(nil)

func newMemRemote() *memRemote {
	return &memRemote{items: map[string]client.RemoteValue{}, clock: 5000}
}

func (r *memRemote) Fetch(_ context.Context, key string) (client.RemoteValue, bool, error) {
	r.mu.Lock()
	hook := r.onFetch
	if r.err != nil {
		err := r.err
		r.mu.Unlock()
		return client.RemoteValue{}, false, err
	}
	v, ok := r.items[key]
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return v, !ok, nil
}

func (r *memRemote) Put(_ context.Context, key, value string, updatedAt int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if updatedAt <= 0 {
		updatedAt = r.clock
	}
	r.items[key] = client.RemoteValue{Value: value, UpdatedAt: updatedAt}
	r.puts++
	return updatedAt, nil
}

func (r *memRemote) List(context.Context) ([]shared.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.Item, 0, len(r.items))
	for k, v := range r.items {
		out = append(out, shared.Item{Key: k, Value: v.Value, UpdatedAt: v.UpdatedAt})
	}
	return out, nil
}

func (r *memRemote) Health(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *memRemote) set(key, value string, ts int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = client.RemoteValue{Value: value, UpdatedAt: ts}
}

func (r *memRemote) get(key string) (client.RemoteValue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[key]
	return v, ok
}

func (r *memRemote) putCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.puts
}

func (r *memRemote) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

var errDown = common.ErrUnavailable
