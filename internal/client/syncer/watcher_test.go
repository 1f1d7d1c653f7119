package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreWatcher_EmitsOnDatabaseWrites(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "drawer.db")
	require.NoError(t, os.WriteFile(db, []byte("x"), 0o600))

	w, err := NewStoreWatcher(db, logging.Discard())
	require.NoError(t, err)
	w.settle = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer func() { _ = w.Close() }()

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("y"), 0o600))
	select {
	case <-w.Events():
		t.Fatal("event for unrelated file")
	case <-time.After(60 * time.Millisecond):
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(db+"-wal", []byte{byte(i)}, 0o600))
	}

	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("no event for database write")
	}
}

func TestStoreWatcher_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewStoreWatcher(filepath.Join(dir, "drawer.db"), logging.Discard())
	require.NoError(t, err)

	w.Start(context.Background())
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestNewStoreWatcher_MissingDirectory(t *testing.T) {
	_, err := NewStoreWatcher(filepath.Join(t.TempDir(), "nope", "drawer.db"), logging.Discard())
	assert.Error(t, err)
}
