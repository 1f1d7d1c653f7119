package syncer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long StoreWatcher waits for a burst of writes to end.
const DefaultSettle = 200 * time.Millisecond

// StoreWatcher notices writes to the SQLite file made by other processes
// (for example a second REPL on the same database) and emits one tick per
// burst of writes.
type StoreWatcher struct {
	watcher *fsnotify.Watcher
	names   map[string]struct{}
	settle  time.Duration
	logger  logging.Logger

	events chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewStoreWatcher watches the directory holding dbPath and reacts to the
// database file and its -wal companion.
func NewStoreWatcher(dbPath string, logger logging.Logger) (*StoreWatcher, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dbPath, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	base := filepath.Base(abs)
	return &StoreWatcher{
		watcher: w,
		names:   map[string]struct{}{base: {}, base + "-wal": {}},
		settle:  DefaultSettle,
		logger:  logger.With("module", "store-watcher"),
		events:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}, nil
}

// Events emits one value per settled burst of writes. It is closed by Close.
func (sw *StoreWatcher) Events() <-chan struct{} {
	return sw.events
}

// Start begins processing file system events.
func (sw *StoreWatcher) Start(ctx context.Context) {
	sw.wg.Add(1)
	go sw.loop(ctx)
}

// Close stops the watcher and waits for the loop to exit.
func (sw *StoreWatcher) Close() error {
	var err error
	sw.once.Do(func() {
		close(sw.done)
		err = sw.watcher.Close()
		sw.wg.Wait()
		close(sw.events)
	})
	return err
}

func (sw *StoreWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	_, ok := sw.names[filepath.Base(ev.Name)]
	return ok
}

func (sw *StoreWatcher) loop(ctx context.Context) {
	defer sw.wg.Done()

	var settle <-chan time.Time

	for {
		select {
		case <-sw.done:
			return
		case <-ctx.Done():
			return

		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if sw.relevant(ev) {
				settle = time.After(sw.settle)
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn(ctx, "watch error", "error", err)

		case <-settle:
			settle = nil
			select {
			case sw.events <- struct{}{}:
			default:
			}
		}
	}
}
