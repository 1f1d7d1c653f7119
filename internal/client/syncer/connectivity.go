package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/logging"
)

// Mode is the last known reachability of the server.
type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// ConnectivityObserver publishes connectivity transitions: true when the
// server becomes reachable, false when it stops being reachable.
type ConnectivityObserver interface {
	Subscribe() <-chan bool
}

// Pinger is anything that can check whether the server answers.
type Pinger interface {
	Health(ctx context.Context) error
}

// DefaultPingTimeout bounds a single health check. It matches the remote
// client's own request timeout.
const DefaultPingTimeout = 5 * time.Second

// DefaultCheckInterval replaces a non-positive check interval.
const DefaultCheckInterval = 3 * time.Second

// PingWatcher is a ConnectivityObserver that pings a Pinger on a fixed
// interval and publishes only transitions.
type PingWatcher struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   logging.Logger

	mu   sync.Mutex
	mode Mode
	subs []chan bool
}

var _ ConnectivityObserver = (*PingWatcher)(nil)

func NewPingWatcher(p Pinger, interval time.Duration, logger logging.Logger) *PingWatcher {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &PingWatcher{
		pinger:   p,
		interval: interval,
		timeout:  DefaultPingTimeout,
		logger:   logger.With("module", "ping-watcher"),
		mode:     ModeUnknown,
	}
}

// Subscribe returns a channel that receives every transition. A slow reader
// only ever misses intermediate states: the newest state is always delivered.
// The channel is closed when Run returns.
func (w *PingWatcher) Subscribe() <-chan bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan bool, 1)
	w.subs = append(w.subs, ch)
	return ch
}

func (w *PingWatcher) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// Run checks immediately and then on every tick until ctx is done.
func (w *PingWatcher) Run(ctx context.Context) {
	defer w.closeSubs()

	w.check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *PingWatcher) check(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.pinger.Health(pctx)
	cancel()

	if ctx.Err() != nil {
		return
	}

	if err != nil {
		w.setMode(ctx, ModeOffline, err)
	} else {
		w.setMode(ctx, ModeOnline, nil)
	}
}

func (w *PingWatcher) setMode(ctx context.Context, mode Mode, cause error) {
	w.mu.Lock()
	if w.mode == mode {
		w.mu.Unlock()
		return
	}
	w.mode = mode
	subs := append([]chan bool(nil), w.subs...)
	w.mu.Unlock()

	if cause != nil {
		w.logger.Info(ctx, "switched mode", "mode", mode, "error", cause)
	} else {
		w.logger.Info(ctx, "switched mode", "mode", mode)
	}

	up := mode == ModeOnline
	for _, ch := range subs {
		publish(ch, up)
	}
}

// publish replaces any unread state with the newest one.
func publish(ch chan bool, v bool) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (w *PingWatcher) closeSubs() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, ch := range w.subs {
		close(ch)
	}
	w.subs = nil
}
