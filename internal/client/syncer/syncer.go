package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/client/client"
	"github.com/dmitrijs2005/drawersync/internal/client/store"
	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/logging"
	"github.com/dmitrijs2005/drawersync/internal/merge"
	"github.com/dmitrijs2005/drawersync/internal/timex"
)

// Policy selects how a key is reconciled when both sides hold a value with
// different timestamps.
type Policy string

const (
	// PolicyMerge reconciles with the merge function registered for the key.
	PolicyMerge Policy = "merge"
	// PolicyLastWriteWins overwrites the older side with the newer one.
	PolicyLastWriteWins Policy = "lww"
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyMerge):
		return PolicyMerge, nil
	case string(PolicyLastWriteWins), "last-write-wins":
		return PolicyLastWriteWins, nil
	default:
		return "", fmt.Errorf("unknown sync policy %q", s)
	}
}

const (
	DefaultPushDelay      = 500 * time.Millisecond
	DefaultResyncInterval = time.Minute
)

// Syncer orchestrates synchronization of a fixed set of keys.
type Syncer struct {
	local  store.Store
	remote client.Remote
	logger logging.Logger

	policy         Policy
	pushDelay      time.Duration
	resyncInterval time.Duration
	now            timex.Clock
	mergers        map[string]merge.Func
	keys           []string
	connectivity   ConnectivityObserver
	storeChanges   <-chan struct{}

	mu         sync.Mutex
	keyLocks   map[string]*sync.Mutex
	debouncers map[string]*Debouncer
	runCtx     context.Context
	online     bool
	lastSync   map[string]time.Time
	lastErr    error
	lastErrAt  time.Time
}

type Option func(*Syncer)

func WithPolicy(p Policy) Option {
	return func(s *Syncer) { s.policy = p }
}

func WithPushDelay(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.pushDelay = d
		}
	}
}

// WithResyncInterval sets the period of the full resync. Zero disables it.
func WithResyncInterval(d time.Duration) Option {
	return func(s *Syncer) { s.resyncInterval = d }
}

func WithClock(c timex.Clock) Option {
	return func(s *Syncer) {
		if c != nil {
			s.now = c
		}
	}
}

// WithMerger registers (or replaces) the merge function of key and adds the
// key to the synchronized set.
func WithMerger(key string, fn merge.Func) Option {
	return func(s *Syncer) { s.mergers[key] = fn }
}

// WithKeys sets the synchronized keys. Keys without a merger are always
// reconciled last-write-wins.
func WithKeys(keys ...string) Option {
	return func(s *Syncer) { s.keys = append([]string(nil), keys...) }
}

func WithConnectivity(o ConnectivityObserver) Option {
	return func(s *Syncer) { s.connectivity = o }
}

// WithStoreChanges makes Run schedule a push of every key on each value
// received from ch.
func WithStoreChanges(ch <-chan struct{}) Option {
	return func(s *Syncer) { s.storeChanges = ch }
}

func New(local store.Store, remote client.Remote, logger logging.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		local:          local,
		remote:         remote,
		logger:         logger.With("module", "syncer"),
		policy:         PolicyMerge,
		pushDelay:      DefaultPushDelay,
		resyncInterval: DefaultResyncInterval,
		now:            timex.NowMillis,
		mergers: map[string]merge.Func{
			common.ProfilesKey: merge.MergeProfiles,
			common.DaysKey:     merge.MergeDays,
		},
		keyLocks:   make(map[string]*sync.Mutex),
		debouncers: make(map[string]*Debouncer),
		lastSync:   make(map[string]time.Time),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.keys == nil {
		for k := range s.mergers {
			s.keys = append(s.keys, k)
		}
		sort.Strings(s.keys)
	}

	return s
}

// Keys returns the synchronized keys.
func (s *Syncer) Keys() []string {
	return append([]string(nil), s.keys...)
}

func (s *Syncer) Policy() Policy { return s.policy }

func (s *Syncer) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.keyLocks[key] = l
	}
	return l
}

// SyncKeyOnce runs one reconciliation round for key and reports whether it
// completed. Calls for the same key are serialized.
func (s *Syncer) SyncKeyOnce(ctx context.Context, key string) bool {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	log := s.logger.With("key", key)

	err := s.syncKey(ctx, key, log)
	switch {
	case err == nil:
		s.recordSuccess(key)
		return true
	case errors.Is(err, errConflict):
		log.Debug(ctx, "local value changed during sync, retrying later")
		s.ScheduleDebouncedPush(key)
		return false
	default:
		log.Warn(ctx, "sync failed", "error", err)
		s.recordFailure(err)
		return false
	}
}

var errConflict = errors.New("local value changed during sync")

func (s *Syncer) syncKey(ctx context.Context, key string, log logging.Logger) error {
	raw, _, err := s.local.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read local value: %w", err)
	}
	meta, _, err := s.local.GetMeta(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read local metadata: %w", err)
	}

	rv, missing, err := s.remote.Fetch(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			s.setOnline(false)
		}
		return fmt.Errorf("failed to fetch remote value: %w", err)
	}
	s.setOnline(true)

	switch {
	case missing:
		if raw == "" {
			return nil
		}
		ts := meta.UpdatedAt
		if ts <= 0 {
			ts = s.now()
		}
		log.Debug(ctx, "remote missing, pushing local", "updatedAt", ts)
		return s.push(ctx, key, raw, raw, raw, ts)

	case raw == "":
		log.Debug(ctx, "local empty, pulling remote", "updatedAt", rv.UpdatedAt)
		return s.adopt(ctx, key, raw, rv.Value, rv.UpdatedAt)

	case rv.UpdatedAt == meta.UpdatedAt:
		return nil
	}

	if fn, ok := s.mergers[key]; ok && s.policy == PolicyMerge {
		return s.reconcile(ctx, key, raw, meta, rv, fn, log)
	}

	if rv.UpdatedAt > meta.UpdatedAt {
		log.Debug(ctx, "remote newer, pulling", "local", meta.UpdatedAt, "remote", rv.UpdatedAt)
		return s.adopt(ctx, key, raw, rv.Value, rv.UpdatedAt)
	}

	log.Debug(ctx, "local newer, pushing", "local", meta.UpdatedAt, "remote", rv.UpdatedAt)
	return s.push(ctx, key, raw, raw, raw, meta.UpdatedAt)
}

// reconcile merges both sides and writes the result wherever it differs.
func (s *Syncer) reconcile(ctx context.Context, key, raw string, meta store.SyncMeta, rv client.RemoteValue, fn merge.Func, log logging.Logger) error {
	res := fn(raw, rv.Value, merge.WithNow(s.now))

	localValue := raw
	if res.LocalChanged {
		localValue = res.MergedRaw
	}

	log.Debug(ctx, "merged",
		"local", meta.UpdatedAt, "remote", rv.UpdatedAt,
		"localChanged", res.LocalChanged, "remoteChanged", res.RemoteChanged)

	if res.RemoteChanged {
		ts := timex.Monotonic(s.now(), max(meta.UpdatedAt, rv.UpdatedAt))
		return s.push(ctx, key, raw, res.MergedRaw, localValue, ts)
	}

	return s.adopt(ctx, key, raw, localValue, rv.UpdatedAt)
}

// push sends value to the server, then stores local together with the
// timestamp the server recorded.
func (s *Syncer) push(ctx context.Context, key, expected, value, local string, ts int64) error {
	serverTs, err := s.remote.Put(ctx, key, value, ts)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			s.setOnline(false)
		}
		return fmt.Errorf("failed to push: %w", err)
	}

	return s.adopt(ctx, key, expected, local, serverTs)
}

// adopt stores value with timestamp ts unless the local value moved away
// from expected in the meantime.
func (s *Syncer) adopt(ctx context.Context, key, expected, value string, ts int64) error {
	ok, err := s.local.SetIfUnchanged(ctx, key, expected, value, store.SyncMeta{UpdatedAt: ts})
	if err != nil {
		return fmt.Errorf("failed to write local value: %w", err)
	}
	if !ok {
		return errConflict
	}
	return nil
}

// SyncAllKeys runs SyncKeyOnce for every synchronized key and reports
// whether all of them completed.
func (s *Syncer) SyncAllKeys(ctx context.Context) bool {
	ok := true
	for _, k := range s.keys {
		if !s.SyncKeyOnce(ctx, k) {
			ok = false
		}
	}
	return ok
}

// ScheduleDebouncedPush schedules a sync of key after the push delay. A new
// call before the delay elapses restarts the timer.
func (s *Syncer) ScheduleDebouncedPush(key string) {
	s.mu.Lock()
	d, ok := s.debouncers[key]
	if !ok {
		d = NewDebouncer(s.pushDelay, func() {
			s.SyncKeyOnce(s.baseContext(), key)
		})
		s.debouncers[key] = d
	}
	s.mu.Unlock()

	d.Trigger()
}

func (s *Syncer) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runCtx != nil {
		return s.runCtx
	}
	return context.Background()
}

// Run performs a full resync and then keeps reacting to connectivity
// transitions, store changes and the resync ticker until ctx is done.
func (s *Syncer) Run(ctx context.Context) error {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	var conn <-chan bool
	if s.connectivity != nil {
		conn = s.connectivity.Subscribe()
	}

	s.logger.Info(ctx, "starting", "policy", s.policy, "keys", s.keys)
	s.SyncAllKeys(ctx)

	var tick <-chan time.Time
	if s.resyncInterval > 0 {
		ticker := time.NewTicker(s.resyncInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	changes := s.storeChanges

	for {
		select {
		case <-ctx.Done():
			s.cancelPending()
			s.logger.Info(ctx, "stopped")
			return ctx.Err()

		case up, ok := <-conn:
			if !ok {
				conn = nil
				continue
			}
			if up && !s.Online() {
				s.logger.Info(ctx, "server reachable, resyncing")
				s.setOnline(true)
				s.SyncAllKeys(ctx)
			} else if !up {
				s.setOnline(false)
			}

		case <-tick:
			s.SyncAllKeys(ctx)

		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			for _, k := range s.keys {
				s.ScheduleDebouncedPush(k)
			}
		}
	}
}

func (s *Syncer) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.debouncers {
		d.Cancel()
	}
}

func (s *Syncer) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *Syncer) setOnline(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = v
}

func (s *Syncer) recordSuccess(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSync[key] = time.UnixMilli(s.now())
}

func (s *Syncer) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.lastErrAt = time.UnixMilli(s.now())
}
