package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/drawersync/internal/client/store"
	"github.com/dmitrijs2005/drawersync/internal/document"
	"github.com/dmitrijs2005/drawersync/internal/timex"
)

// Pusher is notified after every local write. *syncer.Syncer implements it.
type Pusher interface {
	ScheduleDebouncedPush(key string)
}

var profileIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidProfileID reports whether id can be used as a profile id.
func ValidProfileID(id string) bool {
	return profileIDRe.MatchString(id) && id != document.DaysTombstonesKey
}

// persister is shared by both services.
type persister struct {
	store  store.Store
	pusher Pusher
	now    timex.Clock
}

func (p persister) read(ctx context.Context, key string) (any, store.SyncMeta, error) {
	raw, _, err := p.store.Get(ctx, key)
	if err != nil {
		return nil, store.SyncMeta{}, fmt.Errorf("failed to read %s: %w", key, err)
	}
	meta, _, err := p.store.GetMeta(ctx, key)
	if err != nil {
		return nil, store.SyncMeta{}, fmt.Errorf("failed to read %s metadata: %w", key, err)
	}
	return document.ParseRaw(raw), meta, nil
}

func (p persister) loadProfiles(ctx context.Context, key string) (document.ProfilesDocument, store.SyncMeta, error) {
	v, meta, err := p.read(ctx, key)
	if err != nil {
		return document.ProfilesDocument{}, meta, err
	}
	doc := document.NormalizeProfiles(v)
	document.EnsureDefault(&doc, 0)
	return doc, meta, nil
}

func (p persister) loadDays(ctx context.Context, key string) (document.DaysDocument, store.SyncMeta, error) {
	v, meta, err := p.read(ctx, key)
	if err != nil {
		return document.DaysDocument{}, meta, err
	}
	return document.NormalizeDays(v), meta, nil
}

// stamp returns a timestamp newer than anything already recorded.
func (p persister) stamp(prev ...int64) int64 {
	var floor int64
	for _, v := range prev {
		floor = max(floor, v)
	}
	return timex.Monotonic(p.now(), floor)
}

func (p persister) saveProfiles(ctx context.Context, key string, doc document.ProfilesDocument, ts int64) error {
	doc.UpdatedAt = doc.Watermark()
	document.PruneProfileTombstones(&doc)
	return p.write(ctx, key, doc.Raw(), ts)
}

func (p persister) saveDays(ctx context.Context, key string, doc document.DaysDocument, ts int64) error {
	document.PruneDaysTombstones(&doc)
	return p.write(ctx, key, doc.Raw(), ts)
}

func (p persister) write(ctx context.Context, key, raw string, ts int64) error {
	if err := p.store.SetWithMeta(ctx, key, raw, store.SyncMeta{UpdatedAt: ts}); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	if p.pusher != nil {
		p.pusher.ScheduleDebouncedPush(key)
	}
	return nil
}
