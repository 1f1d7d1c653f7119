package services

import (
	"context"

	"github.com/dmitrijs2005/drawersync/internal/client/store"
	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/document"
	"github.com/dmitrijs2005/drawersync/internal/timex"
)

// DaySummary describes one saved day without its state.
type DaySummary struct {
	Date    string
	Label   string
	SavedAt int64
}

// DayService manages the Days Document. Days belong to an existing profile.
type DayService interface {
	Save(ctx context.Context, profileID, date string, state any, label *string) error
	Get(ctx context.Context, profileID, date string) (document.DayRecord, error)
	List(ctx context.Context, profileID string) ([]DaySummary, error)
	SetLastVisited(ctx context.Context, profileID, date string) error
}

type dayService struct {
	persister
}

func NewDayService(st store.Store, pusher Pusher, now timex.Clock) DayService {
	if now == nil {
		now = timex.NowMillis
	}
	return &dayService{persister{store: st, pusher: pusher, now: now}}
}

func (s *dayService) requireProfile(ctx context.Context, id string) error {
	profiles, _, err := s.loadProfiles(ctx, common.ProfilesKey)
	if err != nil {
		return err
	}
	if _, ok := profiles.Profiles[id]; !ok {
		return common.ErrProfileNotFound
	}
	return nil
}

// edit loads the entry of profileID (creating it when absent), applies fn
// and saves the document.
func (s *dayService) edit(ctx context.Context, profileID string, fn func(e *document.DaysEntry, ts int64)) error {
	if err := s.requireProfile(ctx, profileID); err != nil {
		return err
	}

	doc, meta, err := s.loadDays(ctx, common.DaysKey)
	if err != nil {
		return err
	}

	entry, ok := doc.Entries[profileID]
	if ok {
		entry = entry.Clone()
	} else {
		entry = document.NewDaysEntry()
	}

	ts := s.stamp(meta.UpdatedAt, doc.Watermark(), doc.DeletedProfiles[profileID])
	fn(&entry, ts)
	doc.Entries[profileID] = entry

	return s.saveDays(ctx, common.DaysKey, doc, ts)
}

func (s *dayService) Save(ctx context.Context, profileID, date string, state any, label *string) error {
	if !document.ValidDateKey(date) {
		return common.ErrInvalidDate
	}

	return s.edit(ctx, profileID, func(e *document.DaysEntry, ts int64) {
		rec, ok := e.Days[date]
		if !ok {
			rec = document.DayRecord{Extra: make(map[string]any)}
		}
		rec.State = document.Clone(state)
		rec.SavedAt = ts
		if label != nil {
			l := *label
			rec.Label = &l
		}
		e.Days[date] = rec
	})
}

func (s *dayService) SetLastVisited(ctx context.Context, profileID, date string) error {
	if !document.ValidDateKey(date) {
		return common.ErrInvalidDate
	}

	return s.edit(ctx, profileID, func(e *document.DaysEntry, ts int64) {
		d := date
		e.LastVisitedDate = &d
		e.UpdatedAt = ts
	})
}

func (s *dayService) Get(ctx context.Context, profileID, date string) (document.DayRecord, error) {
	doc, _, err := s.loadDays(ctx, common.DaysKey)
	if err != nil {
		return document.DayRecord{}, err
	}
	rec, ok := doc.Entries[profileID].Days[date]
	if !ok {
		return document.DayRecord{}, common.ErrNotFound
	}
	return rec, nil
}

func (s *dayService) List(ctx context.Context, profileID string) ([]DaySummary, error) {
	doc, _, err := s.loadDays(ctx, common.DaysKey)
	if err != nil {
		return nil, err
	}

	entry := doc.Entries[profileID]
	out := make([]DaySummary, 0, len(entry.Days))
	for _, date := range entry.SortedDates() {
		rec := entry.Days[date]
		ds := DaySummary{Date: date, SavedAt: rec.SavedAt}
		if rec.Label != nil {
			ds.Label = *rec.Label
		}
		out = append(out, ds)
	}
	return out, nil
}
