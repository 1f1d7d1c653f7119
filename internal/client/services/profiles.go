package services

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/drawersync/internal/client/store"
	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/document"
	"github.com/dmitrijs2005/drawersync/internal/timex"
)

// ProfileInfo is a profile together with its id.
type ProfileInfo struct {
	ID     string
	Active bool
	document.Profile
}

// ProfileService manages the Profiles Document.
//
// Theme, preference and state changes apply to the active profile. Delete
// also drops the profile's saved days and tombstones it in both documents.
type ProfileService interface {
	List(ctx context.Context) ([]ProfileInfo, error)
	Active(ctx context.Context) (ProfileInfo, error)
	SetActive(ctx context.Context, id string) error
	Create(ctx context.Context, id, name string) error
	Rename(ctx context.Context, id, name string) error
	SetTheme(ctx context.Context, theme string) error
	SetPref(ctx context.Context, key string, value any) error
	SaveState(ctx context.Context, state any) error
	Delete(ctx context.Context, id string) error
}

type profileService struct {
	persister
}

func NewProfileService(st store.Store, pusher Pusher, now timex.Clock) ProfileService {
	if now == nil {
		now = timex.NowMillis
	}
	return &profileService{persister{store: st, pusher: pusher, now: now}}
}

func (s *profileService) load(ctx context.Context) (document.ProfilesDocument, store.SyncMeta, error) {
	return s.loadProfiles(ctx, common.ProfilesKey)
}

func (s *profileService) List(ctx context.Context) ([]ProfileInfo, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProfileInfo, 0, len(doc.Profiles))
	for id, p := range doc.Profiles {
		out = append(out, ProfileInfo{ID: id, Active: id == doc.ActiveID, Profile: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *profileService) Active(ctx context.Context) (ProfileInfo, error) {
	doc, _, err := s.load(ctx)
	if err != nil {
		return ProfileInfo{}, err
	}
	return ProfileInfo{ID: doc.ActiveID, Active: true, Profile: doc.Profiles[doc.ActiveID]}, nil
}

func (s *profileService) SetActive(ctx context.Context, id string) error {
	doc, meta, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := doc.Profiles[id]; !ok {
		return common.ErrProfileNotFound
	}

	ts := s.stamp(meta.UpdatedAt, doc.Watermark())
	doc.ActiveID = id
	doc.UpdatedAt = ts
	return s.saveProfiles(ctx, common.ProfilesKey, doc, ts)
}

func (s *profileService) Create(ctx context.Context, id, name string) error {
	if !ValidProfileID(id) {
		return common.ErrInvalidKey
	}

	doc, meta, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := doc.Profiles[id]; ok {
		return common.ErrProfileExists
	}
	if name == "" {
		name = id
	}

	ts := s.stamp(meta.UpdatedAt, doc.Watermark())
	doc.Profiles[id] = document.Profile{
		Name:      name,
		Prefs:     make(map[string]any),
		UpdatedAt: ts,
		Extra:     make(map[string]any),
	}
	return s.saveProfiles(ctx, common.ProfilesKey, doc, ts)
}

func (s *profileService) Rename(ctx context.Context, id, name string) error {
	if name == "" {
		return common.ErrInvalidPayload
	}
	return s.update(ctx, id, func(p *document.Profile) error {
		p.Name = name
		return nil
	})
}

func (s *profileService) SetTheme(ctx context.Context, theme string) error {
	if !document.ValidTheme(theme) {
		return common.ErrInvalidTheme
	}
	return s.update(ctx, "", func(p *document.Profile) error {
		p.Theme = theme
		return nil
	})
}

func (s *profileService) SetPref(ctx context.Context, key string, value any) error {
	if key == "" {
		return common.ErrInvalidKey
	}
	return s.update(ctx, "", func(p *document.Profile) error {
		p.Prefs[key] = document.Clone(value)
		return nil
	})
}

func (s *profileService) SaveState(ctx context.Context, state any) error {
	return s.update(ctx, "", func(p *document.Profile) error {
		p.State = document.Clone(state)
		return nil
	})
}

// update applies fn to profile id, or to the active profile when id is "".
func (s *profileService) update(ctx context.Context, id string, fn func(p *document.Profile) error) error {
	doc, meta, err := s.load(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		id = doc.ActiveID
	}

	p, ok := doc.Profiles[id]
	if !ok {
		return common.ErrProfileNotFound
	}
	p = p.Clone()
	if err := fn(&p); err != nil {
		return err
	}

	ts := s.stamp(meta.UpdatedAt, doc.Watermark())
	p.UpdatedAt = ts
	doc.Profiles[id] = p
	return s.saveProfiles(ctx, common.ProfilesKey, doc, ts)
}

func (s *profileService) Delete(ctx context.Context, id string) error {
	profiles, pmeta, err := s.load(ctx)
	if err != nil {
		return err
	}
	days, dmeta, err := s.loadDays(ctx, common.DaysKey)
	if err != nil {
		return err
	}

	ts := s.stamp(pmeta.UpdatedAt, dmeta.UpdatedAt, profiles.Watermark(), days.Watermark())
	if err := document.DeleteProfile(&profiles, &days, id, ts); err != nil {
		return err
	}

	if err := s.saveProfiles(ctx, common.ProfilesKey, profiles, ts); err != nil {
		return err
	}
	return s.saveDays(ctx, common.DaysKey, days, ts)
}
