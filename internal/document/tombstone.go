package document

import "github.com/dmitrijs2005/drawersync/internal/common"

// PruneProfileTombstones drops tombstones that must not exist: the default
// profile, non-positive timestamps, and ids that are still live profiles.
func PruneProfileTombstones(d *ProfilesDocument) {
	pruneTombstones(d.DeletedProfiles, func(id string) bool {
		_, live := d.Profiles[id]
		return live
	})
}

// PruneDaysTombstones applies the same rules to the Days Document, where an
// id is live when it still has an entry.
func PruneDaysTombstones(d *DaysDocument) {
	pruneTombstones(d.DeletedProfiles, func(id string) bool {
		_, live := d.Entries[id]
		return live
	})
}

func pruneTombstones(t map[string]int64, live func(id string) bool) {
	for id, ts := range t {
		if id == common.DefaultProfileID || ts <= 0 || live(id) {
			delete(t, id)
		}
	}
}

// UnionTombstones merges tombstone maps keeping the newest deletion per id.
func UnionTombstones(sets ...map[string]int64) map[string]int64 {
	out := make(map[string]int64)
	for _, set := range sets {
		for id, ts := range set {
			if ts > out[id] {
				out[id] = ts
			}
		}
	}
	return out
}

// Suppressed reports whether a tombstone at deletedAt outranks an entity last
// modified at updatedAt. Ties go to the deletion.
func Suppressed(deletedAt, updatedAt int64) bool {
	return deletedAt > 0 && deletedAt >= updatedAt
}

// DeleteProfile removes a profile from both documents and records a tombstone
// in each, so a stale copy elsewhere cannot bring it back through a merge.
// If the deleted profile was active, the default profile becomes active.
func DeleteProfile(profiles *ProfilesDocument, days *DaysDocument, id string, now int64) error {
	if id == common.DefaultProfileID {
		return common.ErrDefaultProfile
	}
	if _, ok := profiles.Profiles[id]; !ok {
		return common.ErrProfileNotFound
	}

	delete(profiles.Profiles, id)
	if profiles.DeletedProfiles == nil {
		profiles.DeletedProfiles = make(map[string]int64)
	}
	profiles.DeletedProfiles[id] = now
	profiles.UpdatedAt = max(profiles.UpdatedAt, now)
	EnsureDefault(profiles, now)

	delete(days.Entries, id)
	if days.DeletedProfiles == nil {
		days.DeletedProfiles = make(map[string]int64)
	}
	days.DeletedProfiles[id] = now

	return nil
}
