package merge

import (
	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/document"
)

// MergeDays merges two raw Days Documents. Entry scalars prefer local; day
// records are merged per date with the greater savedAt (ties to local) as
// primary. MergedUpdatedAt is the newest savedAt in the result.
func MergeDays(localRaw, remoteRaw string, _ ...Option) Result {
	local := document.NormalizeDays(document.ParseRaw(localRaw))
	remote := document.NormalizeDays(document.ParseRaw(remoteRaw))

	merged := MergeDaysDocuments(local, remote)

	return newResult(merged.Value(), merged.Watermark(), local.Raw(), remote.Raw())
}

// MergeDaysDocuments merges two normalized Days Documents.
func MergeDaysDocuments(local, remote document.DaysDocument) document.DaysDocument {
	out := document.NewDaysDocument()
	out.DeletedProfiles = document.UnionTombstones(local.DeletedProfiles, remote.DeletedProfiles)

	for _, id := range unionKeys(local.Entries, remote.Entries) {
		l, inLocal := local.Entries[id]
		r, inRemote := remote.Entries[id]

		var e document.DaysEntry
		switch {
		case inLocal && inRemote:
			e = mergeEntry(l, r)
		case inLocal:
			e = l.Clone()
		default:
			e = r.Clone()
		}

		if id != common.DefaultProfileID && document.Suppressed(out.DeletedProfiles[id], e.Watermark()) {
			continue
		}
		out.Entries[id] = e
	}

	document.PruneDaysTombstones(&out)
	return out
}

func mergeEntry(local, remote document.DaysEntry) document.DaysEntry {
	out := document.NewDaysEntry()

	for k, v := range remote.Extra {
		out.Extra[k] = document.Clone(v)
	}
	for k, v := range local.Extra {
		out.Extra[k] = document.Clone(v)
	}

	out.UpdatedAt = max(local.UpdatedAt, remote.UpdatedAt)
	out.LastVisitedDate = firstNonNil(local.LastVisitedDate, remote.LastVisitedDate)
	out.ActiveViewDateKey = firstNonNil(local.ActiveViewDateKey, remote.ActiveViewDateKey)
	out.EditUnlocked = firstNonNil(local.EditUnlocked, remote.EditUnlocked)

	for _, date := range unionKeys(local.Days, remote.Days) {
		l, inLocal := local.Days[date]
		r, inRemote := remote.Days[date]

		switch {
		case inLocal && inRemote:
			if r.SavedAt > l.SavedAt {
				out.Days[date] = mergeRecord(r, l)
			} else {
				out.Days[date] = mergeRecord(l, r)
			}
		case inLocal:
			out.Days[date] = l.Clone()
		default:
			out.Days[date] = r.Clone()
		}
	}
	return out
}

func mergeRecord(primary, secondary document.DayRecord) document.DayRecord {
	out := document.DayRecord{
		SavedAt: max(primary.SavedAt, secondary.SavedAt),
		Extra:   make(map[string]any, len(primary.Extra)+len(secondary.Extra)),
	}
	for k, v := range secondary.Extra {
		out.Extra[k] = document.Clone(v)
	}
	for k, v := range primary.Extra {
		out.Extra[k] = document.Clone(v)
	}

	switch {
	case document.IsMeaningful(primary.State):
		out.State = document.Clone(primary.State)
	case document.IsMeaningful(secondary.State):
		out.State = document.Clone(secondary.State)
	default:
		out.State = document.Clone(primary.State)
	}

	label := primary.Label
	if label == nil {
		label = secondary.Label
	}
	if label != nil {
		l := *label
		out.Label = &l
	}
	return out
}

func firstNonNil[T any](a, b *T) *T {
	p := a
	if p == nil {
		p = b
	}
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
