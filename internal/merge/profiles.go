package merge

import (
	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/document"
)

// MergeProfiles merges two raw Profiles Documents.
//
// Profiles present on one side only are taken verbatim. Profiles present on
// both sides are merged with the newer side (by updatedAt, ties to local) as
// primary. Tombstones from both sides are unioned and suppress any profile
// whose merged updatedAt is not newer than the deletion.
func MergeProfiles(localRaw, remoteRaw string, opts ...Option) Result {
	o := buildOptions(opts)

	local := document.NormalizeProfiles(document.ParseRaw(localRaw))
	remote := document.NormalizeProfiles(document.ParseRaw(remoteRaw))

	merged := MergeProfileDocuments(local, remote, o.now)

	return newResult(merged.Value(), merged.UpdatedAt, local.Raw(), remote.Raw())
}

// MergeProfileDocuments merges two normalized documents. now is consulted
// only when the default profile must be created and neither side carries a
// timestamp.
func MergeProfileDocuments(local, remote document.ProfilesDocument, now func() int64) document.ProfilesDocument {
	out := document.NewProfilesDocument()
	out.DeletedProfiles = document.UnionTombstones(local.DeletedProfiles, remote.DeletedProfiles)

	maxSeen := max(local.UpdatedAt, remote.UpdatedAt)

	for _, id := range unionKeys(local.Profiles, remote.Profiles) {
		l, inLocal := local.Profiles[id]
		r, inRemote := remote.Profiles[id]

		var p document.Profile
		switch {
		case inLocal && inRemote:
			if r.UpdatedAt > l.UpdatedAt {
				p = mergeProfile(r, l)
			} else {
				p = mergeProfile(l, r)
			}
		case inLocal:
			p = l.Clone()
		default:
			p = r.Clone()
		}

		maxSeen = max(maxSeen, p.UpdatedAt)

		if id != common.DefaultProfileID && document.Suppressed(out.DeletedProfiles[id], p.UpdatedAt) {
			continue
		}
		out.Profiles[id] = p
	}

	if _, ok := out.Profiles[common.DefaultProfileID]; !ok {
		ts := maxSeen
		if ts == 0 {
			ts = now()
		}
		out.Profiles[common.DefaultProfileID] = document.NewDefaultProfile(ts)
	}

	out.UpdatedAt = max(local.UpdatedAt, remote.UpdatedAt)
	for _, p := range out.Profiles {
		out.UpdatedAt = max(out.UpdatedAt, p.UpdatedAt)
	}

	switch {
	case hasProfile(out, local.ActiveID):
		out.ActiveID = local.ActiveID
	case hasProfile(out, remote.ActiveID):
		out.ActiveID = remote.ActiveID
	default:
		out.ActiveID = common.DefaultProfileID
	}

	for k, v := range remote.Extra {
		out.Extra[k] = document.Clone(v)
	}
	for k, v := range local.Extra {
		out.Extra[k] = document.Clone(v)
	}

	document.PruneProfileTombstones(&out)
	return out
}

func mergeProfile(primary, secondary document.Profile) document.Profile {
	out := document.Profile{
		Name:      primary.Name,
		State:     pickState(primary.State, secondary.State),
		Prefs:     make(map[string]any, len(primary.Prefs)+len(secondary.Prefs)),
		Theme:     primary.Theme,
		UpdatedAt: max(primary.UpdatedAt, secondary.UpdatedAt),
		Extra:     make(map[string]any, len(primary.Extra)+len(secondary.Extra)),
	}

	for k, v := range secondary.Prefs {
		out.Prefs[k] = document.Clone(v)
	}
	for k, v := range primary.Prefs {
		out.Prefs[k] = document.Clone(v)
	}
	for k, v := range secondary.Extra {
		out.Extra[k] = document.Clone(v)
	}
	for k, v := range primary.Extra {
		out.Extra[k] = document.Clone(v)
	}

	if out.Theme == "" {
		out.Theme = secondary.Theme
	}
	if out.Name == "" {
		out.Name = secondary.Name
	}
	if out.Name == "" {
		out.Name = document.DefaultProfileName
	}
	return out
}

func hasProfile(d document.ProfilesDocument, id string) bool {
	_, ok := d.Profiles[id]
	return ok
}
