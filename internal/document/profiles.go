package document

import (
	"encoding/json"

	"github.com/dmitrijs2005/drawersync/internal/common"
)

// Theme values understood by clients. Other strings are preserved as-is.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// DefaultProfileName is used when a default profile has to be synthesized.
const DefaultProfileName = "Default"

// Profile is one named drawer-counting context, e.g. a single register.
type Profile struct {
	Name string
	// State is the opaque drawer-input snapshot, possibly nil.
	State any
	Prefs map[string]any
	// Theme is "" when the profile does not set one.
	Theme string
	// UpdatedAt is bumped on every local mutation of the profile.
	UpdatedAt int64
	Extra     map[string]any
}

// ProfilesDocument is the root of the synchronized profiles key.
type ProfilesDocument struct {
	Profiles map[string]Profile
	ActiveID string
	// UpdatedAt is the document watermark: the max timestamp it contains.
	UpdatedAt int64
	// DeletedProfiles maps profile id to deletion time (tombstones).
	DeletedProfiles map[string]int64
	Extra           map[string]any
}

// NewProfilesDocument returns an empty document whose maps are allocated.
func NewProfilesDocument() ProfilesDocument {
	return ProfilesDocument{
		Profiles:        make(map[string]Profile),
		ActiveID:        common.DefaultProfileID,
		DeletedProfiles: make(map[string]int64),
		Extra:           make(map[string]any),
	}
}

// NormalizeProfiles coerces any parsed JSON value into a ProfilesDocument.
// Non-object input yields an empty document. The default profile is not
// synthesized here, see EnsureDefault.
func NormalizeProfiles(v any) ProfilesDocument {
	doc := NewProfilesDocument()

	root, ok := asObject(v)
	if !ok {
		return doc
	}

	for k, val := range root {
		switch k {
		case "profiles", "activeId", "updatedAt":
		case "deletedProfiles":
			doc.DeletedProfiles = coerceTombstones(val)
		default:
			doc.Extra[k] = Clone(val)
		}
	}

	switch id := root["activeId"].(type) {
	case string:
		if id != "" {
			doc.ActiveID = id
		}
	case json.Number:
		doc.ActiveID = id.String()
	}

	doc.UpdatedAt = CoerceMillis(root["updatedAt"])

	if profiles, ok := asObject(root["profiles"]); ok {
		for id, raw := range profiles {
			entry, ok := asObject(raw)
			if !ok {
				continue
			}
			doc.Profiles[id] = normalizeProfile(id, entry)
		}
	}

	return doc
}

func normalizeProfile(id string, m map[string]any) Profile {
	p := Profile{
		Name:      id,
		Prefs:     make(map[string]any),
		UpdatedAt: CoerceMillis(m["updatedAt"]),
		Extra:     make(map[string]any),
	}

	for k, val := range m {
		switch k {
		case "updatedAt":
		case "name":
			if s, ok := val.(string); ok && s != "" {
				p.Name = s
			}
		case "state":
			p.State = Clone(val)
		case "prefs":
			if prefs, ok := asObject(val); ok {
				p.Prefs = cloneMap(prefs)
			}
		case "theme":
			if s, ok := val.(string); ok {
				p.Theme = s
			} else if val != nil {
				p.Extra[k] = Clone(val)
			}
		default:
			p.Extra[k] = Clone(val)
		}
	}
	return p
}

// Clone deep-copies the profile.
func (p Profile) Clone() Profile {
	out := p
	out.State = Clone(p.State)
	out.Prefs = cloneMap(p.Prefs)
	if out.Prefs == nil {
		out.Prefs = make(map[string]any)
	}
	out.Extra = cloneMap(p.Extra)
	if out.Extra == nil {
		out.Extra = make(map[string]any)
	}
	return out
}

// Value renders the profile as a generic JSON object.
func (p Profile) Value() map[string]any {
	out := make(map[string]any, len(p.Extra)+5)
	mergeExtra(out, p.Extra)

	prefs := cloneMap(p.Prefs)
	if prefs == nil {
		prefs = make(map[string]any)
	}

	out["name"] = p.Name
	out["state"] = Clone(p.State)
	out["prefs"] = prefs
	out["updatedAt"] = p.UpdatedAt
	if p.Theme != "" {
		out["theme"] = p.Theme
	}
	return out
}

// Value renders the document as a generic JSON object.
func (d ProfilesDocument) Value() map[string]any {
	out := make(map[string]any, len(d.Extra)+4)
	mergeExtra(out, d.Extra)

	profiles := make(map[string]any, len(d.Profiles))
	for id, p := range d.Profiles {
		profiles[id] = p.Value()
	}

	out["profiles"] = profiles
	out["activeId"] = d.ActiveID
	out["updatedAt"] = d.UpdatedAt
	if len(d.DeletedProfiles) > 0 {
		out["deletedProfiles"] = tombstonesValue(d.DeletedProfiles)
	}
	return out
}

// Raw returns the canonical JSON string of the document.
func (d ProfilesDocument) Raw() string {
	return StableStringify(d.Value())
}

// Watermark returns the max of the document's own updatedAt, every profile
// updatedAt and every tombstone.
func (d ProfilesDocument) Watermark() int64 {
	w := d.UpdatedAt
	for _, p := range d.Profiles {
		w = max(w, p.UpdatedAt)
	}
	for _, ts := range d.DeletedProfiles {
		w = max(w, ts)
	}
	return w
}

// EnsureDefault restores the document invariants: a "default" profile exists
// and ActiveID resolves. A synthesized default profile is stamped with ts.
// It reports whether the document was modified.
func EnsureDefault(d *ProfilesDocument, ts int64) bool {
	changed := false
	if d.Profiles == nil {
		d.Profiles = make(map[string]Profile)
	}
	if _, ok := d.Profiles[common.DefaultProfileID]; !ok {
		d.Profiles[common.DefaultProfileID] = NewDefaultProfile(ts)
		changed = true
	}
	if _, ok := d.Profiles[d.ActiveID]; !ok {
		d.ActiveID = common.DefaultProfileID
		changed = true
	}
	return changed
}

// NewDefaultProfile builds the profile synthesized when "default" is missing.
func NewDefaultProfile(ts int64) Profile {
	return Profile{
		Name:      DefaultProfileName,
		Prefs:     make(map[string]any),
		UpdatedAt: ts,
		Extra:     make(map[string]any),
	}
}

// ValidTheme reports whether t is one of the themes clients render.
func ValidTheme(t string) bool {
	switch t {
	case ThemeSystem, ThemeLight, ThemeDark:
		return true
	}
	return false
}
