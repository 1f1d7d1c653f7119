package document

import (
	"regexp"
	"sort"
	"time"
)

// DaysTombstonesKey is the top-level key holding deletion tombstones in the
// Days Document. It is never treated as a profile id.
const DaysTombstonesKey = "__deletedProfiles"

// DateLayout is the format of day keys.
const DateLayout = "2006-01-02"

var dateKeyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDateKey reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDateKey(s string) bool {
	if !dateKeyRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DayRecord is a saved snapshot for one calendar date within one profile.
type DayRecord struct {
	// State is nil when the record carries no snapshot.
	State   any
	SavedAt int64
	Label   *string
	Extra   map[string]any
}

// DaysEntry is the per-profile part of the Days Document.
//
// UpdatedAt stamps edits that do not save a day (lastVisitedDate and the
// like), so they outrank an older deletion tombstone just as a newer savedAt
// does. It is 0 for entries written by clients that never stamp it.
type DaysEntry struct {
	UpdatedAt         int64
	LastVisitedDate   *string
	ActiveViewDateKey *string
	EditUnlocked      *bool
	Days              map[string]DayRecord
	Extra             map[string]any
}

// DaysDocument maps profile id to its saved days.
type DaysDocument struct {
	Entries         map[string]DaysEntry
	DeletedProfiles map[string]int64
}

// NewDaysDocument returns an empty document whose maps are allocated.
func NewDaysDocument() DaysDocument {
	return DaysDocument{
		Entries:         make(map[string]DaysEntry),
		DeletedProfiles: make(map[string]int64),
	}
}

// NewDaysEntry returns an entry with no saved days.
func NewDaysEntry() DaysEntry {
	return DaysEntry{
		Days:  make(map[string]DayRecord),
		Extra: make(map[string]any),
	}
}

// NormalizeDays coerces any parsed JSON value into a DaysDocument. Entries
// that are not objects are dropped.
func NormalizeDays(v any) DaysDocument {
	doc := NewDaysDocument()

	root, ok := asObject(v)
	if !ok {
		return doc
	}

	for id, raw := range root {
		if id == DaysTombstonesKey {
			doc.DeletedProfiles = coerceTombstones(raw)
			continue
		}
		entry, ok := asObject(raw)
		if !ok {
			continue
		}
		doc.Entries[id] = normalizeDaysEntry(entry)
	}
	return doc
}

func normalizeDaysEntry(m map[string]any) DaysEntry {
	e := NewDaysEntry()

	for k, val := range m {
		switch k {
		case "days":
			days, ok := asObject(val)
			if !ok {
				continue
			}
			for date, rec := range days {
				r, ok := asObject(rec)
				if !ok {
					continue
				}
				e.Days[date] = normalizeDayRecord(r)
			}
		case "updatedAt":
			e.UpdatedAt = CoerceMillis(val)
		case "lastVisitedDate":
			if s, ok := val.(string); ok {
				e.LastVisitedDate = &s
			} else if val != nil {
				e.Extra[k] = Clone(val)
			}
		case "_activeViewDateKey":
			if s, ok := val.(string); ok {
				e.ActiveViewDateKey = &s
			} else if val != nil {
				e.Extra[k] = Clone(val)
			}
		case "_editUnlocked":
			if b, ok := val.(bool); ok {
				e.EditUnlocked = &b
			} else if val != nil {
				e.Extra[k] = Clone(val)
			}
		default:
			e.Extra[k] = Clone(val)
		}
	}
	return e
}

func normalizeDayRecord(m map[string]any) DayRecord {
	r := DayRecord{
		SavedAt: CoerceMillis(m["savedAt"]),
		Extra:   make(map[string]any),
	}
	for k, val := range m {
		switch k {
		case "savedAt":
		case "state":
			r.State = Clone(val)
		case "label":
			if s, ok := val.(string); ok {
				r.Label = &s
			} else if val != nil {
				r.Extra[k] = Clone(val)
			}
		default:
			r.Extra[k] = Clone(val)
		}
	}
	return r
}

// Clone deep-copies the record.
func (r DayRecord) Clone() DayRecord {
	out := r
	out.State = Clone(r.State)
	if r.Label != nil {
		l := *r.Label
		out.Label = &l
	}
	out.Extra = cloneMap(r.Extra)
	if out.Extra == nil {
		out.Extra = make(map[string]any)
	}
	return out
}

// Value renders the record as a generic JSON object. A nil State is omitted.
func (r DayRecord) Value() map[string]any {
	out := make(map[string]any, len(r.Extra)+3)
	mergeExtra(out, r.Extra)
	out["savedAt"] = r.SavedAt
	if r.State != nil {
		out["state"] = Clone(r.State)
	}
	if r.Label != nil {
		out["label"] = *r.Label
	}
	return out
}

// Clone deep-copies the entry.
func (e DaysEntry) Clone() DaysEntry {
	out := NewDaysEntry()
	out.UpdatedAt = e.UpdatedAt
	out.LastVisitedDate = clonePtr(e.LastVisitedDate)
	out.ActiveViewDateKey = clonePtr(e.ActiveViewDateKey)
	out.EditUnlocked = clonePtr(e.EditUnlocked)
	for date, rec := range e.Days {
		out.Days[date] = rec.Clone()
	}
	mergeExtra(out.Extra, e.Extra)
	return out
}

// Value renders the entry as a generic JSON object.
func (e DaysEntry) Value() map[string]any {
	out := make(map[string]any, len(e.Extra)+5)
	mergeExtra(out, e.Extra)

	if e.UpdatedAt > 0 {
		out["updatedAt"] = e.UpdatedAt
	}

	days := make(map[string]any, len(e.Days))
	for date, rec := range e.Days {
		days[date] = rec.Value()
	}
	out["days"] = days

	if e.LastVisitedDate != nil {
		out["lastVisitedDate"] = *e.LastVisitedDate
	}
	if e.ActiveViewDateKey != nil {
		out["_activeViewDateKey"] = *e.ActiveViewDateKey
	}
	if e.EditUnlocked != nil {
		out["_editUnlocked"] = *e.EditUnlocked
	}
	return out
}

// Watermark returns the newest of the entry stamp and every savedAt, 0 for
// an unstamped entry with no days.
func (e DaysEntry) Watermark() int64 {
	w := e.UpdatedAt
	for _, rec := range e.Days {
		w = max(w, rec.SavedAt)
	}
	return w
}

// SortedDates returns the entry's date keys in ascending order.
func (e DaysEntry) SortedDates() []string {
	dates := make([]string, 0, len(e.Days))
	for d := range e.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Value renders the document as a generic JSON object.
func (d DaysDocument) Value() map[string]any {
	out := make(map[string]any, len(d.Entries)+1)
	for id, e := range d.Entries {
		if id == DaysTombstonesKey {
			continue
		}
		out[id] = e.Value()
	}
	if len(d.DeletedProfiles) > 0 {
		out[DaysTombstonesKey] = tombstonesValue(d.DeletedProfiles)
	}
	return out
}

// Raw returns the canonical JSON string of the document.
func (d DaysDocument) Raw() string {
	return StableStringify(d.Value())
}

// Watermark returns the newest entry watermark across the document.
func (d DaysDocument) Watermark() int64 {
	var w int64
	for _, e := range d.Entries {
		w = max(w, e.Watermark())
	}
	return w
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
