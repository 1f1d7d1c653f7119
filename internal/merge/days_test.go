package merge

import (
	"testing"

	"github.com/dmitrijs2005/drawersync/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergedDays(t *testing.T, r Result) document.DaysDocument {
	t.Helper()
	require.NotNil(t, r.Merged)
	return document.NormalizeDays(document.ParseRaw(r.MergedRaw))
}

func TestMergeDays_PerDateNewestWins(t *testing.T) {
	local := `{"default":{"days":{"2024-01-01":{"savedAt":10,"state":{"t":1}}}}}`
	remote := `{"default":{"days":{"2024-01-01":{"savedAt":5,"state":{"t":0}},"2024-01-02":{"savedAt":20,"state":{"t":9}}}}}`

	r := MergeDays(local, remote)

	assert.Equal(t,
		`{"default":{"days":{"2024-01-01":{"savedAt":10,"state":{"t":1}},"2024-01-02":{"savedAt":20,"state":{"t":9}}}}}`,
		r.MergedRaw)
	assert.Equal(t, int64(20), r.MergedUpdatedAt)
	assert.True(t, r.LocalChanged)
	assert.True(t, r.RemoteChanged)
}

func TestMergeDays_SavedAtIsMaxOfBothSides(t *testing.T) {
	local := `{"p":{"days":{"2024-03-01":{"savedAt":7},"2024-03-02":{"savedAt":30},"2024-03-03":{"savedAt":"12"}}}}`
	remote := `{"p":{"days":{"2024-03-01":{"savedAt":9},"2024-03-02":{"savedAt":3},"2024-03-03":{"savedAt":12.9}}}}`

	l := document.NormalizeDays(document.ParseRaw(local))
	rm := document.NormalizeDays(document.ParseRaw(remote))
	doc := mergedDays(t, MergeDays(local, remote))

	for date, rec := range doc.Entries["p"].Days {
		want := max(l.Entries["p"].Days[date].SavedAt, rm.Entries["p"].Days[date].SavedAt)
		assert.Equal(t, want, rec.SavedAt, date)
	}
}

func TestMergeDays_Idempotent(t *testing.T) {
	x := `{"__deletedProfiles":{"gone":3},"default":{"_activeViewDateKey":"2024-01-02","_editUnlocked":false,` +
		`"days":{"2024-01-01":{"label":"open","savedAt":10,"state":{"t":1}},"2024-01-02":{"savedAt":11}},"lastVisitedDate":"2024-01-02"}}`

	r := MergeDays(x, x)

	assert.Equal(t, x, r.MergedRaw)
	assert.False(t, r.LocalChanged)
	assert.False(t, r.RemoteChanged)
	assert.Equal(t, int64(11), r.MergedUpdatedAt)
}

func TestMergeDays_Converges(t *testing.T) {
	a := `{"a":{"days":{"2024-01-01":{"savedAt":4,"state":{"x":1}}}},"shared":{"lastVisitedDate":"2024-01-05","days":{"2024-01-05":{"savedAt":50,"state":{}}}}}`
	b := `{"b":{"days":{"2024-01-01":{"savedAt":8}}},"shared":{"_editUnlocked":true,"days":{"2024-01-05":{"savedAt":40,"state":{"y":2},"label":"b"}}}}`

	first := MergeDays(a, b)
	second := MergeDays(first.MergedRaw, b)

	assert.Equal(t, first.MergedRaw, second.MergedRaw)
	assert.False(t, second.LocalChanged)

	third := MergeDays(first.MergedRaw, first.MergedRaw)
	assert.False(t, third.LocalChanged)
	assert.False(t, third.RemoteChanged)
}

func TestMergeDays_RecordStatePreference(t *testing.T) {
	tests := []struct {
		name      string
		primary   string
		secondary string
		want      string
	}{
		{name: "primary meaningful", primary: `"state":{"a":1},`, secondary: `"state":{"b":2},`, want: `{"a":1}`},
		{name: "primary empty keeps older data", primary: `"state":{},`, secondary: `"state":{"b":2},`, want: `{"b":2}`},
		{name: "primary absent keeps older data", primary: ``, secondary: `"state":{"b":2},`, want: `{"b":2}`},
		{name: "both placeholders keep primary", primary: `"state":{},`, secondary: `"state":[],`, want: `{}`},
		{name: "primary absent secondary placeholder", primary: ``, secondary: `"state":[],`, want: `null`},
		{name: "primary null secondary placeholder", primary: `"state":null,`, secondary: `"state":{},`, want: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := `{"p":{"days":{"2024-01-01":{` + tt.primary + `"savedAt":20}}}}`
			remote := `{"p":{"days":{"2024-01-01":{` + tt.secondary + `"savedAt":10}}}}`

			rec := mergedDays(t, MergeDays(local, remote)).Entries["p"].Days["2024-01-01"]
			assert.Equal(t, tt.want, document.StableStringify(rec.State))
			assert.Equal(t, int64(20), rec.SavedAt)
		})
	}
}

func TestMergeDays_LabelFallsBackToSecondary(t *testing.T) {
	local := `{"p":{"days":{"2024-01-01":{"savedAt":2}}}}`
	remote := `{"p":{"days":{"2024-01-01":{"savedAt":1,"label":"closing"}}}}`

	rec := mergedDays(t, MergeDays(local, remote)).Entries["p"].Days["2024-01-01"]
	require.NotNil(t, rec.Label)
	assert.Equal(t, "closing", *rec.Label)
}

func TestMergeDays_EntryScalarsPreferLocal(t *testing.T) {
	local := `{"p":{"_editUnlocked":false,"days":{}}}`
	remote := `{"p":{"_editUnlocked":true,"lastVisitedDate":"2024-02-02","_activeViewDateKey":"2024-02-01","days":{}}}`

	e := mergedDays(t, MergeDays(local, remote)).Entries["p"]

	require.NotNil(t, e.EditUnlocked)
	assert.False(t, *e.EditUnlocked)
	require.NotNil(t, e.LastVisitedDate)
	assert.Equal(t, "2024-02-02", *e.LastVisitedDate)
	require.NotNil(t, e.ActiveViewDateKey)
	assert.Equal(t, "2024-02-01", *e.ActiveViewDateKey)
}

func TestMergeDays_EmptyInputs(t *testing.T) {
	r := MergeDays("", "")
	assert.Equal(t, `{}`, r.MergedRaw)
	assert.Zero(t, r.MergedUpdatedAt)
	assert.False(t, r.LocalChanged)
	assert.False(t, r.RemoteChanged)
}

func TestMergeDays_Tombstones(t *testing.T) {
	local := `{"__deletedProfiles":{"gone":1000},"default":{"days":{}}}`
	remoteWith := func(savedAt string) string {
		return `{"default":{"days":{}},"gone":{"days":{"2024-01-01":{"savedAt":` + savedAt + `,"state":{"n":1}}}}}`
	}

	t.Run("newer day resurrects", func(t *testing.T) {
		doc := mergedDays(t, MergeDays(local, remoteWith("1500")))
		assert.Contains(t, doc.Entries, "gone")
		assert.Empty(t, doc.DeletedProfiles)
	})

	t.Run("stale entry stays deleted", func(t *testing.T) {
		r := MergeDays(local, remoteWith("900"))
		doc := mergedDays(t, r)

		assert.NotContains(t, doc.Entries, "gone")
		assert.Equal(t, map[string]int64{"gone": 1000}, doc.DeletedProfiles)
		assert.False(t, r.LocalChanged)
		assert.True(t, r.RemoteChanged)
	})

	t.Run("unstamped entry without days stays deleted", func(t *testing.T) {
		doc := mergedDays(t, MergeDays(local, `{"gone":{"lastVisitedDate":"2024-01-01","days":{}}}`))
		assert.NotContains(t, doc.Entries, "gone")
	})
}

func TestMergeDays_RecreatedProfileOutlivesRemoteTombstone(t *testing.T) {
	// p was deleted at 1000 and re-created; visiting a date stamped the entry
	// at 1200 and pruned the local tombstone. The server still has the
	// tombstone.
	local := `{"default":{"days":{}},"p":{"days":{},"lastVisitedDate":"2024-02-01","updatedAt":1200}}`
	remote := `{"__deletedProfiles":{"p":1000},"default":{"days":{}}}`

	r := MergeDays(local, remote)
	doc := mergedDays(t, r)

	require.Contains(t, doc.Entries, "p")
	require.NotNil(t, doc.Entries["p"].LastVisitedDate)
	assert.Equal(t, "2024-02-01", *doc.Entries["p"].LastVisitedDate)
	assert.Equal(t, int64(1200), doc.Entries["p"].UpdatedAt)
	assert.Empty(t, doc.DeletedProfiles)
	assert.Equal(t, int64(1200), r.MergedUpdatedAt)
	assert.False(t, r.LocalChanged)
	assert.True(t, r.RemoteChanged)

	// the same tombstone still wins over an older stamp
	stale := `{"default":{"days":{}},"p":{"days":{},"lastVisitedDate":"2024-02-01","updatedAt":900}}`
	doc = mergedDays(t, MergeDays(stale, remote))
	assert.NotContains(t, doc.Entries, "p")
	assert.Equal(t, map[string]int64{"p": 1000}, doc.DeletedProfiles)
}

func TestMergeDays_EntryStampIsMaxOfBothSides(t *testing.T) {
	local := `{"p":{"days":{},"updatedAt":5}}`
	remote := `{"p":{"days":{},"updatedAt":9}}`

	doc := mergedDays(t, MergeDays(local, remote))
	assert.Equal(t, int64(9), doc.Entries["p"].UpdatedAt)
}
