// Package merge reconciles a local and a remote copy of a synchronized
// document into one deterministic result.
//
// Merges are pure: they read nothing but their arguments, except for the
// clock used to stamp a default profile synthesized from nothing.
package merge

import (
	"sort"

	"github.com/dmitrijs2005/drawersync/internal/document"
	"github.com/dmitrijs2005/drawersync/internal/timex"
)

// Result is the outcome of merging two raw documents.
type Result struct {
	// Merged is the merged document as a generic JSON tree.
	Merged any
	// MergedRaw is the stable serialization of Merged.
	MergedRaw string
	// MergedUpdatedAt is the watermark of the merged document.
	MergedUpdatedAt int64
	// LocalChanged reports that the local copy differs from MergedRaw and
	// needs to be rewritten.
	LocalChanged bool
	// RemoteChanged reports the same for the remote copy.
	RemoteChanged bool
}

// Func is the signature shared by MergeProfiles and MergeDays.
type Func func(localRaw, remoteRaw string, opts ...Option) Result

type options struct {
	now timex.Clock
}

// Option tunes a merge.
type Option func(*options)

// WithNow overrides the clock used when a default profile has to be created
// and no timestamp exists in either input.
func WithNow(now timex.Clock) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: timex.NowMillis}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newResult compares the merged document with each side's normalized form,
// so a side that only differs in shape (missing defaults, unsorted keys) is
// not reported as changed.
func newResult(merged map[string]any, watermark int64, localCanon, remoteCanon string) Result {
	mergedRaw := document.StableStringify(merged)
	return Result{
		Merged:          merged,
		MergedRaw:       mergedRaw,
		MergedUpdatedAt: watermark,
		LocalChanged:    localCanon != mergedRaw,
		RemoteChanged:   remoteCanon != mergedRaw,
	}
}

// pickState prefers the primary side's state when it carries data.
func pickState(primary, secondary any) any {
	if document.IsMeaningful(primary) {
		return document.Clone(primary)
	}
	if document.IsMeaningful(secondary) {
		return document.Clone(secondary)
	}
	return nil
}

func unionKeys[V any](a, b map[string]V) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
