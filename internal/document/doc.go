// Package document defines the two synchronized documents of a drawer
// counting client, the Profiles Document and the Days Document, together with
// the normalizer that coerces arbitrary parsed JSON into their canonical shape.
//
// Documents travel as JSON strings. ParseRaw decodes them into a generic tree
// (map[string]any, []any, string, json.Number, bool, nil); NormalizeProfiles
// and NormalizeDays turn that tree into typed values; Value turns a typed value
// back into a generic tree and StableStringify serializes it with sorted keys
// at every level, which is the canonical on-disk and on-wire form.
//
// Opaque payloads (profile and day "state") are never interpreted beyond
// IsMeaningful: present and, for collections, non-empty.
//
// Normalization never fails and never mutates its input. Unknown keys are
// carried in Extra maps so documents written by newer clients survive a round
// trip through older ones.
package document
