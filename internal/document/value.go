package document

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseRaw decodes a JSON document. Empty input, invalid JSON and a literal
// null all yield nil, which callers treat as "document absent".
func ParseRaw(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil
	}
	return v
}

// IsMeaningful reports whether v carries data: non-nil and, when it is an
// object or array, non-empty.
func IsMeaningful(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// Clone deep-copies a generic JSON tree.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	default:
		return t
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// CoerceMillis converts a timestamp-ish value to non-negative integer epoch
// milliseconds. Anything absent, non-numeric, negative or non-finite is 0.
func CoerceMillis(v any) int64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			if n < 0 {
				return 0
			}
			return n
		}
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case float64:
		f = t
	case int64:
		f = float64(t)
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return 0
	}
	return int64(math.Floor(f))
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// coerceTombstones reads an id → deletion-millis map.
func coerceTombstones(v any) map[string]int64 {
	out := make(map[string]int64)
	m, ok := asObject(v)
	if !ok {
		return out
	}
	for id, ts := range m {
		out[id] = CoerceMillis(ts)
	}
	return out
}

func tombstonesValue(t map[string]int64) map[string]any {
	out := make(map[string]any, len(t))
	for id, ts := range t {
		out[id] = ts
	}
	return out
}

func mergeExtra(dst map[string]any, src map[string]any) {
	for k, v := range src {
		dst[k] = Clone(v)
	}
}
