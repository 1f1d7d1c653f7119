package document

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// StableStringify serializes a generic JSON tree with object keys sorted at
// every level and without HTML escaping. Two trees holding the same data
// always produce the same string.
func StableStringify(v any) string {
	var sb strings.Builder
	writeStable(&sb, v)
	return sb.String()
}

func writeStable(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		sb.WriteString(strconv.FormatBool(t))
	case json.Number:
		sb.WriteString(t.String())
	case string:
		writeString(sb, t)
	case int:
		sb.WriteString(strconv.Itoa(t))
	case int64:
		sb.WriteString(strconv.FormatInt(t, 10))
	case float64:
		b, err := json.Marshal(t)
		if err != nil {
			sb.WriteString("null")
			return
		}
		sb.Write(b)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeString(sb, k)
			sb.WriteByte(':')
			writeStable(sb, t[k])
		}
		sb.WriteByte('}')
	case []any:
		sb.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeStable(sb, item)
		}
		sb.WriteByte(']')
	default:
		// Foreign types (typed structs, typed maps) are routed through JSON
		// once so they reach the generic tree.
		b, err := json.Marshal(t)
		if err != nil {
			sb.WriteString("null")
			return
		}
		writeStable(sb, ParseRaw(string(b)))
	}
}

func writeString(sb *strings.Builder, s string) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	sb.Write(bytes.TrimRight(buf.Bytes(), "\n"))
}
