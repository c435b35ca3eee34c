// Package casing converts JSON object keys between the snake_case used on the
// EraLove wire protocol and the camelCase exposed to SDK callers. The transform
// walks decoded JSON trees; it never touches values or array element order.
package casing

import (
	"encoding/json"
	"strings"
	"unicode"
)

// CamelToSnake lower-cases each upper-case letter and prefixes it with an
// underscore, e.g. "anniversaryDate" -> "anniversary_date".
func CamelToSnake(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SnakeToCamel removes each underscore and upper-cases the letter that follows
// it, e.g. "anniversary_date" -> "anniversaryDate". A trailing underscore is
// preserved as-is since there is nothing to upper-case after it.
func SnakeToCamel(key string) string {
	if !strings.ContainsRune(key, '_') {
		return key
	}
	var b strings.Builder
	b.Grow(len(key))
	upperNext := false
	for i, r := range key {
		if r == '_' && i+1 < len(key) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CamelKeys deep-transforms every key of the decoded JSON value to camelCase.
// Maps and slices are rebuilt; any other value is returned unchanged.
func CamelKeys(v any) any {
	return transformKeys(v, SnakeToCamel)
}

// SnakeKeys deep-transforms every key of the decoded JSON value to snake_case.
func SnakeKeys(v any) any {
	return transformKeys(v, CamelToSnake)
}

func transformKeys(v any, convert func(string) string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, sub := range val {
			out[convert(key)] = transformKeys(sub, convert)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = transformKeys(val[i], convert)
		}
		return out
	default:
		return v
	}
}

// CamelBytes rewrites the keys of a raw JSON document to camelCase. Payloads
// that are not JSON objects or arrays pass through untouched, as do payloads
// that fail to parse; the boundary transform must never invent an error for a
// body the caller could otherwise use.
func CamelBytes(raw []byte) []byte {
	return transformBytes(raw, SnakeToCamel)
}

// SnakeBytes rewrites the keys of a raw JSON document to snake_case.
func SnakeBytes(raw []byte) []byte {
	return transformBytes(raw, CamelToSnake)
}

func transformBytes(raw []byte, convert func(string) string) []byte {
	trimmed := strings.TrimLeftFunc(string(raw), unicode.IsSpace)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return raw
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return raw
	}
	out, err := json.Marshal(transformKeys(decoded, convert))
	if err != nil {
		return raw
	}
	return out
}
