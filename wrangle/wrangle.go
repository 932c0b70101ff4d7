// Package wrangle holds small helpers for reshaping API payloads: batching
// ids, formatting query dates and walking nested JSON objects.
package wrangle

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ISOLayout is the timestamp format the search endpoints accept.
const ISOLayout = "2006-01-02T15:04:05Z"

// DateLayout is the default input layout for ISODate.
const DateLayout = "2006-01-02"

// Chunk splits s into consecutive slices of at most size elements. Only the
// last chunk may be shorter. A non-positive size returns nil.
func Chunk[T any](s []T, size int) [][]T {
	if size <= 0 || len(s) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(s)+size-1)/size)
	for start := 0; start < len(s); start += size {
		end := min(start+size, len(s))
		out = append(out, s[start:end:end])
	}
	return out
}

// ISODate parses value with layout (DateLayout when empty) and formats it in
// UTC as ISOLayout. Values without a zone are read as UTC.
func ISODate(value, layout string) (string, error) {
	if layout == "" {
		layout = DateLayout
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return "", fmt.Errorf("date %q does not match layout %q: %w", value, layout, err)
	}
	return t.UTC().Format(ISOLayout), nil
}

// Flatten collapses nested objects into a single level whose keys are the
// joined key paths, e.g. {"a":{"b":1}} becomes {"a.b":1}. Arrays are leaves.
func Flatten(m map[string]any, sep string) map[string]any {
	if sep == "" {
		sep = "."
	}
	out := make(map[string]any)
	flattenInto(out, "", sep, m)
	return out
}

func flattenInto(out map[string]any, prefix, sep string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + sep + k
		}
		if child, ok := v.(map[string]any); ok {
			flattenInto(out, key, sep, child)
			continue
		}
		out[key] = v
	}
}

// Paths returns every full key path in m, sorted so output is stable.
// An empty nested object contributes its own path.
func Paths(m map[string]any) [][]string {
	var out [][]string
	collectPaths(&out, nil, m)
	slices.SortFunc(out, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return out
}

func collectPaths(out *[][]string, prefix []string, m map[string]any) {
	for k, v := range m {
		path := append(slices.Clone(prefix), k)
		if child, ok := v.(map[string]any); ok && len(child) > 0 {
			collectPaths(out, path, child)
			continue
		}
		*out = append(*out, path)
	}
}

// Value walks keys through nested objects. It reports false when a key is
// missing or a non-object is reached before the path ends.
func Value(m map[string]any, keys ...string) (any, bool) {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[k]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Get is Value over raw JSON. Keys are matched literally, so dots and
// wildcards inside a key do not split it.
func Get(raw []byte, keys ...string) gjson.Result {
	if len(keys) == 0 {
		return gjson.ParseBytes(raw)
	}
	escaped := make([]string, len(keys))
	for i, k := range keys {
		escaped[i] = escapeKey(k)
	}
	return gjson.GetBytes(raw, strings.Join(escaped, "."))
}

func escapeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
