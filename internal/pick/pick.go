// Package pick extracts typed values from loosely-typed JSON trees. The CRM
// has no stable response schema, so field lookups like "Amount.Value" live
// here instead of being inlined throughout the business logic.
package pick

import (
	"strconv"
	"strings"
	"time"
)

// Map descends the given path and returns the map at the end of it.
func Map(v any, path ...string) (map[string]any, bool) {
	cur := v
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	m, ok := cur.(map[string]any)
	return m, ok
}

// Slice returns the array at the given path.
func Slice(v any, path ...string) ([]any, bool) {
	cur, ok := value(v, path)
	if !ok {
		return nil, false
	}
	s, ok := cur.([]any)
	return s, ok
}

// String returns the string at the given path, trimmed. Numeric values are
// rendered to their string form.
func String(v any, path ...string) string {
	cur, ok := value(v, path)
	if !ok {
		return ""
	}
	switch t := cur.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the number at the given path. JSON numbers decode to float64;
// numeric strings are parsed as a fallback.
func Float(v any, path ...string) (float64, bool) {
	cur, ok := value(v, path)
	if !ok {
		return 0, false
	}
	switch t := cur.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Bool interprets truthy values at the given path: real booleans, the strings
// "true"/"false" in any case, and the literal string "yes".
func Bool(v any, path ...string) bool {
	cur, ok := value(v, path)
	if !ok {
		return false
	}
	switch t := cur.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "yes"
	default:
		return false
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time parses the calendar date or timestamp at the given path. An absent or
// unparseable value yields ok=false, never a zero-value surprise.
func Time(v any, path ...string) (time.Time, bool) {
	raw := String(v, path...)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func value(v any, path []string) (any, bool) {
	if len(path) == 0 {
		return v, v != nil
	}
	parent, ok := Map(v, path[:len(path)-1]...)
	if !ok {
		return nil, false
	}
	cur, ok := parent[path[len(path)-1]]
	if !ok || cur == nil {
		return nil, false
	}
	return cur, true
}
