package shared

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Raw is a loosely typed JSON object as decoded from the storefront backend
type Raw = map[string]any

// AsRaw returns v as a Raw object when it is one
func AsRaw(v any) (Raw, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

// Object returns the nested object stored under key
func Object(raw Raw, key string) (Raw, bool) {
	if raw == nil {
		return nil, false
	}
	return AsRaw(raw[key])
}

// Scalar renders a JSON scalar as a trimmed string. Objects, arrays and
// nil render as "".
func Scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// FirstString returns the first non-empty scalar among keys
func FirstString(raw Raw, keys ...string) string {
	if raw == nil {
		return ""
	}
	for _, key := range keys {
		if s := Scalar(raw[key]); s != "" {
			return s
		}
	}
	return ""
}

// Int reads a numeric field, accepting numbers and numeric strings
func Int(raw Raw, key string) (int, bool) {
	if raw == nil {
		return 0, false
	}
	switch t := raw[key].(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

// Time reads an RFC 3339 timestamp field
func Time(raw Raw, keys ...string) *time.Time {
	s := FirstString(raw, keys...)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Slice returns the array stored under key
func Slice(raw Raw, key string) []any {
	if raw == nil {
		return nil
	}
	s, _ := raw[key].([]any)
	return s
}

// IDOf resolves an identifier that may be a bare string or an object with
// an "id" or "_id" field
func IDOf(v any) string {
	if obj, ok := AsRaw(v); ok {
		return FirstString(obj, "id", "_id")
	}
	return Scalar(v)
}
