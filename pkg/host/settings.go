package host

import (
	"strconv"
)

// Settings is an opaque key/value bag handed to sources on create and update.
type Settings map[string]any

// String returns the value for key as a string, or def.
func (s Settings) String(key, def string) string {
	switch v := s[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case nil:
	default:
		if str, ok := v.(interface{ String() string }); ok {
			return str.String()
		}
	}
	return def
}

// Float returns the value for key as a float64, or def.
func (s Settings) Float(key string, def float64) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns the value for key as an int, or def.
func (s Settings) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v) //nolint:gosec // settings values are small
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Clone returns a shallow copy.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
