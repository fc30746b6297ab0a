package schema

import (
	"strconv"
	"strings"
)

// Row is one record of a native schema collection: a bag of named fields
// whose names and types vary across providers. The typed accessors take
// candidate field names in priority order and return the first present,
// coercible value, which replaces the repeated "try field A, else field B"
// pattern the per-provider collections would otherwise force everywhere.
type Row map[string]any

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// lookup finds the first candidate key present in the row, ignoring case.
func (r Row) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			return v, true
		}
	}
	for _, k := range keys {
		for rk, v := range r {
			if equalFold(rk, k) {
				return v, true
			}
		}
	}
	return nil, false
}

// String returns the first present candidate as a string.
func (r Row) String(keys ...string) (string, bool) {
	v, ok := r.lookup(keys...)
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

// Int64 returns the first present candidate coerced to int64. Providers
// report ordinals and sizes as assorted integer and string types.
func (r Row) Int64(keys ...string) (int64, bool) {
	v, ok := r.lookup(keys...)
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	case string:
		if parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return parsed, true
		}
		return 0, false
	case []byte:
		if parsed, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64); err == nil {
			return parsed, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Bool returns the first present candidate coerced to bool. Providers
// encode flags as bools, bits, integers, and YES/NO strings.
func (r Row) Bool(keys ...string) (bool, bool) {
	v, ok := r.lookup(keys...)
	if !ok || v == nil {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case int64:
		return b != 0, true
	case int32:
		return b != 0, true
	case int:
		return b != 0, true
	case string:
		switch strings.ToUpper(strings.TrimSpace(b)) {
		case "YES", "TRUE", "Y", "1":
			return true, true
		case "NO", "FALSE", "N", "0":
			return false, true
		}
		return false, false
	case []byte:
		return Row{"v": string(b)}.Bool("v")
	default:
		return false, false
	}
}
