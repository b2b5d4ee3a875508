package filter

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
)

// Set is a declarative collection of named filters, typically decoded from JSON.
type Set map[Key]any

// Clone returns a shallow copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Has reports whether key is present.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Range is a numeric {min, max} filter value. Both ends are inclusive.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// NewRange builds a range from plain values.
func NewRange(lo, hi float64) Range { return Range{Min: &lo, Max: &hi} }

// Bounds converts the range into query bounds.
func (r Range) Bounds() query.Bounds {
	switch {
	case r.Min != nil && r.Max != nil:
		return query.Between(*r.Min, *r.Max)
	case r.Min != nil:
		return query.AtLeast(*r.Min)
	case r.Max != nil:
		return query.AtMost(*r.Max)
	}
	return query.Bounds{}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func floatValue(k Key, v any) (float64, error) {
	f, ok := asFloat(v)
	if !ok {
		return 0, domain.NewConfigurationError(string(k), "expected a number, got %T", v)
	}
	return f, nil
}

func intValue(k Key, v any) (int64, error) {
	f, err := floatValue(k, v)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, domain.NewConfigurationError(string(k), "expected an integer, got %v", f)
	}
	return int64(f), nil
}

func boolValue(k Key, v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err == nil {
			return parsed, nil
		}
	default:
		if f, ok := asFloat(v); ok && (f == 0 || f == 1) {
			return f == 1, nil
		}
	}
	return false, domain.NewConfigurationError(string(k), "expected a boolean, got %v", v)
}

func stringValue(k Key, v any) (string, error) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", domain.NewConfigurationError(string(k), "expected a non-empty string, got %v", v)
	}
	return strings.TrimSpace(s), nil
}

// listValue accepts a single scalar or an array of scalars.
func listValue(k Key, v any) ([]any, error) {
	out := anyList(v)
	if len(out) == 0 {
		return nil, domain.NewConfigurationError(string(k), "at least one value is required")
	}
	return out, nil
}

// anyList widens a scalar or typed slice into []any. nil yields nil.
func anyList(v any) []any {
	switch l := v.(type) {
	case []any:
		return append([]any{}, l...)
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}
		return out
	case []int64:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}
		return out
	case nil:
		return nil
	}
	return []any{v}
}

func stringsValue(k Key, v any) ([]string, error) {
	items, err := listValue(k, v)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := stringValue(k, item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func rangeValue(k Key, v any) (Range, error) {
	switch r := v.(type) {
	case Range:
		if r.Min == nil && r.Max == nil {
			break
		}
		return r, nil
	case *Range:
		if r == nil || (r.Min == nil && r.Max == nil) {
			break
		}
		return *r, nil
	case map[string]any:
		var out Range
		for name, raw := range r {
			f, ok := asFloat(raw)
			if !ok {
				return Range{}, domain.NewConfigurationError(string(k), "%s must be a number", name)
			}
			switch name {
			case "min":
				out.Min = &f
			case "max":
				out.Max = &f
			default:
				return Range{}, domain.NewConfigurationError(string(k), "unknown range bound %q", name)
			}
		}
		if out.Min == nil && out.Max == nil {
			break
		}
		if out.Min != nil && out.Max != nil && *out.Min > *out.Max {
			return Range{}, domain.NewConfigurationError(string(k), "min %v is greater than max %v", *out.Min, *out.Max)
		}
		return out, nil
	}
	return Range{}, domain.NewConfigurationError(string(k), "expected a {min, max} range, got %v", v)
}

// timeValue accepts time.Time, RFC3339 strings and unix seconds.
func timeValue(k Key, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(t)); err == nil {
			return parsed, nil
		}
	}
	if f, ok := asFloat(v); ok {
		return time.Unix(int64(f), 0).UTC(), nil
	}
	return time.Time{}, domain.NewConfigurationError(string(k), "expected an RFC3339 time or unix seconds, got %v", v)
}

func unix(t time.Time) float64 { return float64(t.Unix()) }
