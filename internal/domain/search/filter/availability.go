package filter

import (
	"slices"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
)

// Weekdays in index order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Day-part codes stored under availability.<day>.
const (
	PartMorning   = 1
	PartAfternoon = 2
	PartEvening   = 3
)

var dayParts = map[string]int{
	"morning":   PartMorning,
	"afternoon": PartAfternoon,
	"evening":   PartEvening,
}

// slot is one (day, part) pair of an availability request.
type slot struct {
	day  string
	part int
}

// parseAvailability reads a day -> parts map. Parts may be names or codes,
// a single value or a list. The result is ordered by weekday then part.
func parseAvailability(k Key, v any) ([]slot, error) {
	days, ok := DayMap(v)
	if !ok {
		return nil, domain.NewConfigurationError(string(k), "expected a day -> day parts map, got %T", v)
	}

	var out []slot
	for day, raw := range days {
		if !slices.Contains(Weekdays, day) {
			return nil, domain.NewConfigurationError(string(k), "unknown day %q", day)
		}
		parts, err := listValue(k, raw)
		if err != nil {
			return nil, err
		}
		seen := make(map[int]bool, len(parts))
		for _, p := range parts {
			code, err := dayPart(k, p)
			if err != nil {
				return nil, err
			}
			if seen[code] {
				continue
			}
			seen[code] = true
			out = append(out, slot{day: day, part: code})
		}
	}
	if len(out) == 0 {
		return nil, domain.NewConfigurationError(string(k), "at least one day part is required")
	}

	slices.SortFunc(out, func(a, b slot) int {
		if a.day != b.day {
			return slices.Index(Weekdays, a.day) - slices.Index(Weekdays, b.day)
		}
		return a.part - b.part
	})
	return out, nil
}

// DayMap decodes a day -> parts map in any of its accepted shapes. Parts of
// each day are widened to a list.
func DayMap(v any) (map[string][]any, bool) {
	out := make(map[string][]any)
	switch m := v.(type) {
	case map[string]any:
		for d, parts := range m {
			out[d] = anyList(parts)
		}
	case map[string][]string:
		for d, parts := range m {
			out[d] = anyList(parts)
		}
	case map[string][]int:
		for d, parts := range m {
			out[d] = anyList(parts)
		}
	default:
		return nil, false
	}
	return out, true
}

// MergeDayMaps returns a map holding the parts of both maps per day.
func MergeDayMaps(a, b map[string][]any) map[string][]any {
	out := make(map[string][]any, len(a)+len(b))
	for d, parts := range a {
		out[d] = append(out[d], parts...)
	}
	for d, parts := range b {
		out[d] = append(out[d], parts...)
	}
	return out
}

func dayPart(k Key, v any) (int, error) {
	if name, ok := v.(string); ok {
		if code, ok := dayParts[name]; ok {
			return code, nil
		}
	}
	if f, ok := asFloat(v); ok {
		code := int(f)
		if float64(code) == f && code >= PartMorning && code <= PartEvening {
			return code, nil
		}
	}
	return 0, domain.NewConfigurationError(string(k), "unknown day part %v", v)
}

func applyAvailability(b *query.Builder, _ *Env, k Key, v any) error {
	slots, err := parseAvailability(k, v)
	if err != nil {
		return err
	}
	for _, s := range slots {
		if err := b.Where(FieldAvailabilityPrefix+s.day, s.part); err != nil {
			return err
		}
	}
	return nil
}

func applyAvailabilityPreference(b *query.Builder, _ *Env, k Key, v any) error {
	slots, err := parseAvailability(k, v)
	if err != nil {
		return err
	}
	for _, s := range slots {
		b.Should(query.Term(FieldAvailabilityPrefix+s.day, s.part))
	}
	return nil
}
