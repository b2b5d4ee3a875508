package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
)

// Care types accepted by the careType shorthand.
const (
	CareOccasional = "occasional"
	CareRegular    = "regular"
)

// Availability day shorthands.
var dayGroups = map[string][]string{
	"weekdays": filter.Weekdays[:5],
	"weekend":  filter.Weekdays[5:],
}

// resolveDependencies rewrites the cross-key shorthands of a set into plain
// dispatcher keys. The input set is left untouched.
func (s *Service) resolveDependencies(ctx context.Context, set filter.Set) (filter.Set, error) {
	out := set.Clone()

	if err := s.resolvePlace(ctx, out); err != nil {
		return nil, err
	}
	for _, k := range []filter.Key{filter.KeyAvailability, filter.KeyAvailabilityPreference} {
		if v, ok := out[k]; ok {
			out[k] = expandDayGroups(v)
		}
	}
	if err := expandCareType(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) resolvePlace(ctx context.Context, set filter.Set) error {
	v, ok := set[filter.KeyPlaceName]
	if !ok {
		return nil
	}
	delete(set, filter.KeyPlaceName)

	name, ok := v.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return domain.NewConfigurationError(string(filter.KeyPlaceName), "expected a place name, got %v", v)
	}
	if s.places == nil {
		return domain.NewConfigurationError(string(filter.KeyPlaceName), "no place resolver configured")
	}

	id, err := s.places.ResolvePlace(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewConfigurationError(string(filter.KeyPlaceName), "unknown place %q", name)
	}
	if err != nil {
		return fmt.Errorf("resolve place %q: %w", name, err)
	}
	set[filter.KeyPlace] = id
	return nil
}

// expandDayGroups replaces weekdays/weekend entries of a day map with the
// individual days. Parts of overlapping entries are combined. Values that are
// not day maps are left for the dispatcher to reject.
func expandDayGroups(v any) any {
	days, ok := filter.DayMap(v)
	if !ok {
		return v
	}
	out := make(map[string][]any, len(days))
	for d, parts := range days {
		targets := []string{d}
		if group, ok := dayGroups[d]; ok {
			targets = group
		}
		for _, t := range targets {
			out[t] = append(out[t], parts...)
		}
	}
	return dayMapValue(out)
}

func dayMapValue(days map[string][]any) map[string]any {
	out := make(map[string]any, len(days))
	for d, parts := range days {
		out[d] = parts
	}
	return out
}

// expandCareType turns careType into the occasional/regular flags. Asking for
// both cancels out. A regular-only caregiver search treats availability as a
// preference rather than a requirement.
func expandCareType(set filter.Set) error {
	v, ok := set[filter.KeyCareType]
	if !ok {
		return nil
	}
	delete(set, filter.KeyCareType)

	var types []string
	switch t := v.(type) {
	case string:
		types = []string{t}
	case []string:
		types = t
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return domain.NewConfigurationError(string(filter.KeyCareType), "expected care type names, got %v", item)
			}
			types = append(types, s)
		}
	default:
		return domain.NewConfigurationError(string(filter.KeyCareType), "expected care type names, got %T", v)
	}

	var occasional, regular bool
	for _, t := range types {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case CareOccasional:
			occasional = true
		case CareRegular:
			regular = true
		default:
			return domain.NewConfigurationError(string(filter.KeyCareType), "unknown care type %q", t)
		}
	}

	switch {
	case occasional && regular:
		return nil
	case occasional:
		set[filter.KeyOccasional] = true
	case regular:
		set[filter.KeyRegular] = true
		if targetsCaregivers(set) {
			moveAvailabilityToPreference(set)
		}
	}
	return nil
}

func targetsCaregivers(set filter.Set) bool {
	return slices.ContainsFunc(filter.TargetRoles(set), user.Role.IsCaregiver)
}

func moveAvailabilityToPreference(set filter.Set) {
	avail, ok := set[filter.KeyAvailability]
	if !ok {
		return
	}
	delete(set, filter.KeyAvailability)

	pref, ok := set[filter.KeyAvailabilityPreference]
	if !ok {
		set[filter.KeyAvailabilityPreference] = avail
		return
	}
	a, okA := filter.DayMap(avail)
	p, okP := filter.DayMap(pref)
	switch {
	case !okP:
		// Malformed preference stays for the dispatcher to reject.
	case !okA:
		set[filter.KeyAvailabilityPreference] = avail
	default:
		set[filter.KeyAvailabilityPreference] = dayMapValue(filter.MergeDayMaps(p, a))
	}
}
