package filter

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/geo"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
)

// ParentSearchPause is how long a premium parent may go without searching
// before being hidden from caregiver results.
const ParentSearchPause = 8 // days

// Chore codes.
var chores = map[string]int{
	"cooking":  1,
	"driving":  2,
	"shopping": 3,
	"homework": 4,
	"cleaning": 5,
	"laundry":  6,
	"pets":     7,
}

// Experience age group codes.
var ageGroups = map[string]int{
	"baby":      1,
	"toddler":   2,
	"preschool": 3,
	"school":    4,
	"teen":      5,
}

// Education level codes.
var educationLevels = map[string]int{
	"none":       0,
	"secondary":  1,
	"vocational": 2,
	"bachelor":   3,
	"master":     4,
}

// codes maps names (or raw codes present in the table) to their codes.
func codes(k Key, v any, table map[string]int) ([]int, error) {
	items, err := listValue(k, v)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		code, ok := lookupCode(item, table)
		if !ok {
			return nil, domain.NewConfigurationError(string(k), "unknown value %v", item)
		}
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out, nil
}

func lookupCode(v any, table map[string]int) (int, bool) {
	if name, ok := v.(string); ok {
		code, ok := table[strings.ToLower(strings.TrimSpace(name))]
		return code, ok
	}
	f, ok := asFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	for _, code := range table {
		if code == int(f) {
			return code, true
		}
	}
	return 0, false
}

func roles(k Key, v any) ([]user.Role, error) {
	items, err := listValue(k, v)
	if err != nil {
		return nil, err
	}
	out := make([]user.Role, 0, len(items))
	for _, item := range items {
		var r user.Role
		if name, ok := item.(string); ok {
			parsed, err := user.ParseRole(strings.ToLower(name))
			if err != nil {
				return nil, domain.NewConfigurationError(string(k), "%v", err)
			}
			r = parsed
		} else {
			n, err := intValue(k, item)
			if err != nil {
				return nil, err
			}
			r = user.Role(n)
			if r != user.RoleParent && !r.IsCaregiver() {
				return nil, domain.NewConfigurationError(string(k), "unknown role %d", n)
			}
		}
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// TargetRoles returns the roles requested by role/roles, if any.
func TargetRoles(set Set) []user.Role {
	var out []user.Role
	for _, k := range []Key{KeyRole, KeyRoles} {
		v, ok := set[k]
		if !ok {
			continue
		}
		rs, err := roles(k, v)
		if err != nil {
			continue
		}
		for _, r := range rs {
			if !slices.Contains(out, r) {
				out = append(out, r)
			}
		}
	}
	return out
}

func applyRole(b *query.Builder, env *Env, k Key, v any) error {
	rs, err := roles(k, v)
	if err != nil {
		return err
	}
	if len(rs) == 1 {
		if err := b.Where(FieldRole, int(rs[0])); err != nil {
			return err
		}
	} else {
		ids := make([]int, len(rs))
		for i, r := range rs {
			ids[i] = int(r)
		}
		if err := query.WhereIn(b, FieldRole, ids); err != nil {
			return err
		}
	}

	if slices.Contains(rs, user.RoleParent) && !env.parentExcluded {
		env.parentExcluded = true
		now := b.Now()
		b.MustNot(&query.BoolQuery{Must: []query.Clause{
			query.Term(FieldRole, int(user.RoleParent)),
			query.NewRange(FieldPremiumUntil, query.Above(unix(now)).InEpochSeconds()),
			query.NewRange(FieldLastSearch, query.Below(unix(now.AddDate(0, 0, -ParentSearchPause))).InEpochSeconds()),
		}})
	}
	return nil
}

func applyGender(b *query.Builder, _ *Env, k Key, v any) error {
	values, err := stringsValue(k, v)
	if err != nil {
		return err
	}
	for i := range values {
		values[i] = strings.ToLower(values[i])
		if values[i] != "male" && values[i] != "female" {
			return domain.NewConfigurationError(string(k), "unknown gender %q", values[i])
		}
	}
	if len(values) == 1 {
		return b.Where(FieldGender, values[0])
	}
	return query.WhereIn(b, FieldGender, values)
}

func applyPlace(b *query.Builder, _ *Env, k Key, v any) error {
	items, err := listValue(k, v)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := intValue(k, item)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if len(ids) == 1 {
		return b.Where(FieldPlace, ids[0])
	}
	return query.WhereIn(b, FieldPlace, ids)
}

func applyDistance(b *query.Builder, _ *Env, k Key, v any) error {
	km, err := floatValue(k, v)
	if err != nil {
		return err
	}
	if km <= 0 {
		return domain.NewConfigurationError(string(k), "distance must be positive, got %v", km)
	}
	center := b.Center()
	if center == nil {
		return domain.NewConfigurationError(string(k), "distance filter requires a center point")
	}
	return b.Filter("geo_distance", map[string]any{
		"distance":    strconv.FormatFloat(km, 'f', -1, 64) + "km",
		FieldLocation: map[string]any{"lat": center.Lat, "lon": center.Lon},
	})
}

// BoundingBox decodes the bounds value of a set, if present.
func BoundingBox(set Set) (geo.BoundingBox, bool, error) {
	v, ok := set[KeyBounds]
	if !ok {
		return geo.BoundingBox{}, false, nil
	}
	box, err := boundingBox(KeyBounds, v)
	return box, err == nil, err
}

func boundingBox(k Key, v any) (geo.BoundingBox, error) {
	var box geo.BoundingBox
	switch bb := v.(type) {
	case geo.BoundingBox:
		box = bb
	case *geo.BoundingBox:
		if bb == nil {
			return box, domain.NewConfigurationError(string(k), "bounding box is undefined")
		}
		box = *bb
	case map[string]any:
		raw, err := json.Marshal(bb)
		if err != nil {
			return box, domain.NewConfigurationError(string(k), "encode bounding box: %v", err)
		}
		if err := json.Unmarshal(raw, &box); err != nil {
			return box, domain.NewConfigurationError(string(k), "decode bounding box: %v", err)
		}
	default:
		return box, domain.NewConfigurationError(string(k), "expected {top_left, bottom_right}, got %T", v)
	}
	if err := box.Validate(); err != nil {
		return box, domain.NewConfigurationError(string(k), "%v", err)
	}
	return box, nil
}

func applyBounds(b *query.Builder, _ *Env, k Key, v any) error {
	box, err := boundingBox(k, v)
	if err != nil {
		return err
	}
	return b.Filter("geo_bounding_box", box.Source(FieldLocation))
}

func flag(field string) handler {
	return func(b *query.Builder, _ *Env, k Key, v any) error {
		on, err := boolValue(k, v)
		if err != nil {
			return err
		}
		if on {
			return b.Where(field, 1)
		}
		return b.Where(field, 0)
	}
}

// applyChores requires every requested chore.
func applyChores(b *query.Builder, _ *Env, k Key, v any) error {
	cs, err := codes(k, v, chores)
	if err != nil {
		return err
	}
	for _, c := range cs {
		if err := b.Where(FieldChores, c); err != nil {
			return err
		}
	}
	return nil
}

// applyExperience accepts any of the requested age groups.
func applyExperience(b *query.Builder, _ *Env, k Key, v any) error {
	cs, err := codes(k, v, ageGroups)
	if err != nil {
		return err
	}
	return query.WhereIn(b, FieldExperience, cs)
}

func applyEducation(b *query.Builder, _ *Env, k Key, v any) error {
	cs, err := codes(k, v, educationLevels)
	if err != nil {
		return err
	}
	return query.WhereIn(b, FieldEducation, cs)
}

func numericRange(field string) handler {
	return func(b *query.Builder, _ *Env, k Key, v any) error {
		r, err := rangeValue(k, v)
		if err != nil {
			return err
		}
		return b.Range(field, r.Bounds(), query.RangeInclude)
	}
}

// applyAge converts an age range into a birth year range using the builder clock.
func applyAge(b *query.Builder, _ *Env, k Key, v any) error {
	r, err := rangeValue(k, v)
	if err != nil {
		return err
	}
	year := float64(b.Now().Year())
	var bounds query.Bounds
	if r.Max != nil {
		lo := year - *r.Max
		bounds.GTE = &lo
	}
	if r.Min != nil {
		hi := year - *r.Min
		bounds.LTE = &hi
	}
	return b.Range(FieldBirthYear, bounds, query.RangeInclude)
}

func since(field string) handler {
	return func(b *query.Builder, _ *Env, k Key, v any) error {
		t, err := timeValue(k, v)
		if err != nil {
			return err
		}
		return b.Range(field, query.AtLeast(unix(t)).InEpochSeconds(), query.RangeInclude)
	}
}

func until(field string) handler {
	return func(b *query.Builder, _ *Env, k Key, v any) error {
		t, err := timeValue(k, v)
		if err != nil {
			return err
		}
		return b.Range(field, query.AtMost(unix(t)).InEpochSeconds(), query.RangeInclude)
	}
}

func applyActiveWithinDays(b *query.Builder, _ *Env, k Key, v any) error {
	days, err := intValue(k, v)
	if err != nil {
		return err
	}
	if days <= 0 {
		return domain.NewConfigurationError(string(k), "days must be positive, got %d", days)
	}
	from := b.Now().AddDate(0, 0, -int(days))
	return b.Range(FieldLastLogin, query.AtLeast(unix(from)).InEpochSeconds(), query.RangeInclude)
}

func applyPremium(b *query.Builder, _ *Env, k Key, v any) error {
	on, err := boolValue(k, v)
	if err != nil {
		return err
	}
	mode := query.RangeInclude
	if !on {
		mode = query.RangeExclude
	}
	return b.Range(FieldPremiumUntil, query.Above(unix(b.Now())).InEpochSeconds(), mode)
}

func minimum(field string) handler {
	return func(b *query.Builder, _ *Env, k Key, v any) error {
		f, err := floatValue(k, v)
		if err != nil {
			return err
		}
		return b.Range(field, query.AtLeast(f), query.RangeInclude)
	}
}

func idList(k Key, v any) ([]string, error) {
	items, err := listValue(k, v)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch id := item.(type) {
		case string:
			if id == "" {
				return nil, domain.NewConfigurationError(string(k), "empty id")
			}
			out = append(out, id)
		default:
			n, err := intValue(k, item)
			if err != nil {
				return nil, err
			}
			out = append(out, strconv.FormatInt(n, 10))
		}
	}
	return out, nil
}

func applyIncludeIDs(b *query.Builder, _ *Env, k Key, v any) error {
	list, err := idList(k, v)
	if err != nil {
		return err
	}
	return query.WhereIn(b, FieldID, list)
}

func applyExcludeIDs(b *query.Builder, _ *Env, k Key, v any) error {
	list, err := idList(k, v)
	if err != nil {
		return err
	}
	return query.WhereNotIn(b, FieldID, list)
}

func applyKeyword(b *query.Builder, _ *Env, k Key, v any) error {
	text, err := stringValue(k, v)
	if err != nil {
		return err
	}
	b.Match(FieldAbout, text, query.OperatorOr)
	return nil
}

func applyName(b *query.Builder, _ *Env, k Key, v any) error {
	text, err := stringValue(k, v)
	if err != nil {
		return err
	}
	b.Match(FieldFirstName, text, query.OperatorAnd)
	return nil
}

func applyNameContains(b *query.Builder, _ *Env, k Key, v any) error {
	text, err := stringValue(k, v)
	if err != nil {
		return err
	}
	return b.WhereContains(FieldFirstName, strings.ToLower(text), query.BranchShould)
}

// applyRaw passes {kind: body} objects straight into the filter branch.
func applyRaw(b *query.Builder, _ *Env, k Key, v any) error {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return domain.NewConfigurationError(string(k), "expected a non-empty {kind: clause} object, got %v", v)
	}
	kinds := make([]string, 0, len(m))
	for kind := range m {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		if err := b.Filter(kind, m[kind]); err != nil {
			return fmt.Errorf("raw %s: %w", kind, err)
		}
	}
	return nil
}
