package filter

import (
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
)

// Sort tokens.
const (
	SortRelevance       = "relevance"
	SortLastLogin       = "last-login"
	SortCreated         = "created"
	SortRate            = "rate"
	SortRateDesc        = "rate-desc"
	SortExperience      = "experience"
	SortDistance        = "distance"
	SortRecommendations = "recommendations"

	sortCreatedAfterPrefix = "created-after:"
	sortAgePrefix          = "age-"
)

// Recommendation sorting constants.
const (
	// RecommendationFloor excludes records rated below it when sorting by recommendations.
	RecommendationFloor = 4
	// RecentLoginDays is the activity window of the combined recommendations/last-login sort.
	RecentLoginDays = 14
)

const (
	scriptCreatedAfter = "doc['created'].size() != 0 && doc['created'].value.toEpochSecond() > params.ts ? 1 : 0"

	scriptAgeWindow = "if (doc['birth_year'].size() == 0) { return 0; } " +
		"long age = params.year - doc['birth_year'].value; " +
		"return age >= params.min && age <= params.max ? 1 : 0;"

	scriptRecentRecommendations = "doc['last_login'].size() != 0 && doc['avg_recommendation_score'].size() != 0 && " +
		"doc['last_login'].value.toEpochSecond() >= params.since ? doc['avg_recommendation_score'].value : 0"
)

func sortTokens(k Key, v any) ([]string, error) {
	var raw []string
	if s, ok := v.(string); ok {
		raw = strings.Split(s, ",")
	} else {
		list, err := stringsValue(k, v)
		if err != nil {
			return nil, err
		}
		raw = list
	}

	var out []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if strings.HasPrefix(strings.ToLower(t), sortCreatedAfterPrefix) {
			// timestamps are case sensitive
			t = sortCreatedAfterPrefix + t[len(sortCreatedAfterPrefix):]
		} else {
			t = strings.ToLower(t)
		}
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, domain.NewConfigurationError(string(k), "at least one sort token is required")
	}
	return out, nil
}

// applySort emits sort entries in caller order. A created-after token is
// always placed first; recommendations absorbs last-login when both are present.
func applySort(b *query.Builder, _ *Env, k Key, v any) error {
	tokens, err := sortTokens(k, v)
	if err != nil {
		return err
	}

	var rest []string
	for _, t := range tokens {
		if !strings.HasPrefix(t, sortCreatedAfterPrefix) {
			rest = append(rest, t)
			continue
		}
		ts, err := timeValue(k, strings.TrimPrefix(t, sortCreatedAfterPrefix))
		if err != nil {
			return err
		}
		b.Sort(query.ScriptSort{
			Script: scriptCreatedAfter,
			Params: map[string]any{"ts": ts.Unix()},
			Order:  query.Desc,
		})
	}

	coupled := slices.Contains(rest, SortRecommendations) && slices.Contains(rest, SortLastLogin)
	for _, t := range rest {
		switch {
		case t == SortRelevance:
			b.Sort(query.FieldSort{Field: "_score", Order: query.Desc})
		case t == SortLastLogin:
			if !coupled {
				b.Sort(query.FieldSort{Field: FieldLastLogin, Order: query.Desc})
			}
		case t == SortCreated:
			b.Sort(query.FieldSort{Field: FieldCreated, Order: query.Desc})
		case t == SortRate:
			b.Sort(query.FieldSort{Field: FieldHourlyRate, Order: query.Asc})
		case t == SortRateDesc:
			b.Sort(query.FieldSort{Field: FieldHourlyRate, Order: query.Desc})
		case t == SortExperience:
			b.Sort(query.FieldSort{Field: FieldExperienceYears, Order: query.Desc})
		case t == SortDistance:
			center := b.Center()
			if center == nil {
				return domain.NewConfigurationError(string(k), "distance sort requires a center point")
			}
			b.Sort(query.GeoDistanceSort{Field: FieldLocation, Center: *center, Order: query.Asc})
		case t == SortRecommendations:
			if err := sortRecommendations(b, coupled); err != nil {
				return err
			}
		case strings.HasPrefix(t, sortAgePrefix):
			if err := sortAgeWindow(b, k, t); err != nil {
				return err
			}
		default:
			return domain.NewConfigurationError(string(k), "unknown sort token %q", t)
		}
	}
	return nil
}

func sortRecommendations(b *query.Builder, recentOnly bool) error {
	if recentOnly {
		since := b.Now().AddDate(0, 0, -RecentLoginDays).Unix()
		b.Sort(query.ScriptSort{
			Script: scriptRecentRecommendations,
			Params: map[string]any{"since": since},
			Order:  query.Desc,
		})
	} else {
		b.Sort(
			query.FieldSort{Field: FieldAvgScore, Order: query.Desc},
			query.FieldSort{Field: FieldRecommendations, Order: query.Desc},
		)
	}
	return b.Range(FieldAvgScore, query.Below(RecommendationFloor), query.RangeExclude)
}

// sortAgeWindow parses age-<min>-<max> and ranks records inside the window first.
func sortAgeWindow(b *query.Builder, k Key, token string) error {
	parts := strings.Split(strings.TrimPrefix(token, sortAgePrefix), "-")
	if len(parts) != 2 {
		return domain.NewConfigurationError(string(k), "malformed age sort %q, want age-<min>-<max>", token)
	}
	lo, err1 := strconv.Atoi(parts[0])
	hi, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || lo < 0 || lo > hi {
		return domain.NewConfigurationError(string(k), "malformed age sort %q, want age-<min>-<max>", token)
	}
	b.Sort(query.ScriptSort{
		Script: scriptAgeWindow,
		Params: map[string]any{"year": b.Now().Year(), "min": lo, "max": hi},
		Order:  query.Desc,
	})
	return nil
}
