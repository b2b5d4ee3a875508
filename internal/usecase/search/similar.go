package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
	"github.com/kailas-cloud/matchdex/internal/metrics"
)

// Similar-user search tuning.
const (
	// SimilarAgeWindow is the +/- age range of the first pass.
	SimilarAgeWindow = 5
	// FallbackAgeWidening is added to both age bounds on the broadened pass.
	FallbackAgeWidening = 10
)

// SimilarOptions are the per-call options of Similar.
type SimilarOptions struct {
	Locale  string
	Page    int
	PerPage int
	// DistanceKm restricts the first pass to a radius instead of the user's
	// place. Requires the user to have a location.
	DistanceKm float64
}

// Similar finds users resembling u: same role, same place, similar age.
// When the first pass yields nothing, exactly one broadened pass runs.
func (s *Service) Similar(ctx context.Context, u user.Record, opts SimilarOptions) (*Result, error) {
	start := time.Now()
	res, err := s.similar(ctx, u, opts)
	observe("similar", start, err)
	return res, err
}

// SimilarByID loads the record and runs Similar.
func (s *Service) SimilarByID(ctx context.Context, id int64, opts SimilarOptions) (*Result, error) {
	u, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck // domain errors pass through
	}
	return s.Similar(ctx, u, opts)
}

func (s *Service) similar(ctx context.Context, u user.Record, opts SimilarOptions) (*Result, error) {
	set := similarSet(u, s.now(), opts)
	sopts := Options{
		Locale:  opts.Locale,
		Center:  u.Location,
		Page:    opts.Page,
		PerPage: opts.PerPage,
	}

	res, err := s.search(ctx, set, sopts)
	if err != nil {
		return nil, err
	}
	if res.Total > 0 {
		return res, nil
	}

	metrics.SimilarFallbackTotal.Inc()
	res, err = s.search(ctx, broaden(set, s.cfg.FallbackDistanceKm, u.Location != nil), sopts)
	if err != nil {
		return nil, err
	}
	res.Broadened = true
	return res, nil
}

// similarSet derives the first-pass filters from a user record.
func similarSet(u user.Record, now time.Time, opts SimilarOptions) filter.Set {
	set := filter.Set{
		filter.KeyRole:       u.Role.String(),
		filter.KeyExcludeIDs: []any{u.Key()},
	}
	switch {
	case opts.DistanceKm > 0 && u.Location != nil:
		set[filter.KeyDistance] = opts.DistanceKm
	case u.PlaceID != 0:
		set[filter.KeyPlace] = u.PlaceID
	}
	if age := u.Age(now); age > 0 {
		set[filter.KeyAge] = filter.NewRange(
			float64(max(age-SimilarAgeWindow, 0)),
			float64(age+SimilarAgeWindow),
		)
	}
	return set
}

// broaden returns the fallback variant of set: the place constraint is
// dropped, the distance is set to fallbackKm (when a center is available)
// and every age bound is widened by FallbackAgeWidening.
func broaden(set filter.Set, fallbackKm float64, hasCenter bool) filter.Set {
	out := set.Clone()
	delete(out, filter.KeyPlace)
	delete(out, filter.KeyPlaceName)
	delete(out, filter.KeyDistance)
	if hasCenter {
		out[filter.KeyDistance] = fallbackKm
	}

	if r, ok := ageRange(out[filter.KeyAge]); ok {
		if r.Min != nil {
			lo := *r.Min - FallbackAgeWidening
			r.Min = &lo
		}
		if r.Max != nil {
			hi := *r.Max + FallbackAgeWidening
			r.Max = &hi
		}
		out[filter.KeyAge] = r
	}
	return out
}

func ageRange(v any) (filter.Range, bool) {
	switch r := v.(type) {
	case filter.Range:
		return r, true
	case map[string]any:
		var out filter.Range
		if f, ok := r["min"].(float64); ok {
			out.Min = &f
		}
		if f, ok := r["max"].(float64); ok {
			out.Max = &f
		}
		return out, out.Min != nil || out.Max != nil
	}
	return filter.Range{}, false
}
