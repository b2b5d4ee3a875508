package matchdex

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain/geo"
	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
	"github.com/kailas-cloud/matchdex/internal/domain/user"
	searchuc "github.com/kailas-cloud/matchdex/internal/usecase/search"
)

// Filters maps filter keys to their values, e.g. {"role": "babysitter"}.
type Filters map[string]any

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// User is a hydrated user record.
type User struct {
	ID              int64
	Role            string
	FirstName       string
	Gender          string
	PlaceID         int64
	PlaceName       string
	Location        *Point
	DistanceKm      float64
	BirthYear       int
	HourlyRate      float64
	AvgScore        float64
	Recommendations int
	About           string
	Active          bool
	Completed       bool
	Inappropriate   bool
	Invisible       bool
	Disabled        bool
	Created         time.Time
	LastLogin       time.Time
}

// Cluster is a grid cell of matching users.
type Cluster struct {
	CellID int
	Count  int
	Lat    float64
	Lon    float64
}

// Result is a page of users or, for large bounded searches, a list of clusters.
type Result struct {
	Users        []User
	Clusters     []Cluster
	Total        int
	Page         int
	PerPage      int
	Broadened    bool
	Aggregations map[string]json.RawMessage
}

// Clustered reports whether the result holds clusters instead of users.
func (r *Result) Clustered() bool { return r.Clusters != nil }

// SearchOptions controls a filter search.
type SearchOptions struct {
	Locale          string
	Center          *Point
	Page            int
	PerPage         int
	IncludeDisabled bool
	GridRows        int
}

// SimilarOptions controls a similar-user search.
type SimilarOptions struct {
	Locale     string
	Page       int
	PerPage    int
	DistanceKm float64
}

func toFilterSet(f Filters) filter.Set {
	set := make(filter.Set, len(f))
	for k, v := range f {
		set[filter.Key(k)] = v
	}
	return set
}

func toSearchOptions(o SearchOptions) (searchuc.Options, error) {
	opts := searchuc.Options{
		Locale:          o.Locale,
		Page:            o.Page,
		PerPage:         o.PerPage,
		IncludeDisabled: o.IncludeDisabled,
		GridRows:        o.GridRows,
	}
	if o.Center != nil {
		p, err := geo.NewPoint(o.Center.Lat, o.Center.Lon)
		if err != nil {
			return searchuc.Options{}, err
		}
		opts.Center = &p
	}
	return opts, nil
}

func fromResult(r *searchuc.Result) *Result {
	out := &Result{
		Total:        r.Total,
		Page:         r.Page,
		PerPage:      r.PerPage,
		Broadened:    r.Broadened,
		Aggregations: r.Aggregations,
	}
	if r.Clustered() {
		out.Clusters = make([]Cluster, len(r.Clusters))
		for i, c := range r.Clusters {
			out.Clusters[i] = Cluster{CellID: c.CellID, Count: c.Count, Lat: c.Lat, Lon: c.Lon}
		}
		return out
	}
	out.Users = make([]User, len(r.Items))
	for i, rec := range r.Items {
		out.Users[i] = fromRecord(rec)
	}
	return out
}

func fromRecord(r user.Record) User {
	u := User{
		ID:              r.ID,
		Role:            r.Role.String(),
		FirstName:       r.FirstName,
		Gender:          r.Gender,
		PlaceID:         r.PlaceID,
		PlaceName:       r.PlaceName,
		DistanceKm:      r.DistanceKm,
		BirthYear:       r.BirthYear,
		HourlyRate:      r.HourlyRate,
		AvgScore:        r.AvgScore,
		Recommendations: r.Recommends,
		About:           r.About,
		Active:          r.Active,
		Completed:       r.Completed,
		Inappropriate:   r.Inappropriate,
		Invisible:       r.Invisible,
		Disabled:        r.Disabled,
		Created:         r.Created,
		LastLogin:       r.LastLogin,
	}
	if r.Location != nil {
		u.Location = &Point{Lat: r.Location.Lat, Lon: r.Location.Lon}
	}
	return u
}

func toRecord(u User) (user.Record, error) {
	role, err := user.ParseRole(u.Role)
	if err != nil {
		return user.Record{}, err
	}
	r := user.Record{
		ID:            u.ID,
		Role:          role,
		FirstName:     u.FirstName,
		Gender:        u.Gender,
		PlaceID:       u.PlaceID,
		PlaceName:     u.PlaceName,
		BirthYear:     u.BirthYear,
		HourlyRate:    u.HourlyRate,
		AvgScore:      u.AvgScore,
		Recommends:    u.Recommendations,
		About:         u.About,
		Active:        u.Active,
		Completed:     u.Completed,
		Inappropriate: u.Inappropriate,
		Invisible:     u.Invisible,
		Disabled:      u.Disabled,
		Created:       u.Created,
		LastLogin:     u.LastLogin,
	}
	if u.Location != nil {
		p, err := geo.NewPoint(u.Location.Lat, u.Location.Lon)
		if err != nil {
			return user.Record{}, err
		}
		r.Location = &p
	}
	return r, nil
}
