package user

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain/geo"
)

// Role is the marketplace role of a user (index field webrole_id).
type Role int

// Known roles.
const (
	RoleParent      Role = 1
	RoleBabysitter  Role = 2
	RoleChildminder Role = 3
)

var roleNames = map[string]Role{
	"parent":      RoleParent,
	"babysitter":  RoleBabysitter,
	"childminder": RoleChildminder,
}

// ParseRole resolves a role name.
func ParseRole(name string) (Role, error) {
	r, ok := roleNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown role %q", name)
	}
	return r, nil
}

// String returns the role name.
func (r Role) String() string {
	for name, v := range roleNames {
		if v == r {
			return name
		}
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

// IsCaregiver reports whether the role offers care.
func (r Role) IsCaregiver() bool { return r == RoleBabysitter || r == RoleChildminder }

// Record is the authoritative user record.
type Record struct {
	ID        int64      `json:"id"`
	Role      Role       `json:"role"`
	FirstName string     `json:"first_name"`
	Gender    string     `json:"gender,omitempty"`
	PlaceID   int64      `json:"place_id,omitempty"`
	PlaceName string     `json:"place_name,omitempty"`
	Location  *geo.Point `json:"location,omitempty"`
	// DistanceKm is the distance from the search center, when one was given.
	DistanceKm    float64   `json:"distance_km,omitempty"`
	BirthYear     int       `json:"birth_year,omitempty"`
	HourlyRate    float64   `json:"hourly_rate,omitempty"`
	AvgScore      float64   `json:"avg_recommendation_score,omitempty"`
	Recommends    int       `json:"recommendation_count,omitempty"`
	About         string    `json:"about,omitempty"`
	Active        bool      `json:"-"`
	Completed     bool      `json:"-"`
	Inappropriate bool      `json:"-"`
	Invisible     bool      `json:"-"`
	Disabled      bool      `json:"-"`
	Created       time.Time `json:"created"`
	LastLogin     time.Time `json:"last_login"`
}

// Key returns the index document ID of the record.
func (r *Record) Key() string { return strconv.FormatInt(r.ID, 10) }

// Age returns the age computed as year minus birth year, or 0 when unknown.
func (r *Record) Age(now time.Time) int {
	if r.BirthYear == 0 {
		return 0
	}
	return now.Year() - r.BirthYear
}

// Eligibility is the record-store side of the baseline search constraints.
type Eligibility struct {
	IncludeDisabled bool
}

// Allows reports whether the record passes the eligibility constraints.
func (e Eligibility) Allows(r *Record) bool {
	if !r.Active || !r.Completed || r.Inappropriate || r.Invisible {
		return false
	}
	return e.IncludeDisabled || !r.Disabled
}
