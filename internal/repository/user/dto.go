package user

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain/geo"
	domuser "github.com/kailas-cloud/matchdex/internal/domain/user"
)

// Hash field names of a stored user record.
const (
	fieldID            = "id"
	fieldRole          = "webrole_id"
	fieldFirstName     = "first_name"
	fieldGender        = "gender"
	fieldPlaceID       = "place_id"
	fieldPlaceName     = "place_name"
	fieldLat           = "lat"
	fieldLon           = "lon"
	fieldBirthYear     = "birth_year"
	fieldHourlyRate    = "hourly_rate"
	fieldAvgScore      = "avg_recommendation_score"
	fieldRecommends    = "recommendation_count"
	fieldAbout         = "about"
	fieldActive        = "active"
	fieldCompleted     = "completed"
	fieldInappropriate = "inappropriate"
	fieldInvisible     = "invisible"
	fieldDisabled      = "disabled"
	fieldCreated       = "created"
	fieldLastLogin     = "last_login"
)

// buildHashFields converts a record into a flat map for HSET.
func buildHashFields(r *domuser.Record) map[string]string {
	m := map[string]string{
		fieldID:            strconv.FormatInt(r.ID, 10),
		fieldRole:          strconv.Itoa(int(r.Role)),
		fieldFirstName:     r.FirstName,
		fieldActive:        flag(r.Active),
		fieldCompleted:     flag(r.Completed),
		fieldInappropriate: flag(r.Inappropriate),
		fieldInvisible:     flag(r.Invisible),
		fieldDisabled:      flag(r.Disabled),
	}
	if r.Gender != "" {
		m[fieldGender] = r.Gender
	}
	if r.PlaceID != 0 {
		m[fieldPlaceID] = strconv.FormatInt(r.PlaceID, 10)
	}
	if r.PlaceName != "" {
		m[fieldPlaceName] = r.PlaceName
	}
	if r.Location != nil {
		m[fieldLat] = formatFloat(r.Location.Lat)
		m[fieldLon] = formatFloat(r.Location.Lon)
	}
	if r.BirthYear != 0 {
		m[fieldBirthYear] = strconv.Itoa(r.BirthYear)
	}
	if r.HourlyRate != 0 {
		m[fieldHourlyRate] = formatFloat(r.HourlyRate)
	}
	if r.AvgScore != 0 {
		m[fieldAvgScore] = formatFloat(r.AvgScore)
	}
	if r.Recommends != 0 {
		m[fieldRecommends] = strconv.Itoa(r.Recommends)
	}
	if r.About != "" {
		m[fieldAbout] = r.About
	}
	if !r.Created.IsZero() {
		m[fieldCreated] = strconv.FormatInt(r.Created.Unix(), 10)
	}
	if !r.LastLogin.IsZero() {
		m[fieldLastLogin] = strconv.FormatInt(r.LastLogin.Unix(), 10)
	}
	return m
}

// parseHashFields converts a stored hash back into a record.
func parseHashFields(m map[string]string) (domuser.Record, error) {
	p := parser{m: m}
	r := domuser.Record{
		ID:            p.intField(fieldID),
		Role:          domuser.Role(p.intField(fieldRole)),
		FirstName:     m[fieldFirstName],
		Gender:        m[fieldGender],
		PlaceID:       p.intField(fieldPlaceID),
		PlaceName:     m[fieldPlaceName],
		BirthYear:     int(p.intField(fieldBirthYear)),
		HourlyRate:    p.floatField(fieldHourlyRate),
		AvgScore:      p.floatField(fieldAvgScore),
		Recommends:    int(p.intField(fieldRecommends)),
		About:         m[fieldAbout],
		Active:        m[fieldActive] == "1",
		Completed:     m[fieldCompleted] == "1",
		Inappropriate: m[fieldInappropriate] == "1",
		Invisible:     m[fieldInvisible] == "1",
		Disabled:      m[fieldDisabled] == "1",
		Created:       p.timeField(fieldCreated),
		LastLogin:     p.timeField(fieldLastLogin),
	}
	_, hasLat := m[fieldLat]
	_, hasLon := m[fieldLon]
	if hasLat && hasLon {
		r.Location = &geo.Point{Lat: p.floatField(fieldLat), Lon: p.floatField(fieldLon)}
	}
	if p.err != nil {
		return domuser.Record{}, p.err
	}
	if r.ID == 0 {
		return domuser.Record{}, fmt.Errorf("record has no id")
	}
	return r, nil
}

// parser records the first conversion error.
type parser struct {
	m   map[string]string
	err error
}

func (p *parser) intField(field string) int64 {
	v, ok := p.m[field]
	if !ok || v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("field %s: %w", field, err)
	}
	return n
}

func (p *parser) floatField(field string) float64 {
	v, ok := p.m[field]
	if !ok || v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("field %s: %w", field, err)
	}
	return f
}

func (p *parser) timeField(field string) time.Time {
	sec := p.intField(field)
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
