package query

import "github.com/kailas-cloud/matchdex/internal/domain/geo"

// Order is a sort direction.
type Order string

const (
	// Asc sorts ascending.
	Asc Order = "asc"
	// Desc sorts descending.
	Desc Order = "desc"
)

// SortEntry is one instruction of the sort list.
type SortEntry interface {
	Source() map[string]any
}

// FieldSort sorts by a document field.
type FieldSort struct {
	Field string
	Order Order
}

// Source renders {"field": {"order": "..."}}.
func (s FieldSort) Source() map[string]any {
	return map[string]any{s.Field: map[string]any{"order": string(s.Order)}}
}

// ScriptSort sorts by a numeric painless expression.
type ScriptSort struct {
	Script string
	Params map[string]any
	Order  Order
}

// Source renders a _script sort of type number.
func (s ScriptSort) Source() map[string]any {
	script := map[string]any{"lang": "painless", "source": s.Script}
	if len(s.Params) > 0 {
		script["params"] = s.Params
	}
	return map[string]any{"_script": map[string]any{
		"type":   "number",
		"script": script,
		"order":  string(s.Order),
	}}
}

// GeoDistanceSort sorts by distance from a center point.
type GeoDistanceSort struct {
	Field  string
	Center geo.Point
	Order  Order
}

// Source renders a _geo_distance sort in kilometers.
func (s GeoDistanceSort) Source() map[string]any {
	return map[string]any{"_geo_distance": map[string]any{
		s.Field: map[string]any{"lat": s.Center.Lat, "lon": s.Center.Lon},
		"order": string(s.Order),
		"unit":  "km",
	}}
}
