package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewPoint validates and creates a point.
func NewPoint(lat, lon float64) (Point, error) {
	if !ValidateCoordinates(lat, lon) {
		return Point{}, fmt.Errorf("coordinates out of range: lat=%g lon=%g", lat, lon)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// BoundingBox is an axis-aligned box given by its top-left and bottom-right corners.
type BoundingBox struct {
	TopLeft     Point `json:"top_left"`
	BottomRight Point `json:"bottom_right"`
}

// Validate checks that the corners are valid and ordered.
func (b BoundingBox) Validate() error {
	if !ValidateCoordinates(b.TopLeft.Lat, b.TopLeft.Lon) ||
		!ValidateCoordinates(b.BottomRight.Lat, b.BottomRight.Lon) {
		return fmt.Errorf("bounding box corner out of range")
	}
	if b.TopLeft.Lat <= b.BottomRight.Lat {
		return fmt.Errorf("bounding box top must be north of bottom")
	}
	if b.TopLeft.Lon >= b.BottomRight.Lon {
		return fmt.Errorf("bounding box left must be west of right")
	}
	return nil
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat <= b.TopLeft.Lat && p.Lat >= b.BottomRight.Lat &&
		p.Lon >= b.TopLeft.Lon && p.Lon <= b.BottomRight.Lon
}

// Source renders the box as a geo_bounding_box value for field.
func (b BoundingBox) Source(field string) map[string]any {
	return map[string]any{field: map[string]any{
		"top_left":     map[string]any{"lat": b.TopLeft.Lat, "lon": b.TopLeft.Lon},
		"bottom_right": map[string]any{"lat": b.BottomRight.Lat, "lon": b.BottomRight.Lon},
	}}
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// DistanceKm returns the great-circle distance between a and b in kilometers.
func DistanceKm(a, b Point) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon) / 1000
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
