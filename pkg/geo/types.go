// Package geo provides common geographic types and calculations.
// It centralizes location and bounding box math so the map and theft
// lookups agree on what area is being searched.
package geo

import (
	"math"
	"strconv"
)

// EarthRadius is the mean radius of Earth according to WGS-84 in meters
const EarthRadius = 6371000.0

// Location represents a geographic coordinate (latitude and longitude)
// with standardized JSON field names.
//
// Example:
//
//	loc := geo.Location{Latitude: 51.5, Longitude: -0.1}
//	box := geo.Around(loc, geo.DefaultOffset)
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String renders the location as "lat,lon", which is also the format the
// theft registry accepts as a proximity location.
func (l Location) String() string {
	return formatDegrees(l.Latitude) + "," + formatDegrees(l.Longitude)
}

// ValidateCoords checks that a latitude/longitude pair is within WGS84 ranges.
func ValidateCoords(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return &InvalidBoundingBoxError{Reason: "latitude " + formatDegrees(lat) + " out of range [-90, 90]"}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return &InvalidBoundingBoxError{Reason: "longitude " + formatDegrees(lon) + " out of range [-180, 180]"}
	}
	return nil
}

// HaversineDistance calculates the great-circle distance between two points
// on the Earth's surface given their latitude and longitude in degrees.
// The result is returned in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadius * c
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
