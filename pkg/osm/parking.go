package osm

import (
	"strconv"

	"github.com/NERVsystems/bikeparkmcp/pkg/geo"
)

// GoogleMapsURL is the link template; lat,lon is appended as the query.
const GoogleMapsURL = "https://www.google.com/maps/search/?api=1&query="

// ParkingElement is a bicycle parking element with convenience fields.
type ParkingElement struct {
	Element
	GoogleMaps string   `json:"googleMaps,omitempty"`
	Distance   *float64 `json:"distance,omitempty"` // meters from the search center
}

// IsBicycleParking reports whether the element is tagged amenity=bicycle_parking.
// Elements without tags are not parking.
func (e Element) IsBicycleParking() bool {
	return e.Tags["amenity"] == AmenityBicycleParking
}

// HasCoordinates reports whether both lat and lon are present.
func (e Element) HasCoordinates() bool {
	return e.Lat != nil && e.Lon != nil
}

// FilterBicycleParking keeps bicycle parking elements in input order.
// Elements with coordinates get a Google Maps link and, when center is
// non-nil, their distance from it.
func FilterBicycleParking(elements []Element, center *geo.Location) []ParkingElement {
	parking := make([]ParkingElement, 0)
	for _, e := range elements {
		if !e.IsBicycleParking() {
			continue
		}
		p := ParkingElement{Element: e}
		if e.HasCoordinates() {
			p.GoogleMaps = MapsLink(*e.Lat, *e.Lon)
			if center != nil {
				d := geo.HaversineDistance(center.Latitude, center.Longitude, *e.Lat, *e.Lon)
				p.Distance = &d
			}
		}
		parking = append(parking, p)
	}
	return parking
}

// MapsLink formats the Google Maps link for a point.
func MapsLink(lat, lon float64) string {
	return GoogleMapsURL +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(lon, 'f', -1, 64)
}
