package osm

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/NERVsystems/bikeparkmcp/pkg/geo"
)

// NominatimResult is one candidate from the Nominatim search endpoint.
// Coordinates arrive as decimal strings.
type NominatimResult struct {
	PlaceID     int64    `json:"place_id"`
	DisplayName string   `json:"display_name"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox,omitempty"` // [south, north, west, east]
}

// Geocode resolves free text to a single point using the first Nominatim
// candidate. It returns ErrLocationNotFound when there are no candidates.
func (c *Client) Geocode(ctx context.Context, location string) (geo.Location, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return geo.Location{}, fmt.Errorf("location must not be empty")
	}

	reqURL, err := url.Parse(c.nominatimURL + "/search")
	if err != nil {
		return geo.Location{}, fmt.Errorf("invalid nominatim URL: %w", err)
	}
	q := reqURL.Query()
	q.Set("q", location)
	q.Set("format", "json")
	q.Set("limit", "1")
	reqURL.RawQuery = q.Encode()

	var results []NominatimResult
	if err := c.transport.GetJSON(ctx, ServiceNominatim, "Nominatim", reqURL.String(), nominatimGuidance, &results); err != nil {
		return geo.Location{}, err
	}

	if len(results) == 0 {
		c.logger.Info("no geocoding candidates", "location", location)
		return geo.Location{}, fmt.Errorf("%w: %s", ErrLocationNotFound, location)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return geo.Location{}, NewDecodeError("Nominatim", fmt.Errorf("latitude %q: %w", first.Lat, err))
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return geo.Location{}, NewDecodeError("Nominatim", fmt.Errorf("longitude %q: %w", first.Lon, err))
	}

	c.logger.Debug("geocoded location",
		"location", location,
		"display_name", first.DisplayName,
		"lat", lat,
		"lon", lon)

	return geo.Location{Latitude: lat, Longitude: lon}, nil
}
