package osm

import (
	"context"
	"net/url"

	"github.com/NERVsystems/bikeparkmcp/pkg/geo"
)

// Member is a relation member reference.
type Member struct {
	Type string `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
}

// Element is a node, way or relation from the map API. Lat and Lon are
// pointers because ways and relations carry no coordinates of their own.
type Element struct {
	Type      string            `json:"type"`
	ID        int64             `json:"id"`
	Lat       *float64          `json:"lat,omitempty"`
	Lon       *float64          `json:"lon,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
	Version   int               `json:"version,omitempty"`
	Changeset int64             `json:"changeset,omitempty"`
	User      string            `json:"user,omitempty"`
	UID       int64             `json:"uid,omitempty"`
	Nodes     []int64           `json:"nodes,omitempty"`
	Members   []Member          `json:"members,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// Bounds is the extent echoed back by the map API.
type Bounds struct {
	MinLat float64 `json:"minlat"`
	MinLon float64 `json:"minlon"`
	MaxLat float64 `json:"maxlat"`
	MaxLon float64 `json:"maxlon"`
}

// MapResponse is the body of GET /api/0.6/map.json.
type MapResponse struct {
	Version     string    `json:"version"`
	Generator   string    `json:"generator,omitempty"`
	Copyright   string    `json:"copyright,omitempty"`
	Attribution string    `json:"attribution,omitempty"`
	License     string    `json:"license,omitempty"`
	Bounds      *Bounds   `json:"bounds,omitempty"`
	Elements    []Element `json:"elements"`
}

// FetchMap returns every element inside bbox. The box is not re-validated
// here; callers run geo.BoundingBox.Validate first. Errors are not retried.
func (c *Client) FetchMap(ctx context.Context, bbox geo.BoundingBox) ([]Element, error) {
	reqURL, err := url.Parse(c.apiURL + "/api/0.6/map.json")
	if err != nil {
		return nil, err
	}
	q := reqURL.Query()
	q.Set("bbox", bbox.String())
	reqURL.RawQuery = q.Encode()

	var resp MapResponse
	if err := c.transport.GetJSON(ctx, ServiceOSMAPI, "OpenStreetMap", reqURL.String(), mapGuidance, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched map elements", "bbox", bbox.String(), "count", len(resp.Elements))
	return resp.Elements, nil
}
