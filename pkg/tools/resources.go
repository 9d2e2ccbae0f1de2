package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NERVsystems/bikeparkmcp/pkg/bikeindex"
	"github.com/NERVsystems/bikeparkmcp/pkg/geo"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	MapGuidelinesURI     = "bike://learn/how-to-use/OpenStreetMap"
	BikeInfoGuidelineURI = "bike://learn/how-to-use/GetBikeInfo"
	BikeInfoURI          = "bike://learn-about-bikes/info"
	MapSampleURI         = "bike://learn/API/OpenStreetMap"
)

// MapSampleBox is the area served by MapSampleURI, east London around
// 51.55N 0.25E. It is kept small so the map API stays under its node limit.
var MapSampleBox = geo.Around(geo.Location{Latitude: 51.55, Longitude: 0.25}, geo.DefaultOffset)

const mapGuidelines = `# Finding bike parking

Call find-bike-parking with the user's address as location. The server
geocodes it and searches a box about 1km across around the result. If you
already know the area, pass coordinates as [left, bottom, right, top]:

- left: western longitude (min longitude)
- bottom: southern latitude (min latitude)
- right: eastern longitude (max longitude)
- top: northern latitude (max latitude)

All values are WGS84 degrees. The OpenStreetMap map API limits:

- the box may not exceed 0.25 square degrees (about 25km x 25km at the equator)
- at most 50,000 nodes are returned per request
- requests are rate limited, so do not call in quick succession

The result is a JSON array. Every element but the last is a bicycle parking
node, way or relation with its tags; nodes carry a googleMaps link. The last
element summarizes bike thefts near the location. Only its recentRecords are
urgent; mention them when recommending a spot.
`

const bikeInfoGuidelines = `# Searching Bike Index

get-bike-index-info searches the Bike Index registry. query is required:
start from the user's own words and add any filters they gave. For a
Brompton use {"query": "Brompton", "manufacturer_name": "Brompton"}.

- stolenness is one of all, non, stolen, proximity
- location and distance (miles) only apply with stolenness=proximity
- page starts at 1, per_page is at most 100 (default 25)

Each bike has id, title, status, url and, when stolen, date_stolen in epoch
seconds and stolen_location.
`

// RegisterResources registers the usage guides and the live registry and
// map samples with the MCP server.
func (r *Registry) RegisterResources(s *server.MCPServer) {
	s.AddResource(mcp.NewResource(MapGuidelinesURI, "Guidelines: find-bike-parking",
		mcp.WithResourceDescription("How to use the find-bike-parking tool and read its result"),
		mcp.WithMIMEType("text/markdown"),
	), textResource(MapGuidelinesURI, mapGuidelines))

	s.AddResource(mcp.NewResource(BikeInfoGuidelineURI, "Guidelines: get-bike-index-info",
		mcp.WithResourceDescription("How to look up bikes and stolen bike reports with get-bike-index-info"),
		mcp.WithMIMEType("text/markdown"),
	), textResource(BikeInfoGuidelineURI, bikeInfoGuidelines))

	s.AddResource(mcp.NewResource(BikeInfoURI, "Bike Information",
		mcp.WithResourceDescription("The latest bikes in the Bike Index registry, as returned by its search endpoint"),
		mcp.WithMIMEType("application/json"),
	), r.HandleBikeInfoResource)

	s.AddResource(mcp.NewResource(MapSampleURI, "OpenStreetMap API",
		mcp.WithResourceDescription("Raw OpenStreetMap map data for a small sample area ("+MapSampleBox.String()+")"),
		mcp.WithMIMEType("application/json"),
	), r.HandleMapSampleResource)
}

// HandleBikeInfoResource serves an unfiltered registry search.
func (r *Registry) HandleBikeInfoResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger := r.logger.With("resource", BikeInfoURI, "request_id", uuid.NewString())

	bikes, err := r.bikes.Search(ctx, bikeindex.SearchQuery{})
	if err != nil {
		logger.Error("bike registry sample failed", "error", err)
		return nil, fmt.Errorf("failed to read %s: %w", BikeInfoURI, err)
	}
	logger.Debug("read bike registry sample", "bikes", len(bikes))
	return jsonResource(BikeInfoURI, bikes)
}

// HandleMapSampleResource serves the map elements inside MapSampleBox.
func (r *Registry) HandleMapSampleResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger := r.logger.With("resource", MapSampleURI, "request_id", uuid.NewString())

	elements, err := r.maps.FetchMap(ctx, MapSampleBox)
	if err != nil {
		logger.Error("map sample failed", "error", err)
		return nil, fmt.Errorf("failed to read %s: %w", MapSampleURI, err)
	}
	logger.Debug("read map sample", "elements", len(elements))
	return jsonResource(MapSampleURI, elements)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func textResource(uri, text string) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     text,
			},
		}, nil
	}
}
