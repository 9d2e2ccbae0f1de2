package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NERVsystems/bikeparkmcp/pkg/recommend"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// FindBikeParkingTool returns a tool definition for finding bike parking.
func FindBikeParkingTool() mcp.Tool {
	return mcp.NewTool(FindBikeParkingName,
		mcp.WithDescription("Find bike parking near an address or inside a bounding box. "+
			"Returns every amenity=bicycle_parking element with a Google Maps link, "+
			"followed by one entry summarizing recent bike thefts nearby."),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description("Where you want to park, normally an address but a general area works too. "+
				"May be empty when coordinates are given."),
		),
		mcp.WithArray("coordinates",
			mcp.Description("Bounding box of 4 numbers [left, bottom, right, top] in WGS84 degrees. "+
				"Skips geocoding. The area may not exceed 0.25 square degrees."),
			mcp.Items(map[string]any{"type": "number"}),
		),
	)
}

// HandleFindBikeParking runs the recommendation pipeline for one call.
func (r *Registry) HandleFindBikeParking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", FindBikeParkingName, "request_id", uuid.NewString())

	args := req.Params.Arguments
	if err := ValidateArguments(findBikeParkingSchema, args); err != nil {
		logger.Info("rejected arguments", "error", err)
		return ErrorResponse(err.Error()), nil
	}

	request := recommend.Request{
		Location: strings.TrimSpace(mcp.ParseString(req, "location", "")),
	}
	if raw, ok := args["coordinates"]; ok && raw != nil {
		coords, err := parseCoordinates(raw)
		if err != nil {
			return ErrorResponse(err.Error()), nil
		}
		request.Coordinates = coords
	}

	logger.Info("finding bike parking", "location", request.Location, "coordinates", request.Coordinates)

	result, err := r.finder.Recommend(ctx, request)
	if err != nil {
		logger.Error("find bike parking failed", "error", err)
		return ToolError(err), nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}

	logger.Info("found bike parking",
		"parking", len(result.Parking),
		"recent_thefts", len(result.Threat.RecentRecords),
		"theft_data", result.Threat.Available)

	return mcp.NewToolResultText(string(data)), nil
}

func parseCoordinates(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case []float64:
		return v, nil
	case []any:
		coords := make([]float64, 0, len(v))
		for i, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("coordinates[%d] is not a number", i)
			}
			coords = append(coords, f)
		}
		return coords, nil
	default:
		return nil, fmt.Errorf("coordinates must be an array of 4 numbers")
	}
}
