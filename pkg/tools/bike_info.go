package tools

import (
	"context"
	"encoding/json"

	"github.com/NERVsystems/bikeparkmcp/pkg/bikeindex"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetBikeInfoTool returns a tool definition for searching the bike registry.
func GetBikeInfoTool() mcp.Tool {
	return mcp.NewTool(GetBikeInfoName,
		mcp.WithDescription("Search Bike Index for bikes. Start from a full-text query and add any filters the user gave, "+
			"e.g. for a Brompton use query=Brompton and manufacturer_name=Brompton."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Full text search of the bike"),
		),
		mcp.WithString("frame_model", mcp.Description("Frame model name")),
		mcp.WithString("title", mcp.Description("Bike title")),
		mcp.WithString("manufacturer_name", mcp.Description("Manufacturer name")),
		mcp.WithBoolean("stolen", mcp.Description("Filter by stolen status")),
		mcp.WithString("location",
			mcp.Description("General location of the theft (city, zip code). Ignored unless stolenness is proximity"),
		),
		mcp.WithString("stolenness",
			mcp.Description("One of all, non, stolen, proximity"),
			mcp.Enum("all", "non", "stolen", "proximity"),
		),
		mcp.WithString("distance", mcp.Description("Distance in miles from location, used with stolenness=proximity")),
		mcp.WithNumber("page", mcp.Description("Page number (default 1)")),
		mcp.WithNumber("per_page", mcp.Description("Results per page (default 25, max 100)")),
	)
}

// HandleGetBikeInfo forwards a registry search and returns the bikes found.
func (r *Registry) HandleGetBikeInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", GetBikeInfoName, "request_id", uuid.NewString())

	args := req.Params.Arguments
	if err := ValidateArguments(getBikeInfoSchema, args); err != nil {
		logger.Info("rejected arguments", "error", err)
		return ErrorResponse(err.Error()), nil
	}

	query := bikeindex.SearchQuery{
		Query:            mcp.ParseString(req, "query", ""),
		FrameModel:       mcp.ParseString(req, "frame_model", ""),
		Title:            mcp.ParseString(req, "title", ""),
		ManufacturerName: mcp.ParseString(req, "manufacturer_name", ""),
		Location:         mcp.ParseString(req, "location", ""),
		Stolenness:       mcp.ParseString(req, "stolenness", ""),
		Distance:         mcp.ParseString(req, "distance", ""),
		Page:             int(mcp.ParseFloat64(req, "page", 0)),
		PerPage:          int(mcp.ParseFloat64(req, "per_page", 0)),
	}
	if _, ok := args["stolen"]; ok {
		stolen := mcp.ParseBoolean(req, "stolen", false)
		query.Stolen = &stolen
	}

	bikes, err := r.bikes.Search(ctx, query)
	if err != nil {
		logger.Error("bike search failed", "error", err)
		return ToolError(err), nil
	}
	if bikes == nil {
		bikes = []bikeindex.Bike{}
	}

	data, err := json.Marshal(bikes)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}

	logger.Info("bike search complete", "results", len(bikes))
	return mcp.NewToolResultText(string(data)), nil
}
