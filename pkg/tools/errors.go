package tools

import (
	"errors"
	"fmt"

	"github.com/NERVsystems/bikeparkmcp/pkg/geo"
	"github.com/NERVsystems/bikeparkmcp/pkg/osm"
	"github.com/NERVsystems/bikeparkmcp/pkg/recommend"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	guidanceLocationNotFound = osm.GuidanceNominatimAddressFormat
	guidanceBoxTooLarge      = "Use a smaller bounding box, or pass a location and let the server derive one."
	guidanceBoxInvalid       = "Coordinates are [left, bottom, right, top] in WGS84 degrees, with left < right and bottom < top."
	guidanceMissingLocation  = "Provide a location, or coordinates as [left, bottom, right, top]."
)

// ErrorWithGuidance returns a properly formatted error response with user guidance.
func ErrorWithGuidance(err *osm.APIError) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s: %s\n\nGuidance: %s", err.Summary(), err.Message, err.Guidance)
	return mcp.NewToolResultError(errorText)
}

// ErrorResponse is used for consistent error reporting
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// ToolError converts a pipeline error into a tool error result, attaching
// guidance for the error kinds a caller can act on.
func ToolError(err error) *mcp.CallToolResult {
	var apiErr *osm.APIError
	if errors.As(err, &apiErr) {
		return ErrorWithGuidance(apiErr)
	}

	var guidance string
	switch {
	case errors.Is(err, osm.ErrLocationNotFound):
		guidance = guidanceLocationNotFound
	case errors.Is(err, geo.ErrBoundingBoxTooLarge):
		guidance = guidanceBoxTooLarge
	case errors.Is(err, geo.ErrInvalidBoundingBox):
		guidance = guidanceBoxInvalid
	case errors.Is(err, recommend.ErrNoLocation):
		guidance = guidanceMissingLocation
	default:
		return ErrorResponse("Error: " + err.Error())
	}
	return ErrorResponse(fmt.Sprintf("Error: %s\n\nGuidance: %s", err.Error(), guidance))
}
