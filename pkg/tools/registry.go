// Package tools provides the bike parking MCP tool implementations.
package tools

import (
	"context"
	"log/slog"

	"github.com/NERVsystems/bikeparkmcp/pkg/bikeindex"
	"github.com/NERVsystems/bikeparkmcp/pkg/geo"
	"github.com/NERVsystems/bikeparkmcp/pkg/osm"
	"github.com/NERVsystems/bikeparkmcp/pkg/recommend"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names as advertised to MCP clients.
const (
	FindBikeParkingName = "find-bike-parking"
	GetBikeInfoName     = "get-bike-index-info"
)

// ParkingFinder runs the parking recommendation pipeline.
type ParkingFinder interface {
	Recommend(ctx context.Context, req recommend.Request) (recommend.Result, error)
}

// BikeSearcher queries the bike registry directly.
type BikeSearcher interface {
	Search(ctx context.Context, q bikeindex.SearchQuery) ([]bikeindex.Bike, error)
}

// MapFetcher downloads raw map data for a bounding box.
type MapFetcher interface {
	FetchMap(ctx context.Context, bbox geo.BoundingBox) ([]osm.Element, error)
}

// Registry holds all MCP tool and resource registrations for the bike parking service.
type Registry struct {
	logger *slog.Logger
	finder ParkingFinder
	bikes  BikeSearcher
	maps   MapFetcher
}

// NewRegistry creates a new MCP tool registry.
func NewRegistry(logger *slog.Logger, finder ParkingFinder, bikes BikeSearcher, maps MapFetcher) *Registry {
	return &Registry{
		logger: logger,
		finder: finder,
		bikes:  bikes,
		maps:   maps,
	}
}

// ToolDefinition represents a bike parking MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns all MCP tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        FindBikeParkingName,
			Description: "Find bike parking near a location, with nearby theft risk",
			Tool:        FindBikeParkingTool(),
			Handler:     r.HandleFindBikeParking,
		},
		{
			Name:        GetBikeInfoName,
			Description: "Search the Bike Index registry for bikes",
			Tool:        GetBikeInfoTool(),
			Handler:     r.HandleGetBikeInfo,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, def.Handler)
	}
}
