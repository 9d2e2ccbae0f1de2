// Package server provides the MCP server for bike parking recommendations.
package server

import (
	"log/slog"

	"github.com/NERVsystems/bikeparkmcp/pkg/bikeindex"
	"github.com/NERVsystems/bikeparkmcp/pkg/config"
	"github.com/NERVsystems/bikeparkmcp/pkg/osm"
	"github.com/NERVsystems/bikeparkmcp/pkg/recommend"
	"github.com/NERVsystems/bikeparkmcp/pkg/tools"
	"github.com/NERVsystems/bikeparkmcp/pkg/tools/prompts"
	"github.com/NERVsystems/bikeparkmcp/pkg/version"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is the name of the MCP server
const ServerName = "bike-parking-mcp-server"

// Components are the upstream clients and the pipeline built from a Config.
type Components struct {
	Transport   *osm.Transport
	OSM         *osm.Client
	Bikes       *bikeindex.Client
	Assessor    *bikeindex.Assessor
	Recommender *recommend.Recommender
}

// NewComponents wires the upstream clients behind one shared transport.
func NewComponents(cfg *config.Config, logger *slog.Logger) *Components {
	transport := osm.NewTransport(
		osm.WithHTTPClient(osm.NewHTTPClient(cfg.HTTPTimeout)),
		osm.WithUserAgent(cfg.UserAgent),
		osm.WithRateLimiter(osm.NewRateLimiter(cfg.Limits())),
		osm.WithTransportLogger(logger),
	)

	osmClient := osm.NewOSMClient(transport,
		osm.WithNominatimURL(cfg.Nominatim.URL),
		osm.WithAPIURL(cfg.OSM.URL),
	)
	osmClient.SetLogger(logger)

	bikes := bikeindex.NewClient(transport, cfg.BikeIndex.URL, logger)

	assessor := bikeindex.NewAssessor(bikes,
		bikeindex.WithDistance(cfg.Theft.Distance),
		bikeindex.WithWindow(cfg.Theft.Window()),
		bikeindex.WithPaging(cfg.Theft.PerPage, cfg.Theft.MaxPages),
		bikeindex.WithLogger(logger),
	)

	rec := recommend.New(osmClient, osmClient, assessor,
		recommend.WithOffset(cfg.BBox.Offset),
		recommend.WithLogger(logger),
	)

	return &Components{
		Transport:   transport,
		OSM:         osmClient,
		Bikes:       bikes,
		Assessor:    assessor,
		Recommender: rec,
	}
}

// Server encapsulates the MCP server with the bike parking tools.
type Server struct {
	srv    *server.MCPServer
	logger *slog.Logger
}

// NewServer creates the MCP server with all tools, prompts and resources registered.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	logger.Info("initializing bike parking MCP server",
		"name", ServerName,
		"version", version.BuildVersion)

	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	c := NewComponents(cfg, logger)

	registry := tools.NewRegistry(logger, c.Recommender, c.Bikes, c.OSM)
	registry.RegisterTools(srv)
	prompts.RegisterBikeParkingPrompts(srv)
	registry.RegisterResources(srv)

	return &Server{srv: srv, logger: logger}, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Run starts the MCP server using stdin/stdout for communication.
func (s *Server) Run() error {
	s.logger.Info("server initialized, waiting for requests")
	return server.ServeStdio(s.srv)
}
