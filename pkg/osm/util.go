package osm

import (
	"log/slog"
	"net/http"
)

const (
	// API endpoints
	NominatimBaseURL = "https://nominatim.openstreetmap.org"
	OSMAPIBaseURL    = "https://api.openstreetmap.org"

	// AmenityBicycleParking is the amenity tag value for bike parking.
	AmenityBicycleParking = "bicycle_parking"
)

// Client talks to Nominatim and the OSM API 0.6.
type Client struct {
	transport    *Transport
	nominatimURL string
	apiURL       string
	logger       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithNominatimURL overrides the geocoder base URL.
func WithNominatimURL(u string) ClientOption {
	return func(c *Client) { c.nominatimURL = u }
}

// WithAPIURL overrides the map API base URL.
func WithAPIURL(u string) ClientOption {
	return func(c *Client) { c.apiURL = u }
}

// NewOSMClient creates a new OSM API client
func NewOSMClient(transport *Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport:    transport,
		nominatimURL: NominatimBaseURL,
		apiURL:       OSMAPIBaseURL,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger sets the logger for the client
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

func nominatimGuidance(status int) string {
	if status == http.StatusTooManyRequests {
		return GuidanceNominatimRateLimit
	}
	return ""
}

func mapGuidance(status int) string {
	switch status {
	case http.StatusBadRequest:
		return GuidanceMapBoundingBox
	case 509: // Bandwidth Limit Exceeded
		return GuidanceMapBandwidth
	}
	return ""
}
