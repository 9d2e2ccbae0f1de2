// Package bikeindex is a client for the Bike Index theft registry and the
// theft-risk assessment built on top of it.
package bikeindex

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/NERVsystems/bikeparkmcp/pkg/osm"
	"github.com/go-playground/validator/v10"
)

// BaseURL is the public Bike Index API host.
const BaseURL = "https://bikeindex.org"

var validate = validator.New()

// Bike is one record returned by the registry search endpoint.
type Bike struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	ManufacturerName   string    `json:"manufacturer_name,omitempty"`
	FrameModel         string    `json:"frame_model,omitempty"`
	FrameColors        []string  `json:"frame_colors,omitempty"`
	Year               *int      `json:"year,omitempty"`
	Serial             string    `json:"serial,omitempty"`
	Status             string    `json:"status"`
	Stolen             bool      `json:"stolen"`
	StolenLocation     string    `json:"stolen_location,omitempty"`
	StolenCoordinates  []float64 `json:"stolen_coordinates,omitempty"`
	DateStolen         *int64    `json:"date_stolen,omitempty"` // epoch seconds
	Description        *string   `json:"description,omitempty"`
	URL                string    `json:"url"`
	Thumb              *string   `json:"thumb,omitempty"`
	LargeImg           *string   `json:"large_img,omitempty"`
	PropulsionTypeSlug string    `json:"propulsion_type_slug,omitempty"`
	CycleTypeSlug      string    `json:"cycle_type_slug,omitempty"`
}

// SearchQuery holds the search endpoint parameters. Zero values are not sent.
type SearchQuery struct {
	Query            string `json:"query"`
	FrameModel       string `json:"frame_model,omitempty"`
	Title            string `json:"title,omitempty"`
	ManufacturerName string `json:"manufacturer_name,omitempty"`
	Stolen           *bool  `json:"stolen,omitempty"`
	Location         string `json:"location,omitempty"`
	Stolenness       string `json:"stolenness,omitempty" validate:"omitempty,oneof=all non stolen proximity"`
	Distance         string `json:"distance,omitempty" validate:"omitempty,numeric"`
	Page             int    `json:"page,omitempty" validate:"omitempty,min=1"`
	PerPage          int    `json:"per_page,omitempty" validate:"omitempty,min=1,max=100"`
}

// Validate checks the query against the registry's documented limits.
func (q SearchQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid bike search: %w", err)
	}
	return nil
}

// Values encodes every present field as a query parameter.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("query", q.Query)
	set("location", q.Location)
	set("stolenness", q.Stolenness)
	set("distance", q.Distance)
	set("frame_model", q.FrameModel)
	set("title", q.Title)
	set("manufacturer_name", q.ManufacturerName)
	if q.Stolen != nil {
		v.Set("stolen", strconv.FormatBool(*q.Stolen))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// CountQuery holds the count endpoint parameters.
type CountQuery struct {
	Location   string
	Stolenness string
	Distance   string
}

// Counts is the body of /api/v3/search/count. Proximity is a pointer so a
// missing field can be told apart from zero.
type Counts struct {
	Proximity *int `json:"proximity,omitempty"`
	Stolen    int  `json:"stolen"`
	Non       int  `json:"non"`
}

// ProximityCount returns the proximity count, or 0 when absent.
func (c Counts) ProximityCount() int {
	if c.Proximity == nil {
		return 0
	}
	return *c.Proximity
}

// Client is a Bike Index API v3 client.
type Client struct {
	transport *osm.Transport
	baseURL   string
	logger    *slog.Logger
}

// NewClient creates a client using the shared transport.
func NewClient(transport *osm.Transport, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		transport: transport,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Search forwards the query to /api/v3/search and returns the bikes as-is.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]Bike, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + "/api/v3/search?" + q.Values().Encode()

	var resp struct {
		Bikes []Bike `json:"bikes"`
	}
	if err := c.transport.GetJSON(ctx, osm.ServiceBikeIndex, "BikeIndex", reqURL, guidance, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("bike search", "page", q.Page, "results", len(resp.Bikes))
	return resp.Bikes, nil
}

// Count queries /api/v3/search/count.
func (c *Client) Count(ctx context.Context, q CountQuery) (Counts, error) {
	v := url.Values{}
	v.Set("stolenness", q.Stolenness)
	v.Set("location", q.Location)
	v.Set("distance", q.Distance)

	var counts Counts
	if err := c.transport.GetJSON(ctx, osm.ServiceBikeIndex, "BikeIndex", c.baseURL+"/api/v3/search/count?"+v.Encode(), guidance, &counts); err != nil {
		return Counts{}, err
	}
	return counts, nil
}

func guidance(status int) string {
	if status == http.StatusBadRequest {
		return osm.GuidanceBikeIndexGeneral
	}
	return ""
}
