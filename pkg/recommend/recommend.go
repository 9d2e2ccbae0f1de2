// Package recommend composes geocoding, map features and theft risk into a
// single bike parking recommendation.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NERVsystems/bikeparkmcp/pkg/bikeindex"
	"github.com/NERVsystems/bikeparkmcp/pkg/geo"
	"github.com/NERVsystems/bikeparkmcp/pkg/osm"
	"golang.org/x/sync/errgroup"
)

// Geocoder resolves free text to a point.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (geo.Location, error)
}

// MapFetcher returns the raw map elements inside a box.
type MapFetcher interface {
	FetchMap(ctx context.Context, bbox geo.BoundingBox) ([]osm.Element, error)
}

// TheftAssessor summarizes theft activity around a location.
type TheftAssessor interface {
	Assess(ctx context.Context, location string) (bikeindex.ThreatSummary, error)
}

// ErrNoLocation is returned when neither text nor coordinates are given.
var ErrNoLocation = errors.New("either location or coordinates is required")

// Request is one find-bike-parking invocation.
type Request struct {
	Location    string
	Coordinates []float64 // [left, bottom, right, top]; skips geocoding when set
}

// Recommender runs the parking and theft lookups for a request.
type Recommender struct {
	geocoder Geocoder
	maps     MapFetcher
	thefts   TheftAssessor
	offset   float64
	logger   *slog.Logger
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithOffset sets the half-width of derived boxes in degrees.
func WithOffset(offset float64) Option {
	return func(r *Recommender) { r.offset = offset }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recommender) { r.logger = logger }
}

// New builds a Recommender from its three collaborators.
func New(geocoder Geocoder, maps MapFetcher, thefts TheftAssessor, opts ...Option) *Recommender {
	r := &Recommender{
		geocoder: geocoder,
		maps:     maps,
		thefts:   thefts,
		offset:   geo.DefaultOffset,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SearchArea resolves the request to a validated bounding box and its
// center. Explicit coordinates skip geocoding but are validated the same
// way as derived boxes, so an oversized box never reaches the map API.
func (r *Recommender) SearchArea(ctx context.Context, req Request) (geo.BoundingBox, geo.Location, error) {
	var bbox geo.BoundingBox

	switch {
	case req.Coordinates != nil:
		b, err := geo.FromArray(req.Coordinates)
		if err != nil {
			return geo.BoundingBox{}, geo.Location{}, err
		}
		bbox = b
	case strings.TrimSpace(req.Location) != "":
		loc, err := r.geocoder.Geocode(ctx, req.Location)
		if err != nil {
			return geo.BoundingBox{}, geo.Location{}, err
		}
		bbox = geo.Around(loc, r.offset)
	default:
		return geo.BoundingBox{}, geo.Location{}, ErrNoLocation
	}

	if err := bbox.Validate(); err != nil {
		return geo.BoundingBox{}, geo.Location{}, err
	}
	return bbox, bbox.Center(), nil
}

// Recommend returns the bicycle parking inside the search area followed by
// a theft summary. The map and theft lookups run concurrently. A map
// failure fails the request; a theft failure degrades to a placeholder
// summary so the parking data is still returned.
func (r *Recommender) Recommend(ctx context.Context, req Request) (Result, error) {
	bbox, center, err := r.SearchArea(ctx, req)
	if err != nil {
		return Result{}, err
	}

	theftLocation := strings.TrimSpace(req.Location)
	if theftLocation == "" {
		theftLocation = center.String()
	}

	var (
		parking  []osm.ParkingElement
		threat   bikeindex.ThreatSummary
		theftErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		elements, err := r.maps.FetchMap(gctx, bbox)
		if err != nil {
			return fmt.Errorf("map features: %w", err)
		}
		parking = osm.FilterBicycleParking(elements, &center)
		r.logger.Debug("filtered parking", "elements", len(elements), "parking", len(parking))
		return nil
	})
	g.Go(func() error {
		// never returned, so a registry outage cannot cancel the map lookup
		threat, theftErr = r.thefts.Assess(gctx, theftLocation)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if theftErr != nil {
		r.logger.Warn("theft risk unavailable, returning parking only",
			"location", theftLocation,
			"error", theftErr)
	}

	return Assemble(parking, threat, theftErr), nil
}
