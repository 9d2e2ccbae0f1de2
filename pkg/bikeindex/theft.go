package bikeindex

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// StolennessProximity ranks results by distance from a location.
	StolennessProximity = "proximity"

	// DefaultDistance is the proximity radius in miles.
	DefaultDistance = "2"

	// DefaultWindow is the recency window for urgent thefts.
	DefaultWindow = 90 * 24 * time.Hour

	// DefaultPerPage matches the registry's own page size.
	DefaultPerPage = 25
)

// Registry is the subset of the Bike Index API the assessor needs.
type Registry interface {
	Search(ctx context.Context, q SearchQuery) ([]Bike, error)
	Count(ctx context.Context, q CountQuery) (Counts, error)
}

// ThreatSummary is the theft picture around one location.
type ThreatSummary struct {
	Message         string `json:"message"`
	TotalTheftCount int    `json:"totalTheftCount"`
	FetchedCount    int    `json:"fetchedCount"`
	RecentRecords   []Bike `json:"recentRecords"`
	Available       bool   `json:"available"`
	Error           string `json:"error,omitempty"`
}

// Unavailable is the placeholder used when the registry could not be queried.
func Unavailable(err error) ThreatSummary {
	return ThreatSummary{
		Message:       fmt.Sprintf("Theft risk data unavailable: %v", err),
		RecentRecords: []Bike{},
		Available:     false,
		Error:         err.Error(),
	}
}

// Assessor derives a ThreatSummary from proximity count and search results.
type Assessor struct {
	registry Registry
	distance string
	window   time.Duration
	perPage  int
	maxPages int
	now      func() time.Time
	logger   *slog.Logger
}

// AssessorOption configures an Assessor.
type AssessorOption func(*Assessor)

// WithDistance sets the proximity radius in miles.
func WithDistance(d string) AssessorOption {
	return func(a *Assessor) { a.distance = d }
}

// WithWindow sets the recency window.
func WithWindow(w time.Duration) AssessorOption {
	return func(a *Assessor) { a.window = w }
}

// WithPaging bounds how many search pages are read. Paging stops early on
// a short page.
func WithPaging(perPage, maxPages int) AssessorOption {
	return func(a *Assessor) {
		a.perPage = perPage
		a.maxPages = maxPages
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AssessorOption {
	return func(a *Assessor) { a.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AssessorOption {
	return func(a *Assessor) { a.logger = logger }
}

// NewAssessor returns an assessor reading a single page, as the registry's
// first page is what callers historically saw.
func NewAssessor(registry Registry, opts ...AssessorOption) *Assessor {
	a := &Assessor{
		registry: registry,
		distance: DefaultDistance,
		window:   DefaultWindow,
		perPage:  DefaultPerPage,
		maxPages: 1,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.perPage < 1 {
		a.perPage = DefaultPerPage
	}
	if a.maxPages < 1 {
		a.maxPages = 1
	}
	return a
}

// Assess counts all-time proximity thefts and filters the fetched records
// to the recency window. The count and the search run concurrently; the
// first failure is returned and no partial summary is built.
func (a *Assessor) Assess(ctx context.Context, location string) (ThreatSummary, error) {
	var (
		counts Counts
		bikes  []Bike
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = a.registry.Count(gctx, CountQuery{
			Location:   location,
			Stolenness: StolennessProximity,
			Distance:   a.distance,
		})
		if err != nil {
			return fmt.Errorf("theft count: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bikes, err = a.searchPages(gctx, location)
		if err != nil {
			return fmt.Errorf("theft search: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ThreatSummary{}, err
	}

	recent := RecentThefts(bikes, a.now(), a.window)
	summary := ThreatSummary{
		Message:         Message(a.window, len(recent), len(bikes)),
		TotalTheftCount: counts.ProximityCount(),
		FetchedCount:    len(bikes),
		RecentRecords:   recent,
		Available:       true,
	}

	a.logger.Debug("assessed theft risk",
		"location", location,
		"total", summary.TotalTheftCount,
		"fetched", summary.FetchedCount,
		"recent", len(recent))

	return summary, nil
}

func (a *Assessor) searchPages(ctx context.Context, location string) ([]Bike, error) {
	var all []Bike
	for page := 1; page <= a.maxPages; page++ {
		bikes, err := a.registry.Search(ctx, SearchQuery{
			Query:      "",
			Location:   location,
			Stolenness: StolennessProximity,
			Distance:   a.distance,
			Page:       page,
			PerPage:    a.perPage,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, bikes...)
		if len(bikes) < a.perPage {
			break
		}
	}
	return all, nil
}

// RecentThefts returns, in order, the bikes stolen after now-window.
// Bikes with no date_stolen are never recent.
func RecentThefts(bikes []Bike, now time.Time, window time.Duration) []Bike {
	cutoff := now.UnixMilli() - window.Milliseconds()
	recent := make([]Bike, 0)
	for _, b := range bikes {
		if b.DateStolen == nil {
			continue
		}
		if *b.DateStolen*1000 > cutoff {
			recent = append(recent, b)
		}
	}
	return recent
}

// Message renders the one-line summary shown to the cyclist.
func Message(window time.Duration, recent, fetched int) string {
	days := int(window / (24 * time.Hour))
	return fmt.Sprintf("Bike thefts in last %d days: %d recent (out of %d total shown)", days, recent, fetched)
}
