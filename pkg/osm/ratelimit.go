// Package osm provides clients for the OpenStreetMap services and the
// shared HTTP plumbing every upstream call goes through.
package osm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Service names for rate limiting
	ServiceNominatim = "nominatim"
	ServiceOSMAPI    = "osm"
	ServiceBikeIndex = "bikeindex"
)

// Limit describes a token bucket. A non-positive RPS disables throttling.
type Limit struct {
	RPS   float64
	Burst int
}

// RateLimiter manages rate limiting for the upstream services
type RateLimiter struct {
	limiters map[string]*rate.Limiter // fixed at construction
}

// DefaultLimits follows the published usage policies of each service:
// https://operations.osmfoundation.org/policies/nominatim/ and
// https://operations.osmfoundation.org/policies/api/
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		ServiceNominatim: {RPS: 1, Burst: 1},
		ServiceOSMAPI:    {RPS: 2, Burst: 2},
		ServiceBikeIndex: {RPS: 5, Burst: 5},
	}
}

// NewRateLimiter builds one limiter per service.
func NewRateLimiter(limits map[string]Limit) *RateLimiter {
	limiters := make(map[string]*rate.Limiter, len(limits))
	for service, l := range limits {
		limiters[service] = newLimiter(l)
	}
	return &RateLimiter{limiters: limiters}
}

// Unlimited returns a limiter that never blocks for the known services.
func Unlimited() *RateLimiter {
	limits := DefaultLimits()
	for service := range limits {
		limits[service] = Limit{}
	}
	return NewRateLimiter(limits)
}

func newLimiter(l Limit) *rate.Limiter {
	if l.RPS <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := l.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Duration(float64(time.Second)/l.RPS)), burst)
}

// Wait blocks until the rate limit for the specified service allows an event
// or the context is canceled.
func (rl *RateLimiter) Wait(ctx context.Context, service string) error {
	limiter, exists := rl.limiters[service]
	if !exists {
		return fmt.Errorf("no rate limiter defined for service: %s", service)
	}

	if err := limiter.Wait(ctx); err != nil {
		slog.Debug("rate limiter wait error", "service", service, "error", err)
		return err
	}

	return nil
}
