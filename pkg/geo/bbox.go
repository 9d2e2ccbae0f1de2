package geo

import (
	"errors"
	"fmt"
)

const (
	// DefaultOffset is the half-width in degrees of a derived box (~550m).
	// It keeps the box far below the map API's area and node ceilings while
	// still covering a comfortable walk.
	DefaultOffset = 0.005

	// MaxArea is the largest box the OSM map API accepts, in square degrees.
	MaxArea = 0.25
)

var (
	// ErrBoundingBoxTooLarge is returned when a box exceeds MaxArea.
	ErrBoundingBoxTooLarge = errors.New("bounding box too large")

	// ErrInvalidBoundingBox is returned for malformed or misordered boxes.
	ErrInvalidBoundingBox = errors.New("invalid bounding box")
)

// BoundingBoxTooLargeError reports the computed area of a rejected box.
type BoundingBoxTooLargeError struct {
	Area  float64
	Limit float64
}

func (e *BoundingBoxTooLargeError) Error() string {
	return fmt.Sprintf("Bounding box too large (%g sq deg). Max is %g sq degrees (~25km × 25km)", e.Area, e.Limit)
}

// Unwrap lets callers match with errors.Is(err, ErrBoundingBoxTooLarge).
func (e *BoundingBoxTooLargeError) Unwrap() error { return ErrBoundingBoxTooLarge }

// InvalidBoundingBoxError describes why a box or coordinate was rejected.
type InvalidBoundingBoxError struct {
	Reason string
}

func (e *InvalidBoundingBoxError) Error() string {
	return "invalid bounding box: " + e.Reason
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidBoundingBox).
func (e *InvalidBoundingBoxError) Unwrap() error { return ErrInvalidBoundingBox }

// BoundingBox is a WGS84 rectangle. Field order mirrors the OSM bbox
// parameter: left, bottom, right, top.
type BoundingBox struct {
	West  float64 `json:"west"`  // minimum longitude
	South float64 `json:"south"` // minimum latitude
	East  float64 `json:"east"`  // maximum longitude
	North float64 `json:"north"` // maximum latitude
}

// FromArray builds a box from a caller-supplied [left, bottom, right, top].
// Only the length is checked here; call Validate before using the box.
func FromArray(coords []float64) (BoundingBox, error) {
	if len(coords) != 4 {
		return BoundingBox{}, &InvalidBoundingBoxError{
			Reason: fmt.Sprintf("expected 4 values [left, bottom, right, top], got %d", len(coords)),
		}
	}
	return BoundingBox{
		West:  coords[0],
		South: coords[1],
		East:  coords[2],
		North: coords[3],
	}, nil
}

// Around derives a square box centered on loc, offset degrees on each side.
func Around(loc Location, offset float64) BoundingBox {
	return BoundingBox{
		West:  loc.Longitude - offset,
		South: loc.Latitude - offset,
		East:  loc.Longitude + offset,
		North: loc.Latitude + offset,
	}
}

// Width returns the east-west extent in degrees.
func (bb BoundingBox) Width() float64 { return bb.East - bb.West }

// Height returns the north-south extent in degrees.
func (bb BoundingBox) Height() float64 { return bb.North - bb.South }

// Area returns Width*Height in square degrees.
func (bb BoundingBox) Area() float64 { return bb.Width() * bb.Height() }

// Center returns the midpoint of the box.
func (bb BoundingBox) Center() Location {
	return Location{
		Latitude:  (bb.South + bb.North) / 2,
		Longitude: (bb.West + bb.East) / 2,
	}
}

// Validate checks coordinate ranges, corner ordering and the MaxArea limit.
// Explicit and derived boxes both pass through here before any map request.
func (bb BoundingBox) Validate() error {
	if err := ValidateCoords(bb.South, bb.West); err != nil {
		return err
	}
	if err := ValidateCoords(bb.North, bb.East); err != nil {
		return err
	}
	if bb.West >= bb.East {
		return &InvalidBoundingBoxError{Reason: fmt.Sprintf("left (%g) must be less than right (%g)", bb.West, bb.East)}
	}
	if bb.South >= bb.North {
		return &InvalidBoundingBoxError{Reason: fmt.Sprintf("bottom (%g) must be less than top (%g)", bb.South, bb.North)}
	}
	if area := bb.Area(); area > MaxArea {
		return &BoundingBoxTooLargeError{Area: area, Limit: MaxArea}
	}
	return nil
}

// String returns "left,bottom,right,top" for the map API bbox parameter.
func (bb BoundingBox) String() string {
	return formatDegrees(bb.West) + "," + formatDegrees(bb.South) + "," +
		formatDegrees(bb.East) + "," + formatDegrees(bb.North)
}
