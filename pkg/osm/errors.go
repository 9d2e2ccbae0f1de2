package osm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrLocationNotFound is returned when the geocoder has no candidates.
	ErrLocationNotFound = errors.New("location not found")

	// ErrCollaboratorUnavailable covers transport failures and non-200
	// responses from any upstream service.
	ErrCollaboratorUnavailable = errors.New("upstream service unavailable")

	// ErrMalformedResponse is returned when an upstream body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// APIError represents an error that occurred while communicating with
// an external API service, with information to help users recover.
type APIError struct {
	Service     string // The API service name (e.g., "Nominatim", "BikeIndex")
	StatusCode  int    // HTTP status code, 0 for transport failures
	Message     string // Error message
	Recoverable bool   // Whether the error can be recovered from
	Guidance    string // Guidance for users on how to recover
	Kind        error  // ErrCollaboratorUnavailable or ErrMalformedResponse
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s. %s", e.Summary(), e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Summary(), e.Message)
}

// Summary names the service and, when a response arrived, its status code.
func (e *APIError) Summary() string {
	if e.StatusCode == 0 {
		return e.Service + " API error"
	}
	return fmt.Sprintf("%s API error (%d)", e.Service, e.StatusCode)
}

// Unwrap exposes the error kind to errors.Is.
func (e *APIError) Unwrap() error {
	return e.Kind
}

// Common error guidance messages
const (
	GuidanceNominatimAddressFormat = "Try using a more standard address format or provide city and country."
	GuidanceNominatimRateLimit     = "Please try again in a few seconds."

	GuidanceMapBoundingBox = "The bounding box is too large or malformed. Use [left, bottom, right, top] with an area of at most 0.25 square degrees."
	GuidanceMapBandwidth   = "The map service bandwidth limit was exceeded. Please wait a minute and try again."

	GuidanceBikeIndexGeneral = "Check the search parameters; per_page must be at most 100 and location is only used with stolenness=proximity."

	GuidanceGeneral      = "Please try again later or modify your request parameters."
	GuidanceNetworkError = "Check your internet connection and try again."
	GuidanceDataError    = "The data received was incomplete or malformed. Try different search parameters."
)

// NewAPIError creates a new APIError with appropriate guidance based on status code.
func NewAPIError(service string, statusCode int, message, guidance string) *APIError {
	if guidance == "" {
		switch statusCode {
		case http.StatusTooManyRequests:
			guidance = "Rate limit exceeded. Please try again in a few moments."
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			guidance = "The request timed out. Try reducing the search area or simplifying the query."
		case http.StatusBadRequest:
			guidance = "The request was invalid. Check your parameters and try again."
		case http.StatusInternalServerError:
			guidance = "The server encountered an error. This is likely temporary, please try again later."
		case http.StatusServiceUnavailable:
			guidance = "The service is temporarily unavailable. Please try again later."
		default:
			guidance = GuidanceGeneral
		}
	}

	return &APIError{
		Service:     service,
		StatusCode:  statusCode,
		Message:     message,
		Recoverable: statusCode != http.StatusBadRequest,
		Guidance:    guidance,
		Kind:        ErrCollaboratorUnavailable,
	}
}

// NewTransportError wraps a network-level failure.
func NewTransportError(service string, err error) *APIError {
	return &APIError{
		Service:     service,
		Message:     err.Error(),
		Recoverable: true,
		Guidance:    GuidanceNetworkError,
		Kind:        ErrCollaboratorUnavailable,
	}
}

// NewDecodeError wraps a failure to decode an upstream body.
func NewDecodeError(service string, err error) *APIError {
	return &APIError{
		Service:     service,
		StatusCode:  http.StatusOK,
		Message:     fmt.Sprintf("failed to decode response: %v", err),
		Recoverable: false,
		Guidance:    GuidanceDataError,
		Kind:        ErrMalformedResponse,
	}
}
