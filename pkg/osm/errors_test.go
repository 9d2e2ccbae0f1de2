package osm

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "status code",
			err:  NewAPIError("Nominatim", http.StatusTooManyRequests, "Too Many Requests", GuidanceNominatimRateLimit),
			want: "Nominatim API error (429): Too Many Requests. " + GuidanceNominatimRateLimit,
		},
		{
			name: "transport failure has no status",
			err:  NewTransportError("OpenStreetMap", errors.New("connection refused")),
			want: "OpenStreetMap API error: connection refused. " + GuidanceNetworkError,
		},
		{
			name: "no guidance",
			err:  &APIError{Service: "BikeIndex", StatusCode: http.StatusBadGateway, Message: "Bad Gateway"},
			want: "BikeIndex API error (502): Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
