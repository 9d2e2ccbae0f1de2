package osm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NERVsystems/bikeparkmcp/pkg/geo"
	"github.com/NERVsystems/bikeparkmcp/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	transport := NewTransport(
		WithHTTPClient(srv.Client()),
		WithRateLimiter(Unlimited()),
		WithUserAgent("bikepark-test/1.0"),
		WithTransportLogger(testutil.DiscardLogger()),
	)
	c := NewOSMClient(transport, WithNominatimURL(srv.URL), WithAPIURL(srv.URL))
	c.SetLogger(testutil.DiscardLogger())
	return c
}

func TestGeocode(t *testing.T) {
	t.Run("first result", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "Trafalgar Square, London", r.URL.Query().Get("q"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			assert.Equal(t, "bikepark-test/1.0", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"place_id": 1, "lat": "51.5", "lon": "-0.1", "display_name": "Trafalgar Square"}]`))
		})

		loc, err := c.Geocode(context.Background(), "Trafalgar Square, London")
		require.NoError(t, err)
		assert.Equal(t, geo.Location{Latitude: 51.5, Longitude: -0.1}, loc)
	})

	t.Run("no candidates", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		_, err := c.Geocode(context.Background(), "Nonexistent Place XYZ123")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLocationNotFound))
		assert.Contains(t, err.Error(), "Nonexistent Place XYZ123")
	})

	t.Run("unparseable latitude", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"lat": "north", "lon": "-0.1"}]`))
		})

		_, err := c.Geocode(context.Background(), "London")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedResponse))
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := c.Geocode(context.Background(), "London")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCollaboratorUnavailable))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
		assert.Equal(t, "Nominatim", apiErr.Service)
	})

	t.Run("empty text", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected for empty text")
		})

		_, err := c.Geocode(context.Background(), "   ")
		assert.Error(t, err)
	})
}

func TestFetchMap(t *testing.T) {
	bbox := geo.BoundingBox{West: -0.105, South: 51.495, East: -0.095, North: 51.505}

	t.Run("elements", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/0.6/map.json", r.URL.Path)
			assert.Equal(t, "-0.105,51.495,-0.095,51.505", r.URL.Query().Get("bbox"))
			_, _ = w.Write([]byte(`{
				"version": "0.6",
				"bounds": {"minlat": 51.495, "minlon": -0.105, "maxlat": 51.505, "maxlon": -0.095},
				"elements": [
					{"type": "node", "id": 1, "lat": 51.5, "lon": -0.1, "tags": {"amenity": "bicycle_parking", "capacity": "10"}},
					{"type": "way", "id": 2, "nodes": [1, 3], "tags": {"highway": "footway"}},
					{"type": "node", "id": 3, "lat": 51.501, "lon": -0.099}
				]
			}`))
		})

		elements, err := c.FetchMap(context.Background(), bbox)
		require.NoError(t, err)
		require.Len(t, elements, 3)
		assert.Equal(t, "node", elements[0].Type)
		assert.Equal(t, int64(1), elements[0].ID)
		require.NotNil(t, elements[0].Lat)
		assert.Equal(t, 51.5, *elements[0].Lat)
		assert.Nil(t, elements[1].Lat)
		assert.Equal(t, []int64{1, 3}, elements[1].Nodes)
		assert.Nil(t, elements[2].Tags)
	})

	t.Run("bad request carries bbox guidance", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "The maximum bbox size is 0.25", http.StatusBadRequest)
		})

		_, err := c.FetchMap(context.Background(), bbox)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, GuidanceMapBoundingBox, apiErr.Guidance)
		assert.False(t, apiErr.Recoverable)
		assert.Contains(t, apiErr.Message, "maximum bbox size")
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<osm></osm>`))
		})

		_, err := c.FetchMap(context.Background(), bbox)
		assert.True(t, errors.Is(err, ErrMalformedResponse))
	})
}

func TestRateLimiterUnknownService(t *testing.T) {
	rl := Unlimited()
	assert.NoError(t, rl.Wait(context.Background(), ServiceBikeIndex))
	assert.Error(t, rl.Wait(context.Background(), "overpass"))
}

func TestRateLimiterCanceledContext(t *testing.T) {
	rl := NewRateLimiter(map[string]Limit{ServiceNominatim: {RPS: 0.001, Burst: 1}})
	require.NoError(t, rl.Wait(context.Background(), ServiceNominatim))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, rl.Wait(ctx, ServiceNominatim))
}
