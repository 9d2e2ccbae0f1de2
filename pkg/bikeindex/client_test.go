package bikeindex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NERVsystems/bikeparkmcp/pkg/osm"
	"github.com/NERVsystems/bikeparkmcp/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	transport := osm.NewTransport(
		osm.WithHTTPClient(srv.Client()),
		osm.WithRateLimiter(osm.Unlimited()),
		osm.WithTransportLogger(testutil.DiscardLogger()),
	)
	return NewClient(transport, srv.URL, testutil.DiscardLogger())
}

func TestSearchForwardsPresentFields(t *testing.T) {
	stolen := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "trek", q.Get("query"))
		assert.Equal(t, "FX 3", q.Get("frame_model"))
		assert.Equal(t, "Trek", q.Get("manufacturer_name"))
		assert.Equal(t, "true", q.Get("stolen"))
		assert.Equal(t, "Portland, OR", q.Get("location"))
		assert.Equal(t, "proximity", q.Get("stolenness"))
		assert.Equal(t, "5", q.Get("distance"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "50", q.Get("per_page"))
		assert.False(t, q.Has("title"), "absent fields must not be sent")
		_, _ = w.Write([]byte(`{"bikes": [{"id": 7, "title": "2019 Trek FX 3", "status": "stolen", "stolen": true, "url": "https://bikeindex.org/bikes/7", "date_stolen": 1700000000}]}`))
	})

	bikes, err := c.Search(context.Background(), SearchQuery{
		Query:            "trek",
		FrameModel:       "FX 3",
		ManufacturerName: "Trek",
		Stolen:           &stolen,
		Location:         "Portland, OR",
		Stolenness:       "proximity",
		Distance:         "5",
		Page:             2,
		PerPage:          50,
	})
	require.NoError(t, err)
	require.Len(t, bikes, 1)
	assert.Equal(t, int64(7), bikes[0].ID)
	require.NotNil(t, bikes[0].DateStolen)
	assert.Equal(t, int64(1700000000), *bikes[0].DateStolen)
}

func TestSearchStolenFalseIsSent(t *testing.T) {
	notStolen := false
	values := SearchQuery{Stolen: &notStolen}.Values()
	assert.Equal(t, "false", values.Get("stolen"))
	assert.Len(t, values, 1)
}

func TestSearchValidation(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
	}{
		{name: "per_page above 100", query: SearchQuery{PerPage: 101}},
		{name: "negative page", query: SearchQuery{Page: -1}},
		{name: "unknown stolenness", query: SearchQuery{Stolenness: "nearby"}},
		{name: "non-numeric distance", query: SearchQuery{Distance: "two"}},
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid queries must not reach the registry")
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Search(context.Background(), tt.query)
			assert.Error(t, err)
		})
	}
}

func TestCount(t *testing.T) {
	t.Run("proximity present", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/search/count", r.URL.Path)
			assert.Equal(t, "proximity", r.URL.Query().Get("stolenness"))
			assert.Equal(t, "London", r.URL.Query().Get("location"))
			assert.Equal(t, "2", r.URL.Query().Get("distance"))
			_, _ = w.Write([]byte(`{"proximity": 12, "stolen": 400, "non": 900}`))
		})

		counts, err := c.Count(context.Background(), CountQuery{Location: "London", Stolenness: "proximity", Distance: "2"})
		require.NoError(t, err)
		assert.Equal(t, 12, counts.ProximityCount())
	})

	t.Run("proximity absent defaults to zero", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"stolen": 400}`))
		})

		counts, err := c.Count(context.Background(), CountQuery{Location: "London", Stolenness: "proximity", Distance: "2"})
		require.NoError(t, err)
		assert.Equal(t, 0, counts.ProximityCount())
	})

	t.Run("registry down", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.Count(context.Background(), CountQuery{})
		assert.True(t, errors.Is(err, osm.ErrCollaboratorUnavailable))
	})
}
