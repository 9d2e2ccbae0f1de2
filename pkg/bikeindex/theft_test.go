package bikeindex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NERVsystems/bikeparkmcp/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) *int64 {
	s := fixedNow.Add(-time.Duration(d) * 24 * time.Hour).Unix()
	return &s
}

type fakeRegistry struct {
	mu       sync.Mutex
	counts   Counts
	pages    [][]Bike
	countErr error
	errOnPg  int
	searches []SearchQuery
}

func (f *fakeRegistry) Search(_ context.Context, q SearchQuery) ([]Bike, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, q)
	if f.errOnPg != 0 && q.Page == f.errOnPg {
		return nil, errors.New("registry timeout")
	}
	if q.Page-1 < len(f.pages) {
		return f.pages[q.Page-1], nil
	}
	return nil, nil
}

func (f *fakeRegistry) Count(_ context.Context, _ CountQuery) (Counts, error) {
	if f.countErr != nil {
		return Counts{}, f.countErr
	}
	return f.counts, nil
}

func twelve() *int {
	n := 12
	return &n
}

func TestAssessScenario(t *testing.T) {
	reg := &fakeRegistry{
		counts: Counts{Proximity: twelve()},
		pages: [][]Bike{{
			{ID: 1, DateStolen: daysAgo(3)},
			{ID: 2, DateStolen: daysAgo(200)},
			{ID: 3},
			{ID: 4, DateStolen: daysAgo(89)},
			{ID: 5, DateStolen: daysAgo(365)},
		}},
	}

	a := NewAssessor(reg, WithClock(func() time.Time { return fixedNow }), WithLogger(testutil.DiscardLogger()))
	summary, err := a.Assess(context.Background(), "London")
	require.NoError(t, err)

	assert.Equal(t, "Bike thefts in last 90 days: 2 recent (out of 5 total shown)", summary.Message)
	assert.Equal(t, 12, summary.TotalTheftCount)
	assert.Equal(t, 5, summary.FetchedCount)
	assert.True(t, summary.Available)
	require.Len(t, summary.RecentRecords, 2)
	assert.Equal(t, int64(1), summary.RecentRecords[0].ID)
	assert.Equal(t, int64(4), summary.RecentRecords[1].ID)

	require.Len(t, reg.searches, 1)
	q := reg.searches[0]
	assert.Equal(t, "", q.Query)
	assert.Equal(t, "London", q.Location)
	assert.Equal(t, StolennessProximity, q.Stolenness)
	assert.Equal(t, DefaultDistance, q.Distance)
}

func TestAssessNoResults(t *testing.T) {
	a := NewAssessor(&fakeRegistry{}, WithClock(func() time.Time { return fixedNow }))
	summary, err := a.Assess(context.Background(), "Nowhere")
	require.NoError(t, err)

	assert.Equal(t, "Bike thefts in last 90 days: 0 recent (out of 0 total shown)", summary.Message)
	assert.Equal(t, 0, summary.TotalTheftCount)
	assert.NotNil(t, summary.RecentRecords)
	assert.Empty(t, summary.RecentRecords)
}

func TestAssessPaging(t *testing.T) {
	full := make([]Bike, 2)
	for i := range full {
		full[i] = Bike{ID: int64(i), DateStolen: daysAgo(1)}
	}

	t.Run("stops on short page", func(t *testing.T) {
		reg := &fakeRegistry{pages: [][]Bike{full, {{ID: 9}}}}
		a := NewAssessor(reg, WithPaging(2, 5), WithClock(func() time.Time { return fixedNow }))

		summary, err := a.Assess(context.Background(), "London")
		require.NoError(t, err)
		assert.Equal(t, 3, summary.FetchedCount)
		assert.Len(t, reg.searches, 2)
	})

	t.Run("bounded by max pages", func(t *testing.T) {
		reg := &fakeRegistry{pages: [][]Bike{full, full, full, full}}
		a := NewAssessor(reg, WithPaging(2, 3), WithClock(func() time.Time { return fixedNow }))

		summary, err := a.Assess(context.Background(), "London")
		require.NoError(t, err)
		assert.Equal(t, 6, summary.FetchedCount)
		assert.Len(t, reg.searches, 3)
	})

	t.Run("page failure propagates", func(t *testing.T) {
		reg := &fakeRegistry{pages: [][]Bike{full, full}, errOnPg: 2}
		a := NewAssessor(reg, WithPaging(2, 3))

		_, err := a.Assess(context.Background(), "London")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "theft search")
	})
}

func TestAssessCountFailure(t *testing.T) {
	a := NewAssessor(&fakeRegistry{countErr: errors.New("connection refused")})
	_, err := a.Assess(context.Background(), "London")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theft count")
}

func TestRecentTheftsSubset(t *testing.T) {
	bikes := []Bike{
		{ID: 1, DateStolen: daysAgo(0)},
		{ID: 2, DateStolen: daysAgo(90)},
		{ID: 3, DateStolen: daysAgo(91)},
		{ID: 4},
		{ID: 5, DateStolen: daysAgo(45)},
	}

	recent := RecentThefts(bikes, fixedNow, DefaultWindow)
	cutoff := fixedNow.UnixMilli() - DefaultWindow.Milliseconds()

	fetched := map[int64]bool{}
	for _, b := range bikes {
		fetched[b.ID] = true
	}
	for _, b := range recent {
		assert.True(t, fetched[b.ID], "recent record %d not in fetched set", b.ID)
		require.NotNil(t, b.DateStolen)
		assert.Greater(t, *b.DateStolen*1000, cutoff)
	}

	ids := make([]int64, 0, len(recent))
	for _, b := range recent {
		ids = append(ids, b.ID)
	}
	// exactly 90 days ago is on the cutoff, not after it
	assert.Equal(t, []int64{1, 5}, ids)
}

func TestUnavailable(t *testing.T) {
	s := Unavailable(errors.New("BikeIndex API error (502)"))
	assert.False(t, s.Available)
	assert.Equal(t, "Theft risk data unavailable: BikeIndex API error (502)", s.Message)
	assert.NotNil(t, s.RecentRecords)
}
