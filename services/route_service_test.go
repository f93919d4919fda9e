package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/geo"
)

func TestBuildRouteEmptySelection(t *testing.T) {
	svc := NewRouteService(newTestStore(t))

	route, err := svc.BuildRoute(context.Background(), nil, geo.Point{Latitude: 61.2, Longitude: -149.9}, 0)
	require.NoError(t, err)
	assert.Empty(t, route.Stops)
	assert.Zero(t, route.TotalDistance)
}

func TestBuildRouteSingleStop(t *testing.T) {
	st := newTestStore(t)
	svc := NewRouteService(st)
	ctx := context.Background()

	start := geo.Point{Latitude: 61.19, Longitude: -149.88}
	route, err := svc.BuildRoute(ctx, []string{"vnd-aurora-leaf"}, start, 0)
	require.NoError(t, err)
	require.Len(t, route.Stops, 1)

	v, err := st.GetVendor(ctx, "vnd-aurora-leaf")
	require.NoError(t, err)

	direct := geo.Distance(start, v.Coordinates())
	assert.InDelta(t, direct, route.TotalDistance, 1e-9)
	assert.InDelta(t, direct, route.Stops[0].LegDistance, 1e-9)
	assert.Equal(t, int(math.Round(direct*minutesPerMile*trafficFactor)), route.EstimatedMinutes)
}

func TestBuildRouteOrdersNearestFirst(t *testing.T) {
	svc := NewRouteService(newTestStore(t))

	// Start next to Glacier Buds on the south side of town.
	start := geo.Point{Latitude: 61.1405, Longitude: -149.8652}
	route, err := svc.BuildRoute(context.Background(),
		[]string{"vnd-midnight-greenery", "vnd-aurora-leaf", "vnd-glacier-buds"}, start, 0)
	require.NoError(t, err)
	require.Len(t, route.Stops, 3)

	assert.Equal(t, "vnd-glacier-buds", route.Stops[0].VendorID)
	assert.Equal(t, "vnd-aurora-leaf", route.Stops[1].VendorID)
	assert.Equal(t, "vnd-midnight-greenery", route.Stops[2].VendorID)

	sum := 0.0
	for _, s := range route.Stops {
		sum += s.LegDistance
	}
	assert.InDelta(t, sum, route.TotalDistance, 1e-9)
}

func TestBuildRouteUnknownVendor(t *testing.T) {
	svc := NewRouteService(newTestStore(t))

	_, err := svc.BuildRoute(context.Background(), []string{"vnd-nope"}, geo.Point{Latitude: 61.2, Longitude: -149.9}, 0)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestBuildRouteMaxDistanceFilter(t *testing.T) {
	svc := NewRouteService(newTestStore(t))

	// Denali Dank is out in Eagle River, well past 5 miles from midtown.
	start := geo.Point{Latitude: 61.1953, Longitude: -149.8944}
	route, err := svc.BuildRoute(context.Background(),
		[]string{"vnd-aurora-leaf", "vnd-denali-dank"}, start, 5)
	require.NoError(t, err)
	require.Len(t, route.Stops, 1)
	assert.Equal(t, "vnd-aurora-leaf", route.Stops[0].VendorID)
}
