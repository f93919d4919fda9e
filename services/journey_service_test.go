package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/geo"
	"ganjaGuideAPI/internal/store"
	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/types/vendor"
)

func newJourneyService(st store.Store) *JourneyService {
	checkins := NewCheckinService(st)
	return NewJourneyService(st, NewRouteService(st), checkins)
}

// startNearMidnight is next to Midnight Greenery, so routes built from it
// begin there.
var startNearMidnight = geo.Point{Latitude: 61.2012, Longitude: -149.9102}

func startTestJourney(t *testing.T, svc *JourneyService, vendorIDs []string) string {
	t.Helper()
	j, err := svc.Start(context.Background(), testUserID, StartJourneyRequest{
		DealType:  vendor.DealDaily,
		VendorIDs: vendorIDs,
		Start:     startNearMidnight,
	})
	require.NoError(t, err)
	return j.ID
}

func TestStartRejectsSecondActiveJourney(t *testing.T) {
	svc := newJourneyService(newTestStore(t))
	ctx := context.Background()

	startTestJourney(t, svc, []string{"vnd-midnight-greenery"})

	_, err := svc.Start(ctx, testUserID, StartJourneyRequest{
		VendorIDs: []string{"vnd-aurora-leaf"},
		Start:     startNearMidnight,
	})
	assert.True(t, errors.Is(err, apperr.ErrJourneyActive))
}

func TestStartWithReplaceCancelsExisting(t *testing.T) {
	st := newTestStore(t)
	svc := newJourneyService(st)
	ctx := context.Background()

	firstID := startTestJourney(t, svc, []string{"vnd-midnight-greenery"})

	second, err := svc.Start(ctx, testUserID, StartJourneyRequest{
		VendorIDs: []string{"vnd-aurora-leaf"},
		Start:     startNearMidnight,
		Replace:   true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, firstID, second.ID)

	first, err := st.GetJourney(ctx, firstID)
	require.NoError(t, err)
	assert.False(t, first.IsActive)
	assert.True(t, first.IsCancelled)

	active, err := svc.Active(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestStartEmptyRouteFails(t *testing.T) {
	svc := newJourneyService(newTestStore(t))

	_, err := svc.Start(context.Background(), testUserID, StartJourneyRequest{
		VendorIDs: nil,
		Start:     startNearMidnight,
	})
	assert.True(t, errors.Is(err, apperr.ErrEmptyRoute))
}

func TestActiveWithoutJourney(t *testing.T) {
	svc := newJourneyService(newTestStore(t))

	_, err := svc.Active(context.Background(), testUserID)
	assert.True(t, errors.Is(err, apperr.ErrJourneyNotActive))
}

func TestAdvanceStopsAtLastStop(t *testing.T) {
	svc := newJourneyService(newTestStore(t))
	ctx := context.Background()

	startTestJourney(t, svc, []string{"vnd-midnight-greenery", "vnd-aurora-leaf"})

	j, err := svc.Advance(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, j.CurrentVendorIndex)

	// Advancing past the end is a no-op.
	j, err = svc.Advance(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, j.CurrentVendorIndex)
	assert.True(t, j.IsActive)
}

func TestSkipOutOfRangeIndex(t *testing.T) {
	svc := newJourneyService(newTestStore(t))

	startTestJourney(t, svc, []string{"vnd-midnight-greenery"})

	idx := 3
	_, err := svc.Skip(context.Background(), testUserID, &idx)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSkipEarlierStopKeepsPosition(t *testing.T) {
	svc := newJourneyService(newTestStore(t))
	ctx := context.Background()

	startTestJourney(t, svc, []string{"vnd-midnight-greenery", "vnd-aurora-leaf", "vnd-glacier-buds"})

	_, err := svc.Advance(ctx, testUserID)
	require.NoError(t, err)

	// Skipping a stop behind the pointer shifts the pointer down with it.
	idx := 0
	j, err := svc.Skip(ctx, testUserID, &idx)
	require.NoError(t, err)
	require.Len(t, j.Stops, 2)
	assert.Equal(t, 0, j.CurrentVendorIndex)
	assert.Equal(t, "vnd-aurora-leaf", j.Stops[0].VendorID)
}

func TestSkipLastRemainingStopCancels(t *testing.T) {
	svc := newJourneyService(newTestStore(t))

	startTestJourney(t, svc, []string{"vnd-midnight-greenery"})

	j, err := svc.Skip(context.Background(), testUserID, nil)
	require.NoError(t, err)
	assert.False(t, j.IsActive)
	assert.True(t, j.IsCancelled)
	assert.Empty(t, j.Stops)
}

func TestCheckInIsIdempotentPerStop(t *testing.T) {
	st := newTestStore(t)
	svc := newJourneyService(st)
	ctx := context.Background()

	startTestJourney(t, svc, []string{"vnd-midnight-greenery", "vnd-aurora-leaf"})

	proof := checkin.Proof{QRPayload: checkin.Scheme + "vnd-midnight-greenery"}
	idx := 0
	res, err := svc.CheckIn(ctx, testUserID, &idx, proof, false)
	require.NoError(t, err)
	assert.Equal(t, basePoints, res.PointsAwarded)
	assert.False(t, res.AlreadyCheckedIn)

	firstEvent := res.Event
	require.NotNil(t, firstEvent)

	res, err = svc.CheckIn(ctx, testUserID, &idx, proof, false)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCheckedIn)
	assert.Zero(t, res.PointsAwarded)

	// The idempotent response carries the original check-in, not a new one.
	require.NotNil(t, res.Event)
	assert.Equal(t, firstEvent.ID, res.Event.ID)
	assert.Equal(t, checkin.TypeQR, res.Event.Type)
	assert.Equal(t, basePoints, res.Event.PointsEarned)

	sum, err := st.SumPoints(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, basePoints, sum)
}

func TestCheckInAdvancesPastVisitedStops(t *testing.T) {
	svc := newJourneyService(newTestStore(t))
	ctx := context.Background()

	startTestJourney(t, svc, []string{"vnd-midnight-greenery", "vnd-aurora-leaf", "vnd-glacier-buds"})

	_, err := svc.CheckIn(ctx, testUserID, nil,
		checkin.Proof{QRPayload: checkin.Scheme + "vnd-midnight-greenery"}, false)
	require.NoError(t, err)

	j, err := svc.Active(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, j.CurrentVendorIndex)
	assert.True(t, j.Stops[0].CheckedIn)
}

func TestCompleteWithoutFinishingPaysNoBonus(t *testing.T) {
	st := newTestStore(t)
	svc := newJourneyService(st)
	ctx := context.Background()

	startTestJourney(t, svc, []string{"vnd-midnight-greenery", "vnd-aurora-leaf"})

	_, err := svc.CheckIn(ctx, testUserID, nil,
		checkin.Proof{QRPayload: checkin.Scheme + "vnd-midnight-greenery"}, false)
	require.NoError(t, err)

	j, err := svc.Complete(ctx, testUserID)
	require.NoError(t, err)
	assert.True(t, j.IsCompleted)
	assert.False(t, j.IsActive)

	// Only the check-in's base points, no completion bonus on early exit.
	sum, err := st.SumPoints(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, basePoints, sum)

	stats, err := svc.Stats(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedJourneys)
	assert.Equal(t, 1, stats.TotalVendorsVisited)
}

func TestCancelCountsVisitedStops(t *testing.T) {
	svc := newJourneyService(newTestStore(t))
	ctx := context.Background()

	startTestJourney(t, svc, []string{"vnd-midnight-greenery", "vnd-aurora-leaf"})

	_, err := svc.CheckIn(ctx, testUserID, nil,
		checkin.Proof{QRPayload: checkin.Scheme + "vnd-midnight-greenery"}, false)
	require.NoError(t, err)

	j, err := svc.Cancel(ctx, testUserID)
	require.NoError(t, err)
	assert.True(t, j.IsCancelled)

	stats, err := svc.Stats(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CompletedJourneys)
	assert.Equal(t, 1, stats.TotalVendorsVisited)
}

// TestDealRunEndToEnd drives a full three-stop run: QR scan at the first
// stop, second stop skipped entirely, manual location check-in at the last,
// which auto-completes the journey and settles the bonus.
func TestDealRunEndToEnd(t *testing.T) {
	st := newTestStore(t)
	svc := newJourneyService(st)
	ctx := context.Background()

	startTestJourney(t, svc, []string{"vnd-midnight-greenery", "vnd-aurora-leaf", "vnd-glacier-buds"})

	// Stop 0: scan the vendor QR.
	res, err := svc.CheckIn(ctx, testUserID, nil,
		checkin.Proof{QRPayload: checkin.Scheme + "vnd-midnight-greenery"}, false)
	require.NoError(t, err)
	assert.Equal(t, basePoints, res.PointsAwarded)
	assert.False(t, res.JourneyCompleted)

	// Stop 1 (Aurora Leaf) is closed, skip it.
	j, err := svc.Skip(ctx, testUserID, nil)
	require.NoError(t, err)
	require.Len(t, j.Stops, 2)
	assert.Equal(t, "vnd-glacier-buds", j.Stops[j.CurrentVendorIndex].VendorID)

	// Last stop has no QR, check in by location. This finishes the run.
	glacier, err := st.GetVendor(ctx, "vnd-glacier-buds")
	require.NoError(t, err)
	at := glacier.Coordinates()

	res, err = svc.CheckIn(ctx, testUserID, nil, checkin.Proof{Location: &at}, false)
	require.NoError(t, err)
	assert.Equal(t, basePoints, res.PointsAwarded)
	assert.True(t, res.JourneyCompleted)
	assert.Equal(t, 2*completionBonusPerStop, res.BonusAwarded)

	// Two base check-ins plus the bonus for two visited stops.
	want := 2*basePoints + 2*completionBonusPerStop
	sum, err := st.SumPoints(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, want, sum)

	// The profile cache tracks the ledger.
	u, err := st.GetUserByClerkID(ctx, testClerkID)
	require.NoError(t, err)
	assert.Equal(t, want, u.Points)

	_, err = svc.Active(ctx, testUserID)
	assert.True(t, errors.Is(err, apperr.ErrJourneyNotActive))

	stats, err := svc.Stats(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedJourneys)
	assert.Equal(t, 2, stats.TotalVendorsVisited)
}
