package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/types/points"
)

func TestAwardAppendsAndTotals(t *testing.T) {
	svc := NewPointsService(newTestStore(t))
	ctx := context.Background()

	e1, err := svc.Award(ctx, testUserID, 10, points.SourceCheckIn, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, e1.Total)

	e2, err := svc.Award(ctx, testUserID, 5, points.SourceJourneyBonus, map[string]any{"journey_id": "jrn-1"})
	require.NoError(t, err)
	assert.Equal(t, 15, e2.Total)

	total, err := svc.Total(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
}

func TestAwardUnknownUser(t *testing.T) {
	svc := NewPointsService(newTestStore(t))

	_, err := svc.Award(context.Background(), "usr-ghost", 10, points.SourceCheckIn, nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestHistoryNewestFirstWithLimit(t *testing.T) {
	svc := NewPointsService(newTestStore(t))
	ctx := context.Background()

	for _, delta := range []int{10, 5, 10} {
		_, err := svc.Award(ctx, testUserID, delta, points.SourceCheckIn, nil)
		require.NoError(t, err)
	}

	entries, err := svc.History(ctx, testUserID, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 25, entries[0].Total)
	assert.Equal(t, 15, entries[1].Total)
}

func TestReconcileCleanLedger(t *testing.T) {
	st := newTestStore(t)
	svc := NewPointsService(st)
	ctx := context.Background()

	_, err := svc.Award(ctx, testUserID, 10, points.SourceCheckIn, nil)
	require.NoError(t, err)

	report, err := svc.Reconcile(ctx, testUserID, 10)
	require.NoError(t, err)
	assert.False(t, report.Repaired)
	assert.Equal(t, 10, report.LedgerSum)
}

func TestReconcileRepairsDriftedProfile(t *testing.T) {
	st := newTestStore(t)
	svc := NewPointsService(st)
	ctx := context.Background()

	_, err := svc.Award(ctx, testUserID, 10, points.SourceCheckIn, nil)
	require.NoError(t, err)

	// Profile claims 3 but the ledger sums to 10.
	report, err := svc.Reconcile(ctx, testUserID, 3)
	require.NoError(t, err)
	assert.True(t, report.Repaired)
	assert.Equal(t, 10, report.LedgerSum)

	// The repair rewrites the cached total without touching the ledger.
	u, err := st.GetUserByClerkID(ctx, testClerkID)
	require.NoError(t, err)
	assert.Equal(t, 10, u.Points)

	entries, err := svc.History(ctx, testUserID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
