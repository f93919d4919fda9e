package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/types/journey"
	"ganjaGuideAPI/internal/user"
)

func TestCreateJourneyRejectsSecondActive(t *testing.T) {
	m := New()
	ctx := context.Background()

	first := &journey.Journey{ID: "jrn-1", UserID: "usr-1", IsActive: true, CreatedAt: time.Now()}
	require.NoError(t, m.CreateJourney(ctx, first))

	second := &journey.Journey{ID: "jrn-2", UserID: "usr-1", IsActive: true, CreatedAt: time.Now()}
	err := m.CreateJourney(ctx, second)
	assert.True(t, errors.Is(err, apperr.ErrJourneyActive))

	// A different user is unaffected.
	other := &journey.Journey{ID: "jrn-3", UserID: "usr-2", IsActive: true, CreatedAt: time.Now()}
	assert.NoError(t, m.CreateJourney(ctx, other))
}

func TestCreateJourneyAllowsNewAfterEnd(t *testing.T) {
	m := New()
	ctx := context.Background()

	first := &journey.Journey{ID: "jrn-1", UserID: "usr-1", IsActive: true, CreatedAt: time.Now()}
	require.NoError(t, m.CreateJourney(ctx, first))

	first.IsActive = false
	first.IsCancelled = true
	require.NoError(t, m.UpdateJourney(ctx, first))

	second := &journey.Journey{ID: "jrn-2", UserID: "usr-1", IsActive: true, CreatedAt: time.Now()}
	assert.NoError(t, m.CreateJourney(ctx, second))
}

func TestCreateUserIdempotentOnClerkID(t *testing.T) {
	m := New()
	ctx := context.Background()
	now := time.Now()

	original := &user.User{ID: "usr-1", ClerkID: "clerk_1", Email: "a@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, m.CreateUser(ctx, original))

	_, err := m.AppendPoints(ctx, "usr-1", 10, "check_in", nil)
	require.NoError(t, err)

	// A redelivered user.created must not reset the profile.
	replay := &user.User{ID: "usr-other", ClerkID: "clerk_1", Email: "a@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, m.CreateUser(ctx, replay))

	u, err := m.GetUserByClerkID(ctx, "clerk_1")
	require.NoError(t, err)
	assert.Equal(t, "usr-1", u.ID)
	assert.Equal(t, 10, u.Points)
}
