package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ganjaGuideAPI/internal/store/memory"
	"ganjaGuideAPI/internal/user"
)

const (
	testUserID  = "usr-test-1"
	testClerkID = "clerk_test_1"
)

// newTestStore returns a fixture-backed memory store with one registered
// user, which is all the service tests need.
func newTestStore(t *testing.T) *memory.Memory {
	t.Helper()

	st := memory.NewWithFixtures()
	now := time.Now()
	err := st.CreateUser(context.Background(), &user.User{
		ID:        testUserID,
		ClerkID:   testClerkID,
		Email:     "test.user@example.com",
		Username:  "testuser",
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return st
}
