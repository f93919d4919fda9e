package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganjaGuideAPI/services"
)

func mockClerkWebhookPayload(eventType, clerkID string) []byte {
	return []byte(fmt.Sprintf(`{
		"type": "%s",
		"data": {
			"id": "%s",
			"email_addresses": [{
				"email_address": "test.user@example.com",
				"verification": {"status": "verified"}
			}],
			"username": "webhookuser"
		}
	}`, eventType, clerkID))
}

func TestWebhookUserCreated(t *testing.T) {
	st := newTestStore(t)
	userService := services.NewUserService(st)
	handler := NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "clerk_webhook_1"
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(mockClerkWebhookPayload("user.created", clerkID)))
	rr := httptest.NewRecorder()

	handler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]bool
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.True(t, response["success"])

	u, err := userService.GetByClerkID(context.Background(), clerkID)
	require.NoError(t, err)
	assert.Equal(t, "test.user@example.com", u.Email)
	assert.Equal(t, "webhookuser", u.Username)
	assert.True(t, u.EmailVerified)
	assert.Zero(t, u.Points)
}

func TestWebhookUserCreatedRedelivery(t *testing.T) {
	st := newTestStore(t)
	userService := services.NewUserService(st)
	handler := NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "clerk_webhook_replay"
	payload := mockClerkWebhookPayload("user.created", clerkID)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	handler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	u, err := userService.GetByClerkID(context.Background(), clerkID)
	require.NoError(t, err)
	_, err = st.AppendPoints(context.Background(), u.ID, 10, "check_in", nil)
	require.NoError(t, err)

	// Clerk retries deliveries; the replay must not reset the profile.
	req = httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload))
	rr = httptest.NewRecorder()
	handler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	replayed, err := userService.GetByClerkID(context.Background(), clerkID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, replayed.ID)
	assert.Equal(t, 10, replayed.Points)
}

func TestWebhookUserDeleted(t *testing.T) {
	st := newTestStore(t)
	userService := services.NewUserService(st)
	handler := NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	payload := []byte(fmt.Sprintf(`{"type": "user.deleted", "data": {"id": "%s"}}`, testClerkID))
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	handler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	_, err := userService.GetByClerkID(context.Background(), testClerkID)
	assert.Error(t, err)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	st := newTestStore(t)
	handler := NewWebhookHandler(services.NewUserService(st))

	os.Setenv("CLERK_WEBHOOK_SECRET", "whsec_testsecret")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(mockClerkWebhookPayload("user.created", "clerk_webhook_2")))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", "1700000000")
	req.Header.Set("svix-signature", "v1,bm90LXRoZS1yaWdodC1zaWduYXR1cmU=")
	rr := httptest.NewRecorder()

	handler.HandleClerkWebhook(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
