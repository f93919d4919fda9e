package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganjaGuideAPI/internal/store/memory"
	"ganjaGuideAPI/internal/types/journey"
	"ganjaGuideAPI/services"
)

func newJourneyHandler(st *memory.Memory) *JourneyHandler {
	routeService := services.NewRouteService(st)
	checkinService := services.NewCheckinService(st)
	journeyService := services.NewJourneyService(st, routeService, checkinService)
	return NewJourneyHandler(journeyService, routeService, services.NewUserService(st))
}

func TestGetActiveJourneyNone(t *testing.T) {
	handler := newJourneyHandler(newTestStore(t))

	rr := httptest.NewRecorder()
	handler.GetActiveJourney(rr, authedRequest(http.MethodGet, "/api/v1/journeys/active", ""))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStartJourneyAndCheckInFlow(t *testing.T) {
	handler := newJourneyHandler(newTestStore(t))

	startBody := `{
		"deal_type": "daily",
		"vendor_ids": ["vnd-midnight-greenery", "vnd-aurora-leaf"],
		"start": {"latitude": 61.2012, "longitude": -149.9102}
	}`
	rr := httptest.NewRecorder()
	handler.StartJourney(rr, authedRequest(http.MethodPost, "/api/v1/journeys", startBody))
	require.Equal(t, http.StatusCreated, rr.Code)

	var j journey.Journey
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &j))
	require.Len(t, j.Stops, 2)
	assert.Equal(t, "vnd-midnight-greenery", j.Stops[0].VendorID)
	assert.Zero(t, j.CurrentVendorIndex)

	// Starting again without replace conflicts.
	rr = httptest.NewRecorder()
	handler.StartJourney(rr, authedRequest(http.MethodPost, "/api/v1/journeys", startBody))
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Check in at the first stop with its QR payload.
	checkInBody := `{"proof":{"qr_payload":"ganjaguide://checkin/vnd-midnight-greenery"}}`
	rr = httptest.NewRecorder()
	handler.CheckInStop(rr, authedRequest(http.MethodPost, "/api/v1/journeys/active/checkin", checkInBody))
	require.Equal(t, http.StatusOK, rr.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, float64(10), result["points_awarded"])
	assert.Equal(t, false, result["journey_completed"])

	// The pointer moved to the second stop.
	rr = httptest.NewRecorder()
	handler.GetActiveJourney(rr, authedRequest(http.MethodGet, "/api/v1/journeys/active", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &j))
	assert.Equal(t, 1, j.CurrentVendorIndex)
}

func TestStartJourneyEmptyRoute(t *testing.T) {
	handler := newJourneyHandler(newTestStore(t))

	rr := httptest.NewRecorder()
	handler.StartJourney(rr, authedRequest(http.MethodPost, "/api/v1/journeys",
		`{"vendor_ids": [], "start": {"latitude": 61.2, "longitude": -149.9}}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPreviewRoute(t *testing.T) {
	handler := newJourneyHandler(newTestStore(t))

	body := `{"vendor_ids": ["vnd-aurora-leaf"], "start": {"latitude": 61.19, "longitude": -149.88}}`
	rr := httptest.NewRecorder()
	handler.PreviewRoute(rr, authedRequest(http.MethodPost, "/api/v1/journeys/preview", body))
	require.Equal(t, http.StatusOK, rr.Code)

	var route journey.Route
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &route))
	require.Len(t, route.Stops, 1)
	assert.Greater(t, route.TotalDistance, 0.0)
	assert.Greater(t, route.EstimatedMinutes, 0)
}

func TestSkipStopWithEmptyBody(t *testing.T) {
	handler := newJourneyHandler(newTestStore(t))

	startBody := `{
		"vendor_ids": ["vnd-midnight-greenery", "vnd-aurora-leaf"],
		"start": {"latitude": 61.2012, "longitude": -149.9102}
	}`
	rr := httptest.NewRecorder()
	handler.StartJourney(rr, authedRequest(http.MethodPost, "/api/v1/journeys", startBody))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	handler.SkipStop(rr, authedRequest(http.MethodPost, "/api/v1/journeys/active/skip", ""))
	require.Equal(t, http.StatusOK, rr.Code)

	var j journey.Journey
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &j))
	require.Len(t, j.Stops, 1)
	assert.Equal(t, "vnd-aurora-leaf", j.Stops[0].VendorID)
}
