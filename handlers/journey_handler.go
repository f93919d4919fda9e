package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/geo"
	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/user"
	"ganjaGuideAPI/middleware"
	"ganjaGuideAPI/services"
)

type JourneyHandler struct {
	journeyService *services.JourneyService
	routeService   *services.RouteService
	userService    *services.UserService
}

func NewJourneyHandler(journeyService *services.JourneyService, routeService *services.RouteService, userService *services.UserService) *JourneyHandler {
	return &JourneyHandler{
		journeyService: journeyService,
		routeService:   routeService,
		userService:    userService,
	}
}

// currentUser resolves the authenticated Clerk ID to the internal profile.
func (h *JourneyHandler) currentUser(ctx context.Context) (*user.User, error) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		return nil, apperr.ErrUnauthenticated
	}
	u, err := h.userService.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %w", clerkID, err)
	}
	return u, nil
}

type previewRouteRequest struct {
	VendorIDs   []string  `json:"vendor_ids"`
	Start       geo.Point `json:"start"`
	MaxDistance float64   `json:"max_distance,omitempty"`
}

// PreviewRoute estimates a route without committing a journey.
func (h *JourneyHandler) PreviewRoute(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.currentUser(ctx); err != nil {
		respondServiceError(w, "PreviewRoute", err)
		return
	}

	var req previewRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	route, err := h.routeService.BuildRoute(ctx, req.VendorIDs, req.Start, req.MaxDistance)
	if err != nil {
		respondServiceError(w, "PreviewRoute", err)
		return
	}

	respondWithJSON(w, http.StatusOK, route)
}

func (h *JourneyHandler) StartJourney(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "StartJourney", err)
		return
	}

	var req services.StartJourneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	j, err := h.journeyService.Start(ctx, u.ID, req)
	if err != nil {
		respondServiceError(w, "StartJourney", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, j)
}

func (h *JourneyHandler) GetActiveJourney(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "GetActiveJourney", err)
		return
	}

	j, err := h.journeyService.Active(ctx, u.ID)
	if err != nil {
		respondServiceError(w, "GetActiveJourney", err)
		return
	}

	respondWithJSON(w, http.StatusOK, j)
}

func (h *JourneyHandler) AdvanceJourney(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "AdvanceJourney", err)
		return
	}

	j, err := h.journeyService.Advance(ctx, u.ID)
	if err != nil {
		respondServiceError(w, "AdvanceJourney", err)
		return
	}

	respondWithJSON(w, http.StatusOK, j)
}

type skipStopRequest struct {
	Index *int `json:"index,omitempty"`
}

func (h *JourneyHandler) SkipStop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "SkipStop", err)
		return
	}

	var req skipStopRequest
	if r.Body != nil {
		// An empty body means "skip the current stop".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	j, err := h.journeyService.Skip(ctx, u.ID, req.Index)
	if err != nil {
		respondServiceError(w, "SkipStop", err)
		return
	}

	respondWithJSON(w, http.StatusOK, j)
}

type checkInStopRequest struct {
	Index        *int          `json:"index,omitempty"`
	Proof        checkin.Proof `json:"proof"`
	ForceConfirm bool          `json:"force_confirm,omitempty"`
}

func (h *JourneyHandler) CheckInStop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "CheckInStop", err)
		return
	}

	var req checkInStopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.journeyService.CheckIn(ctx, u.ID, req.Index, req.Proof, req.ForceConfirm)
	if err != nil {
		respondServiceError(w, "CheckInStop", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *JourneyHandler) CompleteJourney(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "CompleteJourney", err)
		return
	}

	j, err := h.journeyService.Complete(ctx, u.ID)
	if err != nil {
		respondServiceError(w, "CompleteJourney", err)
		return
	}

	respondWithJSON(w, http.StatusOK, j)
}

func (h *JourneyHandler) CancelJourney(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "CancelJourney", err)
		return
	}

	j, err := h.journeyService.Cancel(ctx, u.ID)
	if err != nil {
		respondServiceError(w, "CancelJourney", err)
		return
	}

	respondWithJSON(w, http.StatusOK, j)
}

func (h *JourneyHandler) GetJourneyStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "GetJourneyStats", err)
		return
	}

	stats, err := h.journeyService.Stats(ctx, u.ID)
	if err != nil {
		respondServiceError(w, "GetJourneyStats", err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
