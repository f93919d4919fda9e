package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/user"
	"ganjaGuideAPI/middleware"
	"ganjaGuideAPI/services"
)

type CheckinHandler struct {
	checkinService *services.CheckinService
	userService    *services.UserService
}

func NewCheckinHandler(checkinService *services.CheckinService, userService *services.UserService) *CheckinHandler {
	return &CheckinHandler{
		checkinService: checkinService,
		userService:    userService,
	}
}

func (h *CheckinHandler) currentUser(ctx context.Context) (*user.User, error) {
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

type checkInRequest struct {
	VendorID     string        `json:"vendor_id"`
	Proof        checkin.Proof `json:"proof"`
	ForceConfirm bool          `json:"force_confirm,omitempty"`
}

// CheckIn records a standalone check-in at a vendor, outside any journey.
func (h *CheckinHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "CheckIn", err)
		return
	}

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VendorID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor_id is required")
		return
	}

	result, err := h.checkinService.CheckInAt(ctx, u.ID, req.VendorID, req.Proof, req.ForceConfirm)
	if err != nil {
		respondServiceError(w, "CheckIn", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *CheckinHandler) GetCheckInHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.currentUser(ctx)
	if err != nil {
		respondServiceError(w, "GetCheckInHistory", err)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.checkinService.History(ctx, u.ID, limit)
	if err != nil {
		respondServiceError(w, "GetCheckInHistory", err)
		return
	}

	if events == nil {
		events = []checkin.Event{}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"check_ins": events})
}
