package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/user"
	"ganjaGuideAPI/middleware"
	"ganjaGuideAPI/services"
)

type UserHandler struct {
	userService   *services.UserService
	pointsService *services.PointsService
}

func NewUserHandler(userService *services.UserService, pointsService *services.PointsService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		pointsService: pointsService,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetByClerkID(ctx, clerkID)
	if err != nil {
		respondServiceError(w, "GetProfile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.userService.UpdateProfileByClerkID(ctx, clerkID, &req)
	if err != nil {
		respondServiceError(w, "UpdateProfile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.userService.DeleteByClerkID(ctx, clerkID); err != nil {
		respondServiceError(w, "DeleteAccount", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

func (h *UserHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	favorites, err := h.userService.Favorites(ctx, clerkID)
	if err != nil {
		respondServiceError(w, "GetFavorites", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string][]string{"favorites": favorites})
}

type favoriteRequest struct {
	VendorID string `json:"vendor_id"`
}

func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VendorID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor_id is required")
		return
	}

	if err := h.userService.AddFavorite(ctx, clerkID, req.VendorID); err != nil {
		respondServiceError(w, "AddFavorite", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Favorite added"})
}

func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VendorID == "" {
		respondWithError(w, http.StatusBadRequest, "vendor_id is required")
		return
	}

	if err := h.userService.RemoveFavorite(ctx, clerkID, req.VendorID); err != nil {
		respondServiceError(w, "RemoveFavorite", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Favorite removed"})
}

func (h *UserHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	prefs, err := h.userService.Preferences(ctx, clerkID)
	if err != nil {
		respondServiceError(w, "GetPreferences", err)
		return
	}

	respondWithJSON(w, http.StatusOK, prefs)
}

func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var prefs user.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userService.SetPreferences(ctx, clerkID, prefs); err != nil {
		respondServiceError(w, "UpdatePreferences", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Preferences updated"})
}

func (h *UserHandler) GetVisits(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	visits, err := h.userService.Visits(ctx, clerkID)
	if err != nil {
		respondServiceError(w, "GetVisits", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"visits": visits})
}

func (h *UserHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetByClerkID(ctx, clerkID)
	if err != nil {
		respondServiceError(w, "GetPoints", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"points": u.Points})
}

func (h *UserHandler) GetPointsHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetByClerkID(ctx, clerkID)
	if err != nil {
		respondServiceError(w, "GetPointsHistory", err)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	history, err := h.pointsService.History(ctx, u.ID, limit)
	if err != nil {
		respondServiceError(w, "GetPointsHistory", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (h *UserHandler) ReconcilePoints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetByClerkID(ctx, clerkID)
	if err != nil {
		respondServiceError(w, "ReconcilePoints", err)
		return
	}

	report, err := h.pointsService.Reconcile(ctx, u.ID, u.Points)
	if err != nil {
		respondServiceError(w, "ReconcilePoints", err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondServiceError maps service error categories to HTTP statuses. Every
// error is logged with its operation before being surfaced.
func respondServiceError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s failed: %v", op, err)

	var tooFar *apperr.TooFarError
	switch {
	case errors.As(err, &tooFar):
		respondWithJSON(w, http.StatusConflict, map[string]any{
			"error":           "too_far",
			"distance_miles":  tooFar.DistanceMiles,
			"threshold_miles": tooFar.ThresholdMiles,
		})
	case errors.Is(err, apperr.ErrTooFar):
		respondWithError(w, http.StatusConflict, "Too far from vendor")
	case errors.Is(err, apperr.ErrInvalidProof):
		respondWithError(w, http.StatusUnprocessableEntity, "Invalid check-in proof")
	case errors.Is(err, apperr.ErrJourneyActive):
		respondWithError(w, http.StatusConflict, "A journey is already active")
	case errors.Is(err, apperr.ErrJourneyNotActive):
		respondWithError(w, http.StatusNotFound, "No active journey")
	case errors.Is(err, apperr.ErrEmptyRoute):
		respondWithError(w, http.StatusBadRequest, "Route has no stops")
	case errors.Is(err, apperr.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, apperr.ErrUnauthenticated):
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
	default:
		respondWithError(w, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}
