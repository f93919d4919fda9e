package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/geo"
	"ganjaGuideAPI/internal/store"
	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/types/journey"
	"ganjaGuideAPI/internal/types/points"
	"ganjaGuideAPI/internal/types/vendor"
)

// JourneyService owns the lifecycle of the single active journey a user can
// have: Active -> (check-ins, skips)* -> Completed | Cancelled. Terminal
// states never transition again.
type JourneyService struct {
	store    store.Store
	routes   *RouteService
	checkins *CheckinService
}

func NewJourneyService(st store.Store, routes *RouteService, checkins *CheckinService) *JourneyService {
	return &JourneyService{store: st, routes: routes, checkins: checkins}
}

type StartJourneyRequest struct {
	DealType    vendor.DealType `json:"deal_type"`
	VendorIDs   []string        `json:"vendor_ids"`
	Start       geo.Point       `json:"start"`
	MaxDistance float64         `json:"max_distance,omitempty"`
	// Replace cancels any currently active journey instead of failing.
	// Replacement is always explicit, never silent.
	Replace bool `json:"replace,omitempty"`
}

// Start builds a route over the chosen vendors and commits it as a new active
// journey at stop 0. Fails with ErrJourneyActive when one is already running
// and Replace is not set.
func (s *JourneyService) Start(ctx context.Context, userID string, req StartJourneyRequest) (*journey.Journey, error) {
	existing, err := s.store.GetActiveJourney(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up active journey: %w", err)
	}
	if existing != nil {
		if !req.Replace {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrJourneyActive)
		}
		if _, err := s.Cancel(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to cancel journey being replaced: %w", err)
		}
	}

	route, err := s.routes.BuildRoute(ctx, req.VendorIDs, req.Start, req.MaxDistance)
	if err != nil {
		return nil, err
	}
	if len(route.Stops) == 0 {
		return nil, fmt.Errorf("no vendors selected or all beyond max distance: %w", apperr.ErrEmptyRoute)
	}

	j := &journey.Journey{
		ID:                 uuid.New().String(),
		UserID:             userID,
		DealType:           req.DealType,
		Stops:              route.Stops,
		CurrentVendorIndex: 0,
		IsActive:           true,
		TotalDistance:      route.TotalDistance,
		EstimatedMinutes:   route.EstimatedMinutes,
		MaxDistance:        req.MaxDistance,
		CreatedAt:          time.Now(),
	}
	if err := s.store.CreateJourney(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to create journey: %w", err)
	}
	return j, nil
}

// Active returns the user's active journey.
func (s *JourneyService) Active(ctx context.Context, userID string) (*journey.Journey, error) {
	j, err := s.store.GetActiveJourney(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrJourneyNotActive)
		}
		return nil, err
	}
	return j, nil
}

// Advance moves the position pointer to the next stop. At the last stop it is
// a no-op returning the current state.
func (s *JourneyService) Advance(ctx context.Context, userID string) (*journey.Journey, error) {
	j, err := s.Active(ctx, userID)
	if err != nil {
		return nil, err
	}

	if j.CurrentVendorIndex < len(j.Stops)-1 {
		j.CurrentVendorIndex++
		if err := s.store.UpdateJourney(ctx, j); err != nil {
			return nil, fmt.Errorf("failed to advance journey: %w", err)
		}
	}
	return j, nil
}

// Skip removes the stop at index (current stop when index is nil) and
// re-clamps the position pointer. Skipping the last remaining stop cancels
// the journey: an active journey with zero stops cannot satisfy the index
// invariant.
func (s *JourneyService) Skip(ctx context.Context, userID string, index *int) (*journey.Journey, error) {
	j, err := s.Active(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := j.CurrentVendorIndex
	if index != nil {
		idx = *index
	}
	if idx < 0 || idx >= len(j.Stops) {
		return nil, fmt.Errorf("stop index %d out of range [0,%d): %w", idx, len(j.Stops), apperr.ErrNotFound)
	}

	j.Stops = append(j.Stops[:idx], j.Stops[idx+1:]...)
	if len(j.Stops) == 0 {
		return s.end(ctx, j, false)
	}
	if idx < j.CurrentVendorIndex {
		j.CurrentVendorIndex--
	}
	j.ClampIndex()

	if err := s.store.UpdateJourney(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to update journey after skip: %w", err)
	}
	return j, nil
}

// CheckIn validates the proof against the stop's vendor, marks the stop and
// credits points. Re-checking an already visited stop is an idempotent no-op
// carrying AlreadyCheckedIn. When the last unvisited stop checks in the
// journey auto-completes and the completion bonus is credited.
//
// The journey mutation commits before the event/ledger appends; a failure
// after that point leaves the stop checked in with points still owed, which
// is logged and surfaced rather than rolled back.
func (s *JourneyService) CheckIn(ctx context.Context, userID string, index *int, proof checkin.Proof, forceConfirm bool) (*checkin.Result, error) {
	j, err := s.Active(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := j.CurrentVendorIndex
	if index != nil {
		idx = *index
	}
	if idx < 0 || idx >= len(j.Stops) {
		return nil, fmt.Errorf("stop index %d out of range [0,%d): %w", idx, len(j.Stops), apperr.ErrNotFound)
	}

	stop := &j.Stops[idx]
	if stop.CheckedIn {
		return s.alreadyCheckedIn(ctx, userID, j.ID, idx), nil
	}

	t, dist, err := s.checkins.validateProof(stop.VendorID, stop.HasQrCode, stop.Coordinates(), proof, forceConfirm)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stop.CheckedIn = true
	stop.CheckInAt = &now
	stop.CheckInType = &t
	if idx == j.CurrentVendorIndex {
		s.advancePastVisited(j)
	}

	completed := j.AllCheckedIn()
	if completed {
		j.IsActive = false
		j.IsCompleted = true
		j.EndedAt = &now
	}

	if err := s.store.UpdateJourney(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to record stop check-in: %w", err)
	}

	pts := pointsFor(t)
	ev, err := s.checkins.record(ctx, userID, stop.VendorID, &j.ID, idx, t, dist, pts)
	if err != nil {
		log.Printf("JourneyService: stop %d of journey %s checked in but side effects failed: %v", idx, j.ID, err)
		return nil, err
	}

	result := &checkin.Result{Event: ev, PointsAwarded: pts, JourneyCompleted: completed}
	if completed {
		result.BonusAwarded, err = s.settleCompletion(ctx, j)
		if err != nil {
			log.Printf("JourneyService: journey %s completed but bonus settlement failed: %v", j.ID, err)
			return nil, err
		}
	}
	return result, nil
}

// Complete ends the journey explicitly. The completion bonus is only paid on
// the auto-complete path (final stop checked in), not on an early exit.
func (s *JourneyService) Complete(ctx context.Context, userID string) (*journey.Journey, error) {
	j, err := s.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.end(ctx, j, true)
}

// Cancel abandons the journey. Visited stops still count toward the user's
// aggregate stats.
func (s *JourneyService) Cancel(ctx context.Context, userID string) (*journey.Journey, error) {
	j, err := s.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.end(ctx, j, false)
}

// Stats returns the user's aggregate journey counters.
func (s *JourneyService) Stats(ctx context.Context, userID string) (*journey.Stats, error) {
	return s.store.GetJourneyStats(ctx, userID)
}

// alreadyCheckedIn builds the idempotent response for a re-checked stop: the
// original event, looked up from the audit trail, with no new points.
func (s *JourneyService) alreadyCheckedIn(ctx context.Context, userID, journeyID string, idx int) *checkin.Result {
	result := &checkin.Result{AlreadyCheckedIn: true}
	events, err := s.store.ListCheckIns(ctx, userID, 0)
	if err != nil {
		log.Printf("JourneyService: failed to load existing check-in for stop %d of journey %s: %v", idx, journeyID, err)
		return result
	}
	for i := range events {
		if events[i].JourneyID != nil && *events[i].JourneyID == journeyID && events[i].StopIndex == idx {
			result.Event = &events[i]
			break
		}
	}
	return result
}

// advancePastVisited moves the pointer to the next unvisited stop, wrapping
// nowhere: when everything ahead is visited it clamps to the last index.
func (s *JourneyService) advancePastVisited(j *journey.Journey) {
	for j.CurrentVendorIndex < len(j.Stops)-1 && j.Stops[j.CurrentVendorIndex].CheckedIn {
		j.CurrentVendorIndex++
	}
}

// settleCompletion credits the completion bonus and updates aggregate stats
// after the journey row already reached its terminal state.
func (s *JourneyService) settleCompletion(ctx context.Context, j *journey.Journey) (int, error) {
	visited := j.CheckedInCount()
	bonus := visited * completionBonusPerStop
	if bonus > 0 {
		metadata := map[string]any{"journey_id": j.ID, "stops_visited": visited}
		if _, err := s.store.AppendPoints(ctx, j.UserID, bonus, points.SourceJourneyBonus, metadata); err != nil {
			return 0, fmt.Errorf("failed to credit completion bonus: %w", err)
		}
		pointsAwardedTotal.WithLabelValues(points.SourceJourneyBonus).Add(float64(bonus))
	}

	if err := s.store.AddJourneyStats(ctx, j.UserID, 1, visited); err != nil {
		log.Printf("JourneyService: failed to update journey stats for user %s: %v", j.UserID, err)
	}
	journeysEndedTotal.WithLabelValues("completed").Inc()
	return bonus, nil
}

// end transitions the journey to a terminal state and records stats.
func (s *JourneyService) end(ctx context.Context, j *journey.Journey, completed bool) (*journey.Journey, error) {
	now := time.Now()
	j.IsActive = false
	j.EndedAt = &now
	if completed {
		j.IsCompleted = true
	} else {
		j.IsCancelled = true
	}

	if err := s.store.UpdateJourney(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to end journey: %w", err)
	}

	visited := j.CheckedInCount()
	completedDelta := 0
	outcome := "cancelled"
	if completed {
		completedDelta = 1
		outcome = "completed"
	}
	if err := s.store.AddJourneyStats(ctx, j.UserID, completedDelta, visited); err != nil {
		log.Printf("JourneyService: failed to update journey stats for user %s: %v", j.UserID, err)
	}
	journeysEndedTotal.WithLabelValues(outcome).Inc()
	return j, nil
}
