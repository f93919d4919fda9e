package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/geo"
	"ganjaGuideAPI/internal/store"
	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/types/points"
)

// ProximityThresholdMiles is how close a device fix must be to the vendor for
// a location check-in. One constant everywhere; roughly a city block.
const ProximityThresholdMiles = 0.1

// Points policy.
const (
	basePoints             = 10
	skippedQRPoints        = 5
	completionBonusPerStop = 5
)

// CheckinService validates check-in proofs and records the resulting event
// and ledger entries. Journey mutation stays with JourneyService; the
// processors here only append.
type CheckinService struct {
	store store.Store
}

func NewCheckinService(st store.Store) *CheckinService {
	return &CheckinService{store: st}
}

// validateProof decides whether a proof is acceptable for the given vendor
// and classifies the check-in. The returned distance is set only on the
// location path, and is kept even when the caller force-confirmed past the
// threshold so the discrepancy lands in the audit trail.
func (s *CheckinService) validateProof(vendorID string, hasQrCode bool, vendorLoc geo.Point, proof checkin.Proof, forceConfirm bool) (checkin.Type, *float64, error) {
	if proof.QRPayload != "" {
		expected := checkin.Scheme + vendorID
		if proof.QRPayload != expected {
			return "", nil, fmt.Errorf("qr payload does not match vendor %s: %w", vendorID, apperr.ErrInvalidProof)
		}
		return checkin.TypeQR, nil, nil
	}

	if proof.Location == nil {
		return "", nil, fmt.Errorf("no proof presented: %w", apperr.ErrInvalidProof)
	}

	dist := geo.Distance(*proof.Location, vendorLoc)
	if dist > ProximityThresholdMiles && !forceConfirm {
		return "", nil, &apperr.TooFarError{DistanceMiles: dist, ThresholdMiles: ProximityThresholdMiles}
	}

	t := checkin.TypeManual
	if hasQrCode && proof.QRSkipped {
		t = checkin.TypeQRSkipped
	}
	return t, &dist, nil
}

// pointsFor implements the points policy: full points for a validated QR scan
// or a manual check-in, half when the user skipped an available scan.
func pointsFor(t checkin.Type) int {
	if t == checkin.TypeQRSkipped {
		return skippedQRPoints
	}
	return basePoints
}

// record appends the check-in event, credits the ledger and bumps the visit
// counter. The three writes are separate transactions on purpose: a crash
// between them leaves a checked-in stop without points, which the ledger
// reconcile path can only detect, not prevent. The visit counter is
// best-effort and never fails the check-in.
func (s *CheckinService) record(ctx context.Context, userID, vendorID string, journeyID *string, stopIndex int, t checkin.Type, distance *float64, pts int) (*checkin.Event, error) {
	ev := &checkin.Event{
		ID:            uuid.New().String(),
		UserID:        userID,
		VendorID:      vendorID,
		JourneyID:     journeyID,
		StopIndex:     stopIndex,
		Type:          t,
		PointsEarned:  pts,
		DistanceMiles: distance,
		CreatedAt:     time.Now(),
	}
	if err := s.store.AppendCheckIn(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to record check-in event: %w", err)
	}

	metadata := map[string]any{"vendor_id": vendorID, "check_in_type": string(t)}
	if journeyID != nil {
		metadata["journey_id"] = *journeyID
	}
	if _, err := s.store.AppendPoints(ctx, userID, pts, points.SourceCheckIn, metadata); err != nil {
		return nil, fmt.Errorf("check-in recorded but points not credited: %w", err)
	}

	if err := s.store.RecordVisit(ctx, userID, vendorID, ev.CreatedAt); err != nil {
		log.Printf("CheckinService: failed to record visit for user %s at %s: %v", userID, vendorID, err)
	}

	checkInsTotal.WithLabelValues(string(t)).Inc()
	pointsAwardedTotal.WithLabelValues(points.SourceCheckIn).Add(float64(pts))

	return ev, nil
}

// History returns the user's most recent check-in events.
func (s *CheckinService) History(ctx context.Context, userID string, limit int) ([]checkin.Event, error) {
	return s.store.ListCheckIns(ctx, userID, limit)
}

// CheckInAt is the standalone check-in at a vendor outside any journey.
func (s *CheckinService) CheckInAt(ctx context.Context, userID, vendorID string, proof checkin.Proof, forceConfirm bool) (*checkin.Result, error) {
	v, err := s.store.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	t, dist, err := s.validateProof(v.ID, v.HasQrCode, v.Coordinates(), proof, forceConfirm)
	if err != nil {
		return nil, err
	}

	pts := pointsFor(t)
	ev, err := s.record(ctx, userID, v.ID, nil, 0, t, dist, pts)
	if err != nil {
		return nil, err
	}

	return &checkin.Result{Event: ev, PointsAwarded: pts}, nil
}
