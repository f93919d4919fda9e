package services

import (
	"context"
	"fmt"
	"log"

	"ganjaGuideAPI/internal/store"
	"ganjaGuideAPI/internal/types/points"
)

// PointsService fronts the append-only ledger. The ledger is the source of
// truth; the profile total is a cache of its sum.
type PointsService struct {
	store store.Store
}

func NewPointsService(st store.Store) *PointsService {
	return &PointsService{store: st}
}

// Award appends a delta with its source tag and returns the ledger entry
// carrying the new running total.
func (s *PointsService) Award(ctx context.Context, userID string, delta int, source string, metadata map[string]any) (*points.Entry, error) {
	entry, err := s.store.AppendPoints(ctx, userID, delta, source, metadata)
	if err != nil {
		return nil, err
	}
	pointsAwardedTotal.WithLabelValues(source).Add(float64(delta))
	return entry, nil
}

func (s *PointsService) History(ctx context.Context, userID string, limit int) ([]points.Entry, error) {
	return s.store.PointsHistory(ctx, userID, limit)
}

// Total returns the ledger sum, not the cached profile field.
func (s *PointsService) Total(ctx context.Context, userID string) (int, error) {
	return s.store.SumPoints(ctx, userID)
}

// ReconcileReport describes one audit pass over a user's points.
type ReconcileReport struct {
	UserID        string `json:"user_id"`
	LedgerSum     int    `json:"ledger_sum"`
	ProfilePoints int    `json:"profile_points"`
	Repaired      bool   `json:"repaired"`
}

// Reconcile recomputes the ledger sum and repairs the profile total when it
// drifted (a crash between a check-in's journey commit and its ledger append
// can leave them apart). The repair rewrites the cache only; the ledger is
// never touched.
func (s *PointsService) Reconcile(ctx context.Context, userID string, profilePoints int) (*ReconcileReport, error) {
	sum, err := s.store.SumPoints(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger: %w", err)
	}

	report := &ReconcileReport{UserID: userID, LedgerSum: sum, ProfilePoints: profilePoints}
	if sum == profilePoints {
		return report, nil
	}

	log.Printf("PointsService: points drift for user %s: profile=%d ledger=%d", userID, profilePoints, sum)
	if err := s.store.SetPointsTotal(ctx, userID, sum); err != nil {
		return nil, fmt.Errorf("failed to repair points total: %w", err)
	}
	report.Repaired = true
	return report, nil
}
