package services

import (
	"context"
	"fmt"
	"log"

	"ganjaGuideAPI/internal/store"
	"ganjaGuideAPI/internal/store/memory"
)

const catalogSeedName = "2025_09_vendor_catalog_seed"

// SeedService runs the one-time catalog migration: it copies the fixture
// vendor catalog and featured-deal placements into the active backend. The
// migrations marker keeps it from running twice.
type SeedService struct {
	store store.Store
}

func NewSeedService(st store.Store) *SeedService {
	return &SeedService{store: st}
}

// SeedCatalog returns true when it actually seeded, false when the marker
// says a previous run already did.
func (s *SeedService) SeedCatalog(ctx context.Context) (bool, error) {
	done, err := s.store.MigrationDone(ctx, catalogSeedName)
	if err != nil {
		return false, fmt.Errorf("failed to check seed marker: %w", err)
	}
	if done {
		return false, nil
	}

	vendors := memory.FixtureVendors()
	for i := range vendors {
		if err := s.store.PutVendor(ctx, &vendors[i]); err != nil {
			return false, fmt.Errorf("failed to seed vendor %s: %w", vendors[i].ID, err)
		}
	}

	deals := memory.FixtureFeaturedDeals()
	for i := range deals {
		if err := s.store.PutFeaturedDeal(ctx, &deals[i]); err != nil {
			return false, fmt.Errorf("failed to seed featured deal %s: %w", deals[i].ID, err)
		}
	}

	if err := s.store.MarkMigration(ctx, catalogSeedName); err != nil {
		return false, fmt.Errorf("failed to mark seed migration: %w", err)
	}

	log.Printf("Seeded %d vendors and %d featured deals", len(vendors), len(deals))
	return true, nil
}
