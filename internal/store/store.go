// Package store defines the persistence boundary of the API. Two
// implementations exist: postgres (the real backend) and memory (the fixture
// catalog used for local development and tests). The backend is picked once
// at startup via the DATA_BACKEND environment variable, never per call site.
package store

import (
	"context"
	"time"

	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/types/journey"
	"ganjaGuideAPI/internal/types/points"
	"ganjaGuideAPI/internal/types/vendor"
	"ganjaGuideAPI/internal/user"
)

// Store is the full persistence surface. Implementations must return
// apperr.ErrNotFound (possibly wrapped) when a requested record does not
// exist, and guarantee that AppendPoints and UpdateJourney each run as a
// single atomic unit. Nothing spanning two aggregates is atomic.
type Store interface {
	VendorStore
	JourneyStore
	CheckInStore
	PointsStore
	UserStore

	// MigrationDone reports whether the named one-time migration has run.
	MigrationDone(ctx context.Context, name string) (bool, error)
	MarkMigration(ctx context.Context, name string) error

	Close()
}

type VendorStore interface {
	GetVendor(ctx context.Context, id string) (*vendor.Vendor, error)
	ListVendors(ctx context.Context) ([]vendor.Vendor, error)
	// PutVendor exists for the seed path only; the API itself never writes
	// vendors.
	PutVendor(ctx context.Context, v *vendor.Vendor) error
	ListFeaturedDeals(ctx context.Context, now time.Time) ([]vendor.FeaturedDeal, error)
	PutFeaturedDeal(ctx context.Context, d *vendor.FeaturedDeal) error
}

type JourneyStore interface {
	CreateJourney(ctx context.Context, j *journey.Journey) error
	GetJourney(ctx context.Context, id string) (*journey.Journey, error)
	// GetActiveJourney returns ErrNotFound when the user has no active
	// journey.
	GetActiveJourney(ctx context.Context, userID string) (*journey.Journey, error)
	// UpdateJourney persists the whole aggregate (stops, index, flags) in one
	// transaction.
	UpdateJourney(ctx context.Context, j *journey.Journey) error
	GetJourneyStats(ctx context.Context, userID string) (*journey.Stats, error)
	AddJourneyStats(ctx context.Context, userID string, completed, vendorsVisited int) error
}

type CheckInStore interface {
	AppendCheckIn(ctx context.Context, ev *checkin.Event) error
	ListCheckIns(ctx context.Context, userID string, limit int) ([]checkin.Event, error)
}

type PointsStore interface {
	// AppendPoints atomically reads the user's current total, writes the new
	// total on the profile and appends a ledger row carrying it.
	AppendPoints(ctx context.Context, userID string, delta int, source string, metadata map[string]any) (*points.Entry, error)
	PointsHistory(ctx context.Context, userID string, limit int) ([]points.Entry, error)
	SumPoints(ctx context.Context, userID string) (int, error)
	// SetPointsTotal overwrites the denormalized profile total without
	// touching the ledger. Reconcile-only.
	SetPointsTotal(ctx context.Context, userID string, total int) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error
	DeleteUser(ctx context.Context, clerkID string) error

	AddFavorite(ctx context.Context, userID, vendorID string) error
	RemoveFavorite(ctx context.Context, userID, vendorID string) error
	ListFavorites(ctx context.Context, userID string) ([]string, error)

	GetPreferences(ctx context.Context, userID string) (user.Preferences, error)
	SetPreferences(ctx context.Context, userID string, prefs user.Preferences) error

	RecordVisit(ctx context.Context, userID, vendorID string, at time.Time) error
	ListVisits(ctx context.Context, userID string) ([]user.Visit, error)
}
