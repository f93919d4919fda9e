// Package memory is the fixture-backed Store used for local development and
// tests. All state lives in maps behind one mutex; "transactions" are just
// critical sections, which is enough to honor the same atomicity contract the
// postgres implementation gets from real transactions.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/types/journey"
	"ganjaGuideAPI/internal/types/points"
	"ganjaGuideAPI/internal/types/vendor"
	"ganjaGuideAPI/internal/user"
)

type Memory struct {
	mu sync.Mutex

	vendors    map[string]vendor.Vendor
	featured   map[string]vendor.FeaturedDeal
	journeys   map[string]journey.Journey
	stats      map[string]journey.Stats
	checkIns   []checkin.Event
	ledger     map[string][]points.Entry
	users      map[string]user.User // keyed by clerk ID
	favorites  map[string]map[string]bool
	prefs      map[string]user.Preferences
	visits     map[string]map[string]*user.Visit
	migrations map[string]bool
}

// New returns an empty in-memory store. Use NewWithFixtures for a store
// preloaded with the vendor catalog.
func New() *Memory {
	return &Memory{
		vendors:    make(map[string]vendor.Vendor),
		featured:   make(map[string]vendor.FeaturedDeal),
		journeys:   make(map[string]journey.Journey),
		stats:      make(map[string]journey.Stats),
		ledger:     make(map[string][]points.Entry),
		users:      make(map[string]user.User),
		favorites:  make(map[string]map[string]bool),
		prefs:      make(map[string]user.Preferences),
		visits:     make(map[string]map[string]*user.Visit),
		migrations: make(map[string]bool),
	}
}

// NewWithFixtures returns a store preloaded with the mock vendor catalog.
func NewWithFixtures() *Memory {
	m := New()
	for _, v := range FixtureVendors() {
		m.vendors[v.ID] = v
	}
	for _, d := range FixtureFeaturedDeals() {
		m.featured[d.ID] = d
	}
	return m
}

func (m *Memory) Close() {}

// --- vendors ---

func (m *Memory) GetVendor(_ context.Context, id string) (*vendor.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vendors[id]
	if !ok {
		return nil, fmt.Errorf("vendor %s: %w", id, apperr.ErrNotFound)
	}
	return &v, nil
}

func (m *Memory) ListVendors(_ context.Context) ([]vendor.Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]vendor.Vendor, 0, len(m.vendors))
	for _, v := range m.vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) PutVendor(_ context.Context, v *vendor.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vendors[v.ID] = *v
	return nil
}

func (m *Memory) ListFeaturedDeals(_ context.Context, now time.Time) ([]vendor.FeaturedDeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []vendor.FeaturedDeal
	for _, d := range m.featured {
		if d.ActiveFrom != nil && now.Before(*d.ActiveFrom) {
			continue
		}
		if d.ActiveUntil != nil && now.After(*d.ActiveUntil) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *Memory) PutFeaturedDeal(_ context.Context, d *vendor.FeaturedDeal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.featured[d.ID] = *d
	return nil
}

// --- journeys ---

func copyJourney(j journey.Journey) journey.Journey {
	stops := make([]journey.Stop, len(j.Stops))
	copy(stops, j.Stops)
	j.Stops = stops
	return j
}

func (m *Memory) CreateJourney(_ context.Context, j *journey.Journey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Same constraint the postgres backend enforces with its unique partial
	// index: one active journey per user.
	if j.IsActive {
		for _, existing := range m.journeys {
			if existing.UserID == j.UserID && existing.IsActive {
				return fmt.Errorf("user %s: %w", j.UserID, apperr.ErrJourneyActive)
			}
		}
	}
	m.journeys[j.ID] = copyJourney(*j)
	return nil
}

func (m *Memory) GetJourney(_ context.Context, id string) (*journey.Journey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.journeys[id]
	if !ok {
		return nil, fmt.Errorf("journey %s: %w", id, apperr.ErrNotFound)
	}
	out := copyJourney(j)
	return &out, nil
}

func (m *Memory) GetActiveJourney(_ context.Context, userID string) (*journey.Journey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, j := range m.journeys {
		if j.UserID == userID && j.IsActive {
			out := copyJourney(j)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("active journey for user %s: %w", userID, apperr.ErrNotFound)
}

func (m *Memory) UpdateJourney(_ context.Context, j *journey.Journey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.journeys[j.ID]; !ok {
		return fmt.Errorf("journey %s: %w", j.ID, apperr.ErrNotFound)
	}
	m.journeys[j.ID] = copyJourney(*j)
	return nil
}

func (m *Memory) GetJourneyStats(_ context.Context, userID string) (*journey.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[userID]
	if !ok {
		return &journey.Stats{UserID: userID}, nil
	}
	return &s, nil
}

func (m *Memory) AddJourneyStats(_ context.Context, userID string, completed, vendorsVisited int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats[userID]
	s.UserID = userID
	s.CompletedJourneys += completed
	s.TotalVendorsVisited += vendorsVisited
	m.stats[userID] = s
	return nil
}

// --- check-ins ---

func (m *Memory) AppendCheckIn(_ context.Context, ev *checkin.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkIns = append(m.checkIns, *ev)
	return nil
}

func (m *Memory) ListCheckIns(_ context.Context, userID string, limit int) ([]checkin.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []checkin.Event
	for i := len(m.checkIns) - 1; i >= 0; i-- {
		if m.checkIns[i].UserID == userID {
			out = append(out, m.checkIns[i])
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// --- points ---

func (m *Memory) AppendPoints(_ context.Context, userID string, delta int, source string, metadata map[string]any) (*points.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.findUserByID(userID)
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}

	total := u.Points + delta
	entry := points.Entry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Delta:     delta,
		Total:     total,
		Source:    source,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	m.ledger[userID] = append(m.ledger[userID], entry)

	u.Points = total
	u.UpdatedAt = time.Now()
	m.users[u.ClerkID] = *u

	return &entry, nil
}

func (m *Memory) PointsHistory(_ context.Context, userID string, limit int) ([]points.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.ledger[userID]
	var out []points.Entry
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) SetPointsTotal(_ context.Context, userID string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.findUserByID(userID)
	if !ok {
		return fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	u.Points = total
	u.UpdatedAt = time.Now()
	m.users[u.ClerkID] = *u
	return nil
}

func (m *Memory) SumPoints(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sum := 0
	for _, e := range m.ledger[userID] {
		sum += e.Delta
	}
	return sum, nil
}

// --- users ---

func (m *Memory) findUserByID(id string) (*user.User, bool) {
	for _, u := range m.users {
		if u.ID == id {
			out := u
			return &out, true
		}
	}
	return nil, false
}

func (m *Memory) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Inserts are idempotent on clerk ID, like the postgres ON CONFLICT DO
	// NOTHING. A redelivered user.created webhook must not reset the profile.
	if _, exists := m.users[u.ClerkID]; exists {
		return nil
	}
	m.users[u.ClerkID] = *u
	return nil
}

func (m *Memory) GetUserByClerkID(_ context.Context, clerkID string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[clerkID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", clerkID, apperr.ErrNotFound)
	}
	return &u, nil
}

func (m *Memory) UpdateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.ClerkID]; !ok {
		return fmt.Errorf("user %s: %w", u.ClerkID, apperr.ErrNotFound)
	}
	m.users[u.ClerkID] = *u
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, clerkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, clerkID)
	return nil
}

func (m *Memory) AddFavorite(_ context.Context, userID, vendorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.vendors[vendorID]; !ok {
		return fmt.Errorf("vendor %s: %w", vendorID, apperr.ErrNotFound)
	}
	if m.favorites[userID] == nil {
		m.favorites[userID] = make(map[string]bool)
	}
	m.favorites[userID][vendorID] = true
	return nil
}

func (m *Memory) RemoveFavorite(_ context.Context, userID, vendorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.favorites[userID], vendorID)
	return nil
}

func (m *Memory) ListFavorites(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for id := range m.favorites[userID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) GetPreferences(_ context.Context, userID string) (user.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefs := user.Preferences{}
	for k, v := range m.prefs[userID] {
		prefs[k] = v
	}
	return prefs, nil
}

func (m *Memory) SetPreferences(_ context.Context, userID string, prefs user.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := user.Preferences{}
	for k, v := range prefs {
		stored[k] = v
	}
	m.prefs[userID] = stored
	return nil
}

func (m *Memory) RecordVisit(_ context.Context, userID, vendorID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.visits[userID] == nil {
		m.visits[userID] = make(map[string]*user.Visit)
	}
	v, ok := m.visits[userID][vendorID]
	if !ok {
		m.visits[userID][vendorID] = &user.Visit{VendorID: vendorID, VisitCount: 1, LastVisit: at}
		return nil
	}
	v.VisitCount++
	v.LastVisit = at
	return nil
}

func (m *Memory) ListVisits(_ context.Context, userID string) ([]user.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []user.Visit
	for _, v := range m.visits[userID] {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastVisit.After(out[j].LastVisit) })
	return out, nil
}

// --- migrations ---

func (m *Memory) MigrationDone(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.migrations[name], nil
}

func (m *Memory) MarkMigration(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.migrations[name] = true
	return nil
}
