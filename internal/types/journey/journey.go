package journey

import (
	"time"

	"ganjaGuideAPI/internal/geo"
	"ganjaGuideAPI/internal/types/checkin"
	"ganjaGuideAPI/internal/types/vendor"
)

// Stop is one vendor visit embedded in a journey. Coordinates and name are
// denormalized from the vendor record at route-build time.
type Stop struct {
	VendorID    string        `json:"vendor_id"`
	VendorName  string        `json:"vendor_name"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	HasQrCode   bool          `json:"has_qr_code"`
	IsPartner   bool          `json:"is_partner"`
	LegDistance float64       `json:"leg_distance"`
	CheckedIn   bool          `json:"checked_in"`
	CheckInAt   *time.Time    `json:"check_in_at,omitempty"`
	CheckInType *checkin.Type `json:"check_in_type,omitempty"`
}

// Coordinates returns the stop's location as a geo.Point.
func (s *Stop) Coordinates() geo.Point {
	return geo.Point{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Journey is the aggregate tracking a user through an ordered list of vendor
// stops. The stops slice, index and flags are always written together in a
// single transaction.
type Journey struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	DealType           vendor.DealType `json:"deal_type"`
	Stops              []Stop          `json:"stops"`
	CurrentVendorIndex int             `json:"current_vendor_index"`
	IsActive           bool            `json:"is_active"`
	IsCompleted        bool            `json:"is_completed"`
	IsCancelled        bool            `json:"is_cancelled"`
	TotalDistance      float64         `json:"total_distance"`
	EstimatedMinutes   int             `json:"estimated_minutes"`
	MaxDistance        float64         `json:"max_distance,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	EndedAt            *time.Time      `json:"ended_at,omitempty"`
}

// CheckedInCount returns how many stops have been visited.
func (j *Journey) CheckedInCount() int {
	n := 0
	for i := range j.Stops {
		if j.Stops[i].CheckedIn {
			n++
		}
	}
	return n
}

// AllCheckedIn reports whether every stop has been visited.
func (j *Journey) AllCheckedIn() bool {
	if len(j.Stops) == 0 {
		return false
	}
	return j.CheckedInCount() == len(j.Stops)
}

// ClampIndex forces CurrentVendorIndex back into [0, len(stops)). Called
// after a stop is removed.
func (j *Journey) ClampIndex() {
	if j.CurrentVendorIndex >= len(j.Stops) {
		j.CurrentVendorIndex = len(j.Stops) - 1
	}
	if j.CurrentVendorIndex < 0 {
		j.CurrentVendorIndex = 0
	}
}

// Stats is the per-user aggregate counter updated when journeys end.
type Stats struct {
	UserID              string `json:"user_id"`
	CompletedJourneys   int    `json:"completed_journeys"`
	TotalVendorsVisited int    `json:"total_vendors_visited"`
}

// Route is the estimate produced before a journey is committed.
type Route struct {
	Stops            []Stop          `json:"stops"`
	DealType         vendor.DealType `json:"deal_type,omitempty"`
	TotalDistance    float64         `json:"total_distance"`
	EstimatedMinutes int             `json:"estimated_minutes"`
}
