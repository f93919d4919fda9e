package checkin

import (
	"time"

	"ganjaGuideAPI/internal/geo"
)

type Type string

const (
	TypeQR        Type = "qr"
	TypeManual    Type = "manual"
	TypeQRSkipped Type = "qr_skipped"
)

// Scheme is the URI scheme prefix every vendor check-in QR payload must
// carry: Scheme + vendorID, nothing else.
const Scheme = "ganjaguide://checkin/"

// Proof is what the client presents to prove presence at a vendor: a scanned
// QR payload, a device location fix, or neither (manual check-in at a vendor
// without QR capability).
type Proof struct {
	QRPayload string     `json:"qr_payload,omitempty"`
	Location  *geo.Point `json:"location,omitempty"`
	QRSkipped bool       `json:"qr_skipped,omitempty"`
}

// Event is an append-only record of a validated check-in. Never updated or
// deleted.
type Event struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	VendorID      string    `json:"vendor_id"`
	JourneyID     *string   `json:"journey_id,omitempty"`
	StopIndex     int       `json:"stop_index"`
	Type          Type      `json:"type"`
	PointsEarned  int       `json:"points_earned"`
	DistanceMiles *float64  `json:"distance_miles,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Result is returned to the caller after a check-in attempt. When the stop
// was already checked in the result carries the existing state and
// AlreadyCheckedIn is set; no points are re-awarded.
type Result struct {
	Event            *Event `json:"event,omitempty"`
	AlreadyCheckedIn bool   `json:"already_checked_in"`
	PointsAwarded    int    `json:"points_awarded"`
	BonusAwarded     int    `json:"bonus_awarded"`
	JourneyCompleted bool   `json:"journey_completed"`
}
