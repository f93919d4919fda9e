package user

import "time"

type User struct {
	ID            string    `json:"id"`
	ClerkID       string    `json:"clerkId"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	IsAgeVerified bool      `json:"isAgeVerified"`
	AcceptedTerms bool      `json:"acceptedTerms"`
	Points        int       `json:"points"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Visit is the per-vendor visit counter kept for the user's history screen.
type Visit struct {
	VendorID   string    `json:"vendor_id"`
	VisitCount int       `json:"visit_count"`
	LastVisit  time.Time `json:"last_visit"`
}

// Preferences is the server-side home of what the mobile client used to keep
// in device storage: simple key -> string session flags (age verified, ToS
// accepted, last known location, ...).
type Preferences map[string]string
