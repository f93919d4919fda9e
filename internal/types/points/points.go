package points

import "time"

// Ledger source tags.
const (
	SourceCheckIn      = "check_in"
	SourceJourneyBonus = "journey_bonus"
)

// Entry is one append-only ledger row. Total is the user's running total
// immediately after Delta was applied.
type Entry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Delta     int            `json:"delta"`
	Total     int            `json:"total"`
	Source    string         `json:"source"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
