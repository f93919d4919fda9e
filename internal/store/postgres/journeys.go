package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/types/journey"
)

const journeyColumns = `
	id, user_id, deal_type, stops, current_vendor_index,
	is_active, is_completed, is_cancelled,
	total_distance, estimated_minutes, max_distance, created_at, ended_at
`

func (p *Postgres) CreateJourney(ctx context.Context, j *journey.Journey) error {
	stopsJSON, err := json.Marshal(j.Stops)
	if err != nil {
		return fmt.Errorf("failed to marshal journey stops: %w", err)
	}

	query := `
		INSERT INTO journeys (` + journeyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = p.db.Exec(ctx, query,
		j.ID, j.UserID, j.DealType, stopsJSON, j.CurrentVendorIndex,
		j.IsActive, j.IsCompleted, j.IsCancelled,
		j.TotalDistance, j.EstimatedMinutes, j.MaxDistance, j.CreatedAt, j.EndedAt,
	)
	if err != nil {
		// idx_journeys_user_active: two concurrent starts can both pass the
		// active-journey check; the unique partial index backstops it.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user %s: %w", j.UserID, apperr.ErrJourneyActive)
		}
		return fmt.Errorf("failed to create journey: %w", err)
	}
	return nil
}

func (p *Postgres) GetJourney(ctx context.Context, id string) (*journey.Journey, error) {
	query := `SELECT ` + journeyColumns + ` FROM journeys WHERE id = $1`
	return p.scanJourney(p.db.QueryRow(ctx, query, id), id)
}

func (p *Postgres) GetActiveJourney(ctx context.Context, userID string) (*journey.Journey, error) {
	query := `
		SELECT ` + journeyColumns + `
		FROM journeys
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`
	return p.scanJourney(p.db.QueryRow(ctx, query, userID), "active for "+userID)
}

// UpdateJourney rewrites the whole aggregate row. A journey is one document;
// stops, index and flags always land together.
func (p *Postgres) UpdateJourney(ctx context.Context, j *journey.Journey) error {
	stopsJSON, err := json.Marshal(j.Stops)
	if err != nil {
		return fmt.Errorf("failed to marshal journey stops: %w", err)
	}

	query := `
		UPDATE journeys
		SET stops = $1,
		    current_vendor_index = $2,
		    is_active = $3,
		    is_completed = $4,
		    is_cancelled = $5,
		    total_distance = $6,
		    estimated_minutes = $7,
		    ended_at = $8
		WHERE id = $9
	`
	tag, err := p.db.Exec(ctx, query,
		stopsJSON, j.CurrentVendorIndex,
		j.IsActive, j.IsCompleted, j.IsCancelled,
		j.TotalDistance, j.EstimatedMinutes, j.EndedAt, j.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update journey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("journey %s: %w", j.ID, apperr.ErrNotFound)
	}
	return nil
}

func (p *Postgres) GetJourneyStats(ctx context.Context, userID string) (*journey.Stats, error) {
	query := `
		SELECT completed_journeys, total_vendors_visited
		FROM journey_stats
		WHERE user_id = $1
	`

	stats := journey.Stats{UserID: userID}
	err := p.db.QueryRow(ctx, query, userID).Scan(&stats.CompletedJourneys, &stats.TotalVendorsVisited)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &stats, nil
		}
		return nil, fmt.Errorf("failed to get journey stats: %w", err)
	}
	return &stats, nil
}

func (p *Postgres) AddJourneyStats(ctx context.Context, userID string, completed, vendorsVisited int) error {
	query := `
		INSERT INTO journey_stats (user_id, completed_journeys, total_vendors_visited)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			completed_journeys = journey_stats.completed_journeys + EXCLUDED.completed_journeys,
			total_vendors_visited = journey_stats.total_vendors_visited + EXCLUDED.total_vendors_visited
	`
	_, err := p.db.Exec(ctx, query, userID, completed, vendorsVisited)
	if err != nil {
		return fmt.Errorf("failed to update journey stats: %w", err)
	}
	return nil
}

func (p *Postgres) scanJourney(row pgx.Row, ref string) (*journey.Journey, error) {
	var j journey.Journey
	var stopsJSON []byte

	err := row.Scan(
		&j.ID, &j.UserID, &j.DealType, &stopsJSON, &j.CurrentVendorIndex,
		&j.IsActive, &j.IsCompleted, &j.IsCancelled,
		&j.TotalDistance, &j.EstimatedMinutes, &j.MaxDistance, &j.CreatedAt, &j.EndedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("journey %s: %w", ref, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan journey: %w", err)
	}

	if len(stopsJSON) > 0 {
		if err := json.Unmarshal(stopsJSON, &j.Stops); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journey stops: %w", err)
		}
	}
	return &j, nil
}
