package postgres

import (
	"context"
	"fmt"

	"ganjaGuideAPI/internal/types/checkin"
)

func (p *Postgres) AppendCheckIn(ctx context.Context, ev *checkin.Event) error {
	query := `
		INSERT INTO check_ins (id, user_id, vendor_id, journey_id, stop_index, check_in_type, points_earned, distance_miles, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := p.db.Exec(ctx, query,
		ev.ID, ev.UserID, ev.VendorID, ev.JourneyID, ev.StopIndex,
		ev.Type, ev.PointsEarned, ev.DistanceMiles, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append check-in event: %w", err)
	}
	return nil
}

func (p *Postgres) ListCheckIns(ctx context.Context, userID string, limit int) ([]checkin.Event, error) {
	query := `
		SELECT id, user_id, vendor_id, journey_id, stop_index, check_in_type, points_earned, distance_miles, created_at
		FROM check_ins
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	var events []checkin.Event
	for rows.Next() {
		var ev checkin.Event
		err := rows.Scan(&ev.ID, &ev.UserID, &ev.VendorID, &ev.JourneyID, &ev.StopIndex,
			&ev.Type, &ev.PointsEarned, &ev.DistanceMiles, &ev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in row: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return events, nil
}
