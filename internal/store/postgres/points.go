package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/types/points"
)

// AppendPoints is the only writer of users.points. The row lock on the user
// serializes concurrent appends for the same user, so the running totals in
// points_history never interleave.
func (p *Postgres) AppendPoints(ctx context.Context, userID string, delta int, source string, metadata map[string]any) (*points.Entry, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int
	err = tx.QueryRow(ctx, `SELECT points FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&current)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read user points: %w", err)
	}

	entry := points.Entry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Delta:     delta,
		Total:     current + delta,
		Source:    source,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}

	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger metadata: %w", err)
	}

	insertQuery := `
		INSERT INTO points_history (id, user_id, delta, total, source, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, insertQuery, entry.ID, entry.UserID, entry.Delta, entry.Total, entry.Source, metadataJSON, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE users SET points = $1, updated_at = NOW() WHERE id = $2`, entry.Total, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update user points: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}
	return &entry, nil
}

func (p *Postgres) PointsHistory(ctx context.Context, userID string, limit int) ([]points.Entry, error) {
	query := `
		SELECT id, user_id, delta, total, source, COALESCE(metadata, '{}'), created_at
		FROM points_history
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
		return nil, fmt.Errorf("failed to query points history: %w", err)
	}
	defer rows.Close()

	var entries []points.Entry
	for rows.Next() {
		var e points.Entry
		var metadataJSON []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.Total, &e.Source, &metadataJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal ledger metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

func (p *Postgres) SetPointsTotal(ctx context.Context, userID string, total int) error {
	tag, err := p.db.Exec(ctx, `UPDATE users SET points = $1, updated_at = NOW() WHERE id = $2`, total, userID)
	if err != nil {
		return fmt.Errorf("failed to set points total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	return nil
}

func (p *Postgres) SumPoints(ctx context.Context, userID string) (int, error) {
	var sum int
	err := p.db.QueryRow(ctx, `SELECT COALESCE(SUM(delta), 0) FROM points_history WHERE user_id = $1`, userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger deltas: %w", err)
	}
	return sum, nil
}
