package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/user"
)

func (p *Postgres) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, clerk_id, email, username, image_url, email_verified, is_age_verified, accepted_terms, points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (clerk_id) DO NOTHING
	`
	_, err := p.db.Exec(ctx, query,
		u.ID, u.ClerkID, u.Email, u.Username, u.ImageURL,
		u.EmailVerified, u.IsAgeVerified, u.AcceptedTerms, u.Points,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (p *Postgres) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
		SELECT id, clerk_id, email, username, COALESCE(image_url, ''), email_verified, is_age_verified, accepted_terms, points, created_at, updated_at
		FROM users
		WHERE clerk_id = $1
	`

	var u user.User
	err := p.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.ImageURL,
		&u.EmailVerified, &u.IsAgeVerified, &u.AcceptedTerms, &u.Points,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user %s: %w", clerkID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (p *Postgres) UpdateUser(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET email = $1, username = $2, image_url = $3, email_verified = $4,
		    is_age_verified = $5, accepted_terms = $6, points = $7, updated_at = NOW()
		WHERE clerk_id = $8
	`
	tag, err := p.db.Exec(ctx, query,
		u.Email, u.Username, u.ImageURL, u.EmailVerified,
		u.IsAgeVerified, u.AcceptedTerms, u.Points, u.ClerkID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", u.ClerkID, apperr.ErrNotFound)
	}
	return nil
}

func (p *Postgres) DeleteUser(ctx context.Context, clerkID string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (p *Postgres) AddFavorite(ctx context.Context, userID, vendorID string) error {
	query := `
		INSERT INTO user_favorites (user_id, vendor_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, vendor_id) DO NOTHING
	`
	_, err := p.db.Exec(ctx, query, userID, vendorID)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (p *Postgres) RemoveFavorite(ctx context.Context, userID, vendorID string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM user_favorites WHERE user_id = $1 AND vendor_id = $2`, userID, vendorID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (p *Postgres) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	rows, err := p.db.Query(ctx, `SELECT vendor_id FROM user_favorites WHERE user_id = $1 ORDER BY vendor_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		out = append(out, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (p *Postgres) GetPreferences(ctx context.Context, userID string) (user.Preferences, error) {
	var prefsJSON []byte
	err := p.db.QueryRow(ctx, `SELECT prefs FROM user_preferences WHERE user_id = $1`, userID).Scan(&prefsJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.Preferences{}, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs := user.Preferences{}
	if len(prefsJSON) > 0 {
		if err := json.Unmarshal(prefsJSON, &prefs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
		}
	}
	return prefs, nil
}

func (p *Postgres) SetPreferences(ctx context.Context, userID string, prefs user.Preferences) error {
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	query := `
		INSERT INTO user_preferences (user_id, prefs, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET prefs = EXCLUDED.prefs, updated_at = NOW()
	`
	_, err = p.db.Exec(ctx, query, userID, prefsJSON)
	if err != nil {
		return fmt.Errorf("failed to set preferences: %w", err)
	}
	return nil
}

func (p *Postgres) RecordVisit(ctx context.Context, userID, vendorID string, at time.Time) error {
	query := `
		INSERT INTO user_visits (user_id, vendor_id, visit_count, last_visit)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, vendor_id) DO UPDATE SET
			visit_count = user_visits.visit_count + 1,
			last_visit = EXCLUDED.last_visit
	`
	_, err := p.db.Exec(ctx, query, userID, vendorID, at)
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

func (p *Postgres) ListVisits(ctx context.Context, userID string) ([]user.Visit, error) {
	rows, err := p.db.Query(ctx, `
		SELECT vendor_id, visit_count, last_visit
		FROM user_visits
		WHERE user_id = $1
		ORDER BY last_visit DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []user.Visit
	for rows.Next() {
		var v user.Visit
		if err := rows.Scan(&v.VendorID, &v.VisitCount, &v.LastVisit); err != nil {
			return nil, fmt.Errorf("failed to scan visit row: %w", err)
		}
		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return visits, nil
}
