package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ganjaGuideAPI/internal/apperr"
	"ganjaGuideAPI/internal/types/vendor"
)

func (p *Postgres) GetVendor(ctx context.Context, id string) (*vendor.Vendor, error) {
	query := `
		SELECT id, name, address, city, latitude, longitude,
		       COALESCE(hours, '{}'), COALESCE(contact, '{}'), COALESCE(deals, '{}'),
		       is_partner, has_qr_code, rating, created_at
		FROM vendors
		WHERE id = $1
	`

	var v vendor.Vendor
	var hoursJSON, contactJSON, dealsJSON []byte

	err := p.db.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.Name,
		&v.Location.Address,
		&v.Location.City,
		&v.Location.Latitude,
		&v.Location.Longitude,
		&hoursJSON,
		&contactJSON,
		&dealsJSON,
		&v.IsPartner,
		&v.HasQrCode,
		&v.Rating,
		&v.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("vendor %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	if err := unmarshalVendorJSON(&v, hoursJSON, contactJSON, dealsJSON); err != nil {
		return nil, err
	}
	return &v, nil
}

func (p *Postgres) ListVendors(ctx context.Context) ([]vendor.Vendor, error) {
	query := `
		SELECT id, name, address, city, latitude, longitude,
		       COALESCE(hours, '{}'), COALESCE(contact, '{}'), COALESCE(deals, '{}'),
		       is_partner, has_qr_code, rating, created_at
		FROM vendors
		ORDER BY name
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []vendor.Vendor
	for rows.Next() {
		var v vendor.Vendor
		var hoursJSON, contactJSON, dealsJSON []byte

		err := rows.Scan(
			&v.ID,
			&v.Name,
			&v.Location.Address,
			&v.Location.City,
			&v.Location.Latitude,
			&v.Location.Longitude,
			&hoursJSON,
			&contactJSON,
			&dealsJSON,
			&v.IsPartner,
			&v.HasQrCode,
			&v.Rating,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor row: %w", err)
		}
		if err := unmarshalVendorJSON(&v, hoursJSON, contactJSON, dealsJSON); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return vendors, nil
}

func (p *Postgres) PutVendor(ctx context.Context, v *vendor.Vendor) error {
	hoursJSON, err := json.Marshal(v.Hours)
	if err != nil {
		return fmt.Errorf("failed to marshal hours: %w", err)
	}
	contactJSON, err := json.Marshal(v.Contact)
	if err != nil {
		return fmt.Errorf("failed to marshal contact: %w", err)
	}
	dealsJSON, err := json.Marshal(v.Deals)
	if err != nil {
		return fmt.Errorf("failed to marshal deals: %w", err)
	}

	query := `
		INSERT INTO vendors (
			id, name, address, city, latitude, longitude,
			hours, contact, deals, is_partner, has_qr_code, rating, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			hours = EXCLUDED.hours,
			contact = EXCLUDED.contact,
			deals = EXCLUDED.deals,
			is_partner = EXCLUDED.is_partner,
			has_qr_code = EXCLUDED.has_qr_code,
			rating = EXCLUDED.rating
	`
	_, err = p.db.Exec(ctx, query,
		v.ID, v.Name, v.Location.Address, v.Location.City,
		v.Location.Latitude, v.Location.Longitude,
		hoursJSON, contactJSON, dealsJSON,
		v.IsPartner, v.HasQrCode, v.Rating, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vendor: %w", err)
	}
	return nil
}

func (p *Postgres) ListFeaturedDeals(ctx context.Context, now time.Time) ([]vendor.FeaturedDeal, error) {
	query := `
		SELECT id, vendor_id, deal_type, title, COALESCE(description, ''), position, active_from, active_until
		FROM featured_deals
		WHERE (active_from IS NULL OR active_from <= $1)
		  AND (active_until IS NULL OR active_until >= $1)
		ORDER BY position
	`

	rows, err := p.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured deals: %w", err)
	}
	defer rows.Close()

	var deals []vendor.FeaturedDeal
	for rows.Next() {
		var d vendor.FeaturedDeal
		err := rows.Scan(&d.ID, &d.VendorID, &d.DealType, &d.Title, &d.Description, &d.Position, &d.ActiveFrom, &d.ActiveUntil)
		if err != nil {
			return nil, fmt.Errorf("failed to scan featured deal row: %w", err)
		}
		deals = append(deals, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return deals, nil
}

func (p *Postgres) PutFeaturedDeal(ctx context.Context, d *vendor.FeaturedDeal) error {
	query := `
		INSERT INTO featured_deals (id, vendor_id, deal_type, title, description, position, active_from, active_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			deal_type = EXCLUDED.deal_type,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			position = EXCLUDED.position,
			active_from = EXCLUDED.active_from,
			active_until = EXCLUDED.active_until
	`
	_, err := p.db.Exec(ctx, query, d.ID, d.VendorID, d.DealType, d.Title, d.Description, d.Position, d.ActiveFrom, d.ActiveUntil)
	if err != nil {
		return fmt.Errorf("failed to upsert featured deal: %w", err)
	}
	return nil
}

func unmarshalVendorJSON(v *vendor.Vendor, hoursJSON, contactJSON, dealsJSON []byte) error {
	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &v.Hours); err != nil {
			return fmt.Errorf("failed to unmarshal vendor hours: %w", err)
		}
	}
	if len(contactJSON) > 0 {
		if err := json.Unmarshal(contactJSON, &v.Contact); err != nil {
			return fmt.Errorf("failed to unmarshal vendor contact: %w", err)
		}
	}
	if len(dealsJSON) > 0 {
		if err := json.Unmarshal(dealsJSON, &v.Deals); err != nil {
			return fmt.Errorf("failed to unmarshal vendor deals: %w", err)
		}
	}
	return nil
}
