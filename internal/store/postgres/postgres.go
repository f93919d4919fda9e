// Package postgres is the production Store implementation. Each aggregate
// write path is a single transaction; see schema.sql at the repo root for the
// table layout.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Close() {
	p.db.Close()
}

func (p *Postgres) MigrationDone(ctx context.Context, name string) (bool, error) {
	var done bool
	err := p.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM migrations WHERE name = $1)`, name).Scan(&done)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}
	return done, nil
}

func (p *Postgres) MarkMigration(ctx context.Context, name string) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO migrations (name, completed_at)
		VALUES ($1, NOW())
		ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("failed to mark migration %s: %w", name, err)
	}
	return nil
}
