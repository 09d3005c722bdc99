package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i474232898/weatherfo/internal/weather"
)

// PostgresLookups stores lookups in the location_lookups table.
type PostgresLookups struct {
	pool *pgxpool.Pool
}

// NewPostgresLookups creates a new PostgreSQL lookup repository.
func NewPostgresLookups(pool *pgxpool.Pool) *PostgresLookups {
	return &PostgresLookups{pool: pool}
}

// RecordLookup persists one resolved lookup.
func (r *PostgresLookups) RecordLookup(ctx context.Context, l weather.Lookup) error {
	query := `
		INSERT INTO location_lookups (query, name, country, latitude, longitude, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		l.Query, l.Place.Name, l.Place.Country, l.Place.Lat, l.Place.Lon, l.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save lookup: %w", err)
	}
	return nil
}

// Recent returns up to limit lookups, newest first.
func (r *PostgresLookups) Recent(ctx context.Context, limit int) ([]weather.Lookup, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `
		SELECT query, name, country, latitude, longitude, resolved_at
		FROM location_lookups
		ORDER BY resolved_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query lookups: %w", err)
	}
	defer rows.Close()

	var results []weather.Lookup
	for rows.Next() {
		var l weather.Lookup
		if err := rows.Scan(
			&l.Query, &l.Place.Name, &l.Place.Country, &l.Place.Lat, &l.Place.Lon, &l.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan lookup row: %w", err)
		}
		l.ResolvedAt = l.ResolvedAt.UTC()
		results = append(results, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read lookups: %w", err)
	}

	return results, nil
}

// Health checks database connectivity.
func (r *PostgresLookups) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
