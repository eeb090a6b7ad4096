package database

import (
	"context"
	"database/sql"
	"fmt"

	"ramp_capacity/internal/geo"
	"ramp_capacity/internal/models"
)

type AirportRepository interface {
	InsertBatch(ctx context.Context, airports []models.Airport) error
	AirportExists(ctx context.Context, code string) (bool, error)
	Coordinates(ctx context.Context, code string) (models.Coordinates, error)
	Nearby(ctx context.Context, code string, box geo.Box) ([]models.Airport, error)
}

type airportRepository struct {
	db *sql.DB
}

func NewAirportRepository(db *sql.DB) AirportRepository {
	return &airportRepository{db: db}
}

// InsertBatch upserts airport reference rows in a single transaction
func (r *airportRepository) InsertBatch(ctx context.Context, airports []models.Airport) error {
	if len(airports) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO airports (
		ident, name, latitude_deg, longitude_deg
	) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range airports {
		if _, err := stmt.ExecContext(ctx, a.Code, a.Name, a.Lat, a.Lon); err != nil {
			return fmt.Errorf("failed to insert airport %s: %w", a.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *airportRepository) AirportExists(ctx context.Context, code string) (bool, error) {
	var ignored int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM airports WHERE ident = ?", code).Scan(&ignored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, wrapErr("failed to check airport", err)
	}
	return true, nil
}

func (r *airportRepository) Coordinates(ctx context.Context, code string) (models.Coordinates, error) {
	var c models.Coordinates
	err := r.db.QueryRowContext(ctx,
		"SELECT latitude_deg, longitude_deg FROM airports WHERE ident = ?", code,
	).Scan(&c.Lat, &c.Lon)
	if err != nil {
		return models.Coordinates{}, wrapErr(fmt.Sprintf("failed to get coordinates of %s", code), err)
	}
	return c, nil
}

// Nearby returns every airport other than code whose position falls inside box
func (r *airportRepository) Nearby(ctx context.Context, code string, box geo.Box) ([]models.Airport, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ident, name, latitude_deg, longitude_deg
		FROM airports
		WHERE ident != ?
		AND latitude_deg BETWEEN ? AND ?
		AND longitude_deg BETWEEN ? AND ?
		ORDER BY ident`,
		code, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon,
	)
	if err != nil {
		return nil, wrapErr("failed to query nearby airports", err)
	}
	defer rows.Close()

	airports := make([]models.Airport, 0)
	for rows.Next() {
		var a models.Airport
		if err := rows.Scan(&a.Code, &a.Name, &a.Lat, &a.Lon); err != nil {
			return nil, wrapErr("failed to scan airport", err)
		}
		airports = append(airports, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("failed to iterate airports", err)
	}
	return airports, nil
}
