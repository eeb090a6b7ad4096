package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ramp_capacity/internal/capacity"
	"ramp_capacity/internal/models"
)

type FBORepository interface {
	Insert(ctx context.Context, fbo models.FBO) (models.FBO, error)
	List(ctx context.Context, airportCode string) ([]models.FBO, error)
	CapacitySnapshot(ctx context.Context, airportCode string, at time.Time) ([]models.FBOSnapshot, error)
}

type fboRepository struct {
	db     *sql.DB
	policy capacity.Policy
}

func NewFBORepository(db *sql.DB, policy capacity.Policy) FBORepository {
	return &fboRepository{db: db, policy: policy}
}

// Insert adds an FBO. A zero priority places it after every existing FBO at the airport.
func (r *fboRepository) Insert(ctx context.Context, fbo models.FBO) (models.FBO, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.FBO{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if fbo.Priority <= 0 {
		var maxPriority sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			"SELECT MAX(priority) FROM fbos WHERE airport_code = ?", fbo.AirportCode,
		).Scan(&maxPriority); err != nil {
			return models.FBO{}, fmt.Errorf("failed to get max priority: %w", err)
		}
		fbo.Priority = int(maxPriority.Int64) + 1
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO fbos (
		airport_code, name, total_area, priority
	) VALUES (?, ?, ?, ?)`, fbo.AirportCode, fbo.Name, fbo.TotalArea, fbo.Priority)
	if err != nil {
		return models.FBO{}, fmt.Errorf("failed to insert fbo %s: %w", fbo.Name, err)
	}

	if fbo.ID, err = res.LastInsertId(); err != nil {
		return models.FBO{}, fmt.Errorf("failed to get fbo id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.FBO{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return fbo, nil
}

func (r *fboRepository) List(ctx context.Context, airportCode string) ([]models.FBO, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, airport_code, name, total_area, priority
		FROM fbos WHERE airport_code = ? ORDER BY priority`, airportCode)
	if err != nil {
		return nil, wrapErr("failed to list fbos", err)
	}
	defer rows.Close()

	fbos := make([]models.FBO, 0)
	for rows.Next() {
		var f models.FBO
		if err := rows.Scan(&f.ID, &f.AirportCode, &f.Name, &f.TotalArea, &f.Priority); err != nil {
			return nil, wrapErr("failed to scan fbo", err)
		}
		fbos = append(fbos, f)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("failed to iterate fbos", err)
	}
	return fbos, nil
}

// capacityQuery sums, per FBO, the parking area of aircraft that have arrived
// and not left since, plus inbound aircraft due by the instant, minus aircraft
// scheduled to depart by it.
const capacityQuery = `SELECT
	f.id, f.name, f.priority, f.total_area,
	COALESCE((SELECT SUM(t.parking_area)
		FROM flight_plans p
		JOIN fleet a ON a.acid = p.acid
		JOIN aircraft_types t ON t.type = a.plane_type
		WHERE p.fbo_id = f.id
		AND p.arrival_airport = f.airport_code
		AND p.status = 'ARRIVED'
		AND NOT EXISTS (
			SELECT 1 FROM flight_plans d
			WHERE d.acid = p.acid
			AND d.departing_airport = p.arrival_airport
			AND d.status IN ('FLYING', 'ARRIVED')
			AND d.etd > COALESCE(p.eta, 0))), 0) AS arrived_area,
	COALESCE((SELECT SUM(t.parking_area)
		FROM flight_plans p
		JOIN fleet a ON a.acid = p.acid
		JOIN aircraft_types t ON t.type = a.plane_type
		WHERE p.fbo_id = f.id
		AND p.arrival_airport = f.airport_code
		AND p.status IN ('SCHEDULED', 'FLYING')
		AND p.eta <= ?), 0) AS inbound_area,
	COALESCE((SELECT SUM(t.parking_area)
		FROM flight_plans p
		JOIN fleet a ON a.acid = p.acid
		JOIN aircraft_types t ON t.type = a.plane_type
		WHERE p.fbo_id = f.id
		AND p.departing_airport = f.airport_code
		AND p.status = 'SCHEDULED'
		AND p.etd <= ?), 0) AS outbound_area
FROM fbos f
WHERE f.airport_code = ?
ORDER BY f.priority`

// CapacitySnapshot returns every FBO at the airport with its occupied area at the instant.
// Occupied area is padded by the safety margin here and nowhere else in the data layer.
func (r *fboRepository) CapacitySnapshot(ctx context.Context, airportCode string, at time.Time) ([]models.FBOSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, capacityQuery, at.Unix(), at.Unix(), airportCode)
	if err != nil {
		return nil, wrapErr("failed to query fbo capacity", err)
	}
	defer rows.Close()

	snapshots := make([]models.FBOSnapshot, 0)
	for rows.Next() {
		var (
			s                          models.FBOSnapshot
			arrived, inbound, outbound float64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Priority, &s.TotalArea, &arrived, &inbound, &outbound); err != nil {
			return nil, wrapErr("failed to scan fbo capacity", err)
		}
		s.OccupiedArea = r.policy.Pad(arrived) + r.policy.Pad(inbound) - r.policy.Pad(outbound)
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("failed to iterate fbo capacity", err)
	}
	return snapshots, nil
}
