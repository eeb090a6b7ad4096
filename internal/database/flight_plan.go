package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ramp_capacity/internal/models"
)

type FlightPlanRepository interface {
	InsertBatch(ctx context.Context, plans []models.FlightPlan) error
	ParkedAircraft(ctx context.Context, airportCode string, now time.Time) ([]models.ParkedAircraft, error)
	AirportAircraft(ctx context.Context, airportCode string, now time.Time) ([]models.Aircraft, error)
	SetMaintenance(ctx context.Context, tailNumber, airportCode string, at time.Time) error
	ClearMaintenance(ctx context.Context, tailNumber string) error
}

type flightPlanRepository struct {
	db *sql.DB
}

func NewFlightPlanRepository(db *sql.DB) FlightPlanRepository {
	return &flightPlanRepository{db: db}
}

// InsertBatch upserts flight plans in a single transaction
func (r *flightPlanRepository) InsertBatch(ctx context.Context, plans []models.FlightPlan) error {
	if len(plans) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO flight_plans (
		flight_ref, acid, departing_airport, arrival_airport, status, etd, eta, fbo_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range plans {
		if _, err := stmt.ExecContext(ctx,
			p.FlightRef, p.TailNumber, p.DepartingAirport, p.ArrivalAirport, p.Status,
			unixOrNull(p.ETD), unixOrNull(p.ETA), int64OrNull(p.FBOID),
		); err != nil {
			return fmt.Errorf("failed to insert flight plan %s: %w", p.FlightRef, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// parkedQuery selects aircraft whose latest leg arrived at the airport, that
// have not left since and are not in maintenance there. next_departure is the
// earliest scheduled departure, past or future, so stale schedules surface.
const parkedQuery = `SELECT
	p.acid,
	a.plane_type,
	COALESCE(t.parking_area, 0),
	p.fbo_id,
	(SELECT MIN(n.etd)
		FROM flight_plans n
		WHERE n.acid = p.acid
		AND n.departing_airport = p.arrival_airport
		AND n.status = 'SCHEDULED') AS next_departure
FROM flight_plans p
JOIN fleet a ON a.acid = p.acid
LEFT JOIN aircraft_types t ON t.type = a.plane_type
WHERE p.arrival_airport = ?
AND p.status = 'ARRIVED'
AND (p.eta IS NULL OR p.eta <= ?)
AND NOT EXISTS (
	SELECT 1 FROM flight_plans d
	WHERE d.acid = p.acid
	AND d.departing_airport = p.arrival_airport
	AND d.status IN ('FLYING', 'ARRIVED')
	AND d.etd > COALESCE(p.eta, 0))
AND NOT EXISTS (
	SELECT 1 FROM flight_plans m
	WHERE m.acid = p.acid
	AND m.departing_airport = p.arrival_airport
	AND m.status = 'MAINTENANCE')
GROUP BY p.acid
ORDER BY p.acid`

func (r *flightPlanRepository) ParkedAircraft(ctx context.Context, airportCode string, now time.Time) ([]models.ParkedAircraft, error) {
	rows, err := r.db.QueryContext(ctx, parkedQuery, airportCode, now.Unix())
	if err != nil {
		return nil, wrapErr("failed to query parked aircraft", err)
	}
	defer rows.Close()

	parked := make([]models.ParkedAircraft, 0)
	for rows.Next() {
		var (
			ac   models.ParkedAircraft
			fbo  sql.NullInt64
			next sql.NullInt64
		)
		if err := rows.Scan(&ac.TailNumber, &ac.TypeCode, &ac.Area, &fbo, &next); err != nil {
			return nil, wrapErr("failed to scan parked aircraft", err)
		}
		if fbo.Valid {
			id := fbo.Int64
			ac.FBOID = &id
		}
		if next.Valid {
			t := time.Unix(next.Int64, 0).UTC()
			ac.NextDeparture = &t
		}
		parked = append(parked, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("failed to iterate parked aircraft", err)
	}
	return parked, nil
}

// rosterQuery lists every aircraft tied to an airport, one branch per status.
// ord orders the roster: arriving, departing, parked, maintenance.
const rosterQuery = `WITH roster AS (
	SELECT 1 AS ord, p.acid, p.fbo_id, p.eta AS event
	FROM flight_plans p
	WHERE p.arrival_airport = @airport
	AND p.status = 'FLYING'

	UNION ALL

	SELECT 2, p.acid, p.fbo_id, p.etd
	FROM flight_plans p
	WHERE p.departing_airport = @airport
	AND p.status = 'FLYING'

	UNION ALL

	SELECT 3, p.acid, p.fbo_id,
		(SELECT MIN(n.etd)
			FROM flight_plans n
			WHERE n.acid = p.acid
			AND n.departing_airport = p.arrival_airport
			AND n.status = 'SCHEDULED'
			AND n.etd > @now)
	FROM flight_plans p
	WHERE p.arrival_airport = @airport
	AND p.status = 'ARRIVED'
	AND (p.eta IS NULL OR p.eta <= @now)
	AND NOT EXISTS (
		SELECT 1 FROM flight_plans d
		WHERE d.acid = p.acid
		AND d.departing_airport = p.arrival_airport
		AND d.status IN ('FLYING', 'ARRIVED')
		AND d.etd > COALESCE(p.eta, 0))
	AND NOT EXISTS (
		SELECT 1 FROM flight_plans m
		WHERE m.acid = p.acid
		AND m.departing_airport = p.arrival_airport
		AND m.status = 'MAINTENANCE')
	GROUP BY p.acid

	UNION ALL

	SELECT 4, m.acid, m.fbo_id, MAX(COALESCE(m.etd, m.eta))
	FROM flight_plans m
	WHERE m.departing_airport = @airport
	AND m.status = 'MAINTENANCE'
	GROUP BY m.acid
)
SELECT
	r.ord,
	r.acid,
	COALESCE(a.plane_type, ''),
	COALESCE(t.size, ''),
	COALESCE(t.parking_area, 0),
	COALESCE(f.name, ''),
	r.event
FROM roster r
LEFT JOIN fleet a ON a.acid = r.acid
LEFT JOIN aircraft_types t ON t.type = a.plane_type
LEFT JOIN fbos f ON f.id = r.fbo_id
ORDER BY r.ord, r.acid`

var rosterStatus = map[int]models.AircraftStatus{
	1: models.StatusArriving,
	2: models.StatusDeparting,
	3: models.StatusParked,
	4: models.StatusMaintenance,
}

// AirportAircraft returns the ramp roster of an airport: aircraft flying in,
// flying out, parked and in maintenance there.
func (r *flightPlanRepository) AirportAircraft(ctx context.Context, airportCode string, now time.Time) ([]models.Aircraft, error) {
	rows, err := r.db.QueryContext(ctx, rosterQuery,
		sql.Named("airport", airportCode), sql.Named("now", now.Unix()))
	if err != nil {
		return nil, wrapErr("failed to query airport aircraft", err)
	}
	defer rows.Close()

	roster := make([]models.Aircraft, 0)
	for rows.Next() {
		var (
			ac    models.Aircraft
			rank  int
			event sql.NullInt64
		)
		if err := rows.Scan(&rank, &ac.TailNumber, &ac.TypeCode, &ac.Size, &ac.Area, &ac.FBOName, &event); err != nil {
			return nil, wrapErr("failed to scan airport aircraft", err)
		}
		ac.Status = rosterStatus[rank]
		if ac.Size == "" {
			ac.Size = models.SizeClass(ac.TypeCode)
		}
		if event.Valid {
			t := time.Unix(event.Int64, 0).UTC()
			ac.EventTime = &t
		}
		roster = append(roster, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("failed to iterate airport aircraft", err)
	}
	return roster, nil
}

// SetMaintenance records that an aircraft is in maintenance at an airport
func (r *flightPlanRepository) SetMaintenance(ctx context.Context, tailNumber, airportCode string, at time.Time) error {
	var ignored int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM fleet WHERE acid = ?", tailNumber).Scan(&ignored)
	if err != nil {
		return wrapErr(fmt.Sprintf("failed to find aircraft %s", tailNumber), err)
	}

	ref := fmt.Sprintf("%s-M-%d", tailNumber, at.Unix())
	if _, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO flight_plans (
		flight_ref, acid, departing_airport, status, eta
	) VALUES (?, ?, ?, 'MAINTENANCE', ?)`, ref, tailNumber, airportCode, at.Unix()); err != nil {
		return wrapErr("failed to insert maintenance record", err)
	}
	return nil
}

// ClearMaintenance removes every maintenance record of an aircraft
func (r *flightPlanRepository) ClearMaintenance(ctx context.Context, tailNumber string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM flight_plans WHERE acid = ? AND status = 'MAINTENANCE'", tailNumber)
	if err != nil {
		return wrapErr("failed to delete maintenance records", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr("failed to count deleted records", err)
	}
	if n == 0 {
		return fmt.Errorf("no maintenance record for %s: %w", tailNumber, models.ErrNotFound)
	}
	return nil
}

func unixOrNull(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func int64OrNull(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
