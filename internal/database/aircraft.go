package database

import (
	"context"
	"database/sql"
	"fmt"

	"ramp_capacity/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultFootprintCacheSize = 256

type AircraftRepository interface {
	InsertTypes(ctx context.Context, types []models.AircraftType) error
	InsertFleet(ctx context.Context, fleet []models.Aircraft) error
	IsTablePopulated(ctx context.Context) (bool, error)
	Footprint(ctx context.Context, tailNumber string) (models.Footprint, error)
}

type aircraftRepository struct {
	db *sql.DB
	// types caches aircraft_types rows by type code; the table is reference data
	types *lru.Cache[string, models.AircraftType]
}

func NewAircraftRepository(db *sql.DB, cacheSize int) (AircraftRepository, error) {
	if cacheSize <= 0 {
		cacheSize = defaultFootprintCacheSize
	}
	cache, err := lru.New[string, models.AircraftType](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create type cache: %w", err)
	}
	return &aircraftRepository{db: db, types: cache}, nil
}

// InsertTypes upserts aircraft type reference rows in a single transaction
func (r *aircraftRepository) InsertTypes(ctx context.Context, types []models.AircraftType) error {
	if len(types) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO aircraft_types (
		type, size, parking_area
	) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range types {
		size := t.Size
		if size == "" {
			size = models.SizeClass(t.TypeCode)
		}
		if _, err := stmt.ExecContext(ctx, t.TypeCode, size, t.ParkingArea); err != nil {
			return fmt.Errorf("failed to insert aircraft type %s: %w", t.TypeCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Reference data changed, drop anything cached
	r.types.Purge()
	return nil
}

// InsertFleet upserts fleet members in a single transaction
func (r *aircraftRepository) InsertFleet(ctx context.Context, fleet []models.Aircraft) error {
	if len(fleet) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO fleet (acid, plane_type) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, ac := range fleet {
		if _, err := stmt.ExecContext(ctx, ac.TailNumber, ac.TypeCode); err != nil {
			return fmt.Errorf("failed to insert aircraft %s: %w", ac.TailNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *aircraftRepository) IsTablePopulated(ctx context.Context) (bool, error) {
	var ignored int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM fleet LIMIT 1").Scan(&ignored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check fleet table: %w", err)
	}
	return true, nil
}

// Footprint resolves a tail number to its type and unpadded parking area
func (r *aircraftRepository) Footprint(ctx context.Context, tailNumber string) (models.Footprint, error) {
	var typeCode string
	err := r.db.QueryRowContext(ctx, "SELECT plane_type FROM fleet WHERE acid = ?", tailNumber).Scan(&typeCode)
	if err != nil {
		return models.Footprint{}, wrapErr(fmt.Sprintf("failed to get type of %s", tailNumber), err)
	}

	t, err := r.aircraftType(ctx, typeCode)
	if err != nil {
		return models.Footprint{}, err
	}

	return models.Footprint{
		TailNumber: tailNumber,
		TypeCode:   t.TypeCode,
		Size:       t.Size,
		Area:       t.ParkingArea,
	}, nil
}

func (r *aircraftRepository) aircraftType(ctx context.Context, typeCode string) (models.AircraftType, error) {
	if t, ok := r.types.Get(typeCode); ok {
		return t, nil
	}

	t := models.AircraftType{TypeCode: typeCode}
	err := r.db.QueryRowContext(ctx,
		"SELECT size, parking_area FROM aircraft_types WHERE type = ?", typeCode,
	).Scan(&t.Size, &t.ParkingArea)
	if err != nil {
		return models.AircraftType{}, wrapErr(fmt.Sprintf("failed to get parking area of %s", typeCode), err)
	}

	r.types.Add(typeCode, t)
	return t, nil
}
