package database

import (
	"database/sql"
	"fmt"
	"strings"

	"ramp_capacity/internal/capacity"

	_ "github.com/mattn/go-sqlite3"
)

// DB owns the SQLite connection and hands out the repositories built on it
type DB struct {
	db       *sql.DB
	airports AirportRepository
	aircraft AircraftRepository
	fbos     FBORepository
	plans    FlightPlanRepository
}

// Options tunes the repositories
type Options struct {
	Policy             capacity.Policy // padding applied to occupied area
	FootprintCacheSize int             // aircraft types kept in memory
}

// New creates and initializes a new database connection
func New(dbPath string, opts Options) (*DB, error) {
	db, err := sql.Open("sqlite3", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &DB{db: db}

	if err := database.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	aircraft, err := NewAircraftRepository(db, opts.FootprintCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create aircraft repository: %w", err)
	}

	database.airports = NewAirportRepository(db)
	database.aircraft = aircraft
	database.fbos = NewFBORepository(db, opts.Policy)
	database.plans = NewFlightPlanRepository(db)

	return database, nil
}

// sqliteParams are applied by the driver to every pooled connection.
// foreign_keys, busy_timeout and cache_size are per-connection settings.
var sqliteParams = []string{
	"_journal_mode=WAL",
	"_synchronous=NORMAL",
	"_foreign_keys=on",
	"_busy_timeout=5000",
	"_cache_size=-64000",
}

// sqliteDSN appends the connection parameters to a path or file: URI
func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + strings.Join(sqliteParams, "&")
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks the connection is usable
func (d *DB) Ping() error {
	return d.db.Ping()
}

func (d *DB) Airports() AirportRepository      { return d.airports }
func (d *DB) Aircraft() AircraftRepository      { return d.aircraft }
func (d *DB) FBOs() FBORepository               { return d.fbos }
func (d *DB) FlightPlans() FlightPlanRepository { return d.plans }

// initSchema creates the database schema if it doesn't exist.
// Timestamps are stored as unix seconds.
func (d *DB) initSchema() error {
	tables := []struct {
		name   string
		schema string
	}{
		{"airports", `CREATE TABLE IF NOT EXISTS airports (
			ident TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			latitude_deg REAL NOT NULL,
			longitude_deg REAL NOT NULL
		);`},
		{"aircraft_types", `CREATE TABLE IF NOT EXISTS aircraft_types (
			type TEXT PRIMARY KEY,
			size TEXT NOT NULL DEFAULT '',
			parking_area REAL NOT NULL
		);`},
		{"fleet", `CREATE TABLE IF NOT EXISTS fleet (
			acid TEXT PRIMARY KEY,
			plane_type TEXT NOT NULL
		);`},
		{"fbos", `CREATE TABLE IF NOT EXISTS fbos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			airport_code TEXT NOT NULL,
			name TEXT NOT NULL,
			total_area REAL NOT NULL,
			priority INTEGER NOT NULL,
			UNIQUE(airport_code, priority),
			UNIQUE(airport_code, name)
		);`},
		{"flight_plans", `CREATE TABLE IF NOT EXISTS flight_plans (
			flight_ref TEXT PRIMARY KEY,
			acid TEXT NOT NULL,
			departing_airport TEXT NOT NULL DEFAULT '',
			arrival_airport TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			etd INTEGER,
			eta INTEGER,
			fbo_id INTEGER REFERENCES fbos(id) ON DELETE SET NULL
		);`},
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_airports_position ON airports(latitude_deg, longitude_deg)`,
		`CREATE INDEX IF NOT EXISTS idx_fbos_airport ON fbos(airport_code, priority)`,
		`CREATE INDEX IF NOT EXISTS idx_flight_plans_acid ON flight_plans(acid)`,
		`CREATE INDEX IF NOT EXISTS idx_flight_plans_fbo ON flight_plans(fbo_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_flight_plans_arrival ON flight_plans(arrival_airport, status)`,
		`CREATE INDEX IF NOT EXISTS idx_flight_plans_departing ON flight_plans(departing_airport, status)`,
	}

	for _, t := range tables {
		if _, err := d.db.Exec(t.schema); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	for _, idx := range indexes {
		if _, err := d.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
