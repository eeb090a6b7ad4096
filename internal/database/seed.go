package database

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"ramp_capacity/internal/models"
)

// Dataset names a CSV file layout that can be seeded
type Dataset string

const (
	DatasetAirports      Dataset = "airports"
	DatasetAircraftTypes Dataset = "aircraft_types"
	DatasetFBOs          Dataset = "fbos"
	DatasetFleet         Dataset = "fleet"
	DatasetFlightPlans   Dataset = "flight_plans"
)

// SeedOrder is the order datasets must be loaded in to satisfy references
var SeedOrder = []Dataset{DatasetAirports, DatasetAircraftTypes, DatasetFBOs, DatasetFleet, DatasetFlightPlans}

// LoadCSV loads one dataset from one or more CSV files with a shared header.
// progress, if set, is called with the number of rows committed after every batch.
func (d *DB) LoadCSV(ctx context.Context, dataset Dataset, csvPaths []string, batchSize int, progress func(int)) (int, error) {
	switch dataset {
	case DatasetAirports:
		return loadCSV(ctx, csvPaths, batchSize, parseAirport, d.airports.InsertBatch, progress)
	case DatasetAircraftTypes:
		return loadCSV(ctx, csvPaths, batchSize, parseAircraftType, d.aircraft.InsertTypes, progress)
	case DatasetFBOs:
		return loadCSV(ctx, csvPaths, batchSize, parseFBO, d.insertFBOs, progress)
	case DatasetFleet:
		return loadCSV(ctx, csvPaths, batchSize, parseFleet, d.aircraft.InsertFleet, progress)
	case DatasetFlightPlans:
		return loadCSV(ctx, csvPaths, batchSize, parseFlightPlan, d.plans.InsertBatch, progress)
	default:
		return 0, fmt.Errorf("unknown dataset %q", dataset)
	}
}

func (d *DB) insertFBOs(ctx context.Context, fbos []models.FBO) error {
	for _, f := range fbos {
		if _, err := d.fbos.Insert(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// row gives access to CSV fields by header name
type row func(name string) string

func loadCSV[T any](
	ctx context.Context,
	csvPaths []string,
	batchSize int,
	parse func(row) (T, bool),
	insert func(context.Context, []T) error,
	progress func(int),
) (int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	var headerMap map[string]int
	var expectedFields int
	batch := make([]T, 0, batchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := insert(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert batch: %w", err)
		}
		total += len(batch)
		if progress != nil {
			progress(len(batch))
		}
		batch = batch[:0]
		return nil
	}

	for fileIdx, csvPath := range csvPaths {
		n, err := func() (int, error) {
			file, err := os.Open(csvPath)
			if err != nil {
				return 0, fmt.Errorf("failed to open CSV file %s: %w", csvPath, err)
			}
			defer file.Close()

			reader := csv.NewReader(file)
			reader.LazyQuotes = true
			reader.FieldsPerRecord = -1

			header, err := reader.Read()
			if err != nil {
				return 0, fmt.Errorf("failed to read CSV header from %s: %w", csvPath, err)
			}

			// Files after the first must share its header
			if fileIdx == 0 {
				expectedFields = len(header)
				headerMap = make(map[string]int, len(header))
				for i, h := range header {
					headerMap[strings.ToLower(clean(h))] = i
				}
			}

			skipped := 0
			for {
				if err := ctx.Err(); err != nil {
					return skipped, err
				}

				record, err := reader.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					return skipped, fmt.Errorf("failed to read CSV record from %s: %w", csvPath, err)
				}

				if len(record) != expectedFields {
					skipped++
					continue
				}

				item, ok := parse(func(name string) string {
					return getField(record, headerMap, name)
				})
				if !ok {
					skipped++
					continue
				}

				batch = append(batch, item)
				if len(batch) >= batchSize {
					if err := flush(); err != nil {
						return skipped, err
					}
				}
			}
			return skipped, nil
		}()
		if n > 0 {
			slog.Warn("Skipped malformed CSV records", "csv_path", csvPath, "skipped", n)
		}
		if err != nil {
			return total, err
		}
	}

	if err := flush(); err != nil {
		return total, fmt.Errorf("failed to insert final batch: %w", err)
	}
	return total, nil
}

// getField safely retrieves a field from a CSV record by header name
func getField(record []string, headerMap map[string]int, fieldName string) string {
	if idx, ok := headerMap[strings.ToLower(fieldName)]; ok && idx < len(record) {
		return clean(record[idx])
	}
	return ""
}

func clean(s string) string {
	return strings.Trim(strings.TrimSpace(s), "'\"")
}

func parseAirport(r row) (models.Airport, bool) {
	lat, err1 := strconv.ParseFloat(r("latitude_deg"), 64)
	lon, err2 := strconv.ParseFloat(r("longitude_deg"), 64)
	a := models.Airport{Code: r("ident"), Name: r("name"), Lat: lat, Lon: lon}
	return a, a.Code != "" && err1 == nil && err2 == nil
}

func parseAircraftType(r row) (models.AircraftType, bool) {
	area, err := strconv.ParseFloat(r("parkingArea"), 64)
	t := models.AircraftType{TypeCode: r("type"), Size: r("size"), ParkingArea: area}
	return t, t.TypeCode != "" && err == nil && area > 0
}

func parseFBO(r row) (models.FBO, bool) {
	area, err := strconv.ParseFloat(r("Area_ft2"), 64)
	if err != nil {
		return models.FBO{}, false
	}
	priority, _ := strconv.Atoi(r("Priority"))
	f := models.FBO{
		AirportCode: r("Airport_Code"),
		Name:        r("FBO_Name"),
		TotalArea:   area,
		Priority:    priority,
	}
	return f, f.AirportCode != "" && f.Name != ""
}

func parseFleet(r row) (models.Aircraft, bool) {
	ac := models.Aircraft{TailNumber: r("acid"), TypeCode: r("plane_type")}
	return ac, ac.TailNumber != "" && ac.TypeCode != ""
}

func parseFlightPlan(r row) (models.FlightPlan, bool) {
	p := models.FlightPlan{
		FlightRef:        r("flightRef"),
		TailNumber:       r("acid"),
		DepartingAirport: r("departing_airport"),
		ArrivalAirport:   r("arrival_airport"),
		Status:           strings.ToUpper(r("status")),
		ETD:              parseTime(r("etd")),
		ETA:              parseTime(r("eta")),
	}
	if v := r("fbo_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			p.FBOID = &id
		}
	}
	return p, p.FlightRef != "" && p.TailNumber != "" && p.Status != ""
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04"}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
