package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"ramp_capacity/internal/capacity"
	"ramp_capacity/internal/models"

	"github.com/google/uuid"
)

// TimeOfDayLayout is the format of requested times in a simulation batch
const TimeOfDayLayout = "15:04"

// FootprintResolver maps an aircraft id to its type and unpadded parking area
type FootprintResolver interface {
	Footprint(ctx context.Context, aircraftID string) (models.Footprint, error)
}

// CapacityProvider returns the FBO capacity of an airport at an instant.
// OccupiedArea in each snapshot is already padded by the safety margin.
type CapacityProvider interface {
	CapacitySnapshot(ctx context.Context, airportCode string, at time.Time) ([]models.FBOSnapshot, error)
}

// AirportDirectory validates airport codes
type AirportDirectory interface {
	AirportExists(ctx context.Context, airportCode string) (bool, error)
}

// Recorder observes simulation outcomes. Implemented by the metrics package.
type Recorder interface {
	ObserveAssignment(airportCode string, outcome models.Outcome)
	ObserveSimulation(airportCode string, duration time.Duration)
}

// Allocator places batches of aircraft into FBOs at an airport
type Allocator struct {
	footprints FootprintResolver
	capacity   CapacityProvider
	airports   AirportDirectory
	policy     capacity.Policy
	recorder   Recorder
	now        func() time.Time
}

// Option configures an Allocator
type Option func(*Allocator)

// WithClock overrides the source of "now"
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) { a.now = now }
}

// WithRecorder attaches an outcome recorder
func WithRecorder(r Recorder) Option {
	return func(a *Allocator) { a.recorder = r }
}

// NewAllocator creates an Allocator
func NewAllocator(footprints FootprintResolver, provider CapacityProvider, airports AirportDirectory, policy capacity.Policy, opts ...Option) *Allocator {
	a := &Allocator{
		footprints: footprints,
		capacity:   provider,
		airports:   airports,
		policy:     policy,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// candidate is a batch entry with its resolved evaluation time
type candidate struct {
	id string
	at time.Time
}

// Run simulates placing every requested aircraft at the airport.
// Aircraft are evaluated in time order and each sees the area reserved by the
// ones placed before it. Per-aircraft lookup failures are reported in the
// result; only invalid input or a failing airport check abort the call.
// If ctx is cancelled mid-batch the partial result is discarded and ctx.Err() returned.
func (a *Allocator) Run(ctx context.Context, req models.SimulationRequest) (models.SimulationResult, error) {
	start := a.now()
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := slog.With("run_id", runID, "airport", req.AirportCode)

	candidates, err := a.prepare(ctx, req, start)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting simulation", "aircraft_count", len(candidates))

	result := make(models.SimulationResult, len(candidates))
	var ledger capacity.Ledger

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			logger.Warn("Simulation cancelled", "processed", len(result), "error", err)
			return nil, err
		}

		var assignment models.Assignment
		assignment, ledger = a.place(ctx, req.AirportCode, c, ledger)
		result[c.id] = assignment

		logger.Debug("Evaluated aircraft",
			"aircraft_id", c.id,
			"at", c.at.Format(time.RFC3339),
			"outcome", assignment.Outcome,
			"fbo_name", assignment.FBOName,
			"reserved_total", ledger.Total(),
		)
		if a.recorder != nil {
			a.recorder.ObserveAssignment(req.AirportCode, assignment.Outcome)
		}
	}

	if a.recorder != nil {
		a.recorder.ObserveSimulation(req.AirportCode, a.now().Sub(start))
	}
	logger.Info("Simulation complete", "aircraft_count", len(result), "reserved_fbos", ledger.Len())

	return result, nil
}

// place evaluates a single aircraft and returns its assignment with the updated ledger
func (a *Allocator) place(ctx context.Context, airportCode string, c candidate, ledger capacity.Ledger) (models.Assignment, capacity.Ledger) {
	unassigned := func(outcome models.Outcome, reason string) models.Assignment {
		return models.Assignment{Outcome: outcome, Reason: reason, EvaluatedAt: c.at}
	}

	fp, err := a.footprints.Footprint(ctx, c.id)
	if err != nil {
		slog.Error("Failed to resolve aircraft footprint", "aircraft_id", c.id, "error", err)
		return unassigned(models.OutcomeError, models.ReasonFootprintFailed), ledger
	}

	fbos, err := a.capacity.CapacitySnapshot(ctx, airportCode, c.at)
	if err != nil {
		slog.Error("Failed to fetch FBO capacity", "aircraft_id", c.id, "airport", airportCode, "error", err)
		return unassigned(models.OutcomeError, models.ReasonCapacityFailed), ledger
	}

	need := a.policy.Pad(fp.Area)
	fbo, ok := a.policy.FirstFit(fbos, ledger, need)
	if !ok {
		return unassigned(models.OutcomeNoCapacity, models.ReasonNoSpace), ledger
	}

	id := fbo.ID
	return models.Assignment{
		Outcome:     models.OutcomeAssigned,
		FBOID:       &id,
		FBOName:     fbo.Name,
		EvaluatedAt: c.at,
	}, ledger.Reserve(fbo.ID, need)
}

// prepare validates the request and returns the candidates in evaluation order
func (a *Allocator) prepare(ctx context.Context, req models.SimulationRequest, now time.Time) ([]candidate, error) {
	if strings.TrimSpace(req.AirportCode) == "" {
		return nil, fmt.Errorf("%w: airport code is required", models.ErrInvalidInput)
	}
	if len(req.Aircraft) == 0 {
		return nil, fmt.Errorf("%w: aircraft list is empty", models.ErrInvalidInput)
	}

	candidates := make([]candidate, 0, len(req.Aircraft))
	seen := make(map[string]bool, len(req.Aircraft))
	for _, p := range req.Aircraft {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: aircraft id is required", models.ErrInvalidInput)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate aircraft %s", models.ErrInvalidInput, p.ID)
		}
		seen[p.ID] = true

		at, err := EffectiveTime(p.RequestedTime, now)
		if err != nil {
			return nil, fmt.Errorf("%w: aircraft %s: %v", models.ErrInvalidInput, p.ID, err)
		}
		candidates = append(candidates, candidate{id: p.ID, at: at})
	}

	exists, err := a.airports.AirportExists(ctx, req.AirportCode)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown airport %s", models.ErrInvalidInput, req.AirportCode)
		}
		return nil, fmt.Errorf("failed to look up airport %s: %w", req.AirportCode, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: unknown airport %s", models.ErrInvalidInput, req.AirportCode)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].at.Before(candidates[j].at)
	})
	return candidates, nil
}

// EffectiveTime resolves a requested HH:MM time of day on now's date.
// An empty request means now, truncated to the minute.
func EffectiveTime(requested string, now time.Time) (time.Time, error) {
	if requested == "" {
		return now.Truncate(time.Minute), nil
	}
	tod, err := time.Parse(TimeOfDayLayout, requested)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q", requested)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), 0, 0, now.Location()), nil
}
