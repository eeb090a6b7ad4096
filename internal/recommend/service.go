package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ramp_capacity/internal/geo"
	"ramp_capacity/internal/models"

	"golang.org/x/sync/errgroup"
)

// ParkedSource lists the aircraft currently parked at an airport
type ParkedSource interface {
	ParkedAircraft(ctx context.Context, airportCode string, now time.Time) ([]models.ParkedAircraft, error)
}

// AirportLocator resolves airport positions
type AirportLocator interface {
	Coordinates(ctx context.Context, airportCode string) (models.Coordinates, error)
	Nearby(ctx context.Context, airportCode string, box geo.Box) ([]models.Airport, error)
}

// CapacityProvider returns FBO capacity at an instant
type CapacityProvider interface {
	CapacitySnapshot(ctx context.Context, airportCode string, at time.Time) ([]models.FBOSnapshot, error)
}

// Service answers recommendation requests for an airport
type Service struct {
	parked   ParkedSource
	airports AirportLocator
	capacity CapacityProvider // optional
	engine   *Engine
	radiusKm float64
	now      func() time.Time
}

// Config holds the tunables of the recommendation service
type Config struct {
	MaxRadiusKm float64
	Now         func() time.Time
}

// NewService creates a Service. provider may be nil, in which case only
// nearby airports are suggested.
func NewService(parked ParkedSource, airports AirportLocator, provider CapacityProvider, engine *Engine, cfg Config) *Service {
	if cfg.MaxRadiusKm <= 0 {
		cfg.MaxRadiusKm = geo.DefaultMaxRadiusKm
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		parked:   parked,
		airports: airports,
		capacity: provider,
		engine:   engine,
		radiusKm: cfg.MaxRadiusKm,
		now:      cfg.Now,
	}
}

// NearbyAirports ranks the airports within the search radius, nearest first
func (s *Service) NearbyAirports(ctx context.Context, airportCode string) ([]models.RankedAirport, error) {
	ref, err := s.airports.Coordinates(ctx, airportCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get coordinates for %s: %w", airportCode, err)
	}
	return s.rankNearby(ctx, airportCode, ref)
}

func (s *Service) rankNearby(ctx context.Context, airportCode string, ref models.Coordinates) ([]models.RankedAirport, error) {
	candidates, err := s.airports.Nearby(ctx, airportCode, geo.BoundingBox(ref, s.radiusKm))
	if err != nil {
		return nil, fmt.Errorf("failed to get airports near %s: %w", airportCode, err)
	}
	return geo.Rank(ref, airportCode, candidates), nil
}

// GetRecommendations returns relocation suggestions for every eligible parked
// aircraft at the airport. Missing airport coordinates fail the whole call.
func (s *Service) GetRecommendations(ctx context.Context, airportCode string) ([]models.Recommendation, error) {
	if strings.TrimSpace(airportCode) == "" {
		return nil, fmt.Errorf("%w: airport code is required", models.ErrInvalidInput)
	}

	now := s.now()

	var (
		parked []models.ParkedAircraft
		ref    models.Coordinates
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		parked, err = s.parked.ParkedAircraft(gctx, airportCode, now)
		if err != nil {
			return fmt.Errorf("failed to get parked aircraft at %s: %w", airportCode, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ref, err = s.airports.Coordinates(gctx, airportCode)
		if err != nil {
			return fmt.Errorf("failed to get coordinates for %s: %w", airportCode, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	nearby, err := s.rankNearby(ctx, airportCode, ref)
	if err != nil {
		return nil, err
	}

	var fbos []models.FBOSnapshot
	if s.capacity != nil {
		fbos, err = s.capacity.CapacitySnapshot(ctx, airportCode, now)
		if err != nil {
			// Alternate lots are an enhancement; fall back to nearby airports
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			slog.Warn("Failed to fetch FBO capacity, recommending nearby airports only",
				"airport", airportCode, "error", err)
			fbos = nil
		}
	}

	recs := s.engine.Generate(Input{
		Now:    now,
		Parked: parked,
		Nearby: nearby,
		FBOs:   fbos,
	})

	slog.Info("Generated recommendations",
		"airport", airportCode,
		"parked_count", len(parked),
		"nearby_count", len(nearby),
		"recommendation_count", len(recs),
	)
	return recs, nil
}
