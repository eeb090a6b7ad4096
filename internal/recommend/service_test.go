package recommend

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ramp_capacity/internal/capacity"
	"ramp_capacity/internal/geo"
	"ramp_capacity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	parked      []models.ParkedAircraft
	airports    []models.Airport
	fbos        []models.FBOSnapshot
	parkedErr   error
	capacityErr error
	lastBox     geo.Box
}

func (m *mockStore) ParkedAircraft(ctx context.Context, airportCode string, now time.Time) ([]models.ParkedAircraft, error) {
	return m.parked, m.parkedErr
}

func (m *mockStore) Coordinates(ctx context.Context, airportCode string) (models.Coordinates, error) {
	for _, a := range m.airports {
		if a.Code == airportCode {
			return a.Coordinates(), nil
		}
	}
	return models.Coordinates{}, fmt.Errorf("airport %s: %w", airportCode, models.ErrNotFound)
}

func (m *mockStore) Nearby(ctx context.Context, airportCode string, box geo.Box) ([]models.Airport, error) {
	m.lastBox = box
	var out []models.Airport
	for _, a := range m.airports {
		if box.Contains(a.Coordinates()) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) CapacitySnapshot(ctx context.Context, airportCode string, at time.Time) ([]models.FBOSnapshot, error) {
	return m.fbos, m.capacityErr
}

func newTestService(store *mockStore, radiusKm float64) *Service {
	engine := NewEngine(capacity.Policy{SafetyMargin: 0.1, AreaDivisor: 1}, 0, time.UTC)
	return NewService(store, store, store, engine, Config{
		MaxRadiusKm: radiusKm,
		Now:         func() time.Time { return evalTime },
	})
}

func TestService_RanksNearestAirport(t *testing.T) {
	store := &mockStore{
		parked: []models.ParkedAircraft{{TailNumber: "N1QS", Area: 1000}},
		airports: []models.Airport{
			{Code: "P", Lat: 0, Lon: 0},
			{Code: "R", Lat: 0, Lon: 5},
			{Code: "Q", Lat: 0, Lon: 1},
		},
	}
	svc := newTestService(store, 1000)

	ranked, err := svc.NearbyAirports(context.Background(), "P")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Q", ranked[0].Code)
	assert.Equal(t, "R", ranked[1].Code)

	recs, err := svc.GetRecommendations(context.Background(), "P")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Recommendation, ": Q ")
}

func TestService_RadiusFiltersCandidates(t *testing.T) {
	store := &mockStore{
		airports: []models.Airport{
			{Code: "P", Lat: 0, Lon: 0},
			{Code: "Q", Lat: 0, Lon: 1},
			{Code: "R", Lat: 0, Lon: 5},
		},
	}
	svc := newTestService(store, geo.DefaultMaxRadiusKm)

	ranked, err := svc.NearbyAirports(context.Background(), "P")
	require.NoError(t, err)
	assert.Empty(t, ranked)
	assert.InDelta(t, 50.0/111.0, store.lastBox.MaxLat, 1e-9)
}

func TestService_UsesAlternateFBO(t *testing.T) {
	store := &mockStore{
		parked:   []models.ParkedAircraft{{TailNumber: "N1QS", Area: 1000, FBOID: fboID(1)}},
		airports: []models.Airport{{Code: "KTEB", Lat: 40.85, Lon: -74.06}},
		fbos: []models.FBOSnapshot{
			{ID: 1, Name: "Signature", Priority: 1, TotalArea: 10000, OccupiedArea: 10000},
			{ID: 2, Name: "Atlantic", Priority: 2, TotalArea: 10000},
		},
	}
	svc := newTestService(store, geo.DefaultMaxRadiusKm)

	recs, err := svc.GetRecommendations(context.Background(), "KTEB")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Can be relocated to Atlantic", recs[0].Recommendation)
}

func TestService_CapacityFailureFallsBack(t *testing.T) {
	store := &mockStore{
		parked:      []models.ParkedAircraft{{TailNumber: "N1QS", Area: 1000, FBOID: fboID(1)}},
		airports:    []models.Airport{{Code: "KTEB", Lat: 40.85, Lon: -74.06}, {Code: "KHPN", Lat: 41.067, Lon: -73.7076}},
		capacityErr: assert.AnError,
	}
	svc := newTestService(store, geo.DefaultMaxRadiusKm)

	recs, err := svc.GetRecommendations(context.Background(), "KTEB")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Recommendation, "KHPN")
}

func TestService_MissingCoordinatesFails(t *testing.T) {
	store := &mockStore{parked: []models.ParkedAircraft{{TailNumber: "N1QS"}}}
	svc := newTestService(store, geo.DefaultMaxRadiusKm)

	recs, err := svc.GetRecommendations(context.Background(), "KXXX")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, recs)
}

func TestService_ParkedFailureFails(t *testing.T) {
	store := &mockStore{
		airports:  []models.Airport{{Code: "KTEB", Lat: 40.85, Lon: -74.06}},
		parkedErr: fmt.Errorf("query: %w", models.ErrDataUnavailable),
	}
	svc := newTestService(store, geo.DefaultMaxRadiusKm)

	_, err := svc.GetRecommendations(context.Background(), "KTEB")
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestService_EmptyAirportCode(t *testing.T) {
	svc := newTestService(&mockStore{}, geo.DefaultMaxRadiusKm)

	_, err := svc.GetRecommendations(context.Background(), " ")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
