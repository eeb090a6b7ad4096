package geo

import (
	"testing"

	"ramp_capacity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.Coordinates
		expected float64
		delta    float64
	}{
		{
			name:     "same point",
			a:        models.Coordinates{Lat: 40.85, Lon: -74.06},
			b:        models.Coordinates{Lat: 40.85, Lon: -74.06},
			expected: 0,
			delta:    1e-9,
		},
		{
			name:     "one degree along the equator",
			a:        models.Coordinates{Lat: 0, Lon: 0},
			b:        models.Coordinates{Lat: 0, Lon: 1},
			expected: 111.19,
			delta:    0.01,
		},
		{
			name:     "KTEB to KHPN",
			a:        models.Coordinates{Lat: 40.8501, Lon: -74.0608},
			b:        models.Coordinates{Lat: 41.0670, Lon: -73.7076},
			expected: 38.5,
			delta:    1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Haversine(tt.a, tt.b), tt.delta)
			assert.InDelta(t, Haversine(tt.a, tt.b), Haversine(tt.b, tt.a), 1e-9)
		})
	}
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox(models.Coordinates{Lat: 0, Lon: 0}, 111)
	assert.InDelta(t, -1.0, box.MinLat, 1e-9)
	assert.InDelta(t, 1.0, box.MaxLat, 1e-9)
	assert.InDelta(t, -1.0, box.MinLon, 1e-9)
	assert.InDelta(t, 1.0, box.MaxLon, 1e-9)

	// Longitude span grows with latitude
	north := BoundingBox(models.Coordinates{Lat: 60, Lon: 10}, 111)
	assert.InDelta(t, 4.0, north.MaxLon-north.MinLon, 1e-6)
	assert.True(t, north.Contains(models.Coordinates{Lat: 60.5, Lon: 11.9}))
	assert.False(t, north.Contains(models.Coordinates{Lat: 61.5, Lon: 10}))
}

func TestBoundingBox_Pole(t *testing.T) {
	box := BoundingBox(models.Coordinates{Lat: 90, Lon: 0}, 50)
	assert.InDelta(t, 360.0, box.MaxLon-box.MinLon, 1e-9)
}

func TestRank(t *testing.T) {
	ref := models.Coordinates{Lat: 0, Lon: 0}
	candidates := []models.Airport{
		{Code: "R", Lat: 0, Lon: 5},
		{Code: "P", Lat: 0, Lon: 0},
		{Code: "Q", Lat: 0, Lon: 1},
	}

	ranked := Rank(ref, "P", candidates)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Q", ranked[0].Code)
	assert.Equal(t, "R", ranked[1].Code)
	assert.Less(t, ranked[0].DistanceKm, ranked[1].DistanceKm)
}

func TestRank_TiesByCode(t *testing.T) {
	ref := models.Coordinates{Lat: 0, Lon: 0}
	candidates := []models.Airport{
		{Code: "KZZZ", Lat: 0, Lon: 1},
		{Code: "KAAA", Lat: 0, Lon: -1},
	}

	ranked := Rank(ref, "KREF", candidates)
	require.Len(t, ranked, 2)
	assert.Equal(t, "KAAA", ranked[0].Code)
	assert.Equal(t, "KZZZ", ranked[1].Code)
}

func TestRank_Empty(t *testing.T) {
	ranked := Rank(models.Coordinates{}, "KTEB", nil)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}
