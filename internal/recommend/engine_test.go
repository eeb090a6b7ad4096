package recommend

import (
	"testing"
	"time"

	"ramp_capacity/internal/capacity"
	"ramp_capacity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evalTime = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := evalTime.Add(d)
	return &t
}

func fboID(id int64) *int64 {
	return &id
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name     string
		next     *time.Time
		expected bool
	}{
		{name: "no departure scheduled", next: nil, expected: true},
		{name: "exactly 24 hours", next: at(24 * time.Hour), expected: true},
		{name: "23h59m", next: at(23*time.Hour + 59*time.Minute), expected: false},
		{name: "departs in one hour", next: at(time.Hour), expected: false},
		{name: "departs in three days", next: at(72 * time.Hour), expected: true},
		{name: "stale record", next: at(-time.Minute), expected: true},
		{name: "departs right now", next: at(0), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Eligible(evalTime, tt.next, DefaultDwellThreshold))
		})
	}
}

func TestGenerate_NearestAirport(t *testing.T) {
	e := NewEngine(capacity.DefaultPolicy(), 0, time.UTC)

	recs := e.Generate(Input{
		Now: evalTime,
		Parked: []models.ParkedAircraft{
			{TailNumber: "N1QS", Area: 1000},
			{TailNumber: "N2QS", Area: 1000, NextDeparture: at(2 * time.Hour)},
			{TailNumber: "N3QS", Area: 1000, NextDeparture: at(48 * time.Hour)},
		},
		Nearby: []models.RankedAirport{
			{Code: "KHPN", DistanceKm: 38.2},
			{Code: "KMMU", DistanceKm: 40.1},
		},
	})

	require.Len(t, recs, 2)
	assert.Equal(t, "N1QS", recs[0].TailNumber)
	assert.Equal(t, "Parked", recs[0].Status)
	assert.Equal(t, NoEvent, recs[0].NextEvent)
	assert.Contains(t, recs[0].Recommendation, "KHPN")

	assert.Equal(t, "N3QS", recs[1].TailNumber)
	assert.Equal(t, "3/16/2024, 12:00", recs[1].NextEvent)
}

func TestGenerate_NoRecommendation(t *testing.T) {
	e := NewEngine(capacity.DefaultPolicy(), 0, time.UTC)

	recs := e.Generate(Input{
		Now:    evalTime,
		Parked: []models.ParkedAircraft{{TailNumber: "N1QS", Area: 1000}},
	})

	require.Len(t, recs, 1)
	assert.Equal(t, NoRecommendation, recs[0].Recommendation)
}

func TestGenerate_EmptyParked(t *testing.T) {
	e := NewEngine(capacity.DefaultPolicy(), 0, time.UTC)

	recs := e.Generate(Input{Now: evalTime, Nearby: []models.RankedAirport{{Code: "KHPN"}}})
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestGenerate_AlternateFBO(t *testing.T) {
	policy := capacity.Policy{SafetyMargin: 0.1, AreaDivisor: 1}
	e := NewEngine(policy, 0, time.UTC)

	fbos := []models.FBOSnapshot{
		{ID: 3, Name: "Overflow", Priority: 3, TotalArea: 10000, OccupiedArea: 0},
		{ID: 1, Name: "Primary", Priority: 1, TotalArea: 10000, OccupiedArea: 9000},
		{ID: 2, Name: "Secondary", Priority: 2, TotalArea: 10000, OccupiedArea: 9500},
	}

	recs := e.Generate(Input{
		Now: evalTime,
		Parked: []models.ParkedAircraft{
			// Secondary is full so the aircraft spills to Overflow
			{TailNumber: "N1QS", Area: 2000, FBOID: fboID(1)},
			// Already in the least preferred lot, nothing below it
			{TailNumber: "N2QS", Area: 2000, FBOID: fboID(3)},
		},
		Nearby: []models.RankedAirport{{Code: "KHPN", DistanceKm: 38.2}},
		FBOs:   fbos,
	})

	require.Len(t, recs, 2)
	assert.Equal(t, "Can be relocated to Overflow", recs[0].Recommendation)
	assert.Contains(t, recs[1].Recommendation, "KHPN")
}

func TestGenerate_AlternateFBOReservesSpace(t *testing.T) {
	policy := capacity.Policy{SafetyMargin: 0, AreaDivisor: 1}
	e := NewEngine(policy, 0, time.UTC)

	recs := e.Generate(Input{
		Now: evalTime,
		Parked: []models.ParkedAircraft{
			{TailNumber: "A", Area: 3000, FBOID: fboID(1)},
			{TailNumber: "B", Area: 3000, FBOID: fboID(1)},
		},
		FBOs: []models.FBOSnapshot{
			{ID: 1, Name: "Primary", Priority: 1, TotalArea: 6000, OccupiedArea: 6000},
			{ID: 2, Name: "Remote", Priority: 2, TotalArea: 5000},
		},
	})

	require.Len(t, recs, 2)
	assert.Equal(t, "Can be relocated to Remote", recs[0].Recommendation)
	assert.Equal(t, NoRecommendation, recs[1].Recommendation)
}

func TestGenerate_UnknownCurrentFBO(t *testing.T) {
	e := NewEngine(capacity.Policy{SafetyMargin: 0, AreaDivisor: 1}, 0, time.UTC)

	recs := e.Generate(Input{
		Now:    evalTime,
		Parked: []models.ParkedAircraft{{TailNumber: "A", Area: 1000}},
		FBOs:   []models.FBOSnapshot{{ID: 1, Name: "Primary", Priority: 1, TotalArea: 5000}},
	})

	require.Len(t, recs, 1)
	assert.Equal(t, "Can be relocated to Primary", recs[0].Recommendation)
}
