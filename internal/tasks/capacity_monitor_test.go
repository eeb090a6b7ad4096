package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"ramp_capacity/internal/capacity"
	"ramp_capacity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSource is a simple mock implementation of SnapshotSource
type mockSource struct {
	fbos  map[string][]models.FBOSnapshot
	errs  map[string]error
	calls []string
}

func (m *mockSource) CapacitySnapshot(_ context.Context, airport string, _ time.Time) ([]models.FBOSnapshot, error) {
	m.calls = append(m.calls, airport)
	if err := m.errs[airport]; err != nil {
		return nil, err
	}
	return m.fbos[airport], nil
}

// mockSink records everything published to it
type mockSink struct {
	usage  map[string][]models.FBOUsage
	over   map[string]bool
	errors map[string]int
}

func newMockSink() *mockSink {
	return &mockSink{
		usage:  map[string][]models.FBOUsage{},
		over:   map[string]bool{},
		errors: map[string]int{},
	}
}

func (m *mockSink) SetFBOUsage(airport string, u models.FBOUsage) {
	m.usage[airport] = append(m.usage[airport], u)
}

func (m *mockSink) SetOverCapacity(airport string, over bool) {
	m.over[airport] = over
}

func (m *mockSink) MonitorError(airport string) {
	m.errors[airport]++
}

var unpadded = capacity.Policy{AreaDivisor: 1}

func TestNewCapacityMonitor(t *testing.T) {
	monitor := NewCapacityMonitor(&mockSource{}, newMockSink(), unpadded, []string{"KTEB"})

	require.NotNil(t, monitor)
	assert.Equal(t, time.Minute, monitor.Interval())
	assert.Equal(t, 0.9, monitor.threshold)
	assert.Equal(t, "capacity_monitor", monitor.Name())
}

func TestNewCapacityMonitorWithConfig(t *testing.T) {
	monitor := NewCapacityMonitorWithConfig(&mockSource{}, newMockSink(), unpadded, nil, 5*time.Second, 0.75)

	assert.Equal(t, 5*time.Second, monitor.Interval())
	assert.Equal(t, 0.75, monitor.threshold)
}

func TestCapacityMonitor_Run(t *testing.T) {
	source := &mockSource{fbos: map[string][]models.FBOSnapshot{
		"KTEB": {
			{ID: 1, Name: "Signature", Priority: 1, TotalArea: 1000, OccupiedArea: 950},
			{ID: 2, Name: "Atlantic", Priority: 2, TotalArea: 1000, OccupiedArea: 900},
		},
		"KHPN": {
			{ID: 3, Name: "Million Air", Priority: 1, TotalArea: 1000, OccupiedArea: 100},
		},
	}}
	sink := newMockSink()
	monitor := NewCapacityMonitor(source, sink, unpadded, []string{"KTEB", "KHPN"})

	require.NoError(t, monitor.Run(context.Background()))

	assert.Equal(t, []string{"KTEB", "KHPN"}, source.calls)
	require.Len(t, sink.usage["KTEB"], 2)
	assert.Equal(t, "Signature", sink.usage["KTEB"][0].Name)
	assert.InDelta(t, 95.0, sink.usage["KTEB"][0].PercentOccupied, 1e-9)
	assert.True(t, sink.over["KTEB"])
	assert.False(t, sink.over["KHPN"])
}

func TestCapacityMonitor_NoFBOsIsNotOverCapacity(t *testing.T) {
	sink := newMockSink()
	monitor := NewCapacityMonitor(&mockSource{}, sink, unpadded, []string{"KXXX"})

	require.NoError(t, monitor.Run(context.Background()))
	assert.Empty(t, sink.usage["KXXX"])
	assert.False(t, sink.over["KXXX"])
}

func TestCapacityMonitor_ContinuesPastFailures(t *testing.T) {
	source := &mockSource{
		fbos: map[string][]models.FBOSnapshot{
			"KHPN": {{ID: 3, Name: "Million Air", Priority: 1, TotalArea: 1000}},
		},
		errs: map[string]error{"KTEB": errors.New("database is locked")},
	}
	sink := newMockSink()
	monitor := NewCapacityMonitor(source, sink, unpadded, []string{"KTEB", "KHPN"})

	err := monitor.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Equal(t, 1, sink.errors["KTEB"])
	assert.Len(t, sink.usage["KHPN"], 1)
}

func TestCapacityMonitor_Cancelled(t *testing.T) {
	source := &mockSource{}
	monitor := NewCapacityMonitor(source, nil, unpadded, []string{"KTEB"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, monitor.Run(ctx), context.Canceled)
	assert.Empty(t, source.calls)
}
