package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ramp_capacity/internal/capacity"
	"ramp_capacity/internal/models"
)

// SnapshotSource returns FBO capacity at an instant
type SnapshotSource interface {
	CapacitySnapshot(ctx context.Context, airportCode string, at time.Time) ([]models.FBOSnapshot, error)
}

// UsageSink receives the computed usage. Implemented by the metrics package.
type UsageSink interface {
	SetFBOUsage(airportCode string, usage models.FBOUsage)
	SetOverCapacity(airportCode string, over bool)
	MonitorError(airportCode string)
}

// CapacityMonitor periodically computes FBO utilization at a set of airports
// and warns when an airport crosses its alert threshold
type CapacityMonitor struct {
	source    SnapshotSource
	sink      UsageSink
	policy    capacity.Policy
	airports  []string
	interval  time.Duration
	threshold float64 // fraction of usable area, 0.9 means 90%
	now       func() time.Time
}

// Default interval is one minute and alert threshold is 90%
func NewCapacityMonitor(source SnapshotSource, sink UsageSink, policy capacity.Policy, airports []string) *CapacityMonitor {
	return &CapacityMonitor{
		source:    source,
		sink:      sink,
		policy:    policy,
		airports:  airports,
		interval:  time.Minute,
		threshold: 0.9,
		now:       time.Now,
	}
}

// NewCapacityMonitorWithConfig creates a monitor with a custom interval and threshold
func NewCapacityMonitorWithConfig(source SnapshotSource, sink UsageSink, policy capacity.Policy, airports []string, interval time.Duration, threshold float64) *CapacityMonitor {
	m := NewCapacityMonitor(source, sink, policy, airports)
	m.interval = interval
	m.threshold = threshold
	return m
}

func (m *CapacityMonitor) Name() string {
	return "capacity_monitor"
}

func (m *CapacityMonitor) Interval() time.Duration {
	return m.interval
}

// Run checks every airport once. A failing airport does not stop the others;
// the returned error reports how many failed.
func (m *CapacityMonitor) Run(ctx context.Context) error {
	now := m.now()
	failed := 0

	for _, airport := range m.airports {
		if err := ctx.Err(); err != nil {
			return err
		}

		fbos, err := m.source.CapacitySnapshot(ctx, airport, now)
		if err != nil {
			failed++
			slog.Error("Failed to fetch FBO capacity", "airport", airport, "error", err)
			if m.sink != nil {
				m.sink.MonitorError(airport)
			}
			continue
		}

		m.record(airport, m.policy.Overview(fbos))
	}

	if failed > 0 {
		return fmt.Errorf("capacity check failed for %d of %d airports", failed, len(m.airports))
	}
	return nil
}

// record publishes one airport's overview. rows[0] is the airport aggregate.
func (m *CapacityMonitor) record(airport string, rows []models.FBOUsage) {
	total := rows[0]
	over := total.EffectiveArea > 0 && total.PercentOccupied >= m.threshold*100

	if m.sink != nil {
		for _, u := range rows[1:] {
			m.sink.SetFBOUsage(airport, u)
		}
		m.sink.SetOverCapacity(airport, over)
	}

	if over {
		slog.Warn("Airport is currently Over Capacity",
			"airport", airport,
			"percent_occupied", total.PercentOccupied,
			"available_area", total.AvailableArea,
		)
		return
	}

	slog.Debug("Checked airport capacity",
		"airport", airport,
		"fbo_count", len(rows)-1,
		"percent_occupied", total.PercentOccupied,
	)
}
