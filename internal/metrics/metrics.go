package metrics

import (
	"net/http"
	"time"

	"ramp_capacity/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ramp_capacity"

// Metrics owns the service's Prometheus collectors and the registry they live in
type Metrics struct {
	registry *prometheus.Registry

	assignments   *prometheus.CounterVec
	simulations   *prometheus.HistogramVec
	fboOccupied   *prometheus.GaugeVec
	fboAvailable  *prometheus.GaugeVec
	fboUtilized   *prometheus.GaugeVec
	overCapacity  *prometheus.GaugeVec
	monitorErrors *prometheus.CounterVec
}

// New registers every collector on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Aircraft evaluated by simulation runs, by outcome.",
		}, []string{"airport", "outcome"}),
		simulations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Wall time of a simulation run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"airport"}),
		fboOccupied: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fbo_occupied_area_sqft",
			Help:      "Padded area occupied at an FBO.",
		}, []string{"airport", "fbo"}),
		fboAvailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fbo_available_area_sqft",
			Help:      "Usable area left at an FBO.",
		}, []string{"airport", "fbo"}),
		fboUtilized: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fbo_utilization_ratio",
			Help:      "Occupied over usable area at an FBO.",
		}, []string{"airport", "fbo"}),
		overCapacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "airport_over_capacity",
			Help:      "1 when the airport's overall utilization is above the alert threshold.",
		}, []string{"airport"}),
		monitorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitor_errors_total",
			Help:      "Capacity monitor snapshot failures.",
		}, []string{"airport"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.assignments,
		m.simulations,
		m.fboOccupied,
		m.fboAvailable,
		m.fboUtilized,
		m.overCapacity,
		m.monitorErrors,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAssignment counts one evaluated aircraft
func (m *Metrics) ObserveAssignment(airport string, outcome models.Outcome) {
	m.assignments.WithLabelValues(airport, string(outcome)).Inc()
}

// ObserveSimulation records the duration of a completed run
func (m *Metrics) ObserveSimulation(airport string, d time.Duration) {
	m.simulations.WithLabelValues(airport).Observe(d.Seconds())
}

// SetFBOUsage publishes the latest capacity overview of one FBO
func (m *Metrics) SetFBOUsage(airport string, u models.FBOUsage) {
	m.fboOccupied.WithLabelValues(airport, u.Name).Set(u.OccupiedArea)
	m.fboAvailable.WithLabelValues(airport, u.Name).Set(u.AvailableArea)
	m.fboUtilized.WithLabelValues(airport, u.Name).Set(u.PercentOccupied / 100)
}

// SetOverCapacity flags an airport as above or below its alert threshold
func (m *Metrics) SetOverCapacity(airport string, over bool) {
	v := 0.0
	if over {
		v = 1
	}
	m.overCapacity.WithLabelValues(airport).Set(v)
}

// MonitorError counts a failed capacity check
func (m *Metrics) MonitorError(airport string) {
	m.monitorErrors.WithLabelValues(airport).Inc()
}
