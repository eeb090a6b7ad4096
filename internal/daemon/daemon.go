package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ramp_capacity/internal/api"
	"ramp_capacity/internal/capacity"
	"ramp_capacity/internal/config"
	"ramp_capacity/internal/database"
	"ramp_capacity/internal/metrics"
	"ramp_capacity/internal/recommend"
	"ramp_capacity/internal/scheduler"
	"ramp_capacity/internal/simulation"
	"ramp_capacity/internal/tasks"
)

// App is the database plus the engines built on it. The CLI commands use it
// directly; the daemon serves it over HTTP.
type App struct {
	DB          *database.DB
	Policy      capacity.Policy
	Metrics     *metrics.Metrics
	Allocator   *simulation.Allocator
	Recommender *recommend.Service
}

// Open connects to the database and wires the engines
func Open(cfg *config.Config) (*App, error) {
	policy := capacity.Policy{
		SafetyMargin: cfg.Capacity.SafetyMargin,
		AreaDivisor:  cfg.Capacity.AreaDivisor,
	}

	db, err := database.New(cfg.DBPath, database.Options{
		Policy:             policy,
		FootprintCacheSize: cfg.FootprintCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.New()

	allocator := simulation.NewAllocator(db.Aircraft(), db.FBOs(), db.Airports(), policy,
		simulation.WithRecorder(m))

	engine := recommend.NewEngine(policy, cfg.Recommend.DwellThreshold, time.Local)
	recommender := recommend.NewService(db.FlightPlans(), db.Airports(), db.FBOs(), engine, recommend.Config{
		MaxRadiusKm: cfg.Proximity.MaxRadiusKm,
	})

	return &App{
		DB:          db,
		Policy:      policy,
		Metrics:     m,
		Allocator:   allocator,
		Recommender: recommender,
	}, nil
}

// Close releases the database
func (a *App) Close() error {
	return a.DB.Close()
}

// Daemon serves the HTTP API and runs the capacity monitor
type Daemon struct {
	ctx       context.Context
	cancel    context.CancelFunc
	app       *App
	scheduler *scheduler.Scheduler
	server    *http.Server
	done      chan struct{}
}

// New creates a new daemon instance
func New(cfg *config.Config) (*Daemon, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("HTTPAddr is required")
	}

	app, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	sched := scheduler.New(ctx)
	if len(cfg.Monitor.Airports) > 0 {
		monitor := tasks.NewCapacityMonitorWithConfig(app.DB.FBOs(), app.Metrics, app.Policy,
			cfg.Monitor.Airports, cfg.Monitor.Interval, cfg.Monitor.AlertThreshold)
		sched.AddTask(monitor)
	}

	handler := api.New(api.Deps{
		Simulator:   app.Allocator,
		Recommender: app.Recommender,
		Capacity:    app.DB.FBOs(),
		Maintenance: app.DB.FlightPlans(),
		Roster:      app.DB.FlightPlans(),
		Policy:      app.Policy,
		Metrics:     app.Metrics.Handler(),
		Ping:        app.DB.Ping,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	return &Daemon{
		ctx:       ctx,
		cancel:    cancel,
		app:       app,
		scheduler: sched,
		server:    server,
		done:      make(chan struct{}),
	}, nil
}

// Start launches the scheduler and the HTTP listener
func (d *Daemon) Start() error {
	slog.Info("Starting daemon", "http_addr", d.server.Addr)

	d.scheduler.Start()

	go func() {
		defer close(d.done)
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "error", err)
			d.cancel()
		}
	}()

	slog.Info("Daemon started successfully")
	return nil
}

// Done is closed when the HTTP server has exited
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

// Stop gracefully stops the daemon
func (d *Daemon) Stop(ctx context.Context) error {
	slog.Info("Stopping daemon")

	if err := d.server.Shutdown(ctx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
	}
	d.cancel()
	<-d.done

	d.scheduler.Stop()

	if err := d.app.Close(); err != nil {
		slog.Error("Error closing database", "error", err)
	}

	slog.Info("Daemon stopped")
	return nil
}
