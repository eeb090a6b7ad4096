package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"ramp_capacity/internal/daemon"
	"ramp_capacity/internal/database"
	"ramp_capacity/internal/models"
	"ramp_capacity/internal/tui"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the capacity monitor",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate AIRPORT TAIL[@HH:MM]...",
	Short: "Simulate placing aircraft into the FBOs of an airport",
	Long: `Simulate placing a batch of aircraft into the FBOs of an airport.

Each aircraft may carry a requested time of day; without one it is placed now.
Aircraft are evaluated in time order and see the space taken by earlier ones.

Examples:
  ramp_capacity simulate KTEB N123QS N456QS@14:30
  ramp_capacity simulate KTEB N123QS --output json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSimulate,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend AIRPORT",
	Short: "Suggest where parked aircraft could be relocated",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

var fbosCmd = &cobra.Command{
	Use:   "fbos AIRPORT",
	Short: "Show current FBO capacity at an airport",
	Args:  cobra.ExactArgs(1),
	RunE:  runFBOs,
}

var planesCmd = &cobra.Command{
	Use:   "planes AIRPORT",
	Short: "List aircraft arriving, departing, parked or in maintenance at an airport",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanes,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference and flight data from CSV files",
	Long: `Load airports, aircraft types, FBOs, fleet and flight plans from CSV files.

Examples:
  ramp_capacity seed --airports airports.csv --aircraft-types types.csv
  ramp_capacity seed --fbos fbos.csv --fleet fleet.csv --flight-plans plans.csv`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var (
	seedPaths     = map[database.Dataset]*[]string{}
	seedBatchSize int
)

func init() {
	for _, cmd := range []*cobra.Command{simulateCmd, recommendCmd, fbosCmd, planesCmd} {
		cmd.Flags().StringVarP(&outputFormat, "output", "o", tui.FormatTable, "Output format: table, json or yaml")
	}

	for _, ds := range database.SeedOrder {
		paths := []string{}
		seedPaths[ds] = &paths
		flag := strings.ReplaceAll(string(ds), "_", "-")
		seedCmd.Flags().StringSliceVar(seedPaths[ds], flag, nil, fmt.Sprintf("CSV files for %s", ds))
	}
	seedCmd.Flags().IntVar(&seedBatchSize, "batch-size", 5000, "Rows per insert transaction")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func checkOutputFormat() error {
	if !tui.ValidFormat(outputFormat) {
		return fmt.Errorf("invalid output format %q (must be table, json or yaml)", outputFormat)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}

	if err := d.Start(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	select {
	case <-ctx.Done():
		slog.Info("Received interrupt signal, shutting down...")
	case <-d.Done():
		slog.Error("HTTP server exited unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Stop(shutdownCtx); err != nil {
		return err
	}

	slog.Info("Shutdown complete")
	return nil
}

// parsePlaneArgs turns TAIL or TAIL@HH:MM arguments into plane requests
func parsePlaneArgs(args []string) []models.PlaneRequest {
	planes := make([]models.PlaneRequest, 0, len(args))
	for _, arg := range args {
		id, at, _ := strings.Cut(arg, "@")
		planes = append(planes, models.PlaneRequest{ID: strings.ToUpper(id), RequestedTime: at})
	}
	return planes
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(); err != nil {
		return err
	}

	app, err := daemon.Open(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signalContext()
	defer stop()

	req := models.SimulationRequest{
		RunID:       uuid.NewString(),
		AirportCode: strings.ToUpper(args[0]),
		Aircraft:    parsePlaneArgs(args[1:]),
	}
	result, err := app.Allocator.Run(ctx, req)
	if err != nil {
		return err
	}

	if outputFormat == tui.FormatTable {
		tui.RenderSimulation(cmd.OutOrStdout(), req.AirportCode, req.RunID, result)
		return nil
	}
	return tui.Encode(cmd.OutOrStdout(), outputFormat, map[string]any{"run_id": req.RunID, "data": result})
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(); err != nil {
		return err
	}

	app, err := daemon.Open(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signalContext()
	defer stop()

	airport := strings.ToUpper(args[0])
	recs, err := app.Recommender.GetRecommendations(ctx, airport)
	if err != nil {
		return err
	}

	if outputFormat == tui.FormatTable {
		tui.RenderRecommendations(cmd.OutOrStdout(), airport, recs)
		return nil
	}
	return tui.Encode(cmd.OutOrStdout(), outputFormat, recs)
}

func runFBOs(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(); err != nil {
		return err
	}

	app, err := daemon.Open(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	airport := strings.ToUpper(args[0])
	fbos, err := app.DB.FBOs().CapacitySnapshot(cmd.Context(), airport, time.Now())
	if err != nil {
		return err
	}
	rows := app.Policy.Overview(fbos)

	if outputFormat == tui.FormatTable {
		tui.RenderOverview(cmd.OutOrStdout(), airport, rows)
		return nil
	}
	return tui.Encode(cmd.OutOrStdout(), outputFormat, rows)
}

func runPlanes(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(); err != nil {
		return err
	}

	app, err := daemon.Open(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	airport := strings.ToUpper(args[0])
	planes, err := app.DB.FlightPlans().AirportAircraft(cmd.Context(), airport, time.Now())
	if err != nil {
		return err
	}

	if outputFormat == tui.FormatTable {
		tui.RenderRoster(cmd.OutOrStdout(), airport, planes)
		return nil
	}
	return tui.Encode(cmd.OutOrStdout(), outputFormat, planes)
}

// seedStages groups datasets that can load concurrently. Flight plans
// reference FBOs, so they go last.
var seedStages = [][]database.Dataset{
	{database.DatasetAirports, database.DatasetAircraftTypes, database.DatasetFleet},
	{database.DatasetFBOs},
	{database.DatasetFlightPlans},
}

func runSeed(cmd *cobra.Command, args []string) error {
	app, err := daemon.Open(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	bar := tui.ShowProgress("Loading")
	counts := map[string]int{}
	var mu sync.Mutex

	for _, stage := range seedStages {
		g, gctx := errgroup.WithContext(ctx)
		for _, ds := range stage {
			ds := ds
			paths := *seedPaths[ds]
			if len(paths) == 0 {
				continue
			}
			g.Go(func() error {
				slog.Info("Loading dataset", "dataset", ds, "csv_paths", paths)
				n, err := app.DB.LoadCSV(gctx, ds, paths, seedBatchSize, func(rows int) {
					_ = bar.Add(rows)
				})
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", ds, err)
				}
				mu.Lock()
				counts[string(ds)] = n
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	_ = bar.Finish()

	if len(counts) == 0 {
		return fmt.Errorf("nothing to load, pass at least one dataset flag")
	}

	populated, err := app.DB.Aircraft().IsTablePopulated(ctx)
	if err != nil {
		return err
	}
	if !populated {
		slog.Warn("Fleet table is empty, simulations will report every aircraft as unknown")
	}

	tui.PrintSeedReport(cmd.OutOrStdout(), counts, time.Since(start))
	return nil
}
