package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"ramp_capacity/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath   string
	outputFormat string
	cfg          *config.Config
)

func initLogger(cfg *config.Config, out io.Writer) {
	var logLevel slog.Level
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	if cfg.Log.File != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    64, // MB
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		})
	}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "ramp_capacity",
	Short: "FBO ramp capacity simulation and relocation recommendations",
	Long: `ramp_capacity places incoming aircraft into FBO parking lots and suggests
where parked aircraft could be moved when an airport fills up.

Run "ramp_capacity serve" for the HTTP API, or use the simulate, recommend,
fbos and seed commands directly against the database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			os.Setenv(config.ConfigPathEnv, configPath)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// The daemon logs to stdout; one-shot commands keep stdout for their output
		logOut := io.Writer(os.Stderr)
		if cmd.Name() == serveCmd.Name() {
			logOut = os.Stdout
		}
		initLogger(cfg, logOut)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
	rootCmd.AddCommand(serveCmd, simulateCmd, recommendCmd, fbosCmd, planesCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
