package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigPathEnv overrides the config file search when set
const ConfigPathEnv = "RAMP_CAPACITY_CONFIG_PATH"

// Config holds all configuration for the service and CLI
type Config struct {
	HTTPAddr           string
	DBPath             string
	FootprintCacheSize int
	Capacity           CapacityConfig
	Proximity          ProximityConfig
	Recommend          RecommendConfig
	Monitor            MonitorConfig
	Log                LogConfig
}

// CapacityConfig tunes how FBO area is counted
type CapacityConfig struct {
	AreaDivisor  float64
	SafetyMargin float64
}

// ProximityConfig bounds the nearby-airport search
type ProximityConfig struct {
	MaxRadiusKm float64
}

// RecommendConfig tunes relocation eligibility
type RecommendConfig struct {
	DwellThreshold time.Duration
}

// MonitorConfig configures the periodic capacity check
type MonitorConfig struct {
	Airports       []string
	Interval       time.Duration
	AlertThreshold float64
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	File   string // Rotated log file, stdout only when empty
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_path", "ramp_capacity.db")
	v.SetDefault("footprint_cache_size", 256)
	v.SetDefault("capacity.area_divisor", 5)
	v.SetDefault("capacity.safety_margin", 0.10)
	v.SetDefault("proximity.max_radius_km", 50)
	v.SetDefault("recommend.dwell_threshold", "24h")
	v.SetDefault("monitor.airports", []string{})
	v.SetDefault("monitor.interval", "60s")
	v.SetDefault("monitor.alert_threshold", 0.9)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/ramp_capacity")
	v.AddConfigPath(".")

	if configPath := os.Getenv(ConfigPathEnv); configPath != "" {
		v.SetConfigFile(configPath)
	}

	// Config file not found is OK, defaults and env vars still apply
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("RAMP_CAPACITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		HTTPAddr:           v.GetString("http_addr"),
		DBPath:             v.GetString("db_path"),
		FootprintCacheSize: v.GetInt("footprint_cache_size"),
		Capacity: CapacityConfig{
			AreaDivisor:  v.GetFloat64("capacity.area_divisor"),
			SafetyMargin: v.GetFloat64("capacity.safety_margin"),
		},
		Proximity: ProximityConfig{
			MaxRadiusKm: v.GetFloat64("proximity.max_radius_km"),
		},
		Recommend: RecommendConfig{
			DwellThreshold: v.GetDuration("recommend.dwell_threshold"),
		},
		Monitor: MonitorConfig{
			Airports:       normalizeCodes(v.GetStringSlice("monitor.airports")),
			Interval:       v.GetDuration("monitor.interval"),
			AlertThreshold: v.GetFloat64("monitor.alert_threshold"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// normalizeCodes upper-cases airport codes and drops blanks. Env values arrive
// as one comma separated string.
func normalizeCodes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, code := range strings.Split(item, ",") {
			if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
				out = append(out, code)
			}
		}
	}
	return out
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	if cfg.Capacity.AreaDivisor <= 0 {
		return fmt.Errorf("capacity.area_divisor must be greater than 0")
	}

	if cfg.Capacity.SafetyMargin < 0 {
		return fmt.Errorf("capacity.safety_margin must not be negative")
	}

	if cfg.Proximity.MaxRadiusKm <= 0 {
		return fmt.Errorf("proximity.max_radius_km must be greater than 0")
	}

	if cfg.Recommend.DwellThreshold < 0 {
		return fmt.Errorf("recommend.dwell_threshold must not be negative")
	}

	if cfg.FootprintCacheSize <= 0 {
		return fmt.Errorf("footprint_cache_size must be greater than 0")
	}

	if len(cfg.Monitor.Airports) > 0 && cfg.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be greater than 0")
	}

	if cfg.Monitor.AlertThreshold <= 0 {
		return fmt.Errorf("monitor.alert_threshold must be greater than 0")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[strings.ToLower(cfg.Log.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}
