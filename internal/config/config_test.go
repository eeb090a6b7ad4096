package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(ConfigPathEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "ramp_capacity.db", cfg.DBPath)
	assert.Equal(t, 5.0, cfg.Capacity.AreaDivisor)
	assert.InDelta(t, 0.10, cfg.Capacity.SafetyMargin, 1e-9)
	assert.Equal(t, 50.0, cfg.Proximity.MaxRadiusKm)
	assert.Equal(t, 24*time.Hour, cfg.Recommend.DwellThreshold)
	assert.Equal(t, time.Minute, cfg.Monitor.Interval)
	assert.Empty(t, cfg.Monitor.Airports)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ramp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /var/lib/ramp.db
capacity:
  area_divisor: 1
  safety_margin: 0.2
monitor:
  airports: [kteb, KHPN]
  interval: 5m
log:
  format: json
`), 0o644))

	t.Setenv(ConfigPathEnv, path)
	t.Setenv("RAMP_CAPACITY_LOG_LEVEL", "debug")
	t.Setenv("RAMP_CAPACITY_PROXIMITY_MAX_RADIUS_KM", "80")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/ramp.db", cfg.DBPath)
	assert.Equal(t, 1.0, cfg.Capacity.AreaDivisor)
	assert.InDelta(t, 0.2, cfg.Capacity.SafetyMargin, 1e-9)
	assert.Equal(t, []string{"KTEB", "KHPN"}, cfg.Monitor.Airports)
	assert.Equal(t, 5*time.Minute, cfg.Monitor.Interval)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 80.0, cfg.Proximity.MaxRadiusKm)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capacity: [unterminated"), 0o644))
	t.Setenv(ConfigPathEnv, path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBPath:             "x.db",
			FootprintCacheSize: 16,
			Capacity:           CapacityConfig{AreaDivisor: 5, SafetyMargin: 0.1},
			Proximity:          ProximityConfig{MaxRadiusKm: 50},
			Recommend:          RecommendConfig{DwellThreshold: 24 * time.Hour},
			Monitor:            MonitorConfig{Interval: time.Minute, AlertThreshold: 0.9},
			Log:                LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero divisor", func(c *Config) { c.Capacity.AreaDivisor = 0 }, "area_divisor"},
		{"negative margin", func(c *Config) { c.Capacity.SafetyMargin = -0.1 }, "safety_margin"},
		{"zero radius", func(c *Config) { c.Proximity.MaxRadiusKm = 0 }, "max_radius_km"},
		{"no db path", func(c *Config) { c.DBPath = "" }, "db_path"},
		{"monitor without interval", func(c *Config) {
			c.Monitor.Airports = []string{"KTEB"}
			c.Monitor.Interval = 0
		}, "monitor.interval"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeCodes(t *testing.T) {
	assert.Equal(t, []string{"KTEB", "KHPN", "KMMU"}, normalizeCodes([]string{"kteb, khpn", " ", "KMMU"}))
}
