package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid http port",
			mutate:  func(c *Config) { c.Server.HTTPPort = 0 },
			wantErr: true,
		},
		{
			name:    "auth enabled without keys",
			mutate:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: true,
		},
		{
			name:    "zero horizon",
			mutate:  func(c *Config) { c.Forecast.Horizon = 0 },
			wantErr: true,
		},
		{
			name:    "test fraction of one",
			mutate:  func(c *Config) { c.Forecast.TestFraction = 1 },
			wantErr: true,
		},
		{
			name:    "min rows below two",
			mutate:  func(c *Config) { c.Forecast.MinRows = 1 },
			wantErr: true,
		},
		{
			name:    "unknown lag policy",
			mutate:  func(c *Config) { c.Forecast.LagPolicy = "fuzzy" },
			wantErr: true,
		},
		{
			name:    "chronological split",
			mutate:  func(c *Config) { c.Forecast.Split = "chronological" },
			wantErr: false,
		},
		{
			name:    "no models",
			mutate:  func(c *Config) { c.Forecast.Models = nil },
			wantErr: true,
		},
		{
			name:    "unknown source",
			mutate:  func(c *Config) { c.Source.Type = "snowflake" },
			wantErr: true,
		},
		{
			name:    "sqlite sink without tables",
			mutate:  func(c *Config) { c.Sink.Type = "sqlite"; c.Sink.ErrorTable = "" },
			wantErr: true,
		},
		{
			name:    "queue sink with kafka and no brokers",
			mutate:  func(c *Config) { c.Sink.Type = "queue"; c.Queue.Type = "kafka" },
			wantErr: true,
		},
		{
			name:    "unknown compression",
			mutate:  func(c *Config) { c.Sink.Compression = "zip" },
			wantErr: true,
		},
		{
			name:    "invalid logging level",
			mutate:  func(c *Config) { c.Logging.Level = "invalid" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5555, cfg.Server.HTTPPort)
	assert.Equal(t, 6, cfg.Forecast.Horizon)
	assert.Equal(t, uint64(42), cfg.Forecast.Seed)
	assert.Equal(t, []string{"RandomForest", "GBMTree", "OLS"}, cfg.Forecast.Models)
	assert.Equal(t, "ATTENDANCE_MONTHLY_AVERAGE_MAT", cfg.Source.Table)
	assert.True(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
forecast:
  horizon: 3
  lag_policy: strict
  gbm:
    learning_rate: 0.05
sink:
  type: sqlite
  path: ` + filepath.Join(dir, "out.db") + `
logging:
  level: debug
  format: console
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	t.Setenv("ATTENDCAST_FORECAST_SEED", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Forecast.Horizon)
	assert.Equal(t, "strict", cfg.Forecast.LagPolicy)
	assert.Equal(t, 0.05, cfg.Forecast.GBM.LearningRate)
	assert.Equal(t, 100, cfg.Forecast.GBM.NEstimators)
	assert.Equal(t, uint64(7), cfg.Forecast.Seed)
	assert.Equal(t, "sqlite", cfg.Sink.Type)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("forecast:\n  horizon: 0\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)

	cfg := LoadOrDefault(path)
	assert.Equal(t, 6, cfg.Forecast.Horizon)
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sink.OutputDir = filepath.Join(t.TempDir(), "nested", "out")

	require.NoError(t, cfg.EnsureDirectories())
	_, err := os.Stat(cfg.Sink.OutputDir)
	assert.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Sink.OutputDir, "ATTENDANCE_FORECAST_MSE.csv"),
		cfg.Sink.OutputPath(cfg.Sink.ErrorTable))
	assert.Equal(t, "0.0.0.0:5555", cfg.GetServerAddress())
}
