package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")               // Current directory
		v.AddConfigPath("./configs")       // Project configs directory
		v.AddConfigPath("/etc/attendcast") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides (forecast.seed -> ATTENDCAST_FORECAST_SEED)
	v.SetEnvPrefix("ATTENDCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	// Auth defaults
	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.api_keys", d.Auth.APIKeys)

	// Forecast defaults
	v.SetDefault("forecast.horizon", d.Forecast.Horizon)
	v.SetDefault("forecast.test_fraction", d.Forecast.TestFraction)
	v.SetDefault("forecast.seed", d.Forecast.Seed)
	v.SetDefault("forecast.min_rows", d.Forecast.MinRows)
	v.SetDefault("forecast.lag_policy", d.Forecast.LagPolicy)
	v.SetDefault("forecast.split", d.Forecast.Split)
	v.SetDefault("forecast.models", d.Forecast.Models)
	v.SetDefault("forecast.random_forest.n_estimators", d.Forecast.RandomForest.NEstimators)
	v.SetDefault("forecast.random_forest.max_depth", d.Forecast.RandomForest.MaxDepth)
	v.SetDefault("forecast.random_forest.min_samples_leaf", d.Forecast.RandomForest.MinSamplesLeaf)
	v.SetDefault("forecast.gbm.n_estimators", d.Forecast.GBM.NEstimators)
	v.SetDefault("forecast.gbm.learning_rate", d.Forecast.GBM.LearningRate)
	v.SetDefault("forecast.gbm.max_depth", d.Forecast.GBM.MaxDepth)
	v.SetDefault("forecast.gbm.min_samples_leaf", d.Forecast.GBM.MinSamplesLeaf)
	v.SetDefault("forecast.gbm.subsample", d.Forecast.GBM.Subsample)

	// Source defaults
	v.SetDefault("source.type", d.Source.Type)
	v.SetDefault("source.path", d.Source.Path)
	v.SetDefault("source.table", d.Source.Table)

	// Sink defaults
	v.SetDefault("sink.type", d.Sink.Type)
	v.SetDefault("sink.path", d.Sink.Path)
	v.SetDefault("sink.output_dir", d.Sink.OutputDir)
	v.SetDefault("sink.error_table", d.Sink.ErrorTable)
	v.SetDefault("sink.forecast_table", d.Sink.ForecastTable)
	v.SetDefault("sink.subject_prefix", d.Sink.SubjectPrefix)
	v.SetDefault("sink.compression", d.Sink.Compression)

	// Queue defaults
	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", d.Queue.URL)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			HTTPPort:  5555,
			BodyLimit: 16 * 1024 * 1024,
		},
		Auth: AuthConfig{
			Enabled: false,
			APIKeys: []string{},
		},
		Forecast: ForecastConfig{
			Horizon:      6,
			TestFraction: 0.2,
			Seed:         42,
			MinRows:      2,
			LagPolicy:    "lenient",
			Split:        "random",
			Models:       []string{"RandomForest", "GBMTree", "OLS"},
			RandomForest: EnsembleConfig{
				NEstimators:    100,
				MinSamplesLeaf: 1,
			},
			GBM: EnsembleConfig{
				NEstimators:    100,
				LearningRate:   0.1,
				MaxDepth:       3,
				MinSamplesLeaf: 3,
				Subsample:      1,
			},
		},
		Source: SourceConfig{
			Type:  "csv",
			Table: "ATTENDANCE_MONTHLY_AVERAGE_MAT",
		},
		Sink: SinkConfig{
			Type:          "csv",
			OutputDir:     "./output",
			ErrorTable:    "ATTENDANCE_FORECAST_MSE",
			ForecastTable: "ATTENDANCE_FORECAST_PREDICTIONS",
			SubjectPrefix: "attendcast",
			Compression:   "none",
		},
		Queue: QueueConfig{
			Type:        "memory",
			URL:         "nats://localhost:4222",
			RedisStream: "attendcast",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
