package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Source   SourceConfig   `mapstructure:"source"`
	Sink     SinkConfig     `mapstructure:"sink"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host      string `mapstructure:"host"`       // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort  int    `mapstructure:"http_port"`  // HTTP server port
	BodyLimit int    `mapstructure:"body_limit"` // Max request body in bytes
}

// AuthConfig represents API key authentication for the /v1 routes
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	APIKeys []string `mapstructure:"api_keys"`
}

// ForecastConfig represents model training and forecasting configuration
type ForecastConfig struct {
	Horizon      int      `mapstructure:"horizon"`       // Months to forecast (default: 6)
	TestFraction float64  `mapstructure:"test_fraction"` // Held-out share per school (default: 0.2)
	Seed         uint64   `mapstructure:"seed"`          // Split and ensemble seed (default: 42)
	MinRows      int      `mapstructure:"min_rows"`      // Minimum lagged rows per school (default: 2)
	LagPolicy    string   `mapstructure:"lag_policy"`    // lenient, strict
	Split        string   `mapstructure:"split"`         // random, chronological
	Models       []string `mapstructure:"models"`        // Model kinds to train

	RandomForest EnsembleConfig `mapstructure:"random_forest"`
	GBM          EnsembleConfig `mapstructure:"gbm"`
}

// EnsembleConfig represents tree ensemble hyperparameters
type EnsembleConfig struct {
	NEstimators    int     `mapstructure:"n_estimators"`
	LearningRate   float64 `mapstructure:"learning_rate"` // Boosting only
	MaxDepth       int     `mapstructure:"max_depth"`     // 0 = unlimited
	MinSamplesLeaf int     `mapstructure:"min_samples_leaf"`
	Subsample      float64 `mapstructure:"subsample"` // Boosting only
}

// SourceConfig represents where the monthly attendance table is read from
type SourceConfig struct {
	Type  string `mapstructure:"type"`  // csv, sqlite
	Path  string `mapstructure:"path"`  // CSV file or SQLite database file
	Table string `mapstructure:"table"` // SQLite table name
}

// SinkConfig represents where the error and forecast tables are written
type SinkConfig struct {
	Type          string `mapstructure:"type"`           // csv, sqlite, queue, none
	Path          string `mapstructure:"path"`           // SQLite database file
	OutputDir     string `mapstructure:"output_dir"`     // CSV output directory
	ErrorTable    string `mapstructure:"error_table"`    // Table/file name for model errors
	ForecastTable string `mapstructure:"forecast_table"` // Table/file name for forecasts
	SubjectPrefix string `mapstructure:"subject_prefix"` // Queue subject prefix
	Compression   string `mapstructure:"compression"`    // none, snappy (queue payloads)
}

// QueueConfig represents message queue configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: memory (default), nats, redis, kafka
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`     // Redis database number (default: 0)
	RedisStream string `mapstructure:"redis_stream"` // Redis stream prefix (default: "attendcast")

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Kafka broker addresses
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("auth config: api_keys required when auth is enabled")
	}

	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}

	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source config: %w", err)
	}

	if err := c.Sink.Validate(); err != nil {
		return fmt.Errorf("sink config: %w", err)
	}

	if c.Sink.Type == "queue" {
		if err := c.Queue.Validate(); err != nil {
			return fmt.Errorf("queue config: %w", err)
		}
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.BodyLimit < 0 {
		return fmt.Errorf("body_limit cannot be negative")
	}

	return nil
}

// Validate validates forecast configuration
func (c *ForecastConfig) Validate() error {
	if c.Horizon < 1 || c.Horizon > 60 {
		return fmt.Errorf("forecast.horizon must be between 1 and 60")
	}

	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("forecast.test_fraction must be in (0, 1)")
	}

	if c.MinRows < 2 {
		return fmt.Errorf("forecast.min_rows must be at least 2")
	}

	if c.LagPolicy != "lenient" && c.LagPolicy != "strict" {
		return fmt.Errorf("forecast.lag_policy must be 'lenient' or 'strict'")
	}

	if c.Split != "random" && c.Split != "chronological" {
		return fmt.Errorf("forecast.split must be 'random' or 'chronological'")
	}

	if len(c.Models) == 0 {
		return fmt.Errorf("forecast.models must name at least one model")
	}

	if c.GBM.Subsample < 0 || c.GBM.Subsample > 1 {
		return fmt.Errorf("forecast.gbm.subsample must be in [0, 1]")
	}

	return nil
}

// Validate validates source configuration
func (c *SourceConfig) Validate() error {
	if c.Type != "csv" && c.Type != "sqlite" {
		return fmt.Errorf("source.type must be 'csv' or 'sqlite'")
	}

	if c.Type == "sqlite" && c.Table == "" {
		return fmt.Errorf("source.table is required for sqlite")
	}

	return nil
}

// Validate validates sink configuration
func (c *SinkConfig) Validate() error {
	validTypes := map[string]bool{
		"csv":    true,
		"sqlite": true,
		"queue":  true,
		"none":   true,
	}

	if !validTypes[c.Type] {
		return fmt.Errorf("sink.type must be one of: csv, sqlite, queue, none")
	}

	if c.Compression != "" && c.Compression != "none" && c.Compression != "snappy" {
		return fmt.Errorf("sink.compression must be 'none' or 'snappy'")
	}

	if (c.Type == "csv" || c.Type == "sqlite") && (c.ErrorTable == "" || c.ForecastTable == "") {
		return fmt.Errorf("sink.error_table and sink.forecast_table are required")
	}

	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "", "memory", "nats", "redis":
		return nil
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("queue.kafka_brokers is required for kafka")
		}
		return nil
	default:
		return fmt.Errorf("queue.type must be one of: memory, nats, redis, kafka")
	}
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
