package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDirectories ensures the output directories of file sinks exist
func (c *Config) EnsureDirectories() error {
	var dirs []string
	switch c.Sink.Type {
	case "csv":
		dirs = append(dirs, c.Sink.OutputDir)
	case "sqlite":
		if dir := filepath.Dir(c.Sink.Path); dir != "" {
			dirs = append(dirs, dir)
		}
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// OutputPath returns the CSV file path for a sink table
func (c *SinkConfig) OutputPath(table string) string {
	return filepath.Join(c.OutputDir, table+".csv")
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}
