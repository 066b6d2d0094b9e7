// Package datastore reads the monthly attendance table and writes the error
// and forecast tables of a run to files, SQLite or a message queue.
package datastore

import (
	"context"
	"fmt"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/config"
	"github.com/attendcast/attendcast/internal/queue"
	"github.com/attendcast/attendcast/internal/services"
)

// Source provides the monthly attendance records of a run
type Source interface {
	ReadRecords(ctx context.Context) ([]analytics.AttendanceRecord, error)
	Close() error
}

// Sink persists the output tables of a run
type Sink interface {
	WriteResults(ctx context.Context, result *services.RunResult) error
	Close() error
}

// NewSource creates the configured Source
func NewSource(cfg config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case "csv":
		return NewCSVSource(cfg.Path), nil
	case "sqlite":
		return OpenSQLiteSource(cfg.Path, cfg.Table)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Type)
	}
}

// NewSink creates the configured Sink. The queue configuration is only
// used by the queue sink.
func NewSink(cfg config.SinkConfig, queueCfg config.QueueConfig) (Sink, error) {
	switch cfg.Type {
	case "csv":
		return NewCSVSink(cfg.OutputPath(cfg.ErrorTable), cfg.OutputPath(cfg.ForecastTable)), nil
	case "sqlite":
		return OpenSQLiteSink(cfg.Path, cfg.ErrorTable, cfg.ForecastTable)
	case "queue":
		publisher, err := queue.NewPublisher(queueCfg, cfg.SubjectPrefix)
		if err != nil {
			return nil, err
		}
		sink, err := NewQueueSink(publisher, cfg.SubjectPrefix, cfg.Compression)
		if err != nil {
			_ = publisher.Close()
			return nil, err
		}
		return sink, nil
	case "none", "":
		return NopSink{}, nil
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", cfg.Type)
	}
}

// NopSink discards results
type NopSink struct{}

// WriteResults does nothing
func (NopSink) WriteResults(context.Context, *services.RunResult) error { return nil }

// Close does nothing
func (NopSink) Close() error { return nil }

// MultiSink writes to every sink in order and stops at the first failure
type MultiSink []Sink

// WriteResults writes result to each sink
func (m MultiSink) WriteResults(ctx context.Context, result *services.RunResult) error {
	for _, s := range m {
		if err := s.WriteResults(ctx, result); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the last error
func (m MultiSink) Close() error {
	var lastErr error
	for _, s := range m {
		if err := s.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
