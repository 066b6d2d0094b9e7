package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/attendcast/attendcast/internal/config"
	"github.com/attendcast/attendcast/internal/datastore"
	"github.com/attendcast/attendcast/internal/logging"
	"github.com/attendcast/attendcast/internal/services"
	"github.com/spf13/cobra"
)

// runFlags override the loaded configuration when set
type runFlags struct {
	input     string
	output    string
	sink      string
	horizon   int
	seed      uint64
	split     string
	lagPolicy string
}

func runCommand(a *app) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train models and forecast attendance for every school",
		Long: `Read the monthly attendance table, train the configured models per school,
forecast the next months and write the error and forecast tables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err := runForecast(ctx, a.cfg, a.logger)
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Source path (CSV file or SQLite database)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory for the CSV sink")
	cmd.Flags().StringVar(&flags.sink, "sink", "", "Sink type: csv, sqlite, queue, none")
	cmd.Flags().IntVar(&flags.horizon, "horizon", 0, "Months to forecast")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "Seed for the split and tree ensembles")
	cmd.Flags().StringVar(&flags.split, "split", "", "Split mode: random, chronological")
	cmd.Flags().StringVar(&flags.lagPolicy, "lag-policy", "", "Lag policy: lenient, strict")

	return cmd
}

func (f runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if f.input != "" {
		cfg.Source.Path = f.input
	}
	if f.output != "" {
		cfg.Sink.OutputDir = f.output
	}
	if f.sink != "" {
		cfg.Sink.Type = f.sink
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Forecast.Horizon = f.horizon
	}
	if cmd.Flags().Changed("seed") {
		cfg.Forecast.Seed = f.seed
	}
	if f.split != "" {
		cfg.Forecast.Split = f.split
	}
	if f.lagPolicy != "" {
		cfg.Forecast.LagPolicy = f.lagPolicy
	}
}

// runForecast reads the source, runs the forecast service and writes the sink
func runForecast(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*services.RunResult, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	opts, err := services.OptionsFromConfig(cfg.Forecast)
	if err != nil {
		return nil, err
	}

	source, err := datastore.NewSource(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = source.Close() }()

	records, err := source.ReadRecords(ctx)
	if err != nil {
		return nil, services.WrapServiceError(services.CodeSourceFailed, err)
	}
	logger.Info("Loaded attendance records", "source", cfg.Source.Type, "path", cfg.Source.Path, "records", len(records))

	result, err := services.NewForecastService(logger, opts).Run(ctx, records)
	if err != nil {
		return nil, err
	}

	sink, err := datastore.NewSink(cfg.Sink, cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("failed to open sink: %w", err)
	}
	defer func() { _ = sink.Close() }()

	if err := sink.WriteResults(ctx, result); err != nil {
		return nil, services.WrapServiceError(services.CodeSinkFailed, err)
	}

	logger.Info("Results written",
		"run_id", result.RunID,
		"sink", cfg.Sink.Type,
		"errors", len(result.Errors),
		"forecasts", len(result.Forecasts),
		"skipped", len(result.Skipped),
	)

	return result, nil
}
