package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attendcast/attendcast/internal/datastore"
	"github.com/attendcast/attendcast/internal/router"
	"github.com/attendcast/attendcast/internal/services"
	"github.com/spf13/cobra"
)

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	logger, cfg := a.logger, a.cfg
	logger.Info("attendcast server starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	opts, err := services.OptionsFromConfig(cfg.Forecast)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	sink, err := datastore.NewSink(cfg.Sink, cfg.Queue)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, cfg, services.NewForecastService(logger, opts), sink)

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
	return nil
}
