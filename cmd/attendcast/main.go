package main

import (
	"fmt"
	"os"

	"github.com/attendcast/attendcast/internal/config"
	"github.com/attendcast/attendcast/internal/handlers"
	"github.com/attendcast/attendcast/internal/logging"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

// app carries what every subcommand needs once the root has initialized
type app struct {
	configPath string
	cfg        *config.Config
	logger     *logging.Logger
}

func main() {
	if err := rootCommand(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "attendcast",
		Short:         "Monthly school attendance forecasting",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime),
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to configuration file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.initialize()
	}

	rootCmd.AddCommand(runCommand(a), serveCommand(a))

	return rootCmd
}

// initialize loads configuration and sets up the global logger
func (a *app) initialize() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetGlobal(logger)

	handlers.Version = Version

	a.cfg = cfg
	a.logger = logger
	return nil
}
