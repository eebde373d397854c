package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/sflsim/internal/config"
	"github.com/nvandessel/sflsim/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sflsim",
		Short: "Fault simulation and spectrum-based fault localization",
		Long: `sflsim simulates test executions over a probabilistic component topology
and ranks components by how suspicious their activity looks against the
observed failures.

Each run samples traces, extracts the hit spectrum and scores every
component with one or more similarity coefficients.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.sflsim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newGraphCmd(),
		newEvaluateCmd(),
		newCoefficientsCmd(),
		newScenariosCmd(),
	)
	return rootCmd
}

// loadConfig reads the configuration named by --config, or the default
// locations, and applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// newLogger returns the stderr logger and the optional event log for cfg.
// Close the event log when done.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, *logging.EventLog) {
	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	return logger, logging.NewEventLog(cfg.Logging.Dir, cfg.Logging.Level)
}
