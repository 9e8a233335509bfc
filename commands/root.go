package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meinhoongagan/nhs-staffing/config"
	"github.com/meinhoongagan/nhs-staffing/db"
	"github.com/meinhoongagan/nhs-staffing/logger"
)

// AppContext holds what every subcommand shares once the root pre-run has finished.
type AppContext struct {
	Cfg *config.Config
}

// NewRootCmd wires the subcommands under a root that loads config, logging and the
// database before any of them runs.
func NewRootCmd() *cobra.Command {
	app := &AppContext{}

	rootCmd := &cobra.Command{
		Use:           "nhs-staffing",
		Short:         "NHS staffing marketplace",
		Long:          `Hospitals post shifts, agencies book their approved nurses onto them, administrators approve access and credentials.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if cfg.UsesDefaultSecret() {
				logger.Warn("JWT_SECRET is not set, using the development default")
			}
			if err := db.Init(cfg); err != nil {
				return err
			}
			app.Cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := db.Close(); err != nil {
				logger.Warn("closing database", zap.Error(err))
			}
			_ = logger.Sync()
		},
	}

	rootCmd.AddCommand(ServeCmd(app))
	rootCmd.AddCommand(MigrateCmd(app))
	rootCmd.AddCommand(SeedCmd(app))
	rootCmd.AddCommand(CheckExpiringDocumentsCmd(app))
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
