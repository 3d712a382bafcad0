package cmd

import (
	"context"
	"fmt"
	"os"

	"splitters/internal/core/config"
	"splitters/internal/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadEnv reads the configuration and builds the logger shared by every command.
func loadEnv() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, logger.NewLoggerAt(cfg.LogLevel), nil
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "splitters",
		Short:         "Fiber splitter inventory service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newExportCmd(),
		newSearchCmd(),
		newHashPasswordCmd(),
	)

	return rootCmd
}

func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
