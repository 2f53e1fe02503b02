package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventportal/internal/config"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "eventportal",
		Short: "Event portal gateway",
		Long:  `eventportal serves ticket, event and Ask Adam data aggregated from the CRM web API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (default: configs/config.yaml)")

	rootCmd.AddCommand(
		newServeCommand(&configPath),
		newCheckCommand(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = level

	return zcfg.Build()
}
