package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventportal/internal/config"
	"eventportal/internal/crm"
)

func newCheckCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the CRM credentials",
		Long:  `check acquires a token with the configured client credentials and calls WhoAmI against the CRM web API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Logger)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client := crm.NewClient(crm.Config{
				TokenURL:     cfg.CRM.TokenURL(),
				ClientID:     cfg.CRM.ClientID,
				ClientSecret: cfg.CRM.ClientSecret,
				Scope:        cfg.CRM.Scope(),
				BaseURL:      cfg.CRM.BaseURL(),
				Timeout:      cfg.CRM.HTTPTimeout,
			}, logger)

			q, err := client.Connect(ctx)
			if err != nil {
				return err
			}
			userID, err := q.WhoAmI(ctx)
			if err != nil {
				return err
			}

			logger.Info("CRM credentials verified", zap.String("user_id", userID), zap.String("base_url", cfg.CRM.BaseURL()))
			fmt.Fprintln(cmd.OutOrStdout(), userID)
			return nil
		},
	}
}
