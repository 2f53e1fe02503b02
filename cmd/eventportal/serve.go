package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventportal/internal/api"
	"eventportal/internal/assets"
	"eventportal/internal/config"
	"eventportal/internal/crm"
	"eventportal/internal/pubsub"
	"eventportal/internal/ratelimit"
	"eventportal/internal/richtext"
	"eventportal/internal/schema"
	"eventportal/internal/service"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Redis is optional; without it reservations and thread notifications
	// stay in process.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	var guard ratelimit.Guard
	if rdb != nil {
		guard = ratelimit.NewRedisGuard(rdb, cfg.AskAdam.Window)
	} else {
		guard = ratelimit.NewMemoryGuard(10000, cfg.AskAdam.Window)
	}
	bus := pubsub.New(rdb, logger)

	client := crm.NewClient(crm.Config{
		TokenURL:     cfg.CRM.TokenURL(),
		ClientID:     cfg.CRM.ClientID,
		ClientSecret: cfg.CRM.ClientSecret,
		Scope:        cfg.CRM.Scope(),
		BaseURL:      cfg.CRM.BaseURL(),
		Timeout:      cfg.CRM.HTTPTimeout,
	}, logger)
	connector := service.CRMConnector(client)

	opts := service.Options{
		Connector: connector,
		Images:    assets.NewResolver(logger),
		QR:        assets.NewQR(cfg.QR.Endpoint, cfg.CRM.HTTPTimeout, logger),
		Text:      richtext.NewRenderer(),
		Sponsors: service.Sponsors{
			Relationship:        cfg.CRM.SponsorsRelationship,
			PrimaryRelationship: cfg.CRM.PrimarySponsorsRelationship,
		},
		BaseURL: cfg.App.BaseURL,
		Log:     logger,
	}

	questions, err := schema.NewQuestionValidator(cfg.AskAdam.MaxQuestionLength)
	if err != nil {
		return err
	}

	handler := api.Router(api.Dependencies{
		Tickets:      service.NewTicketService(opts),
		Events:       service.NewEventService(opts),
		Chats:        service.NewChatService(connector, guard, bus, cfg.AskAdam.Window, logger),
		Questions:    questions,
		Watcher:      bus,
		Log:          logger,
		PollInterval: cfg.AskAdam.PollInterval,
		Timeout:      cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	logger.Info("Starting server", zap.String("addr", cfg.Server.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
