package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghostwriter/internal/compose"
	"github.com/fyrsmithlabs/ghostwriter/internal/config"
	"github.com/fyrsmithlabs/ghostwriter/internal/contacts"
	"github.com/fyrsmithlabs/ghostwriter/internal/draft"
	"github.com/fyrsmithlabs/ghostwriter/internal/gmail"
	ghttp "github.com/fyrsmithlabs/ghostwriter/internal/http"
	"github.com/fyrsmithlabs/ghostwriter/internal/logging"
	"github.com/fyrsmithlabs/ghostwriter/internal/metrics"
	"github.com/fyrsmithlabs/ghostwriter/internal/slackbot"
)

// runServe starts the server and blocks until SIGINT/SIGTERM.
//
// Initialization order:
//  1. Configuration and logger
//  2. Contact directory (plus watcher when enabled)
//  3. Generator and dispatcher adapters
//  4. Session store, metrics, lifecycle controller
//  5. HTTP server and, when configured, the Slack bot
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("starting ghostwriter",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("slack_enabled", cfg.Slack.Enabled))

	directory := contacts.NewDirectory(cfg.Contacts.Path, logger.Named("contacts"))
	if cfg.Contacts.Watch {
		go func() {
			if err := directory.Watch(ctx); err != nil {
				logger.Warn("contacts watcher stopped", zap.Error(err))
			}
		}()
	}

	generator, err := compose.NewGenerator(cfg.LLM, logger.Named("compose"))
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}

	dispatcher, err := gmail.NewDispatcher(ctx, cfg.Gmail, logger.Named("gmail"))
	if err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}

	store := draft.NewStore(draft.StoreConfig{
		IdleTTL:       cfg.Session.IdleTTL,
		SweepInterval: cfg.Session.SweepInterval,
	}, logger.Named("sessions"))
	go store.Run(ctx)

	lifecycleMetrics := metrics.New(prometheus.DefaultRegisterer)
	metrics.RegisterSessionGauge(prometheus.DefaultRegisterer, store.Len)

	controller, err := draft.NewController(store, directory, generator, dispatcher,
		logger.Named("lifecycle"), lifecycleMetrics)
	if err != nil {
		return fmt.Errorf("failed to initialize controller: %w", err)
	}

	server, err := ghttp.NewServer(controller, directory, logger.Named("http"), &ghttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize http server: %w", err)
	}

	errCh := make(chan error, 2)

	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	if cfg.Slack.Enabled {
		bot, err := slackbot.New(slackbot.Config{
			BotToken: cfg.Slack.BotToken,
			AppToken: cfg.Slack.AppToken,
		}, controller, logger.Named("slack"))
		if err != nil {
			return fmt.Errorf("failed to initialize slack bot: %w", err)
		}
		go func() {
			if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
				errCh <- fmt.Errorf("slack bot error: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		stop()
		logger.Error("component failed, shutting down", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
