package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/eventdesk/eventdesk/api/internal/app"
	"github.com/eventdesk/eventdesk/api/internal/config"
	"github.com/eventdesk/eventdesk/api/internal/mailer"
	"github.com/eventdesk/eventdesk/api/internal/pkg/logger"
	"github.com/eventdesk/eventdesk/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Log.Named("worker")
	defer func() { _ = logger.Sync() }()

	log.Info("starting worker service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbs, err := app.InitDatabases(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer dbs.Close()

	repos := app.InitRepositories(dbs)
	svcs, err := app.InitServices(cfg, log, dbs, repos)
	if err != nil {
		log.Fatal("failed to initialize services", zap.Error(err))
	}

	expiry := worker.NewExpiryWorker(log, svcs.Registration)
	deps := &worker.Dependencies{
		Email: worker.NewEmailWorker(
			log,
			mailer.NewSMTP(cfg.Mail, log),
			repos.Registration,
			repos.Event,
			cfg.Server.PublicURL,
		),
		Export:  worker.NewExportWorker(log, svcs.Export),
		Expiry:  expiry,
		Cleanup: worker.NewCleanupWorker(log, svcs.Org, svcs.Audit, cfg.Worker.AuditRetention),
	}

	// Create worker server
	workerServer, err := worker.NewServer(log, cfg, deps)
	if err != nil {
		log.Fatal("failed to create worker server", zap.Error(err))
	}

	// Start worker in a goroutine
	errCh := make(chan error, 2)
	go func() {
		errCh <- workerServer.Start()
	}()

	// Delayed expiry messages arrive over RabbitMQ when it is the expiry broker
	if dbs.Broker != nil {
		go func() {
			if err := dbs.Broker.Consume(ctx, expiry.HandleMessage); err != nil {
				errCh <- fmt.Errorf("expiry consumer stopped: %w", err)
			}
		}()
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down worker...")
	case err := <-errCh:
		if err != nil {
			log.Error("worker server error", zap.Error(err))
		}
	}

	cancel()
	workerServer.Stop()

	log.Info("worker stopped")
}
