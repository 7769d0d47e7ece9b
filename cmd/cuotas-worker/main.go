package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"cuotas/internal/amqp"
	"cuotas/internal/cli"
	"cuotas/internal/services"
	"cuotas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting cuotas-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// The worker always needs the database: snapshots live there
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	processor := services.NewSnapshotProcessor(repo, services.SnapshotProcessorConfig{
		RefreshInterval: cfg.SnapshotInterval,
	})
	snapshotWorker := worker.NewSnapshotWorker(processor, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// On startup, rebuild snapshots for every known condominium so the
	// derived tables catch up on messages missed while down
	condominiums, err := repo.ListCondominiums(ctx)
	if err != nil {
		logger.Error("Failed to list condominiums", "error", err)
	} else if len(condominiums) > 0 {
		logger.Info("Performing startup snapshot rebuild", "condominiums", len(condominiums), "year", cfg.SnapshotYear)
		if err := snapshotWorker.StartupRebuild(ctx, condominiums, cfg.SnapshotYear); err != nil {
			logger.Error("Startup rebuild failed", "error", err)
			// Don't exit - continue with normal operation
		}
	}

	// Periodic refresh keeps tracked snapshots fresh between messages
	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start snapshot processor", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeLedgerChanged(gctx, func(msg *amqp.LedgerChangedMessage) error {
			return snapshotWorker.HandleLedgerChanged(gctx, msg)
		})
	})

	go func() {
		if err := g.Wait(); err != nil && err != context.Canceled {
			logger.Error("Worker group failed", "error", err)
		}
		cancel()
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := processor.Stop(stopCtx); err != nil {
		logger.Warn("Snapshot processor stop error", "error", err)
	}
	cancel()

	// Wait for shutdown or timeout
	select {
	case <-time.After(5 * time.Second):
		logger.Warn("Shutdown timeout reached")
	case <-waitGroup(g):
		logger.Info("Worker shutdown complete")
	}
}

func waitGroup(g *errgroup.Group) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(ch)
	}()
	return ch
}
