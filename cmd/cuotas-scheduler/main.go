package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cuotas/internal/amqp"
	"cuotas/internal/cli"
	"cuotas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting cuotas-scheduler")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional here; without it generated charges stay local
	// until the next full snapshot rebuild
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized - charges will reach the snapshot worker")
		}
	} else {
		logger.Info("AMQP disabled - charges will not notify the snapshot worker")
	}

	ledger := services.NewLedgerService(repo, publisher)
	scheduler := services.NewChargeScheduler(repo, ledger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interval := cfg.SchedulerInterval
	logger.Info("Charge scheduler configured",
		"interval", interval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run initial generation on startup
	logger.Info("Running initial charge generation...")
	if count, err := scheduler.GenerateDueCharges(ctx, time.Now()); err != nil {
		logger.Error("Initial generation failed", "error", err)
	} else {
		logger.Info("Initial generation complete", "charges_created", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Info("Generating due charges...")
				count, err := scheduler.GenerateDueCharges(ctx, now)
				if err != nil {
					logger.Error("Periodic generation failed", "error", err)
				} else {
					logger.Info("Periodic generation complete",
						"charges_created", count,
						"next_check", now.Add(interval).Format("15:04:05"))
				}
			}
		}
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

	logger.Info("Shutting down cuotas-scheduler...")
	cancel()

	time.Sleep(2 * time.Second)
	logger.Info("Scheduler shutdown complete")
}
