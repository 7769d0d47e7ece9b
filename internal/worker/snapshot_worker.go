package worker

import (
	"context"
	"fmt"
	"log/slog"

	"cuotas/internal/amqp"
	"cuotas/internal/services"
)

// SnapshotWorker consumes ledger change messages and rebuilds the monthly
// snapshots for the affected condominium and fiscal year.
type SnapshotWorker struct {
	processor *services.SnapshotProcessor
	store     services.SnapshotStore
}

func NewSnapshotWorker(processor *services.SnapshotProcessor, store services.SnapshotStore) *SnapshotWorker {
	return &SnapshotWorker{
		processor: processor,
		store:     store,
	}
}

// HandleLedgerChanged processes a single ledger change message from AMQP
func (w *SnapshotWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"condominium_id", msg.CondominiumID,
		"year", msg.Year)

	if msg.CondominiumID == "" {
		slog.WarnContext(ctx, "Dropping ledger change without condominium id")
		return nil
	}
	if msg.Year < 2000 || msg.Year > 2100 {
		slog.WarnContext(ctx, "Dropping ledger change with implausible year",
			"year", msg.Year)
		return nil
	}

	if err := w.processor.Rebuild(ctx, msg.CondominiumID, msg.Year); err != nil {
		return fmt.Errorf("rebuild snapshots: %w", err)
	}

	return nil
}

// StartupRebuild rebuilds snapshots for the given scopes at worker startup.
// This recovers from change messages missed during worker downtime.
func (w *SnapshotWorker) StartupRebuild(ctx context.Context, condominiumIDs []string, year int) error {
	if len(condominiumIDs) == 0 {
		slog.InfoContext(ctx, "No condominiums configured for startup rebuild")
		return nil
	}

	slog.InfoContext(ctx, "Rebuilding snapshots on startup",
		"condominiums", len(condominiumIDs),
		"year", year)

	successCount := 0
	errorCount := 0

	for _, id := range condominiumIDs {
		if err := w.processor.Rebuild(ctx, id, year); err != nil {
			slog.ErrorContext(ctx, "Startup rebuild failed",
				"condominium_id", id,
				"year", year,
				"error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup rebuild completed",
		"total", len(condominiumIDs),
		"rebuilt", successCount,
		"errors", errorCount)

	if errorCount > 0 && successCount == 0 {
		return fmt.Errorf("startup rebuild failed for all %d condominiums", errorCount)
	}

	return nil
}
