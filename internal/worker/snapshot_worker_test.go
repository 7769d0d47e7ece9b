package worker

import (
	"context"
	"sync"
	"testing"

	"cuotas/internal/amqp"
	"cuotas/internal/core"
	"cuotas/internal/records/memory"
	"cuotas/internal/services"
)

type captureStore struct {
	*memory.Store

	mu    sync.Mutex
	saved map[string][]core.MonthlyStat
}

func newCaptureStore() *captureStore {
	return &captureStore{
		Store: memory.New(),
		saved: make(map[string][]core.MonthlyStat),
	}
}

func (s *captureStore) SaveSnapshots(_ context.Context, condominiumID string, _ int, stats []core.MonthlyStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[condominiumID] = stats
	return nil
}

func TestHandleLedgerChanged(t *testing.T) {
	store := newCaptureStore()
	ctx := context.Background()

	_, err := store.CreateCharge(ctx, "condo1", core.PaymentRecord{
		UnitNumber:      "A-101",
		Month:           "05",
		Concept:         "Cuota",
		ReferenceAmount: core.Money{Cents: 40000},
		AmountPaid:      core.Money{Cents: 40000},
		Paid:            true,
	}, "2025-05-01")
	if err != nil {
		t.Fatalf("seed charge: %v", err)
	}

	w := NewSnapshotWorker(
		services.NewSnapshotProcessor(store, services.DefaultSnapshotProcessorConfig()),
		store,
	)

	msg := amqp.NewLedgerChangedMessage("condo1", 2025)
	if err := w.HandleLedgerChanged(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	stats := store.saved["condo1"]
	if len(stats) != 12 {
		t.Fatalf("expected 12 snapshots, got %d", len(stats))
	}
	if stats[4].Paid.Cents != 40000 {
		t.Errorf("unexpected may snapshot: %+v", stats[4])
	}
}

func TestHandleLedgerChangedDropsInvalid(t *testing.T) {
	store := newCaptureStore()
	w := NewSnapshotWorker(
		services.NewSnapshotProcessor(store, services.DefaultSnapshotProcessorConfig()),
		store,
	)
	ctx := context.Background()

	if err := w.HandleLedgerChanged(ctx, &amqp.LedgerChangedMessage{CondominiumID: "", Year: 2025}); err != nil {
		t.Errorf("empty condominium should be dropped, not retried: %v", err)
	}
	if err := w.HandleLedgerChanged(ctx, &amqp.LedgerChangedMessage{CondominiumID: "condo1", Year: 99}); err != nil {
		t.Errorf("implausible year should be dropped, not retried: %v", err)
	}
	if len(store.saved) != 0 {
		t.Errorf("no snapshots should be saved for dropped messages, got %v", store.saved)
	}
}

func TestStartupRebuild(t *testing.T) {
	store := newCaptureStore()
	w := NewSnapshotWorker(
		services.NewSnapshotProcessor(store, services.DefaultSnapshotProcessorConfig()),
		store,
	)

	if err := w.StartupRebuild(context.Background(), []string{"condo1", "condo2"}, 2025); err != nil {
		t.Fatalf("startup rebuild: %v", err)
	}
	if len(store.saved) != 2 {
		t.Errorf("expected snapshots for both condominiums, got %d", len(store.saved))
	}

	if err := w.StartupRebuild(context.Background(), nil, 2025); err != nil {
		t.Errorf("empty scope list should be a no-op: %v", err)
	}
}
