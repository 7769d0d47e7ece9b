package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"cuotas/internal/core"
	"cuotas/internal/records/memory"
)

// snapshotSink wraps the memory store and records saved snapshots
type snapshotSink struct {
	*memory.Store

	mu    sync.Mutex
	saved map[string][]core.MonthlyStat
	calls int
}

func newSnapshotSink() *snapshotSink {
	return &snapshotSink{
		Store: memory.New(),
		saved: make(map[string][]core.MonthlyStat),
	}
}

func (s *snapshotSink) SaveSnapshots(_ context.Context, condominiumID string, year int, stats []core.MonthlyStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[condominiumID] = stats
	s.calls++
	return nil
}

func TestRebuildSavesTwelveMonths(t *testing.T) {
	sink := newSnapshotSink()
	ctx := context.Background()

	_, err := sink.CreateCharge(ctx, "condo1", core.PaymentRecord{
		UnitNumber:      "A-101",
		Month:           "02",
		Concept:         "Cuota",
		ReferenceAmount: core.Money{Cents: 50000},
		AmountPaid:      core.Money{Cents: 50000},
		Paid:            true,
	}, "2025-02-01")
	if err != nil {
		t.Fatalf("seed charge: %v", err)
	}

	p := NewSnapshotProcessor(sink, DefaultSnapshotProcessorConfig())
	if err := p.Rebuild(ctx, "condo1", 2025); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	stats := sink.saved["condo1"]
	if len(stats) != 12 {
		t.Fatalf("expected 12 monthly snapshots, got %d", len(stats))
	}
	if stats[1].Paid.Cents != 50000 || stats[1].ComplianceRate != 100 {
		t.Errorf("unexpected february snapshot: %+v", stats[1])
	}
	if stats[5].ChargeCount != 0 {
		t.Errorf("june should be empty, got %+v", stats[5])
	}
}

func TestRebuildEmptyLedger(t *testing.T) {
	sink := newSnapshotSink()
	p := NewSnapshotProcessor(sink, DefaultSnapshotProcessorConfig())

	if err := p.Rebuild(context.Background(), "condo1", 2025); err != nil {
		t.Fatalf("rebuild of empty ledger should succeed: %v", err)
	}
	if len(sink.saved["condo1"]) != 12 {
		t.Fatalf("expected 12 zero-valued snapshots, got %d", len(sink.saved["condo1"]))
	}
}

func TestProcessorStartStop(t *testing.T) {
	sink := newSnapshotSink()
	p := NewSnapshotProcessor(sink, SnapshotProcessorConfig{RefreshInterval: time.Hour})
	ctx := context.Background()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !p.IsRunning() {
		t.Error("processor should be running after Start")
	}
	if err := p.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if p.IsRunning() {
		t.Error("processor should not be running after Stop")
	}
}

func TestRebuildTracksScope(t *testing.T) {
	sink := newSnapshotSink()
	p := NewSnapshotProcessor(sink, DefaultSnapshotProcessorConfig())
	ctx := context.Background()

	if err := p.Rebuild(ctx, "condo1", 2025); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	before := func() int {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return sink.calls
	}()

	p.refreshTracked(ctx)

	after := func() int {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return sink.calls
	}()
	if after != before+1 {
		t.Errorf("expected one refresh save, got %d -> %d", before, after)
	}
}
