package services

import (
	"context"
	"errors"
	"testing"

	"cuotas/internal/core"
	"cuotas/internal/records"
	"cuotas/internal/records/memory"
)

type recordingPublisher struct {
	calls []string
	years []int
	err   error
}

func (p *recordingPublisher) PublishLedgerChanged(_ context.Context, condominiumID string, year int) error {
	p.calls = append(p.calls, condominiumID)
	p.years = append(p.years, year)
	return p.err
}

func TestCreateChargePublishesChange(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{}
	svc := NewLedgerService(store, pub)

	id, err := svc.CreateCharge(context.Background(), "condo1", core.PaymentRecord{
		UnitNumber:      "A-101",
		Month:           "03",
		Concept:         "Cuota de mantenimiento",
		ReferenceAmount: core.Money{Cents: 50000},
		AmountPending:   core.Money{Cents: 50000},
	}, "2025-03-01")
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}
	if id == "" {
		t.Fatal("expected charge id")
	}

	if len(pub.calls) != 1 || pub.calls[0] != "condo1" || pub.years[0] != 2025 {
		t.Errorf("unexpected publish calls: %v years %v", pub.calls, pub.years)
	}
}

func TestCreateChargeSurvivesPublishFailure(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewLedgerService(store, pub)

	_, err := svc.CreateCharge(context.Background(), "condo1", core.PaymentRecord{
		UnitNumber:      "A-101",
		Month:           "03",
		Concept:         "Cuota de mantenimiento",
		ReferenceAmount: core.Money{Cents: 50000},
		AmountPending:   core.Money{Cents: 50000},
	}, "2025-03-01")
	if err != nil {
		t.Fatalf("charge creation should not fail when publish fails: %v", err)
	}

	recs, err := svc.ListRecords(context.Background(), "condo1", 2025)
	if err != nil || len(recs) != 1 {
		t.Fatalf("expected stored charge, got %v err=%v", recs, err)
	}
}

func TestCreateChargeRejectsInvalid(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil)

	_, err := svc.CreateCharge(context.Background(), "condo1", core.PaymentRecord{
		UnitNumber: "A-101",
		Month:      "13",
		Concept:    "Cuota",
	}, "2025-03-01")
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestApplyPaymentPublishesChange(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{}
	svc := NewLedgerService(store, pub)
	ctx := context.Background()

	id, err := svc.CreateCharge(ctx, "condo1", core.PaymentRecord{
		UnitNumber:      "A-102",
		Month:           "04",
		Concept:         "Agua",
		ReferenceAmount: core.Money{Cents: 30000},
		AmountPending:   core.Money{Cents: 30000},
	}, "2025-04-01")
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}

	year, err := svc.ApplyPayment(ctx, "condo1", records.Payment{
		ChargeID:    id,
		Amount:      core.Money{Cents: 30000},
		PaymentDate: "2025-04-10",
		PaymentType: "transferencia",
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if year != 2025 {
		t.Fatalf("expected charge year 2025, got %d", year)
	}
	if len(pub.calls) != 2 {
		t.Fatalf("expected 2 publishes (charge + payment), got %d", len(pub.calls))
	}

	recs, _ := svc.ListRecords(ctx, "condo1", 2025)
	if !recs[0].Paid || recs[0].AmountPending.Cents != 0 {
		t.Errorf("payment not settled: %+v", recs[0])
	}
}

func TestApplyPaymentPublishesChargeYear(t *testing.T) {
	store := memory.New()
	pub := &recordingPublisher{}
	svc := NewLedgerService(store, pub)
	ctx := context.Background()

	id, err := svc.CreateCharge(ctx, "condo1", core.PaymentRecord{
		UnitNumber:      "B-201",
		Month:           "12",
		Concept:         "Cuota",
		ReferenceAmount: core.Money{Cents: 40000},
		AmountPending:   core.Money{Cents: 40000},
	}, "2025-12-01")
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}

	// A payment dated in january settles the december charge; the change
	// message must carry the charge's fiscal year so the snapshot worker
	// rebuilds 2025, not 2026.
	year, err := svc.ApplyPayment(ctx, "condo1", records.Payment{
		ChargeID:    id,
		Amount:      core.Money{Cents: 40000},
		PaymentDate: "2026-01-10",
		PaymentType: "transferencia",
	})
	if err != nil {
		t.Fatalf("apply payment: %v", err)
	}
	if year != 2025 {
		t.Fatalf("expected charge year 2025, got %d", year)
	}
	if len(pub.years) != 2 || pub.years[1] != 2025 {
		t.Fatalf("expected payment publish for year 2025, got %v", pub.years)
	}
}

func TestMonthlySummaryFoldsOpeningBalances(t *testing.T) {
	store := memory.New()
	store.SeedAccounts("condo1", []core.Account{
		{ID: "bbva", Name: "BBVA", InitialBalance: core.Money{Cents: 100000}, CreationMonth: "01"},
	})
	svc := NewLedgerService(store, nil)
	ctx := context.Background()

	_, err := svc.CreateCharge(ctx, "condo1", core.PaymentRecord{
		UnitNumber:      "A-101",
		Month:           "01",
		Concept:         "Cuota",
		ReferenceAmount: core.Money{Cents: 50000},
		AmountPaid:      core.Money{Cents: 50000},
		Paid:            true,
	}, "2025-01-05")
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}

	stats, err := svc.MonthlySummary(ctx, "condo1", 2025)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if len(stats) != 12 {
		t.Fatalf("expected 12 months, got %d", len(stats))
	}
	if stats[0].Saldo.Cents != 100000 {
		t.Errorf("expected opening balance in january saldo, got %d", stats[0].Saldo.Cents)
	}
	if stats[0].Paid.Cents != 50000 {
		t.Errorf("expected january paid 50000, got %d", stats[0].Paid.Cents)
	}
}

func TestYearOfDate(t *testing.T) {
	if y := yearOfDate("2025-03-01"); y != 2025 {
		t.Errorf("expected 2025, got %d", y)
	}
	if y := yearOfDate(""); y < 2000 {
		t.Errorf("expected current year fallback, got %d", y)
	}
	if y := yearOfDate("bad"); y < 2000 {
		t.Errorf("expected current year fallback for malformed date, got %d", y)
	}
}
