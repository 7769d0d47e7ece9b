package memory

import (
	"context"
	"testing"

	"cuotas/internal/core"
	"cuotas/internal/records"
)

func TestStoreCreateAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateCharge(ctx, "condo1", core.PaymentRecord{
		UnitNumber:      "A-101",
		Month:           "03",
		Concept:         "Cuota de mantenimiento",
		ReferenceAmount: core.Money{Cents: 50000},
		AmountPending:   core.Money{Cents: 50000},
	}, "2025-03-01")
	if err != nil || id != "chg-1" {
		t.Fatalf("unexpected create: id=%q err=%v", id, err)
	}

	docs, err := s.ListChargeDocuments(ctx, "condo1", 2025)
	if err != nil || len(docs) != 1 {
		t.Fatalf("unexpected list: docs=%v err=%v", docs, err)
	}
	if docs[0]["numberCondominium"] != "A-101" || docs[0]["paid"] != false {
		t.Fatalf("unexpected doc: %v", docs[0])
	}

	// other condominium and other year stay invisible
	if docs, _ := s.ListChargeDocuments(ctx, "condo2", 2025); len(docs) != 0 {
		t.Fatalf("leaked across condominiums: %v", docs)
	}
	if docs, _ := s.ListChargeDocuments(ctx, "condo1", 2024); len(docs) != 0 {
		t.Fatalf("leaked across years: %v", docs)
	}
}

func TestStoreRejectsInvalidCharge(t *testing.T) {
	s := New()
	_, err := s.CreateCharge(context.Background(), "condo1", core.PaymentRecord{Month: "13"}, "2025-01-01")
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestStoreApplyPayment(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateCharge(ctx, "condo1", core.PaymentRecord{
		UnitNumber:      "A-101",
		Month:           "03",
		Concept:         "Mantenimiento",
		ReferenceAmount: core.Money{Cents: 50000},
		AmountPending:   core.Money{Cents: 50000},
	}, "2025-03-01")
	if err != nil {
		t.Fatal(err)
	}

	year, err := s.ApplyPayment(ctx, "condo1", records.Payment{
		ChargeID:    id,
		Amount:      core.Money{Cents: 60000},
		PaymentDate: "2025-03-10",
		PaymentType: "transferencia",
	})
	if err != nil {
		t.Fatal(err)
	}
	if year != 2025 {
		t.Fatalf("expected charge year 2025, got %d", year)
	}

	docs, _ := s.ListChargeDocuments(ctx, "condo1", 2025)
	recs := core.Normalize(docs, core.NormalizeOptions{Year: 2025})
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if !r.Paid || r.AmountPending.Cents != 0 || r.CreditBalance.Cents != 10000 {
		t.Fatalf("unexpected settled record: %+v", r)
	}

	if _, err := s.ApplyPayment(ctx, "condo1", records.Payment{ChargeID: "missing"}); err == nil {
		t.Fatal("expected error for unknown charge")
	}
}

func TestStoreApplyPaymentCrossYear(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateCharge(ctx, "condo1", core.PaymentRecord{
		UnitNumber:      "B-201",
		Month:           "12",
		Concept:         "Cuota",
		ReferenceAmount: core.Money{Cents: 40000},
		AmountPending:   core.Money{Cents: 40000},
	}, "2025-12-01")
	if err != nil {
		t.Fatal(err)
	}

	// A december charge paid in january still belongs to the old year.
	year, err := s.ApplyPayment(ctx, "condo1", records.Payment{
		ChargeID:    id,
		Amount:      core.Money{Cents: 40000},
		PaymentDate: "2026-01-10",
	})
	if err != nil {
		t.Fatal(err)
	}
	if year != 2025 {
		t.Fatalf("expected charge year 2025, got %d", year)
	}
}

func TestStoreAccounts(t *testing.T) {
	s := New()
	s.SeedAccounts("condo1", []core.Account{{ID: "bbva", Name: "BBVA", InitialBalance: core.Money{Cents: 100000}, CreationMonth: "01"}})
	accounts, err := s.ListAccounts(context.Background(), "condo1")
	if err != nil || len(accounts) != 1 || accounts[0].ID != "bbva" {
		t.Fatalf("unexpected accounts: %v err=%v", accounts, err)
	}
}
