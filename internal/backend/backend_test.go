package backend

import (
	"context"
	"path/filepath"
	"testing"

	"cuotas/internal/core"
)

func TestTypeIsValid(t *testing.T) {
	for _, typ := range Types() {
		if !typ.IsValid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if Type("postgres").IsValid() {
		t.Error("postgres should not be valid")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory config: %v", err)
	}
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without path should fail validation")
	}
	if err := (Config{Type: "postgres"}).Validate(); err == nil {
		t.Error("unknown type should fail validation")
	}
}

func TestFactoryCreateMemory(t *testing.T) {
	res, err := NewFactory(nil).Create(Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Store == nil {
		t.Fatal("expected a store")
	}
	if res.Cleanup != nil {
		t.Error("memory backend should not need cleanup")
	}
}

func TestFactoryCreateSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cuotas.db")
	res, err := NewFactory(nil).Create(Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}()

	rec := core.PaymentRecord{
		UnitNumber:      "A-101",
		Month:           "03",
		Concept:         "Cuota",
		ReferenceAmount: core.Money{Cents: 10000},
		AmountPending:   core.Money{Cents: 10000},
	}
	if _, err := res.Store.CreateCharge(context.Background(), "condo1", rec, "2025-03-01"); err != nil {
		t.Fatalf("CreateCharge through factory store: %v", err)
	}
}
