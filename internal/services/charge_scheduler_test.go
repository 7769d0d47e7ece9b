package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cuotas/internal/core"
	"cuotas/internal/records/memory"
)

type fakeTemplateStore struct {
	templates []core.ChargeTemplate
	generated map[string]time.Time
	listErr   error
}

func newFakeTemplateStore(templates ...core.ChargeTemplate) *fakeTemplateStore {
	return &fakeTemplateStore{
		templates: templates,
		generated: make(map[string]time.Time),
	}
}

func (f *fakeTemplateStore) ListActiveTemplates(context.Context) ([]core.ChargeTemplate, error) {
	return f.templates, f.listErr
}

func (f *fakeTemplateStore) TemplateLastGenerated(_ context.Context, templateID string) (time.Time, error) {
	return f.generated[templateID], nil
}

func (f *fakeTemplateStore) UpdateTemplateLastGenerated(_ context.Context, templateID string, generatedAt time.Time) error {
	f.generated[templateID] = generatedAt
	return nil
}

func monthlyTemplate(id, unit string) core.ChargeTemplate {
	return core.ChargeTemplate{
		ID:            id,
		CondominiumID: "condo1",
		UnitNumber:    unit,
		Concept:       "Cuota de mantenimiento",
		Amount:        core.Money{Cents: 150000},
		AccountID:     "bbva",
		Frequency:     core.Monthly,
		DayOfMonth:    1,
		Active:        true,
	}
}

func TestGenerateDueCharges(t *testing.T) {
	store := memory.New()
	templates := newFakeTemplateStore(
		monthlyTemplate("tpl1", "A-101"),
		monthlyTemplate("tpl2", "A-102"),
	)
	scheduler := NewChargeScheduler(templates, NewLedgerService(store, nil))

	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	n, err := scheduler.GenerateDueCharges(context.Background(), now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 charges generated, got %d", n)
	}

	docs, _ := store.ListChargeDocuments(context.Background(), "condo1", 2025)
	recs := core.Normalize(docs, core.NormalizeOptions{Year: 2025})
	if len(recs) != 2 {
		t.Fatalf("expected 2 stored charges, got %d", len(recs))
	}
	if recs[0].Month != "03" || recs[0].ReferenceAmount.Cents != 150000 {
		t.Errorf("unexpected generated charge: %+v", recs[0])
	}

	// second run in the same month generates nothing
	n, err = scheduler.GenerateDueCharges(context.Background(), now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no charges on second run, got %d", n)
	}
}

func TestGenerateDueChargesNewMonth(t *testing.T) {
	store := memory.New()
	templates := newFakeTemplateStore(monthlyTemplate("tpl1", "A-101"))
	scheduler := NewChargeScheduler(templates, NewLedgerService(store, nil))
	ctx := context.Background()

	march := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	for _, now := range []time.Time{march, april} {
		if _, err := scheduler.GenerateDueCharges(ctx, now); err != nil {
			t.Fatalf("generate at %v: %v", now, err)
		}
	}

	docs, _ := store.ListChargeDocuments(ctx, "condo1", 2025)
	recs := core.Normalize(docs, core.NormalizeOptions{Year: 2025})
	if len(recs) != 2 {
		t.Fatalf("expected one charge per month, got %d", len(recs))
	}
	months := map[string]bool{}
	for _, r := range recs {
		months[r.Month] = true
	}
	if !months["03"] || !months["04"] {
		t.Errorf("expected charges in march and april, got %v", months)
	}
}

func TestGenerateYearlyCatchUpUsesStartMonth(t *testing.T) {
	store := memory.New()
	tpl := monthlyTemplate("tpl1", "A-101")
	tpl.Frequency = core.Yearly
	tpl.StartMonth = "03"
	tpl.DayOfMonth = 15
	templates := newFakeTemplateStore(tpl)
	templates.generated["tpl1"] = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	scheduler := NewChargeScheduler(templates, NewLedgerService(store, nil))
	ctx := context.Background()

	// scheduler was down in march, the catch-up run happens in june
	n, err := scheduler.GenerateDueCharges(ctx, time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 charge generated, got %d", n)
	}

	docs, _ := store.ListChargeDocuments(ctx, "condo1", 2025)
	recs := core.Normalize(docs, core.NormalizeOptions{Year: 2025})
	if len(recs) != 1 {
		t.Fatalf("expected 1 stored charge, got %d", len(recs))
	}
	if recs[0].Month != "03" {
		t.Errorf("yearly catch-up charge should bucket in the billing month, got %q", recs[0].Month)
	}
}

func TestGenerateDueChargesSkipsUnknownFrequency(t *testing.T) {
	tpl := monthlyTemplate("tpl1", "A-101")
	tpl.Frequency = core.Frequency("hourly")
	templates := newFakeTemplateStore(tpl)
	scheduler := NewChargeScheduler(templates, NewLedgerService(memory.New(), nil))

	n, err := scheduler.GenerateDueCharges(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if n != 0 {
		t.Errorf("expected unknown frequency skipped, got %d charges", n)
	}
}

func TestGenerateDueChargesListError(t *testing.T) {
	templates := newFakeTemplateStore()
	templates.listErr = fmt.Errorf("db gone")
	scheduler := NewChargeScheduler(templates, NewLedgerService(memory.New(), nil))

	if _, err := scheduler.GenerateDueCharges(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when template listing fails")
	}
}

func TestGenerateDueChargesUninitialized(t *testing.T) {
	scheduler := &ChargeScheduler{}
	if _, err := scheduler.GenerateDueCharges(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error for uninitialized scheduler")
	}
}
