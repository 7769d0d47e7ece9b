package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cuotas/internal/core"
)

// TemplateStore is the persistence surface the charge scheduler needs
type TemplateStore interface {
	ListActiveTemplates(ctx context.Context) ([]core.ChargeTemplate, error)
	TemplateLastGenerated(ctx context.Context, templateID string) (time.Time, error)
	UpdateTemplateLastGenerated(ctx context.Context, templateID string, generatedAt time.Time) error
}

// ChargeScheduler creates charges from recurring templates. A monthly
// condominium fee template produces one charge per unit per month.
type ChargeScheduler struct {
	templates TemplateStore
	ledger    *LedgerService
}

// NewChargeScheduler creates a new charge scheduler
func NewChargeScheduler(templates TemplateStore, ledger *LedgerService) *ChargeScheduler {
	return &ChargeScheduler{
		templates: templates,
		ledger:    ledger,
	}
}

// GenerateDueCharges creates charges for all templates that are due at now.
// Returns the number of charges created.
func (s *ChargeScheduler) GenerateDueCharges(ctx context.Context, now time.Time) (int, error) {
	if s.templates == nil || s.ledger == nil {
		return 0, fmt.Errorf("scheduler not properly initialized")
	}

	templates, err := s.templates.ListActiveTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active templates: %w", err)
	}

	slog.InfoContext(ctx, "Processing charge templates",
		"total_active", len(templates),
		"processing_date", now.Format("2006-01-02"))

	generatedCount := 0

	for _, tpl := range templates {
		due, err := s.isDue(ctx, tpl, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check if template is due",
				"template_id", tpl.ID,
				"error", err)
			continue
		}
		if !due {
			continue
		}

		month, chargeDate := chargePeriod(tpl, now)
		record := core.PaymentRecord{
			UnitNumber:      tpl.UnitNumber,
			Month:           month,
			Concept:         tpl.Concept,
			ReferenceAmount: tpl.Amount,
			AmountPending:   tpl.Amount,
			AccountID:       tpl.AccountID,
		}

		_, err = s.ledger.CreateCharge(ctx, tpl.CondominiumID, record, chargeDate.Format("2006-01-02"))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create charge from template",
				"template_id", tpl.ID,
				"unit_number", tpl.UnitNumber,
				"concept", tpl.Concept,
				"error", err)
			continue
		}

		if err := s.templates.UpdateTemplateLastGenerated(ctx, tpl.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to update last generation date",
				"template_id", tpl.ID,
				"error", err)
			// Continue anyway, the charge was created successfully
		}

		generatedCount++
		slog.InfoContext(ctx, "Created charge from template",
			"template_id", tpl.ID,
			"unit_number", tpl.UnitNumber,
			"concept", tpl.Concept,
			"amount_cents", tpl.Amount.Cents,
			"frequency", tpl.Frequency)
	}

	slog.InfoContext(ctx, "Charge template processing complete",
		"generated", generatedCount,
		"total_checked", len(templates))

	return generatedCount, nil
}

// chargePeriod resolves the month bucket and start date for a generated
// charge. Monthly templates bill the current month. Yearly templates
// always bill their configured start month, so a catch-up run later in
// the year still lands the charge in the right bucket.
func chargePeriod(tpl core.ChargeTemplate, now time.Time) (string, time.Time) {
	if tpl.Frequency == core.Yearly && core.ValidMonth(tpl.StartMonth) {
		billing := time.Date(now.Year(), time.Month(core.MonthIndex(tpl.StartMonth)+1), 1, 0, 0, 0, 0, time.UTC)
		day := clampToMonth(tpl.DayOfMonth, billing)
		if day < 1 {
			day = 1
		}
		return tpl.StartMonth, billing.AddDate(0, 0, day-1)
	}
	return fmt.Sprintf("%02d", int(now.Month())), now
}

// isDue determines if a charge template should generate a charge
func (s *ChargeScheduler) isDue(ctx context.Context, tpl core.ChargeTemplate, now time.Time) (bool, error) {
	lastGenerated, err := s.templates.TemplateLastGenerated(ctx, tpl.ID)
	if err != nil {
		return false, fmt.Errorf("get last generation date: %w", err)
	}

	checker, err := GetDuenessChecker(tpl.Frequency)
	if err != nil {
		return false, err
	}

	return checker.IsDue(lastGenerated, now, tpl), nil
}
