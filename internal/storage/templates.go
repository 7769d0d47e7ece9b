package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"cuotas/internal/core"

	"github.com/google/uuid"
)

// CreateChargeTemplate persists a recurring charge template.
func (r *SQLiteRepository) CreateChargeTemplate(ctx context.Context, t core.ChargeTemplate) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validate template: %w", err)
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.StartMonth == "" {
		t.StartMonth = "01"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO charge_templates (
			id, condominium_id, unit_number, concept, amount_cents,
			account_id, frequency, day_of_month, start_month, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CondominiumID, t.UnitNumber, t.Concept, t.Amount.Cents,
		t.AccountID, string(t.Frequency), t.DayOfMonth, t.StartMonth, boolToInt(t.Active))
	if err != nil {
		return "", fmt.Errorf("insert template: %w", err)
	}

	slog.InfoContext(ctx, "Charge template saved",
		"template_id", t.ID,
		"condominium", t.CondominiumID,
		"unit", t.UnitNumber,
		"concept", t.Concept,
		"frequency", t.Frequency)

	return t.ID, nil
}

// ListActiveTemplates returns every active template across condominiums.
func (r *SQLiteRepository) ListActiveTemplates(ctx context.Context) ([]core.ChargeTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, condominium_id, unit_number, concept, amount_cents,
			account_id, frequency, day_of_month, start_month
		FROM charge_templates WHERE active = 1 ORDER BY condominium_id, unit_number`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var out []core.ChargeTemplate
	for rows.Next() {
		t := core.ChargeTemplate{Active: true}
		var freq string
		if err := rows.Scan(&t.ID, &t.CondominiumID, &t.UnitNumber, &t.Concept,
			&t.Amount.Cents, &t.AccountID, &freq, &t.DayOfMonth, &t.StartMonth); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.Frequency = core.Frequency(freq)
		out = append(out, t)
	}
	return out, rows.Err()
}

// TemplateLastGenerated returns the last generation time of a template,
// zero when the template has never generated a charge.
func (r *SQLiteRepository) TemplateLastGenerated(ctx context.Context, templateID string) (time.Time, error) {
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT last_generated_at FROM charge_templates WHERE id = ?`, templateID).Scan(&last)
	if err == sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("template %s not found", templateID)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load template: %w", err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return last.Time, nil
}

// UpdateTemplateLastGenerated records that a template generated a charge.
func (r *SQLiteRepository) UpdateTemplateLastGenerated(ctx context.Context, templateID string, generatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE charge_templates SET last_generated_at = ? WHERE id = ?`, generatedAt, templateID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// DeactivateTemplate stops a template from generating further charges.
func (r *SQLiteRepository) DeactivateTemplate(ctx context.Context, templateID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE charge_templates SET active = 0 WHERE id = ?`, templateID)
	if err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s not found", templateID)
	}
	return nil
}
