// Package storage persists charges, accounts and derived monthly
// snapshots in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"cuotas/internal/core"
	"cuotas/internal/records"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateCharge implements records.ChargeWriter.
func (r *SQLiteRepository) CreateCharge(ctx context.Context, condominiumID string, rec core.PaymentRecord, startDate string) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("validate charge: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO charges (
			condominium_id, unit_number, start_date, concept,
			reference_cents, paid_cents, pending_cents, credit_cents, credit_used_cents,
			paid, account_id, payment_date, payment_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		condominiumID, rec.UnitNumber, startDate, rec.Concept,
		rec.ReferenceAmount.Cents, rec.AmountPaid.Cents, rec.AmountPending.Cents,
		rec.CreditBalance.Cents, rec.CreditUsed.Cents,
		boolToInt(rec.Paid), rec.AccountID, rec.PaymentDate, rec.PaymentType)
	if err != nil {
		return "", fmt.Errorf("insert charge: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("charge id: %w", err)
	}

	slog.InfoContext(ctx, "Charge saved",
		"id", id,
		"condominium", condominiumID,
		"unit", rec.UnitNumber,
		"concept", rec.Concept,
		"reference_cents", rec.ReferenceAmount.Cents)

	return strconv.FormatInt(id, 10), nil
}

// ApplyPayment implements records.PaymentWriter. The roll-up runs in a
// transaction: read the charge, settle it, write it back. The returned
// year is the charge's fiscal year from start_date.
func (r *SQLiteRepository) ApplyPayment(ctx context.Context, condominiumID string, p records.Payment) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var rec core.PaymentRecord
	var paid int
	var startDate string
	err = tx.QueryRowContext(ctx, `
		SELECT start_date, reference_cents, paid_cents, pending_cents, credit_cents, credit_used_cents, paid
		FROM charges WHERE id = ? AND condominium_id = ?`,
		p.ChargeID, condominiumID).Scan(
		&startDate, &rec.ReferenceAmount.Cents, &rec.AmountPaid.Cents, &rec.AmountPending.Cents,
		&rec.CreditBalance.Cents, &rec.CreditUsed.Cents, &paid)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("charge %s not found", p.ChargeID)
	}
	if err != nil {
		return 0, fmt.Errorf("load charge: %w", err)
	}
	rec.Paid = paid != 0

	rec = core.Settle(rec, core.PaymentInput{
		Amount:      p.Amount,
		CreditUsed:  p.CreditUsed,
		PaymentDate: p.PaymentDate,
		PaymentType: p.PaymentType,
	})

	_, err = tx.ExecContext(ctx, `
		UPDATE charges SET
			paid_cents = ?, pending_cents = ?, credit_cents = ?, credit_used_cents = ?,
			paid = ?, payment_date = ?, payment_type = ?
		WHERE id = ? AND condominium_id = ?`,
		rec.AmountPaid.Cents, rec.AmountPending.Cents, rec.CreditBalance.Cents, rec.CreditUsed.Cents,
		boolToInt(rec.Paid), rec.PaymentDate, rec.PaymentType,
		p.ChargeID, condominiumID)
	if err != nil {
		return 0, fmt.Errorf("update charge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit payment: %w", err)
	}

	year := 0
	if len(startDate) >= 4 {
		year, _ = strconv.Atoi(startDate[:4])
	}

	slog.InfoContext(ctx, "Payment applied",
		"charge", p.ChargeID,
		"condominium", condominiumID,
		"amount_cents", p.Amount.Cents,
		"credit_used_cents", p.CreditUsed.Cents,
		"settled", rec.Paid)
	return year, nil
}

// ListChargeDocuments implements records.RecordSource. Rows come back in
// the loosely-typed document shape so consumers normalize through the
// same path as any other backend.
func (r *SQLiteRepository) ListChargeDocuments(ctx context.Context, condominiumID string, year int) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, unit_number, start_date, concept,
			reference_cents, paid_cents, pending_cents, credit_cents, credit_used_cents,
			paid, account_id, payment_date, payment_type
		FROM charges
		WHERE condominium_id = ? AND start_date >= ? AND start_date < ?
		ORDER BY start_date, id`,
		condominiumID, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1))
	if err != nil {
		return nil, fmt.Errorf("query charges: %w", err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var (
			id                                          int64
			unit, startDate, concept                    string
			ref, paidC, pending, credit, creditUsed     int64
			paid                                        int
			accountID, paymentDate, paymentType         string
		)
		if err := rows.Scan(&id, &unit, &startDate, &concept,
			&ref, &paidC, &pending, &credit, &creditUsed,
			&paid, &accountID, &paymentDate, &paymentType); err != nil {
			return nil, fmt.Errorf("scan charge: %w", err)
		}
		out = append(out, map[string]any{
			"id":                 strconv.FormatInt(id, 10),
			"numberCondominium":  unit,
			"startDate":          startDate,
			"concept":            concept,
			"referenceAmount":    float64(ref) / 100.0,
			"amountPaid":         float64(paidC) / 100.0,
			"amountPending":      float64(pending) / 100.0,
			"creditBalance":      float64(credit) / 100.0,
			"creditUsed":         float64(creditUsed) / 100.0,
			"paid":               paid != 0,
			"financialAccountId": accountID,
			"paymentDate":        paymentDate,
			"paymentType":        paymentType,
		})
	}
	return out, rows.Err()
}

// ListAccounts implements records.AccountSource.
func (r *SQLiteRepository) ListAccounts(ctx context.Context, condominiumID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, initial_cents, creation_month
		FROM accounts WHERE condominium_id = ? ORDER BY id`, condominiumID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.InitialBalance.Cents, &a.CreationMonth); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListCondominiums returns every condominium that has charges on file.
// Used on worker startup to rebuild all snapshots.
func (r *SQLiteRepository) ListCondominiums(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT condominium_id FROM charges ORDER BY condominium_id`)
	if err != nil {
		return nil, fmt.Errorf("query condominiums: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan condominium: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpsertAccount registers or updates account metadata.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, condominiumID string, a core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, condominium_id, name, initial_cents, creation_month)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (condominium_id, id) DO UPDATE SET
			name = excluded.name,
			initial_cents = excluded.initial_cents,
			creation_month = excluded.creation_month`,
		a.ID, condominiumID, a.Name, a.InitialBalance.Cents, a.CreationMonth)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// SaveSnapshots replaces the derived monthly stats for a condominium and
// year. Snapshots are rebuildable data; the whole year is rewritten in
// one transaction so readers never see a half-rebuilt year.
func (r *SQLiteRepository) SaveSnapshots(ctx context.Context, condominiumID string, year int, stats []core.MonthlyStat) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE condominium_id = ? AND year = ?`, condominiumID, year); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}

	for _, s := range stats {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshots (
				condominium_id, year, month,
				paid_cents, pending_cents, saldo_cents, reconciled_cents, outstanding_cents,
				charge_count, paid_count, compliance_rate, delinquency_rate, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
			condominiumID, year, s.Month,
			s.Paid.Cents, s.Pending.Cents, s.Saldo.Cents, s.PaidWithCredit.Cents, s.Outstanding.Cents,
			s.ChargeCount, s.PaidCount, s.ComplianceRate, s.DelinquencyRate)
		if err != nil {
			return fmt.Errorf("insert snapshot %s: %w", s.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshots: %w", err)
	}

	slog.InfoContext(ctx, "Snapshots saved",
		"condominium", condominiumID, "year", year, "months", len(stats))
	return nil
}

// LoadSnapshots returns the persisted monthly stats for a condominium and
// year, all twelve months in order. Missing months come back zero-valued
// so consumers never handle gaps.
func (r *SQLiteRepository) LoadSnapshots(ctx context.Context, condominiumID string, year int) ([]core.MonthlyStat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT month, paid_cents, pending_cents, saldo_cents, reconciled_cents, outstanding_cents,
			charge_count, paid_count, compliance_rate, delinquency_rate
		FROM snapshots WHERE condominium_id = ? AND year = ?`, condominiumID, year)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	stats := make([]core.MonthlyStat, 12)
	for i := range stats {
		stats[i].Month = core.Months[i]
	}
	for rows.Next() {
		var s core.MonthlyStat
		if err := rows.Scan(&s.Month, &s.Paid.Cents, &s.Pending.Cents, &s.Saldo.Cents,
			&s.PaidWithCredit.Cents, &s.Outstanding.Cents,
			&s.ChargeCount, &s.PaidCount, &s.ComplianceRate, &s.DelinquencyRate); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if i := core.MonthIndex(s.Month); i >= 0 {
			stats[i] = s
		}
	}
	return stats, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
