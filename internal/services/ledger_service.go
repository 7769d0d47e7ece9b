package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"cuotas/internal/core"
	"cuotas/internal/records"
)

// LedgerStore is the persistence surface the ledger service needs
type LedgerStore interface {
	records.RecordSource
	records.AccountSource
	records.ChargeWriter
	records.PaymentWriter

	UpsertAccount(ctx context.Context, condominiumID string, a core.Account) error
}

// ChangePublisher notifies downstream consumers that a ledger changed
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, condominiumID string, year int) error
}

// LedgerService orchestrates charge and payment operations across the
// store and AMQP. Writes land in the store first, change notifications
// are best effort.
type LedgerService struct {
	store     LedgerStore
	publisher ChangePublisher
}

func NewLedgerService(store LedgerStore, publisher ChangePublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// CreateCharge saves a charge locally and publishes a ledger change message
func (s *LedgerService) CreateCharge(ctx context.Context, condominiumID string, r core.PaymentRecord, startDate string) (string, error) {
	id, err := s.store.CreateCharge(ctx, condominiumID, r, startDate)
	if err != nil {
		return "", fmt.Errorf("save charge: %w", err)
	}

	slog.InfoContext(ctx, "Charge created",
		"condominium_id", condominiumID,
		"charge_id", id,
		"unit_number", r.UnitNumber,
		"concept", r.Concept,
		"amount_cents", r.ReferenceAmount.Cents)

	s.publishChange(ctx, condominiumID, yearOfDate(startDate))

	return id, nil
}

// ApplyPayment settles a payment against a charge and publishes a ledger
// change message. The returned year is the charge's fiscal year; payments
// dated in a later calendar year still refresh the year the charge
// belongs to.
func (s *LedgerService) ApplyPayment(ctx context.Context, condominiumID string, p records.Payment) (int, error) {
	year, err := s.store.ApplyPayment(ctx, condominiumID, p)
	if err != nil {
		return 0, fmt.Errorf("apply payment: %w", err)
	}

	slog.InfoContext(ctx, "Payment applied",
		"condominium_id", condominiumID,
		"charge_id", p.ChargeID,
		"amount_cents", p.Amount.Cents)

	s.publishChange(ctx, condominiumID, year)

	return year, nil
}

// ListRecords loads the charge ledger for a condominium and fiscal year as
// normalized payment records
func (s *LedgerService) ListRecords(ctx context.Context, condominiumID string, year int) ([]core.PaymentRecord, error) {
	docs, err := s.store.ListChargeDocuments(ctx, condominiumID, year)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	return core.Normalize(docs, core.NormalizeOptions{Year: year}), nil
}

// MonthlySummary aggregates the ledger into twelve monthly buckets with
// account opening balances folded in
func (s *LedgerService) MonthlySummary(ctx context.Context, condominiumID string, year int) ([]core.MonthlyStat, error) {
	recs, err := s.ListRecords(ctx, condominiumID, year)
	if err != nil {
		return nil, err
	}

	accounts, err := s.store.ListAccounts(ctx, condominiumID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	stats := core.AggregateByMonth(recs, core.AggregateOptions{Year: year})
	return core.ApplyOpeningBalances(stats, accounts), nil
}

// RegisterAccount creates or updates a financial account
func (s *LedgerService) RegisterAccount(ctx context.Context, condominiumID string, a core.Account) error {
	if a.ID == "" {
		return fmt.Errorf("account id required")
	}
	if !core.ValidMonth(a.CreationMonth) {
		a.CreationMonth = "01"
	}
	if err := s.store.UpsertAccount(ctx, condominiumID, a); err != nil {
		return fmt.Errorf("register account: %w", err)
	}

	slog.InfoContext(ctx, "Account registered",
		"condominium_id", condominiumID,
		"account_id", a.ID,
		"name", a.Name)

	return nil
}

// ListAccounts returns the financial accounts of a condominium
func (s *LedgerService) ListAccounts(ctx context.Context, condominiumID string) ([]core.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, condominiumID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (s *LedgerService) publishChange(ctx context.Context, condominiumID string, year int) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping ledger change message")
		return
	}

	if err := s.publisher.PublishLedgerChanged(ctx, condominiumID, year); err != nil {
		// Don't fail the request, the write already landed in the store
		slog.ErrorContext(ctx, "Failed to publish ledger change message",
			"condominium_id", condominiumID,
			"year", year,
			"error", err)
	}
}

// yearOfDate extracts the year from an ISO date, falling back to the
// current year when the date is missing or malformed
func yearOfDate(isoDate string) int {
	if len(isoDate) >= 4 {
		if y, err := strconv.Atoi(isoDate[:4]); err == nil {
			return y
		}
	}
	return time.Now().Year()
}
