package records

import (
	"context"

	"cuotas/internal/core"
)

// Payment is one payment applied against a charge.
type Payment struct {
	ChargeID    string
	Amount      core.Money
	CreditUsed  core.Money
	PaymentDate string
	PaymentType string
}

// Ports for outbound adapters. The aggregator consumes charge documents
// and account metadata read-only; the write side covers the charge
// assignment and payment tracking endpoints that feed it.
type (
	// RecordSource is the read-only source of charge documents for a
	// given condominium and year. Documents come back in the raw shape
	// of the record store; callers normalize via core.Normalize.
	RecordSource interface {
		ListChargeDocuments(ctx context.Context, condominiumID string, year int) ([]map[string]any, error)
	}

	// AccountSource provides per-account metadata used to attribute
	// opening balances.
	AccountSource interface {
		ListAccounts(ctx context.Context, condominiumID string) ([]core.Account, error)
	}

	// ChargeWriter registers a new charge for a unit. startDate is the
	// ISO date (YYYY-MM-DD) the charge becomes effective.
	ChargeWriter interface {
		CreateCharge(ctx context.Context, condominiumID string, r core.PaymentRecord, startDate string) (id string, err error)
	}

	// PaymentWriter applies a payment to an existing charge, rolling up
	// paid/pending/credit fields per core.Settle. The returned year is
	// the charge's fiscal year, taken from its start date; payments can
	// arrive dated in a later calendar year than the charge they settle.
	PaymentWriter interface {
		ApplyPayment(ctx context.Context, condominiumID string, p Payment) (year int, err error)
	}
)
