// Package sheets imports charge rows kept in spreadsheets by condominium
// administrators into the ledger.
package sheets

import "context"

// ChargeRow is one spreadsheet row describing a charge. Amounts are
// cents; dates are ISO strings as typed in the sheet.
type ChargeRow struct {
	UnitNumber  string
	Concept     string
	Amount      int64
	StartDate   string
	AccountID   string
	Paid        bool
	AmountPaid  int64
	PaymentDate string
}

// Ports for outbound adapters.
type (
	// RowReader lists the charge rows of one fiscal year.
	RowReader interface {
		ListChargeRows(ctx context.Context, year int) ([]ChargeRow, error)
	}
)
