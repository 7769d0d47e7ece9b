package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cuotas/internal/core"
	"cuotas/internal/records"
	"cuotas/internal/services"
)

// Importer copies spreadsheet charge rows into the ledger. Rows that
// fail validation are skipped with a warning so one bad cell does not
// abort a whole import.
type Importer struct {
	reader RowReader
	ledger *services.LedgerService
}

func NewImporter(reader RowReader, ledger *services.LedgerService) *Importer {
	return &Importer{reader: reader, ledger: ledger}
}

// Import reads the rows of the given year and creates a charge for each,
// applying the recorded payment when the row is marked paid. Returns the
// number of charges created.
func (i *Importer) Import(ctx context.Context, condominiumID string, year int) (int, error) {
	if i.reader == nil {
		return 0, fmt.Errorf("no row reader configured")
	}

	rows, err := i.reader.ListChargeRows(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("list charge rows: %w", err)
	}

	imported := 0
	for n, row := range rows {
		id, err := i.importRow(ctx, condominiumID, row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping charge row",
				"condominium_id", condominiumID, "row", n+1, "unit", row.UnitNumber, "error", err)
			continue
		}
		imported++

		if row.Paid && row.AmountPaid > 0 {
			payment := records.Payment{
				ChargeID:    id,
				Amount:      core.Money{Cents: row.AmountPaid},
				PaymentDate: row.PaymentDate,
				PaymentType: "importado",
			}
			if _, err := i.ledger.ApplyPayment(ctx, condominiumID, payment); err != nil {
				slog.WarnContext(ctx, "Imported charge but payment failed",
					"condominium_id", condominiumID, "charge_id", id, "error", err)
			}
		}
	}

	slog.InfoContext(ctx, "Sheet import finished",
		"condominium_id", condominiumID, "year", year, "rows", len(rows), "imported", imported)
	return imported, nil
}

func (i *Importer) importRow(ctx context.Context, condominiumID string, row ChargeRow) (string, error) {
	startDate := strings.TrimSpace(row.StartDate)
	if len(startDate) < 10 {
		return "", fmt.Errorf("start date %q is not an ISO date", row.StartDate)
	}
	month := startDate[5:7]
	if !core.ValidMonth(month) {
		return "", fmt.Errorf("start date %q has no valid month", row.StartDate)
	}

	rec := core.PaymentRecord{
		UnitNumber:      strings.TrimSpace(row.UnitNumber),
		Month:           month,
		Concept:         strings.TrimSpace(row.Concept),
		ReferenceAmount: core.Money{Cents: row.Amount},
		AmountPending:   core.Money{Cents: row.Amount},
		AccountID:       strings.TrimSpace(row.AccountID),
	}

	return i.ledger.CreateCharge(ctx, condominiumID, rec, startDate)
}
