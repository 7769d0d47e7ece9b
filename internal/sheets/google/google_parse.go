package google

import (
	"strconv"
	"strings"

	"cuotas/internal/sheets"
)

// Sheet layout, one charge per row:
//
//	A unit, B concept, C amount, D start date, E account,
//	F paid flag, G amount paid, H payment date
const (
	colUnit = iota
	colConcept
	colAmount
	colStartDate
	colAccount
	colPaid
	colAmountPaid
	colPaymentDate
)

// parseChargeRow converts one row of cells into a ChargeRow. Rows
// without a parseable positive amount are rejected, which also filters
// the header row.
func parseChargeRow(cols []string) (sheets.ChargeRow, bool) {
	if len(cols) <= colStartDate {
		return sheets.ChargeRow{}, false
	}

	amount, ok := parseAmountToCents(cols[colAmount])
	if !ok || amount <= 0 {
		return sheets.ChargeRow{}, false
	}

	row := sheets.ChargeRow{
		UnitNumber: strings.TrimSpace(cols[colUnit]),
		Concept:    strings.TrimSpace(cols[colConcept]),
		Amount:     amount,
		StartDate:  strings.TrimSpace(cols[colStartDate]),
	}
	if row.UnitNumber == "" || row.Concept == "" {
		return sheets.ChargeRow{}, false
	}

	if len(cols) > colAccount {
		row.AccountID = strings.TrimSpace(cols[colAccount])
	}
	if len(cols) > colPaid {
		row.Paid = parsePaidFlag(cols[colPaid])
	}
	if len(cols) > colAmountPaid {
		if paid, ok := parseAmountToCents(cols[colAmountPaid]); ok {
			row.AmountPaid = paid
		}
	}
	if len(cols) > colPaymentDate {
		row.PaymentDate = strings.TrimSpace(cols[colPaymentDate])
	}

	return row, true
}

// parseAmountToCents accepts both dot and comma decimal separators.
func parseAmountToCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	cents := int64((f * 100.0) + 0.5)
	return cents, true
}

// parsePaidFlag accepts the marks administrators actually type.
func parsePaidFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sí", "si", "x", "true", "1", "pagado":
		return true
	}
	return false
}
