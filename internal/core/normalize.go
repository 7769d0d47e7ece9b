package core

import (
	"fmt"
	"strings"
)

// NormalizeOptions controls raw document normalization.
type NormalizeOptions struct {
	// Year keeps only charges whose effective start date falls in this
	// calendar year. Zero disables the filter.
	Year int
}

// Normalize converts raw charge documents, as fetched from the record
// store, into canonical PaymentRecords. Field presence and typing are
// arbitrary on input: numeric fields coerce leniently to cents, `paid`
// is true only for a strict boolean true, and records without a
// resolvable month (or outside the requested year) are dropped rather
// than surfaced as errors.
func Normalize(docs []map[string]any, opts NormalizeOptions) []PaymentRecord {
	records := make([]PaymentRecord, 0, len(docs))
	for _, doc := range docs {
		r, ok := normalizeOne(doc, opts)
		if !ok {
			continue
		}
		records = append(records, r)
	}
	return records
}

func normalizeOne(doc map[string]any, opts NormalizeOptions) (PaymentRecord, bool) {
	date := coerceString(doc["startDate"])
	month, ok := monthFromDate(date, opts.Year)
	if !ok {
		return PaymentRecord{}, false
	}

	paid, _ := doc["paid"].(bool)

	r := PaymentRecord{
		ID:              coerceString(doc["id"]),
		UnitNumber:      coerceString(doc["numberCondominium"]),
		Month:           month,
		Concept:         coerceString(doc["concept"]),
		ReferenceAmount: CoerceCents(doc["referenceAmount"]),
		AmountPaid:      CoerceCents(doc["amountPaid"]),
		AmountPending:   CoerceCents(doc["amountPending"]),
		CreditBalance:   CoerceCents(doc["creditBalance"]),
		CreditUsed:      CoerceCents(doc["creditUsed"]),
		Paid:            paid,
		AccountID:       coerceString(doc["financialAccountId"]),
		PaymentDate:     coerceString(doc["paymentDate"]),
		PaymentType:     coerceString(doc["paymentType"]),
	}

	// A settled charge carries no pending amount, even when stale payment
	// sub-records say otherwise; the paid flag wins.
	if r.Paid || r.AmountPending.IsNegative() {
		r.AmountPending = Money{}
	}
	return r, true
}

// monthFromDate slices the month out of an ISO-like date string
// (YYYY-MM-DD...). It returns false when the date does not parse to a
// valid month or does not match the requested year.
func monthFromDate(date string, year int) (string, bool) {
	date = strings.TrimSpace(date)
	if len(date) < 7 {
		return "", false
	}
	if year != 0 && date[:4] != fmt.Sprintf("%04d", year) {
		return "", false
	}
	m := date[5:7]
	if !ValidMonth(m) {
		return "", false
	}
	return m, true
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
