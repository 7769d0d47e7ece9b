package core

import "sort"

// DimensionStat is the derived view for one grouping key (a concept, a
// financial account, or a condominium unit). It carries the same family of
// sums as MonthlyStat so any dimension's totals cross-check against the
// monthly totals.
type DimensionStat struct {
	Key             string
	Paid            Money
	Pending         Money
	Saldo           Money
	PaidWithCredit  Money
	Outstanding     Money
	Charged         Money
	ChargeCount     int
	PaidCount       int
	ComplianceRate  float64
	DelinquencyRate float64
}

// KeyFunc extracts the grouping key from a record.
type KeyFunc func(PaymentRecord) string

// Grouping keys for the three standard dimensions.
func ByConcept(r PaymentRecord) string { return r.Concept }
func ByAccount(r PaymentRecord) string { return r.AccountID }
func ByUnit(r PaymentRecord) string    { return r.UnitNumber }

// AggregateByDimension groups records by an arbitrary key, applying the
// same reconciliation as the monthly aggregator. The uniformity is the
// contract: a new dimension must reuse Reconcile rather than re-derive
// the paid-with-credit formula, so that the sum over any dimension's
// buckets equals the sum over the monthly buckets.
func AggregateByDimension(records []PaymentRecord, key KeyFunc) map[string]DimensionStat {
	out := make(map[string]DimensionStat)
	for _, r := range records {
		k := key(r)
		s := out[k]
		s.Key = k

		s.Paid = s.Paid.Add(r.AmountPaid)
		if !r.Paid {
			s.Pending = s.Pending.Add(r.AmountPending)
		}
		s.Saldo = s.Saldo.Add(r.CreditBalance)
		s.Charged = s.Charged.Add(r.ReferenceAmount)

		rec := Reconcile(r)
		s.PaidWithCredit = s.PaidWithCredit.Add(rec.ReconciledPaid)
		s.Outstanding = s.Outstanding.Add(rec.OutstandingBalance)

		s.ChargeCount++
		if r.Paid {
			s.PaidCount++
		}
		out[k] = s
	}

	for k, s := range out {
		if s.ChargeCount > 0 {
			s.ComplianceRate = float64(s.PaidCount) / float64(s.ChargeCount) * 100
		}
		s.DelinquencyRate = 100 - s.ComplianceRate
		out[k] = s
	}
	return out
}

// SortedDimension flattens a dimension map into key order for stable
// table rendering.
func SortedDimension(stats map[string]DimensionStat) []DimensionStat {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]DimensionStat, 0, len(keys))
	for _, k := range keys {
		out = append(out, stats[k])
	}
	return out
}
