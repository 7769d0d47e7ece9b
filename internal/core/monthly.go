package core

import "time"

// MonthlyStat is the derived view for one calendar month. All twelve
// months are always present and fully populated; a month with no charges
// is all zeros, never absent.
type MonthlyStat struct {
	Month           string
	Paid            Money // cash paid, excluding credit effects
	Pending         Money // pending amounts of unpaid charges
	Saldo           Money // credit surplus generated in the month
	PaidWithCredit  Money // reconciled paid (see Reconcile)
	Outstanding     Money // charged minus reconciled paid
	Charged         Money // sum of reference amounts
	ChargeCount     int
	PaidCount       int
	ComplianceRate  float64 // fully paid charges / total charges * 100
	DelinquencyRate float64 // 100 - compliance
}

// AggregateOptions scopes an aggregation run.
type AggregateOptions struct {
	// Year is the calendar year the records were fetched for.
	Year int
	// Now anchors "current month" truncation; the zero value means
	// time.Now(). Passed explicitly so aggregation stays deterministic
	// under test.
	Now time.Time
}

// ElapsedMonths returns how many months of the requested year have
// elapsed. For past years this is 12; for the current year, months after
// the current one have not happened yet and must not bias trend or
// min/max comparisons.
func (o AggregateOptions) ElapsedMonths() int {
	now := o.Now
	if now.IsZero() {
		now = time.Now()
	}
	if o.Year == 0 || o.Year < now.Year() {
		return 12
	}
	if o.Year > now.Year() {
		return 0
	}
	return int(now.Month())
}

// AggregateByMonth buckets records into the twelve calendar months,
// computing monetary sums and charge-count rates per month. Counts and
// currency are tallied separately; compliance is a ratio of charge counts,
// never of amounts. The returned slice always has exactly 12 entries in
// January..December order, including for empty input.
func AggregateByMonth(records []PaymentRecord, opts AggregateOptions) []MonthlyStat {
	stats := make([]MonthlyStat, 12)
	for i := range stats {
		stats[i].Month = Months[i]
	}

	for _, r := range records {
		i := MonthIndex(r.Month)
		if i < 0 {
			continue
		}
		s := &stats[i]
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
	}

	for i := range stats {
		s := &stats[i]
		// Guard the zero-charge month: compliance 0, not NaN.
		if s.ChargeCount > 0 {
			s.ComplianceRate = float64(s.PaidCount) / float64(s.ChargeCount) * 100
		}
		s.DelinquencyRate = 100 - s.ComplianceRate
	}
	return stats
}

// MonthExtremes returns the best- and worst-compliance months among the
// elapsed months of the year. Months that have not elapsed stay in the
// stats slice, zero-valued, but are excluded here so a half-finished year
// does not drag the comparison down. ok is false when no month has
// charges.
func MonthExtremes(stats []MonthlyStat, opts AggregateOptions) (best, worst MonthlyStat, ok bool) {
	limit := opts.ElapsedMonths()
	if limit > len(stats) {
		limit = len(stats)
	}
	for _, s := range stats[:limit] {
		if s.ChargeCount == 0 {
			continue
		}
		if !ok {
			best, worst, ok = s, s, true
			continue
		}
		if s.ComplianceRate > best.ComplianceRate {
			best = s
		}
		if s.ComplianceRate < worst.ComplianceRate {
			worst = s
		}
	}
	return best, worst, ok
}

// ApplyOpeningBalances attributes each account's initial balance into the
// saldo bucket of the month the account was created. This is additive
// context from account metadata, not a grouping the aggregator invents.
// Accounts with an unknown creation month default to January.
func ApplyOpeningBalances(stats []MonthlyStat, accounts []Account) []MonthlyStat {
	out := make([]MonthlyStat, len(stats))
	copy(out, stats)
	for _, a := range accounts {
		i := MonthIndex(a.CreationMonth)
		if i < 0 {
			i = 0
		}
		if i < len(out) {
			out[i].Saldo = out[i].Saldo.Add(a.InitialBalance)
		}
	}
	return out
}
