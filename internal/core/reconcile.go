package core

// Reconciliation is the credit-adjusted view of a single record.
type Reconciliation struct {
	// ReconciledPaid is the effective income attributable to the record:
	// cash paid, plus any credit surplus it generated, minus the credit it
	// consumed from prior surpluses.
	ReconciledPaid Money
	// OutstandingBalance is what remains owed after reconciliation.
	OutstandingBalance Money
}

// Reconcile resolves the amount-paid-with-credit formula for one record:
//
//	reconciledPaid = amountPaid + max(creditBalance, 0) - creditUsed
//	outstanding    = referenceAmount - reconciledPaid
//
// A payment can pay down the charge, overpay into a credit surplus, and
// consume previously accumulated credit all at once; these are recorded as
// independent fields. Summing amountPaid alone undercounts income whenever
// a charge was covered by credit with no cash movement. The clamp on
// creditBalance keeps a negative adjustment from silently reducing income:
// reductions must be recorded as creditUsed.
//
// When creditUsed exceeds the available surplus the arithmetic is applied
// as-is and a single record can go temporarily negative; a consistent
// ledger nets out at the aggregate level. This module reports, it does not
// validate ledger consistency.
//
// Every aggregation dimension and every export path must route through
// this function rather than re-deriving the formula, so that the totals of
// any grouping agree with the monthly totals.
func Reconcile(r PaymentRecord) Reconciliation {
	credit := r.CreditBalance
	if credit.IsNegative() {
		credit = Money{}
	}
	paid := r.AmountPaid.Add(credit).Sub(r.CreditUsed)
	return Reconciliation{
		ReconciledPaid:     paid,
		OutstandingBalance: r.ReferenceAmount.Sub(paid),
	}
}
