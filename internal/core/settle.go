package core

// PaymentInput is one payment event applied to a charge: direct cash
// plus optional credit drawn from a prior surplus.
type PaymentInput struct {
	Amount      Money
	CreditUsed  Money
	PaymentDate string
	PaymentType string
}

// Settle rolls a payment into a charge record. Cash and consumed credit
// both reduce the pending amount; an overpayment flips the charge to paid
// and turns the excess into a credit surplus for future charges. The
// function is pure so every store applies identical roll-up arithmetic.
func Settle(r PaymentRecord, p PaymentInput) PaymentRecord {
	r.AmountPaid = r.AmountPaid.Add(p.Amount)
	r.CreditUsed = r.CreditUsed.Add(p.CreditUsed)

	covered := p.Amount.Add(p.CreditUsed)
	pending := r.AmountPending.Sub(covered)
	if pending.Cents <= 0 {
		r.CreditBalance = r.CreditBalance.Add(Money{Cents: -pending.Cents})
		r.AmountPending = Money{}
		r.Paid = true
	} else {
		r.AmountPending = pending
	}

	if p.PaymentDate != "" {
		r.PaymentDate = p.PaymentDate
	}
	if p.PaymentType != "" {
		r.PaymentType = p.PaymentType
	}
	return r
}
