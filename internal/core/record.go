package core

import (
	"errors"
	"strings"
)

// Months lists the twelve calendar month keys in order. Every monthly
// view is keyed by these two-digit strings so charts and tables never
// have to handle missing buckets.
var Months = [12]string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrEmptyUnit     = errors.New("empty unit number")
	ErrEmptyConcept  = errors.New("empty concept")
)

// PaymentRecord is the canonical unit of aggregation: one charge with its
// payment roll-up. CreditBalance and CreditUsed are independent fields; a
// record can simultaneously generate and consume credit, the net effect is
// computed at aggregation time.
type PaymentRecord struct {
	ID              string
	UnitNumber      string // billed condominium unit, unique within a condominium
	Month           string // "01".."12", from the charge's effective start date
	Concept         string
	ReferenceAmount Money // total amount originally charged
	AmountPaid      Money // cumulative cash paid, excluding credit effects
	AmountPending   Money // remaining unpaid amount, never negative
	CreditBalance   Money // surplus generated by overpayment (>= 0 when generated)
	CreditUsed      Money // credit consumed from prior surplus
	Paid            bool  // true only when fully settled
	AccountID       string
	PaymentDate     string // provenance metadata, display only
	PaymentType     string
}

// Account is per-account metadata used to attribute opening balances into
// the month the account was created.
type Account struct {
	ID             string
	Name           string
	InitialBalance Money
	CreationMonth  string // "01".."12"
}

// Validate checks a record built on the write path. Normalized records
// coming from raw documents are degraded instead of rejected, so this is
// only called for operator-entered charges.
func (r PaymentRecord) Validate() error {
	if !ValidMonth(r.Month) {
		return ErrInvalidMonth
	}
	if strings.TrimSpace(r.UnitNumber) == "" {
		return ErrEmptyUnit
	}
	if strings.TrimSpace(r.Concept) == "" {
		return ErrEmptyConcept
	}
	if r.ReferenceAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if r.AmountPending.IsNegative() {
		return errors.New("negative pending amount")
	}
	if r.Paid && r.AmountPending.Cents != 0 {
		return errors.New("paid charge with pending amount")
	}
	return nil
}

// ValidMonth reports whether m is one of the twelve two-digit month keys.
func ValidMonth(m string) bool {
	if len(m) != 2 {
		return false
	}
	for _, k := range Months {
		if m == k {
			return true
		}
	}
	return false
}

// MonthIndex returns the zero-based index of a month key, or -1.
func MonthIndex(m string) int {
	for i, k := range Months {
		if m == k {
			return i
		}
	}
	return -1
}

var monthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish display name for a month key, or the key
// itself when it is not a valid month.
func MonthName(m string) string {
	if i := MonthIndex(m); i >= 0 {
		return monthNames[i]
	}
	return m
}
