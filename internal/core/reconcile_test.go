package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileAddsCreditEffects(t *testing.T) {
	// a record can pay, generate surplus, and consume credit at once
	r := PaymentRecord{
		ReferenceAmount: Money{Cents: 25000},
		AmountPaid:      Money{Cents: 20000},
		CreditBalance:   Money{Cents: 5000},
		CreditUsed:      Money{Cents: 2000},
	}
	rec := Reconcile(r)
	assert.Equal(t, int64(23000), rec.ReconciledPaid.Cents)
	assert.Equal(t, int64(2000), rec.OutstandingBalance.Cents)
}

func TestReconcileClampsNegativeCreditBalance(t *testing.T) {
	// a negative adjustment must never subtract from income
	r := PaymentRecord{
		ReferenceAmount: Money{Cents: 10000},
		AmountPaid:      Money{Cents: 10000},
		CreditBalance:   Money{Cents: -500},
	}
	rec := Reconcile(r)
	assert.Equal(t, int64(10000), rec.ReconciledPaid.Cents, "negative credit balance leaked into income")
	assert.Equal(t, int64(0), rec.OutstandingBalance.Cents)
}

func TestReconcileOverconsumedCreditGoesNegative(t *testing.T) {
	// creditUsed beyond available surplus is applied arithmetically;
	// ledger consistency is not this module's concern
	r := PaymentRecord{
		ReferenceAmount: Money{Cents: 10000},
		CreditUsed:      Money{Cents: 15000},
	}
	rec := Reconcile(r)
	assert.Equal(t, int64(-15000), rec.ReconciledPaid.Cents)
	assert.Equal(t, int64(25000), rec.OutstandingBalance.Cents)
}

func TestReconcileZeroRecord(t *testing.T) {
	rec := Reconcile(PaymentRecord{})
	assert.Zero(t, rec.ReconciledPaid.Cents)
	assert.Zero(t, rec.OutstandingBalance.Cents)
}
