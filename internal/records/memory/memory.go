// Package memory provides an in-memory record store used by tests and as
// the default backend when no database is configured.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"cuotas/internal/core"
	"cuotas/internal/records"
)

type charge struct {
	record    core.PaymentRecord
	startDate string
}

type Store struct {
	mu       sync.Mutex
	charges  map[string][]charge      // condominiumID -> charges
	accounts map[string][]core.Account
	seq      int
}

func New() *Store {
	return &Store{
		charges:  make(map[string][]charge),
		accounts: make(map[string][]core.Account),
	}
}

// SeedAccounts registers account metadata for a condominium.
func (s *Store) SeedAccounts(condominiumID string, accounts []core.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[condominiumID] = append([]core.Account(nil), accounts...)
}

// CreateCharge implements records.ChargeWriter.
func (s *Store) CreateCharge(_ context.Context, condominiumID string, r core.PaymentRecord, startDate string) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	r.ID = fmt.Sprintf("chg-%d", s.seq)
	s.charges[condominiumID] = append(s.charges[condominiumID], charge{record: r, startDate: startDate})
	return r.ID, nil
}

// ApplyPayment implements records.PaymentWriter. The returned year comes
// from the charge's start date, not the payment date.
func (s *Store) ApplyPayment(_ context.Context, condominiumID string, p records.Payment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.charges[condominiumID]
	for i := range list {
		if list[i].record.ID == p.ChargeID {
			list[i].record = core.Settle(list[i].record, core.PaymentInput{
				Amount:      p.Amount,
				CreditUsed:  p.CreditUsed,
				PaymentDate: p.PaymentDate,
				PaymentType: p.PaymentType,
			})
			return yearOfStartDate(list[i].startDate), nil
		}
	}
	return 0, fmt.Errorf("charge %s not found", p.ChargeID)
}

func yearOfStartDate(startDate string) int {
	if len(startDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(startDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// ListChargeDocuments implements records.RecordSource. Documents are
// returned in the loosely-typed shape of the record store so callers
// exercise the same normalization path as any other backend.
func (s *Store) ListChargeDocuments(_ context.Context, condominiumID string, year int) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []map[string]any
	for _, c := range s.charges[condominiumID] {
		if year != 0 && (len(c.startDate) < 4 || c.startDate[:4] != fmt.Sprintf("%04d", year)) {
			continue
		}
		out = append(out, chargeDoc(c))
	}
	return out, nil
}

// UpsertAccount registers or updates account metadata.
func (s *Store) UpsertAccount(_ context.Context, condominiumID string, a core.Account) error {
	if a.ID == "" {
		return fmt.Errorf("account id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.accounts[condominiumID]
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = a
			return nil
		}
	}
	s.accounts[condominiumID] = append(list, a)
	return nil
}

// ListAccounts implements records.AccountSource.
func (s *Store) ListAccounts(_ context.Context, condominiumID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts[condominiumID]...), nil
}

func chargeDoc(c charge) map[string]any {
	r := c.record
	return map[string]any{
		"id":                 r.ID,
		"numberCondominium":  r.UnitNumber,
		"startDate":          c.startDate,
		"concept":            r.Concept,
		"referenceAmount":    r.ReferenceAmount.Units(),
		"amountPaid":         r.AmountPaid.Units(),
		"amountPending":      r.AmountPending.Units(),
		"creditBalance":      r.CreditBalance.Units(),
		"creditUsed":         r.CreditUsed.Units(),
		"paid":               r.Paid,
		"financialAccountId": r.AccountID,
		"paymentDate":        r.PaymentDate,
		"paymentType":        r.PaymentType,
	}
}
