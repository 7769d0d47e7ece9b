package core

import "fmt"

// Frequency enumerates how often a charge template generates charges
type Frequency string

const (
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// ValidFrequency reports whether f is a supported generation frequency
func ValidFrequency(f Frequency) bool {
	return f == Monthly || f == Yearly
}

// ChargeTemplate describes a recurring charge: the condominium fee or any
// other concept that is billed to a unit on a fixed schedule.
type ChargeTemplate struct {
	ID            string
	CondominiumID string
	UnitNumber    string
	Concept       string
	Amount        Money
	AccountID     string
	Frequency     Frequency
	// DayOfMonth is the billing day. Days past the end of a short month
	// clamp to its last day.
	DayOfMonth int
	// StartMonth is the first month ("01".."12") a yearly template bills in
	StartMonth string
	Active     bool
}

// Validate checks template fields before persisting
func (t ChargeTemplate) Validate() error {
	if t.UnitNumber == "" {
		return ErrEmptyUnit
	}
	if t.Concept == "" {
		return ErrEmptyConcept
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if !ValidFrequency(t.Frequency) {
		return fmt.Errorf("unknown frequency: %s", t.Frequency)
	}
	if t.DayOfMonth < 1 || t.DayOfMonth > 31 {
		return fmt.Errorf("day of month %d out of range", t.DayOfMonth)
	}
	if t.Frequency == Yearly && !ValidMonth(t.StartMonth) {
		return ErrInvalidMonth
	}
	return nil
}
