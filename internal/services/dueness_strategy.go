// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for charge template dueness
// checking. Each billing frequency has its own strategy that encapsulates
// the logic for determining if a template should generate a charge.

package services

import (
	"fmt"
	"time"

	"cuotas/internal/core"
)

// DuenessChecker is the strategy interface for checking if a charge template is due.
// Each implementation encapsulates the algorithm for a specific billing frequency.
type DuenessChecker interface {
	// IsDue returns true if the template should generate a charge based on
	// the last generation time and the current time.
	IsDue(lastGenerated, now time.Time, template core.ChargeTemplate) bool
}

// MonthlyChecker implements DuenessChecker for monthly charge templates.
type MonthlyChecker struct{}

// IsDue returns true if we're in a new month and have reached the billing day.
func (MonthlyChecker) IsDue(lastGenerated, now time.Time, template core.ChargeTemplate) bool {
	if lastGenerated.IsZero() {
		return true
	}

	// Already generated this month?
	if lastGenerated.Year() == now.Year() && lastGenerated.Month() == now.Month() {
		return false
	}

	return now.Day() >= clampToMonth(template.DayOfMonth, now)
}

// YearlyChecker implements DuenessChecker for yearly charge templates.
type YearlyChecker struct{}

// IsDue returns true if we're in a new year and have reached the billing month and day.
func (YearlyChecker) IsDue(lastGenerated, now time.Time, template core.ChargeTemplate) bool {
	if lastGenerated.IsZero() {
		return true
	}

	// Already generated this year?
	if lastGenerated.Year() == now.Year() {
		return false
	}

	targetMonth := core.MonthIndex(template.StartMonth) + 1

	if int(now.Month()) < targetMonth {
		return false
	}

	if int(now.Month()) == targetMonth {
		return now.Day() >= clampToMonth(template.DayOfMonth, now)
	}

	// We're past the billing month
	return true
}

// clampToMonth caps a billing day to the last day of now's month
func clampToMonth(targetDay int, now time.Time) int {
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		return lastDayOfMonth
	}
	return targetDay
}

// duenessStrategies maps billing frequencies to their corresponding checkers.
var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the appropriate dueness checker for a billing frequency.
// Returns an error if the frequency is not supported.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker allows registering custom dueness checkers for new frequencies.
func RegisterDuenessChecker(frequency core.Frequency, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
