package services

import (
	"testing"
	"time"

	"cuotas/internal/core"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlyChecker(t *testing.T) {
	checker := MonthlyChecker{}
	tpl := core.ChargeTemplate{Frequency: core.Monthly, DayOfMonth: 5}

	tests := []struct {
		name          string
		lastGenerated time.Time
		now           time.Time
		want          bool
	}{
		{"never generated", time.Time{}, date(2025, 3, 1), true},
		{"already generated this month", date(2025, 3, 5), date(2025, 3, 20), false},
		{"new month before billing day", date(2025, 2, 5), date(2025, 3, 4), false},
		{"new month on billing day", date(2025, 2, 5), date(2025, 3, 5), true},
		{"new month after billing day", date(2025, 2, 5), date(2025, 3, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastGenerated, tt.now, tpl)
			if got != tt.want {
				t.Errorf("IsDue(%v, %v) = %v, want %v", tt.lastGenerated, tt.now, got, tt.want)
			}
		})
	}
}

func TestMonthlyCheckerClampsBillingDay(t *testing.T) {
	checker := MonthlyChecker{}
	tpl := core.ChargeTemplate{Frequency: core.Monthly, DayOfMonth: 31}

	// February has no day 31, the last day of the month bills instead
	if !checker.IsDue(date(2025, 1, 31), date(2025, 2, 28), tpl) {
		t.Error("expected template due on Feb 28 when billing day is 31")
	}
	if checker.IsDue(date(2025, 1, 31), date(2025, 2, 27), tpl) {
		t.Error("expected template not due on Feb 27 when billing day is 31")
	}
}

func TestYearlyChecker(t *testing.T) {
	checker := YearlyChecker{}
	tpl := core.ChargeTemplate{Frequency: core.Yearly, DayOfMonth: 15, StartMonth: "03"}

	tests := []struct {
		name          string
		lastGenerated time.Time
		now           time.Time
		want          bool
	}{
		{"never generated", time.Time{}, date(2025, 1, 1), true},
		{"already generated this year", date(2025, 3, 15), date(2025, 11, 1), false},
		{"new year before billing month", date(2024, 3, 15), date(2025, 2, 20), false},
		{"new year on billing day", date(2024, 3, 15), date(2025, 3, 15), true},
		{"new year in billing month before day", date(2024, 3, 15), date(2025, 3, 10), false},
		{"new year past billing month", date(2024, 3, 15), date(2025, 6, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(tt.lastGenerated, tt.now, tpl)
			if got != tt.want {
				t.Errorf("IsDue(%v, %v) = %v, want %v", tt.lastGenerated, tt.now, got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	if _, err := GetDuenessChecker(core.Monthly); err != nil {
		t.Errorf("expected monthly checker, got error: %v", err)
	}
	if _, err := GetDuenessChecker(core.Yearly); err != nil {
		t.Errorf("expected yearly checker, got error: %v", err)
	}
	if _, err := GetDuenessChecker(core.Frequency("hourly")); err == nil {
		t.Error("expected error for unknown frequency")
	}
}
