package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.345", 1235, true},
		{"12.346", 1235, true},
		{"1500", 150000, true},
		{"", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"0", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseDecimalToCents(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseDecimalToCents(%q) expected error", tc.in)
		}
	}
}

func TestCoerceCents(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int64
	}{
		{"nil", nil, 0},
		{"float", 250.50, 25050},
		{"negative float", -5.0, -500},
		{"int", 100, 10000},
		{"string", "75.25", 7525},
		{"string comma", "75,25", 7525},
		{"garbage string", "n/a", 0},
		{"empty string", "", 0},
		{"bool", true, 0},
		{"json number", json.Number("300"), 30000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoerceCents(tc.in); got.Cents != tc.want {
				t.Errorf("CoerceCents(%v) = %d, want %d", tc.in, got.Cents, tc.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{100000, "$1,000.00"},
		{123456, "$1,234.56"},
		{-15000, "-$150.00"},
		{123456789, "$1,234,567.89"},
		{5, "$0.05"},
	}
	for _, tc := range cases {
		if got := FormatAmount(Money{Cents: tc.cents}); got != tc.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(50); got != "50.00%" {
		t.Errorf("FormatPercent(50) = %q", got)
	}
	if got := FormatPercent(33.333333); got != "33.33%" {
		t.Errorf("FormatPercent(33.33…) = %q", got)
	}
}
