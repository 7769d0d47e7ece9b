// Package core implements the financial reconciliation aggregator: pure
// functions that turn charge/payment documents into the monthly and
// per-dimension views the dashboards and reports consume.
//
// This file contains money parsing, coercion and formatting. Amounts are
// integer cents; floats only appear at the coercion boundary and for
// percentage rates.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a monetary amount in cents.
type Money struct {
	Cents int64
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// Units returns the amount as a float64 for display purposes only.
// Use cents for calculations.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) separators and rejects negative, zero, and malformed
// amounts. Used for operator input on the write path; the read-path
// normalizer uses the lenient CoerceCents instead.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// CoerceCents converts an arbitrary document value to cents. Absent,
// non-numeric or unparseable values coerce to zero rather than erroring:
// a single bad field must not blank a whole report.
func CoerceCents(v any) Money {
	switch n := v.(type) {
	case nil:
		return Money{}
	case float64:
		return Money{Cents: roundCents(n)}
	case float32:
		return Money{Cents: roundCents(float64(n))}
	case int:
		return Money{Cents: int64(n) * 100}
	case int64:
		return Money{Cents: n * 100}
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return Money{Cents: roundCents(f)}
		}
		return Money{}
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
		if s == "" {
			return Money{}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Money{Cents: roundCents(f)}
		}
		return Money{}
	default:
		return Money{}
	}
}

// roundCents converts a decimal amount to cents, rounding half away
// from zero so negative adjustments keep their magnitude.
func roundCents(f float64) int64 {
	if f < 0 {
		return -int64(-f*100.0 + 0.5)
	}
	return int64(f*100.0 + 0.5)
}

// FormatAmount renders cents as a currency string with thousands
// separators, e.g. "$1,234.56" or "-$150.00".
func FormatAmount(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100
	out := "$" + groupThousands(strconv.FormatInt(units, 10)) + "." + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + out
	}
	return out
}

// FormatPercent renders a rate as a percentage string, e.g. "87.50%".
func FormatPercent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 2, 64) + "%"
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
