// Package common contains helpers used across the whole project:
// money formatting in reais, time zone handling, simple pluralization.
package common

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTimezone is used when APP_TIMEZONE cannot be loaded.
const DefaultTimezone = "America/Sao_Paulo"

// FormatBRL formats an amount in Brazilian notation.
//
// Examples:
//
//	FormatBRL(decimal.RequireFromString("1234.5")) → "R$ 1.234,50"
//	FormatBRL(decimal.RequireFromString("-3"))     → "-R$ 3,00"
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	return sign + "R$ " + groupThousands(intPart) + "," + fracPart
}

// FormatSignedBRL adds an explicit "+" to non-negative amounts.
// Example: FormatSignedBRL(10) → "+R$ 10,00"
func FormatSignedBRL(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return FormatBRL(amount)
	}
	return "+" + FormatBRL(amount)
}

// groupThousands inserts "." every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := len(digits) % 3
	var sb strings.Builder
	if head > 0 {
		sb.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// LoadLocation returns the named zone, falling back to UTC-3 (Brasília time).
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// LocalDate returns midnight of t's day in loc.
// Daily withdrawal limits are counted per local calendar day.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatDateTime formats a time as "02/01/2006 15:04" in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006 15:04")
}
