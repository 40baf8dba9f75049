package models

import "github.com/shopspring/decimal"

// All money in this system is decimal with two fractional digits. Helpers
// here keep rounding in one place so every engine rounds the same way.

// Round2 rounds half-up to two decimal places. Amounts are never negative
// on the paths that use this, so Round's half-away-from-zero is half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Cents converts an amount to an exact integer number of cents.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).IntPart()
}

// FromCents converts integer cents back to a two-decimal amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// Percent computes amount * pct / 100 rounded to two decimals.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(pct).Div(decimal.NewFromInt(100)))
}
