package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10.00"},
		{"10.00", "10.00"},
		{"0.125", "0.13"},
	}
	for _, tt := range tests {
		if got := Round2(d(tt.in)); !got.Equal(d(tt.want)) {
			t.Errorf("Round2(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	amounts := []string{"0.00", "0.01", "3333.34", "99999.99"}
	for _, a := range amounts {
		if got := FromCents(Cents(d(a))); !got.Equal(d(a)) {
			t.Errorf("FromCents(Cents(%s)) = %s", a, got)
		}
	}
	if Cents(d("3333.34")) != 333334 {
		t.Errorf("Cents(3333.34) = %d", Cents(d("3333.34")))
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		amount, pct, want string
	}{
		{"5000.00", "2", "100.00"},
		{"10000.00", "10", "1000.00"},
		{"999.99", "33.33", "333.30"},
		{"100.00", "0", "0.00"},
	}
	for _, tt := range tests {
		if got := Percent(d(tt.amount), d(tt.pct)); !got.Equal(d(tt.want)) {
			t.Errorf("Percent(%s, %s) = %s, want %s", tt.amount, tt.pct, got, tt.want)
		}
	}
}

func TestPercentIsStableOnDecimal(t *testing.T) {
	// float arithmetic would drift here; decimal must not
	got := Percent(decimal.NewFromFloat(0.1).Mul(decimal.NewFromInt(3)), d("100"))
	if !got.Equal(d("0.30")) {
		t.Errorf("Percent(0.1*3, 100) = %s, want 0.30", got)
	}
}
