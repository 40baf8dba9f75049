package models

import "testing"

func TestGrossTotal(t *testing.T) {
	s := &FeeStructure{
		Items: []*FeeItem{
			{Amount: d("6000.00"), Category: &FeeCategory{TaxPercentage: d("0")}},
			{Amount: d("3000.00"), Category: &FeeCategory{TaxPercentage: d("10")}},
			{Amount: d("1000.00")}, // category not loaded, raw amount
		},
	}
	// 6000 + 3300 + 1000
	if got := s.GrossTotal(); !got.Equal(d("10300.00")) {
		t.Errorf("GrossTotal = %s, want 10300.00", got)
	}
}

func TestAmountWithTax(t *testing.T) {
	item := &FeeItem{Amount: d("999.99"), Category: &FeeCategory{TaxPercentage: d("18")}}
	// 999.99 + 180.00 (999.99*18% = 179.9982 rounds to 180.00)
	if got := item.AmountWithTax(); !got.Equal(d("1179.99")) {
		t.Errorf("AmountWithTax = %s, want 1179.99", got)
	}
}
