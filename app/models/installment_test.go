package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestComputeBalance(t *testing.T) {
	inst := &FeeInstallment{
		NetAmount:     d("5000.00"),
		LateFeeAmount: d("100.00"),
		PaidAmount:    d("3100.00"),
	}
	if got := inst.ComputeBalance(); !got.Equal(d("2000.00")) {
		t.Errorf("balance = %s, want 2000.00", got)
	}
}

func TestCheckBalanceInvariant(t *testing.T) {
	tests := []struct {
		name    string
		inst    FeeInstallment
		wantErr bool
	}{
		{
			name: "consistent",
			inst: FeeInstallment{NetAmount: d("5000.00"), LateFeeAmount: d("100.00"),
				PaidAmount: d("5100.00"), BalanceAmount: d("0.00")},
		},
		{
			name: "drifted balance",
			inst: FeeInstallment{NetAmount: d("5000.00"),
				PaidAmount: d("1000.00"), BalanceAmount: d("3999.99")},
			wantErr: true,
		},
		{
			name: "negative balance",
			inst: FeeInstallment{NetAmount: d("100.00"),
				PaidAmount: d("150.00"), BalanceAmount: d("-50.00")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inst.CheckBalanceInvariant()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckBalanceInvariant() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOverdue(t *testing.T) {
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	inst := &FeeInstallment{
		DueDate:       CustomTime{Time: due},
		BalanceAmount: d("100.00"),
	}

	if inst.Overdue(due) {
		t.Error("not overdue on the due date itself")
	}
	if !inst.Overdue(due.AddDate(0, 0, 1)) {
		t.Error("overdue the day after the due date")
	}

	paid := &FeeInstallment{DueDate: CustomTime{Time: due}, BalanceAmount: d("0.00")}
	if paid.Overdue(due.AddDate(0, 0, 30)) {
		t.Error("a settled installment is never overdue")
	}
}

func TestOverdueDays(t *testing.T) {
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	inst := &FeeInstallment{DueDate: CustomTime{Time: due}}

	tests := []struct {
		asOf time.Time
		want int
	}{
		{due.AddDate(0, 0, -5), 0},
		{due, 0},
		{due.AddDate(0, 0, 1), 1},
		{due.AddDate(0, 0, 45), 45},
	}
	for _, tt := range tests {
		if got := inst.OverdueDays(tt.asOf); got != tt.want {
			t.Errorf("OverdueDays(%s) = %d, want %d", tt.asOf, got, tt.want)
		}
	}
}
